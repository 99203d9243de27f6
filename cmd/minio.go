package cmd

import (
	"context"
	"fmt"
	"io"

	"soundcatalog/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix    string
	minioStats     bool
	minioRecursive bool
	minioDelete    bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "对象存储管理",
	Long:  `查看和管理对象存储桶中的曲目文件，支持按前缀列出文件、查看统计信息、按曲目分组显示、删除前缀下的文件。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		objects, err := storage.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("无法连接到对象存储: %w", err)
		}
		if closer, ok := objects.(io.Closer); ok {
			defer closer.Close()
		}
		fmt.Printf("对象存储: %s, Bucket: %s\n", cfg.ObjectsDriver, objects.Bucket())

		list, err := objects.ListObjects(ctx, minioPrefix)
		if err != nil {
			return fmt.Errorf("列出文件失败: %w", err)
		}

		switch {
		case minioDelete:
			return deletePrefix(ctx, objects, list)
		case minioRecursive:
			printGrouped(list)
		case minioStats:
			printStats(list)
		default:
			fmt.Printf("\n前缀 %q 下的文件:\n", minioPrefix)
			for _, obj := range list {
				fmt.Printf("  %-60s %10s  %s\n", obj.Key, storage.FormatSize(obj.Size), obj.LastModified.Format("2006-01-02 15:04:05"))
			}
			fmt.Printf("共 %d 个文件\n", len(list))
		}
		return nil
	},
}

func deletePrefix(ctx context.Context, objects storage.ObjectStore, list []storage.ObjectInfo) error {
	if minioPrefix == "" {
		return fmt.Errorf("删除操作需要指定前缀")
	}
	for _, obj := range list {
		if err := objects.DeleteObject(ctx, obj.Key); err != nil {
			return fmt.Errorf("删除 %s 失败: %w", obj.Key, err)
		}
		fmt.Printf("  已删除 %s\n", obj.Key)
	}
	fmt.Printf("共删除 %d 个文件\n", len(list))
	return nil
}

func printGrouped(list []storage.ObjectInfo) {
	dirs, groups := storage.GroupByDir(list)
	for _, dir := range dirs {
		name := dir
		if name == "" {
			name = "(根目录)"
		}
		stats := storage.Summarize(groups[dir])
		fmt.Printf("\n📁 %s  (%d 个文件, %s)\n", name, stats.TotalObjects, storage.FormatSize(stats.TotalSize))
		for _, obj := range groups[dir] {
			fmt.Printf("  └── %s (%s)\n", obj.Key, storage.FormatSize(obj.Size))
		}
	}
}

func printStats(list []storage.ObjectInfo) {
	stats := storage.Summarize(list)
	fmt.Println("\n存储桶统计信息:")
	fmt.Printf("  文件总数: %d\n", stats.TotalObjects)
	fmt.Printf("  总大小: %s\n", storage.FormatSize(stats.TotalSize))
	if !stats.LastModified.IsZero() {
		fmt.Printf("  最后修改: %s\n", stats.LastModified.Format("2006-01-02 15:04:05"))
	}
	for contentType, size := range stats.ByType {
		fmt.Printf("  %s: %s\n", contentType, storage.FormatSize(size))
	}
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤文件，例如曲目 UID")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "显示存储桶统计信息")
	minioCmd.Flags().BoolVarP(&minioRecursive, "recursive", "r", false, "按曲目目录分组显示")
	minioCmd.Flags().BoolVarP(&minioDelete, "delete", "d", false, "删除前缀下的所有文件")

	minioCmd.Example = `  # 列出所有文件
  soundcatalog minio

  # 查看某个曲目的文件
  soundcatalog minio -p "3f2b.../"

  # 显示存储桶统计信息
  soundcatalog minio -s

  # 删除前缀下的所有文件
  soundcatalog minio -d -p "3f2b.../"`
}
