package cmd

import (
	"fmt"
	"io"

	"soundcatalog/db"
	"soundcatalog/repository"
	"soundcatalog/storage"

	"github.com/spf13/cobra"
)

var orphansDelete bool

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "查找没有曲目引用的文件",
	Long: `对比对象存储中的文件和曲目记录的 fileKey，列出未被引用的文件。
这些文件来自上传后挂载失败、重新上传覆盖或曲目被删除。加 --delete 时删除它们。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := db.Open(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		objects, err := storage.Open(ctx, cfg)
		if err != nil {
			return err
		}
		if closer, ok := objects.(io.Closer); ok {
			defer closer.Close()
		}

		tracks := repository.NewTrackRepository(store, objects, cfg.TracksTable)
		reconciler := repository.NewOrphanReconciler(tracks, objects)

		if orphansDelete {
			removed, err := reconciler.RemoveOrphanBlobs(ctx)
			for _, key := range removed {
				fmt.Printf("  已删除 %s\n", key)
			}
			if err != nil {
				return err
			}
			fmt.Printf("共删除 %d 个孤儿文件\n", len(removed))
			return nil
		}

		orphans, err := reconciler.FindOrphanBlobs(ctx)
		if err != nil {
			return err
		}
		for _, obj := range orphans {
			fmt.Printf("  %-60s %10s\n", obj.Key, storage.FormatSize(obj.Size))
		}
		fmt.Printf("共 %d 个孤儿文件, %s\n", len(orphans), storage.FormatSize(storage.Summarize(orphans).TotalSize))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orphansCmd)
	orphansCmd.Flags().BoolVar(&orphansDelete, "delete", false, "删除找到的孤儿文件")
}
