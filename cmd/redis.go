package cmd

import (
	"context"
	"fmt"
	"time"

	"soundcatalog/config"
	"soundcatalog/db"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "键值存储连接测试",
	Long:  `按 STORE_DRIVER 连接键值存储（默认 Redis），并进行一次写入、读取、删除的往返测试。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("存储驱动: %s\n", cfg.StoreDriver)
		if cfg.StoreDriver == config.StoreRedis {
			fmt.Printf("Redis配置: %s:%s, DB: %d, 前缀: %s\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB, cfg.RedisKeyPrefix)
		}

		store, err := db.Open(cfg)
		if err != nil {
			return fmt.Errorf("无法连接到存储: %w", err)
		}
		defer store.Close()
		fmt.Println("连接成功！")

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		start := time.Now()
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("存储读写测试失败: %w", err)
		}
		fmt.Printf("读写测试成功！耗时 %s\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
