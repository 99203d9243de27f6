package cmd

import (
	"soundcatalog/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "启动HTTP服务器",
	Long:    `连接配置的键值存储和对象存储，启动曲目与播放列表的 HTTP API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
