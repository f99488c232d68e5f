package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	beam "github.com/dep2p/go-beam"
)

// id: 显示本节点身份。
func idCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "显示本节点身份",
		Long: "显示当前配置对应的节点标识（Base58 编码的公钥）。\n" +
			"密钥文件不存在时自动创建。",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 只需要身份，内容索引留在内存里，不在磁盘上留痕
			opts := append(nodeOptions(), beam.WithInMemory())
			node, err := beam.New(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			fmt.Println(node.ID())
			return nil
		},
	}
}
