// Package main 提供 beam 命令行入口
package main

import (
	"fmt"
	"os"

	"github.com/dep2p/go-beam/cmd/beam/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
