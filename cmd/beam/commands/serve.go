package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	beam "github.com/dep2p/go-beam"
)

// serve <path>...: 登记内容并挂起节点等待接收方。
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve <路径>...",
		Short: "分享文件或目录",
		Long: "登记给定的文件或目录并启动节点，输出一张传输票据。\n" +
			"票据发给接收方后保持本命令运行，接收完成按 Ctrl+C 退出。",
		Args: cobra.MinimumNArgs(1),
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	fmt.Printf("📦 %s\n", beam.VersionInfo())
	fmt.Println("正在启动节点...")

	node, err := beam.Start(ctx, nodeOptions()...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Stop(context.Background()) }()

	ticket, err := node.Serve(args...)
	if err != nil {
		return fmt.Errorf("登记内容失败: %w", err)
	}
	encoded, err := ticket.Encode()
	if err != nil {
		return fmt.Errorf("编码票据失败: %w", err)
	}

	printServeInfo(node, ticket, encoded)

	fmt.Println("节点已启动，接收端运行 beam fetch <票据>，按 Ctrl+C 退出")
	waitForSignal()

	fmt.Println("\n正在关闭节点...")
	return nil
}

// printServeInfo 打印分享信息（美化输出）
//
// 票据完整输出、不截断，便于直接复制发给接收方。
func printServeInfo(node *beam.Node, ticket *beam.Ticket, encoded string) {
	fmt.Println()
	boxTop()
	boxCenter("Beam Node Started (" + beam.Version + ")")
	boxDivider()
	boxLine("Node ID: " + node.ID().String())
	boxBlank()

	boxLine("Addresses:")
	for _, addr := range ticket.Addrs {
		boxWrapped(addr)
	}
	boxBlank()

	boxLine("Ticket (copy to receiver):")
	boxWrapped(encoded)

	if logFile != "" {
		boxBlank()
		boxLine("Log file: " + logFile)
	}
	boxBottom()
	fmt.Println()
}

// ═══════════════════════════════════════════════════════════════════════════
// 信息框输出
// ═══════════════════════════════════════════════════════════════════════════

// boxWidth 信息框内宽（按 ASCII 字符计）
const boxWidth = 74

func boxTop()     { fmt.Println("╔" + strings.Repeat("═", boxWidth) + "╗") }
func boxDivider() { fmt.Println("╠" + strings.Repeat("═", boxWidth) + "╣") }
func boxBottom()  { fmt.Println("╚" + strings.Repeat("═", boxWidth) + "╝") }
func boxBlank()   { boxLine("") }

func boxLine(text string) {
	fmt.Printf("║  %-*s║\n", boxWidth-2, text)
}

func boxCenter(text string) {
	pad := boxWidth - len(text)
	if pad < 0 {
		pad = 0
	}
	left := pad / 2
	fmt.Printf("║%*s%s%*s║\n", left, "", text, pad-left, "")
}

// boxWrapped 打印可复制的长行内容（不截断）
func boxWrapped(text string) {
	width := boxWidth - 6
	for len(text) > width {
		fmt.Printf("║    %-*s  ║\n", width, text[:width])
		text = text[width:]
	}
	fmt.Printf("║    %-*s  ║\n", width, text)
}
