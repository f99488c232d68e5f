package commands

import (
	"context"
	"fmt"
	"math"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	beam "github.com/dep2p/go-beam"
)

// fetch <ticket>: 凭票据取回内容。
func fetchCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "fetch <票据>",
		Short: "凭票据取回内容",
		Long: "连接票据中的提供方节点，校验并取回全部内容。\n" +
			"内容逐块校验哈希，落盘的文件保证与发送方完全一致。",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), args[0], outDir)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "输出目录")
	return cmd
}

func runFetch(ctx context.Context, ticketStr, outDir string) error {
	ticket, err := beam.ParseTicket(ticketStr)
	if err != nil {
		return fmt.Errorf("票据无效: %w", err)
	}

	// Ctrl+C 中止拉取，已完成的文件保留
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	node, err := beam.Start(ctx, nodeOptions()...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Stop(context.Background()) }()

	fmt.Printf("正在连接 %s ...\n", ticket.NodeID.ShortString())
	events, err := node.Fetch(ctx, ticket, outDir)
	if err != nil {
		return fmt.Errorf("发起取回失败: %w", err)
	}
	return renderProgress(events)
}

// renderProgress 渲染拉取进度
//
// 接收中的进度行就地刷新，文件完成与终态事件换行输出。
// 通道由拉取协程在终态事件后关闭。
func renderProgress(events <-chan beam.Event) error {
	lineDirty := false
	clearLine := func() {
		if lineDirty {
			fmt.Printf("\r%*s\r", 78, "")
			lineDirty = false
		}
	}

	for ev := range events {
		switch e := ev.(type) {
		case beam.EventConnected:
			fmt.Printf("已连接 %s (%s)\n", e.Node.ShortString(), e.Addr)

		case beam.EventManifest:
			fmt.Printf("清单就绪: %d 个文件, 共 %s\n", e.Files, formatBytes(e.Total))

		case beam.EventRequested:
			// 请求本身不成行，接收进度行会带上文件名

		case beam.EventReceiving:
			fmt.Printf("\r%-36s %s / %s  %s",
				trimName(e.Name, 36),
				formatBytes(e.Offset), formatBytes(e.Total),
				formatRate(e.Rate))
			lineDirty = true

		case beam.EventFileDone:
			clearLine()
			fmt.Printf("✓ %s (%s, %s)\n",
				e.Name, formatBytes(e.Written), e.Elapsed.Round(time.Millisecond))

		case beam.EventDone:
			clearLine()
			fmt.Printf("完成: %d 个文件, %s, 用时 %s\n",
				e.Files, formatBytes(e.Written), e.Elapsed.Round(time.Millisecond))

		case beam.EventFailed:
			clearLine()
			return fmt.Errorf("取回失败: %w", e.Err)
		}
	}
	return nil
}

// trimName 截短过长的文件名，保留结尾部分
func trimName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	return "..." + name[len(name)-(max-3):]
}

// ═══════════════════════════════════════════════════════════════════════════
// 人类可读格式化
// ═══════════════════════════════════════════════════════════════════════════

// formatBytes 格式化字节数为人类可读格式
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return formatValue(float64(n)/float64(div), "KMGTPE"[exp:exp+1]+"B")
}

// formatRate 格式化速率为人类可读格式
func formatRate(bps float64) string {
	const unit = 1024
	if math.IsNaN(bps) || bps < unit {
		return formatValue(bps, "B/s")
	}
	div, exp := float64(unit), 0
	for m := bps / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return formatValue(bps/div, "KMGTPE"[exp:exp+1]+"B/s")
}

func formatValue(v float64, suffix string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0 " + suffix
	}
	switch {
	case v < 10:
		return strconv.FormatFloat(v, 'f', 2, 64) + " " + suffix
	case v < 100:
		return strconv.FormatFloat(v, 'f', 1, 64) + " " + suffix
	default:
		return strconv.FormatFloat(v, 'f', 0, 64) + " " + suffix
	}
}
