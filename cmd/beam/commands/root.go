// Package commands 实现 beam 命令行的子命令
package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	beam "github.com/dep2p/go-beam"
	"github.com/dep2p/go-beam/pkg/lib/log"
)

// ═══════════════════════════════════════════════════════════════════════════
// 全局参数
// ═══════════════════════════════════════════════════════════════════════════
//
// 命令行参数只描述「这次运行」的行为，长期状态（身份密钥、内容索引）
// 放在数据目录里。
var (
	// ─────────────────────────────────────────────────────────────────────
	// 节点参数
	// ─────────────────────────────────────────────────────────────────────
	dataDir      string
	listenAddr   string
	identityFile string
	authMode     string

	// ─────────────────────────────────────────────────────────────────────
	// 日志参数
	// ─────────────────────────────────────────────────────────────────────
	logFile string
	verbose bool
)

// logHandle 打开的日志文件（Execute 返回前关闭）
var logHandle *os.File

// Execute 构建命令树并运行
func Execute() error {
	root := &cobra.Command{
		Use:   "beam",
		Short: "点对点内容寻址文件传输",
		Long: "beam 在两台机器之间直接传输文件或目录。\n" +
			"发送方登记内容得到一张票据，接收方凭票据建立经过身份验证的\n" +
			"QUIC 连接，边接收边校验内容哈希。",
		Version:       beam.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&dataDir, "data-dir", "", "数据目录（留空则使用临时身份与内存索引）")
	pf.StringVar(&listenAddr, "addr", "", "监听地址 host:port（端口 0 表示随机）")
	pf.StringVar(&identityFile, "key", "", "身份密钥文件路径")
	pf.StringVar(&authMode, "auth", "", "认证模式 (certificate/raw)")
	pf.StringVar(&logFile, "log-file", "", "日志文件路径（留空则日志输出到 stderr）")
	pf.BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(serveCmd(), fetchCmd(), idCmd())

	err := root.Execute()
	if logHandle != nil {
		_ = logHandle.Close()
	}
	return err
}

// setupLogging 设置日志输出
//
// 指定 --log-file 时日志写入文件，终端保持干净；否则日志落在
// stderr，默认只保留警告级别，避免干扰传输进度输出。
func setupLogging() error {
	level := log.LevelInfo
	if verbose {
		level = log.LevelDebug
	}

	if logFile == "" {
		if verbose {
			log.SetLevel(level)
		} else {
			log.SetLevel(log.LevelWarn)
		}
		return nil
	}

	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("创建日志目录失败: %w", err)
		}
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}
	log.SetOutputWithLevel(file, level)
	logHandle = file
	return nil
}

// nodeOptions 把命令行参数映射为节点选项
func nodeOptions() []beam.Option {
	var opts []beam.Option
	if dataDir != "" {
		opts = append(opts, beam.WithDataDir(dataDir))
	}
	if identityFile != "" {
		opts = append(opts, beam.WithIdentityFile(identityFile))
	}
	if authMode != "" {
		opts = append(opts, beam.WithAuthMode(authMode))
	}
	if listenAddr != "" {
		opts = append(opts, beam.WithListenAddr(listenAddr))
	}
	return opts
}

// waitForSignal 等待退出信号
func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}
