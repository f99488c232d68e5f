package beam

import (
	"fmt"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-beam/internal/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 数据目录（身份密钥与内容索引的默认存放位置）
	dataDir string

	// 身份配置
	identityFile string
	authMode     string

	// 监听地址
	listenAddr string

	// 内容索引配置
	inMemory bool

	// 日志配置
	logFile string

	// 时钟（测试注入，为空时使用真实时钟）
	clk clock.Clock
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{}
}

// toInternalConfig 转换为内部配置
func (o *options) toInternalConfig() *config.Config {
	cfg := config.NewConfig()

	// 日志文件配置（必须在最早期应用）
	cfg.LogFile = o.logFile

	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.identityFile != "" {
		cfg.Identity.KeyFile = o.identityFile
	}
	if o.authMode != "" {
		cfg.Identity.AuthMode = o.authMode
	}
	if o.listenAddr != "" {
		cfg.Transport.ListenAddr = o.listenAddr
	}
	if o.inMemory {
		cfg.Blob.InMemory = true
	}

	return cfg
}

// ============================================================================
//                              数据目录选项
// ============================================================================

// WithDataDir 设置数据目录
//
// 身份密钥与内容索引默认存放在该目录下。
// 未设置时节点使用临时身份和内存索引，进程退出即失效。
//
//	beam.New(ctx, beam.WithDataDir("~/.beam"))
func WithDataDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return fmt.Errorf("数据目录不能为空")
		}
		o.dataDir = dir
		return nil
	}
}

// WithInMemory 使用内存索引
//
// 内容索引不落盘，适用于纯拉取场景和测试。
func WithInMemory() Option {
	return func(o *options) error {
		o.inMemory = true
		return nil
	}
}

// ============================================================================
//                              身份选项
// ============================================================================

// WithIdentityFile 从文件加载身份密钥
//
// 如果文件不存在，将自动生成新的身份密钥并保存。
// 优先级高于 DataDir 下的默认密钥文件。
//
//	beam.New(ctx, beam.WithIdentityFile("~/.beam/identity.pem"))
func WithIdentityFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return fmt.Errorf("身份密钥文件路径不能为空")
		}
		o.identityFile = path
		return nil
	}
}

// WithAuthMode 设置 TLS 身份认证模式
//
// 可选值：
//   - "certificate": 自签名证书承载公钥（默认，兼容标准 TLS 栈）
//   - "raw": 裸公钥（RFC 7250，需要传输层支持）
func WithAuthMode(mode string) Option {
	return func(o *options) error {
		switch mode {
		case "certificate", "raw":
		default:
			return fmt.Errorf("未知的认证模式: %q（可选 certificate、raw）", mode)
		}
		o.authMode = mode
		return nil
	}
}

// ============================================================================
//                              网络选项
// ============================================================================

// WithListenAddr 设置 UDP 监听地址
//
// 格式为 host:port，port 为 0 时随机分配。
//
//	beam.New(ctx, beam.WithListenAddr("0.0.0.0:4242"))
func WithListenAddr(addr string) Option {
	return func(o *options) error {
		if addr == "" {
			return fmt.Errorf("监听地址不能为空")
		}
		o.listenAddr = addr
		return nil
	}
}

// ============================================================================
//                              日志选项
// ============================================================================

// WithLogFile 设置日志文件路径
//
// 为空时日志输出到 stderr。
func WithLogFile(path string) Option {
	return func(o *options) error {
		o.logFile = path
		return nil
	}
}

// ============================================================================
//                              测试选项
// ============================================================================

// WithClock 注入时钟
//
// 进度与速率统计默认使用真实时钟，测试可注入 mock 时钟。
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		if clk == nil {
			return fmt.Errorf("时钟不能为空")
		}
		o.clk = clk
		return nil
	}
}
