// Package config 提供 beam 配置管理层
//
// config 包负责：
// - 定义内部配置结构
// - 提供默认值
// - 配置校验
//
// 用户通过根包的 Option 函数修改配置，组件通过 Fx 注入读取。
package config

import (
	"time"
)

// Config 内部配置结构
//
// 这是详细的内部配置结构，用于组件初始化。
type Config struct {
	// DataDir 数据目录
	// 身份密钥、内容索引默认都存放在该目录下
	DataDir string

	// LogFile 日志文件路径
	// 为空时输出到 stderr，非空时输出到指定文件
	LogFile string

	// Identity 身份配置
	Identity IdentityConfig

	// Transport 传输配置
	Transport TransportConfig

	// Blob 内容存储配置
	Blob BlobConfig

	// Transfer 传输协议配置
	Transfer TransferConfig
}

// IdentityConfig 身份配置
type IdentityConfig struct {
	// KeyFile 身份私钥文件路径（PEM）
	// 为空时使用临时身份（不持久化，进程退出即失效）
	KeyFile string

	// AuthMode TLS 身份认证模式
	// 可选值："certificate"（自签名证书）| "raw"（裸公钥）
	AuthMode string
}

// TransportConfig 传输配置
type TransportConfig struct {
	// ListenAddr UDP 监听地址（host:port，port 为 0 时随机分配）
	ListenAddr string

	// DialTimeout 拨号超时
	DialTimeout time.Duration

	// MaxIdleTimeout QUIC 最大空闲超时
	MaxIdleTimeout time.Duration

	// KeepAlivePeriod QUIC 保活周期
	KeepAlivePeriod time.Duration

	// MaxIncomingStreams QUIC 最大入站流数
	MaxIncomingStreams int64
}

// BlobConfig 内容存储配置
type BlobConfig struct {
	// IndexPath 内容索引数据库目录（BadgerDB）
	// 为空时从 DataDir 派生
	IndexPath string

	// InMemory 使用内存索引（fetch-only 场景，不落盘）
	InMemory bool

	// SyncWrites BadgerDB 同步写入
	SyncWrites bool

	// OutboardCacheSize 校验树缓存条目数（LRU）
	OutboardCacheSize int
}

// TransferConfig 传输协议配置
type TransferConfig struct {
	// RequestTimeout 单个请求的超时
	RequestTimeout time.Duration

	// EventBuffer 进度事件通道缓冲大小
	EventBuffer int
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Identity:  DefaultIdentityConfig(),
		Transport: DefaultTransportConfig(),
		Blob:      DefaultBlobConfig(),
		Transfer:  DefaultTransferConfig(),
	}
}
