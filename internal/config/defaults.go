package config

import "time"

// ============================================================================
//                              预设默认值
// ============================================================================

// 身份默认值
const (
	// DefaultAuthMode 默认 TLS 认证模式
	DefaultAuthMode = "certificate"

	// DefaultKeyFileName 默认身份密钥文件名（相对 DataDir）
	DefaultKeyFileName = "identity.pem"
)

// 传输默认值
const (
	// DefaultListenAddr 默认监听地址（随机端口）
	DefaultListenAddr = "0.0.0.0:0"

	// DefaultDialTimeout 默认拨号超时
	DefaultDialTimeout = 10 * time.Second

	// DefaultQUICMaxIdleTimeout 默认 QUIC 最大空闲超时
	DefaultQUICMaxIdleTimeout = 30 * time.Second

	// DefaultQUICKeepAlivePeriod 默认 QUIC 保活周期
	DefaultQUICKeepAlivePeriod = 15 * time.Second

	// DefaultQUICMaxIncomingStreams 默认 QUIC 最大入站流数
	DefaultQUICMaxIncomingStreams = 256
)

// 内容存储默认值
const (
	// DefaultOutboardCacheSize 默认校验树缓存条目数
	DefaultOutboardCacheSize = 128

	// DefaultIndexDirName 默认索引目录名（相对 DataDir）
	DefaultIndexDirName = "blobs.db"
)

// 传输协议默认值
const (
	// DefaultRequestTimeout 默认请求超时
	DefaultRequestTimeout = 30 * time.Second

	// DefaultEventBuffer 默认事件通道缓冲
	DefaultEventBuffer = 64
)

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		KeyFile:  "",
		AuthMode: DefaultAuthMode,
	}
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ListenAddr:         DefaultListenAddr,
		DialTimeout:        DefaultDialTimeout,
		MaxIdleTimeout:     DefaultQUICMaxIdleTimeout,
		KeepAlivePeriod:    DefaultQUICKeepAlivePeriod,
		MaxIncomingStreams: DefaultQUICMaxIncomingStreams,
	}
}

// DefaultBlobConfig 返回默认内容存储配置
func DefaultBlobConfig() BlobConfig {
	return BlobConfig{
		InMemory:          false,
		SyncWrites:        false,
		OutboardCacheSize: DefaultOutboardCacheSize,
	}
}

// DefaultTransferConfig 返回默认传输协议配置
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{
		RequestTimeout: DefaultRequestTimeout,
		EventBuffer:    DefaultEventBuffer,
	}
}
