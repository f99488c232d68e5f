package tls

import "errors"

// 凭证构造阶段错误，全部为致命错误，调用方不应重试
var (
	// ErrCertificateGeneration 证书生成失败（证书模式）
	ErrCertificateGeneration = errors.New("tls: certificate generation failed")

	// ErrTLSConfiguration 密钥或签名方案不被支持，或密钥解析失败
	ErrTLSConfiguration = errors.New("tls: configuration error")

	// ErrInconsistentKeys 签名器公钥与凭证链公钥不一致
	ErrInconsistentKeys = errors.New("tls: inconsistent keys")
)

// 对端证书验证阶段错误
var (
	// ErrNoCertificate 对端未提供证书
	ErrNoCertificate = errors.New("tls: no certificate provided")

	// ErrNodeIDMismatch 对端 NodeID 与期望不匹配
	ErrNodeIDMismatch = errors.New("tls: node ID mismatch")

	// ErrInvalidExtension 证书的 NodeID 扩展无效
	ErrInvalidExtension = errors.New("tls: invalid node ID extension")
)
