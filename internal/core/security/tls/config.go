package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/dep2p/go-beam/pkg/types"
)

// defaultNextProtos QUIC 传输的默认 ALPN 标识
var defaultNextProtos = []string{"beam/1"}

// ConfigBuilder 从凭证解析器构建客户端与服务端 TLS 配置
//
// 同一个解析器同时服务两个连接角色：服务端配置经 GetCertificate
// 绑定解析器，客户端配置经 GetClientCertificate 绑定，
// 两条路径返回的是同一份凭证。
type ConfigBuilder struct {
	resolver     *CredentialResolver
	minVersion   uint16
	nextProtos   []string
	sessionCache tls.ClientSessionCache
}

// NewConfigBuilder 创建 TLS 配置构建器
func NewConfigBuilder(resolver *CredentialResolver) *ConfigBuilder {
	return &ConfigBuilder{
		resolver:   resolver,
		minVersion: tls.VersionTLS13,
		nextProtos: defaultNextProtos,
	}
}

// WithNextProtos 设置 ALPN 协议列表
func (b *ConfigBuilder) WithNextProtos(protos ...string) *ConfigBuilder {
	b.nextProtos = protos
	return b
}

// WithSessionCache 设置客户端会话缓存（用于 0-RTT 重连）
func (b *ConfigBuilder) WithSessionCache(cache tls.ClientSessionCache) *ConfigBuilder {
	b.sessionCache = cache
	return b
}

// BuildServerConfig 构建服务端 TLS 配置
//
// 要求客户端出示证书并以自定义回调验证。入站时对端身份未知，
// expectedID 为空，验证仅做公钥派生与扩展一致性检查。
func (b *ConfigBuilder) BuildServerConfig() (*tls.Config, error) {
	if err := b.checkMode(); err != nil {
		return nil, err
	}

	return &tls.Config{
		GetCertificate: b.resolver.GetCertificate,
		MinVersion:     b.minVersion,
		NextProtos:     b.nextProtos,
		// P2P 场景使用自签名证书，需要自定义验证
		ClientAuth:            tls.RequireAnyClientCert,
		InsecureSkipVerify:    true, //nolint:gosec // G402: 使用 VerifyPeerCertificate 进行自定义验证
		VerifyPeerCertificate: verifyCallback(types.EmptyNodeID),
	}, nil
}

// BuildClientConfig 构建客户端 TLS 配置
//
// expectedServerID 为拨号目标的 NodeID，握手时校验服务端证书
// 公钥派生值与之一致；为空则仅做公钥派生与扩展一致性检查。
func (b *ConfigBuilder) BuildClientConfig(expectedServerID types.NodeID) (*tls.Config, error) {
	if err := b.checkMode(); err != nil {
		return nil, err
	}

	config := &tls.Config{
		GetClientCertificate: b.resolver.GetClientCertificate,
		MinVersion:           b.minVersion,
		NextProtos:           b.nextProtos,
		// P2P 场景使用自签名证书，需要自定义验证
		InsecureSkipVerify:    true, //nolint:gosec // G402: 使用 VerifyPeerCertificate 进行自定义验证
		VerifyPeerCertificate: verifyCallback(expectedServerID),
	}

	if b.sessionCache != nil {
		config.ClientSessionCache = b.sessionCache
	}

	return config, nil
}

// checkMode 校验凭证形态能否由标准 TLS 栈承载
//
// crypto/tls 不支持 RFC 7250 裸公钥扩展，裸公钥凭证无法进入握手。
func (b *ConfigBuilder) checkMode() error {
	if b.resolver.OnlyRawPublicKeys() {
		return fmt.Errorf("%w: 标准 TLS 栈不支持裸公钥握手（RFC 7250）", ErrTLSConfiguration)
	}
	return nil
}

// verifyCallback 将 VerifyPeerCertificate 包装为 tls.Config 回调
func verifyCallback(expectedID types.NodeID) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		return VerifyPeerCertificate(rawCerts, expectedID)
	}
}
