package tls

import (
	"bytes"
	"crypto"
	"crypto/ed25519"
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/dep2p/go-beam/pkg/types"
)

// ============================================================================
//                              认证模式
// ============================================================================

// AuthMode 表示 TLS 握手中出示身份的方式
//
// 取值在配置阶段选定一次，凭证生命周期内不变，不参与握手协商。
type AuthMode uint8

const (
	// AuthModeCertificate 出示自签名证书，证书主体公钥即节点公钥
	AuthModeCertificate AuthMode = iota + 1

	// AuthModeRawKey 直接出示原始公钥字节，不做证书包装
	AuthModeRawKey
)

// ParseAuthMode 解析配置中的认证模式字符串
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "certificate":
		return AuthModeCertificate, nil
	case "raw":
		return AuthModeRawKey, nil
	default:
		return 0, fmt.Errorf("%w: 未知认证模式 %q", ErrTLSConfiguration, s)
	}
}

// String 返回认证模式的配置表示
func (m AuthMode) String() string {
	switch m {
	case AuthModeCertificate:
		return "certificate"
	case AuthModeRawKey:
		return "raw"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// Valid 报告认证模式是否为已定义取值
func (m AuthMode) Valid() bool {
	return m == AuthModeCertificate || m == AuthModeRawKey
}

// ============================================================================
//                              凭证解析器
// ============================================================================

// CredentialResolver 持有进程唯一的 TLS 凭证
//
// 凭证在构造时一次生成，此后以只读方式共享给所有并发握手。
// 无论客户端角色还是服务端角色，无论握手方给出何种提示参数，
// 查询始终返回同一份凭证。构造成功后查询不存在失败路径。
type CredentialResolver struct {
	mode       AuthMode
	credential *tls.Certificate
	nodeID     types.NodeID
}

// NewCredentialResolver 从认证模式和节点私钥构造凭证解析器
//
// 全部计算在构造期完成。任何失败都是致命的：相同输入重试
// 必然得到相同结果，调用方应放弃启动而不是带着残缺身份运行。
func NewCredentialResolver(mode AuthMode, secretKey ed25519.PrivateKey) (*CredentialResolver, error) {
	if len(secretKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: 私钥长度无效: %d", ErrTLSConfiguration, len(secretKey))
	}

	var (
		credential *tls.Certificate
		err        error
	)
	switch mode {
	case AuthModeCertificate:
		credential, err = GenerateCertificate(secretKey)
	case AuthModeRawKey:
		credential, err = newRawKeyCredential(secretKey)
	default:
		return nil, fmt.Errorf("%w: 未知认证模式: %d", ErrTLSConfiguration, mode)
	}
	if err != nil {
		return nil, err
	}

	// 后置校验：链中唯一条目携带的公钥必须等于签名器公钥
	if err := verifyCredentialConsistency(mode, credential); err != nil {
		return nil, err
	}

	pub, ok := secretKey.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: 无法从私钥恢复公钥", ErrInconsistentKeys)
	}
	nodeID, err := types.NodeIDFromPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTLSConfiguration, err)
	}

	return &CredentialResolver{
		mode:       mode,
		credential: credential,
		nodeID:     nodeID,
	}, nil
}

// newRawKeyCredential 构造裸公钥模式的凭证
//
// 私钥经 PKCS#8 编码往返一次，归一化为 TLS 签名抽象期望的形态。
// 对任何长度合法的 Ed25519 私钥，该往返必须成功，失败属于配置错误。
func newRawKeyCredential(secretKey ed25519.PrivateKey) (*tls.Certificate, error) {
	der, err := x509.MarshalPKCS8PrivateKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: 编码私钥失败: %v", ErrTLSConfiguration, err)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析私钥失败: %v", ErrTLSConfiguration, err)
	}

	signer, ok := parsed.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: 私钥不支持签名", ErrTLSConfiguration)
	}

	pub, ok := signer.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: 无法从签名器恢复公钥", ErrInconsistentKeys)
	}

	// 链中唯一条目即原始公钥字节，不是可解析的证书
	return &tls.Certificate{
		Certificate: [][]byte{pub},
		PrivateKey:  signer,
	}, nil
}

// verifyCredentialConsistency 校验凭证链首项公钥与签名器公钥一致
func verifyCredentialConsistency(mode AuthMode, credential *tls.Certificate) error {
	if len(credential.Certificate) != 1 {
		return fmt.Errorf("%w: 凭证链长度为 %d，期望 1", ErrInconsistentKeys, len(credential.Certificate))
	}

	signer, ok := credential.PrivateKey.(crypto.Signer)
	if !ok {
		return fmt.Errorf("%w: 凭证私钥不支持签名", ErrTLSConfiguration)
	}
	signerPub, ok := signer.Public().(ed25519.PublicKey)
	if !ok {
		return fmt.Errorf("%w: 无法从签名器恢复公钥", ErrInconsistentKeys)
	}

	var chainPub []byte
	switch mode {
	case AuthModeCertificate:
		leaf, err := x509.ParseCertificate(credential.Certificate[0])
		if err != nil {
			return fmt.Errorf("%w: 解析凭证证书失败: %v", ErrInconsistentKeys, err)
		}
		certPub, ok := leaf.PublicKey.(ed25519.PublicKey)
		if !ok {
			return fmt.Errorf("%w: 证书公钥类型错误", ErrInconsistentKeys)
		}
		chainPub = certPub
	case AuthModeRawKey:
		chainPub = credential.Certificate[0]
	}

	if !bytes.Equal(chainPub, signerPub) {
		return fmt.Errorf("%w: 链公钥与签名器公钥不一致", ErrInconsistentKeys)
	}
	return nil
}

// ============================================================================
//                              握手时查询
// ============================================================================

// GetClientCertificate 响应服务端的证书请求
//
// 忽略服务端给出的可接受 CA 列表与签名方案提示，始终返回唯一凭证。
// 节点只有一个身份，没有可供选择的余地。
// 签名与 tls.Config.GetClientCertificate 一致，可直接绑定。
func (r *CredentialResolver) GetClientCertificate(_ *tls.CertificateRequestInfo) (*tls.Certificate, error) {
	return r.credential, nil
}

// GetCertificate 响应客户端的 ClientHello
//
// 忽略 SNI 在内的全部提示参数，始终返回唯一凭证。
// 签名与 tls.Config.GetCertificate 一致，可直接绑定。
func (r *CredentialResolver) GetCertificate(_ *tls.ClientHelloInfo) (*tls.Certificate, error) {
	return r.credential, nil
}

// OnlyRawPublicKeys 报告凭证是否仅以裸公钥形式出示
//
// 返回 true 当且仅当构造模式为 AuthModeRawKey，任意次查询结果一致。
func (r *CredentialResolver) OnlyRawPublicKeys() bool {
	return r.mode == AuthModeRawKey
}

// HasCredential 报告是否持有凭证
//
// 构造成功的解析器必然持有凭证，恒为 true。
func (r *CredentialResolver) HasCredential() bool {
	return r.credential != nil
}

// Mode 返回构造时选定的认证模式
func (r *CredentialResolver) Mode() AuthMode {
	return r.mode
}

// Credential 返回共享的只读凭证
//
// 调用方不得修改返回值，所有并发握手共享同一实例。
func (r *CredentialResolver) Credential() *tls.Certificate {
	return r.credential
}

// NodeID 返回凭证绑定的节点标识
func (r *CredentialResolver) NodeID() types.NodeID {
	return r.nodeID
}
