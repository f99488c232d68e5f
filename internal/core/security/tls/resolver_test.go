package tls

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestKey 生成测试用 Ed25519 私钥
func newTestKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err, "生成测试密钥失败")
	return priv
}

// fixedTestKey 返回固定种子派生的私钥，用于可复现场景
func fixedTestKey() ed25519.PrivateKey {
	seed := bytes.Repeat([]byte{0x42}, ed25519.SeedSize)
	return ed25519.NewKeyFromSeed(seed)
}

func TestNewCredentialResolver_CertificateMode(t *testing.T) {
	priv := newTestKey(t)
	pub := priv.Public().(ed25519.PublicKey)

	resolver, err := NewCredentialResolver(AuthModeCertificate, priv)
	require.NoError(t, err, "证书模式构造失败")

	assert.Equal(t, AuthModeCertificate, resolver.Mode())
	assert.False(t, resolver.OnlyRawPublicKeys(), "证书模式不应声明仅裸公钥")
	assert.True(t, resolver.HasCredential())

	// 凭证链恰好一项，证书主体公钥即节点公钥
	cred := resolver.Credential()
	require.Len(t, cred.Certificate, 1, "凭证链应恰好一项")

	leaf, err := x509.ParseCertificate(cred.Certificate[0])
	require.NoError(t, err, "凭证链首项应为可解析证书")

	certPub, ok := leaf.PublicKey.(ed25519.PublicKey)
	require.True(t, ok, "证书公钥应为 Ed25519")
	assert.Equal(t, []byte(pub), []byte(certPub), "证书主体公钥应等于节点公钥")

	// NodeID 与公钥字节一致
	assert.Equal(t, []byte(pub), resolver.NodeID().Bytes())
}

func TestNewCredentialResolver_RawKeyMode(t *testing.T) {
	priv := newTestKey(t)
	pub := priv.Public().(ed25519.PublicKey)

	resolver, err := NewCredentialResolver(AuthModeRawKey, priv)
	require.NoError(t, err, "裸公钥模式构造失败")

	assert.Equal(t, AuthModeRawKey, resolver.Mode())
	assert.True(t, resolver.OnlyRawPublicKeys(), "裸公钥模式应声明仅裸公钥")
	assert.True(t, resolver.HasCredential())

	// 链中唯一条目即原始公钥字节
	cred := resolver.Credential()
	require.Len(t, cred.Certificate, 1, "凭证链应恰好一项")
	assert.Equal(t, []byte(pub), cred.Certificate[0], "链中条目应为原始公钥字节")
	assert.Nil(t, cred.Leaf, "裸公钥凭证不应有可解析证书")

	// 链条目 == 签名器公钥 == NodeID
	signerPub := cred.PrivateKey.(ed25519.PrivateKey).Public().(ed25519.PublicKey)
	assert.Equal(t, cred.Certificate[0], []byte(signerPub))
	assert.Equal(t, cred.Certificate[0], resolver.NodeID().Bytes())
}

func TestNewCredentialResolver_Idempotent(t *testing.T) {
	priv := newTestKey(t)

	t.Run("certificate", func(t *testing.T) {
		r1, err := NewCredentialResolver(AuthModeCertificate, priv)
		require.NoError(t, err)
		r2, err := NewCredentialResolver(AuthModeCertificate, priv)
		require.NoError(t, err)

		// 签名字节可以不同，但声称的身份必须相同
		leaf1, err := x509.ParseCertificate(r1.Credential().Certificate[0])
		require.NoError(t, err)
		leaf2, err := x509.ParseCertificate(r2.Credential().Certificate[0])
		require.NoError(t, err)
		assert.Equal(t, leaf1.PublicKey, leaf2.PublicKey, "两次构造的证书公钥应一致")
		assert.Equal(t, r1.NodeID(), r2.NodeID())
	})

	t.Run("raw", func(t *testing.T) {
		r1, err := NewCredentialResolver(AuthModeRawKey, priv)
		require.NoError(t, err)
		r2, err := NewCredentialResolver(AuthModeRawKey, priv)
		require.NoError(t, err)
		assert.Equal(t, r1.Credential().Certificate[0], r2.Credential().Certificate[0],
			"两次构造的公钥字节应一致")
	})
}

func TestCredentialResolver_RoleSymmetry(t *testing.T) {
	priv := newTestKey(t)
	resolver, err := NewCredentialResolver(AuthModeCertificate, priv)
	require.NoError(t, err)

	// 客户端角色：各种提示参数都返回同一凭证
	clientHints := []*tls.CertificateRequestInfo{
		nil,
		{},
		{
			AcceptableCAs:    [][]byte{[]byte("unrelated-ca")},
			SignatureSchemes: []tls.SignatureScheme{tls.PSSWithSHA256},
		},
	}
	for _, hint := range clientHints {
		cred, err := resolver.GetClientCertificate(hint)
		require.NoError(t, err, "客户端查询不应失败")
		assert.Same(t, resolver.Credential(), cred, "客户端查询应返回同一凭证实例")
	}

	// 服务端角色：SNI 等提示同样被忽略
	serverHints := []*tls.ClientHelloInfo{
		nil,
		{},
		{ServerName: "unrelated.example.com"},
	}
	for _, hint := range serverHints {
		cred, err := resolver.GetCertificate(hint)
		require.NoError(t, err, "服务端查询不应失败")
		assert.Same(t, resolver.Credential(), cred, "服务端查询应返回同一凭证实例")
	}
}

func TestCredentialResolver_CapabilityConsistency(t *testing.T) {
	priv := newTestKey(t)

	certResolver, err := NewCredentialResolver(AuthModeCertificate, priv)
	require.NoError(t, err)
	rawResolver, err := NewCredentialResolver(AuthModeRawKey, priv)
	require.NoError(t, err)

	// 重复查询结果恒定
	for i := 0; i < 8; i++ {
		assert.False(t, certResolver.OnlyRawPublicKeys())
		assert.True(t, rawResolver.OnlyRawPublicKeys())
		assert.True(t, certResolver.HasCredential())
		assert.True(t, rawResolver.HasCredential())
	}
}

func TestNewCredentialResolver_InvalidKey(t *testing.T) {
	tests := []struct {
		name string
		key  ed25519.PrivateKey
	}{
		{"nil 私钥", nil},
		{"过短私钥", make(ed25519.PrivateKey, 16)},
		{"过长私钥", make(ed25519.PrivateKey, 128)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []AuthMode{AuthModeCertificate, AuthModeRawKey} {
				_, err := NewCredentialResolver(mode, tt.key)
				require.Error(t, err, "非法私钥应构造失败")
				assert.ErrorIs(t, err, ErrTLSConfiguration)
			}
		})
	}
}

func TestNewCredentialResolver_UnknownMode(t *testing.T) {
	priv := newTestKey(t)

	for _, mode := range []AuthMode{0, 99} {
		_, err := NewCredentialResolver(mode, priv)
		require.Error(t, err, "未知模式应构造失败")
		assert.ErrorIs(t, err, ErrTLSConfiguration)
	}
}

func TestCredentialResolver_FixedKeyScenarios(t *testing.T) {
	priv := fixedTestKey()
	pub := priv.Public().(ed25519.PublicKey)

	t.Run("raw", func(t *testing.T) {
		resolver, err := NewCredentialResolver(AuthModeRawKey, priv)
		require.NoError(t, err)
		assert.Equal(t, []byte(pub), resolver.Credential().Certificate[0],
			"凭证公钥应等于独立计算的公钥")
		assert.True(t, resolver.OnlyRawPublicKeys())
	})

	t.Run("certificate", func(t *testing.T) {
		resolver, err := NewCredentialResolver(AuthModeCertificate, priv)
		require.NoError(t, err)
		assert.False(t, resolver.OnlyRawPublicKeys())

		leaf, err := x509.ParseCertificate(resolver.Credential().Certificate[0])
		require.NoError(t, err)
		assert.Equal(t, []byte(pub), []byte(leaf.PublicKey.(ed25519.PublicKey)),
			"证书主体公钥应等于独立计算的公钥")
	})
}

func TestParseAuthMode(t *testing.T) {
	tests := []struct {
		input   string
		want    AuthMode
		wantErr bool
	}{
		{"certificate", AuthModeCertificate, false},
		{"raw", AuthModeRawKey, false},
		{"", 0, true},
		{"noise", 0, true},
		{"Certificate", 0, true},
	}

	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			mode, err := ParseAuthMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrTLSConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
			assert.True(t, mode.Valid())
			assert.Equal(t, tt.input, mode.String())
		})
	}
}

func TestAuthMode_String(t *testing.T) {
	assert.Equal(t, "certificate", AuthModeCertificate.String())
	assert.Equal(t, "raw", AuthModeRawKey.String())
	assert.Equal(t, "unknown(0)", AuthMode(0).String())
	assert.False(t, AuthMode(0).Valid())
}
