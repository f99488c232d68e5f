// Package identity 提供节点身份管理
//
// 身份模块负责：
// - Ed25519 密钥对生成和加载
// - NodeID 派生（NodeID 即原始公钥字节）
// - 签名和验证
// - 身份持久化（PEM 文件）
package identity

import (
	"crypto/ed25519"
	"io"

	"github.com/dep2p/go-beam/pkg/lib/crypto"
	"github.com/dep2p/go-beam/pkg/types"
)

// ============================================================================
//                              Identity
// ============================================================================

// Identity 节点身份
//
// 持有长期密钥对与派生的 NodeID。创建后不可变，
// 进程生命周期内所有 TLS 握手共享同一个身份。
type Identity struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	nodeID     types.NodeID
}

// NewIdentity 从私钥创建身份
//
// 公钥与 NodeID 由私钥确定性派生。
func NewIdentity(priv ed25519.PrivateKey) (*Identity, error) {
	pub, err := crypto.PublicKeyOf(priv)
	if err != nil {
		return nil, err
	}
	nodeID, err := types.NodeIDFromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &Identity{
		privateKey: priv,
		publicKey:  pub,
		nodeID:     nodeID,
	}, nil
}

// Generate 生成新的随机身份
//
// src 为 nil 时使用 crypto/rand.Reader。
func Generate(src io.Reader) (*Identity, error) {
	priv, err := crypto.GenerateKey(src)
	if err != nil {
		return nil, err
	}
	return NewIdentity(priv)
}

// ID 返回节点 ID
func (i *Identity) ID() types.NodeID {
	return i.nodeID
}

// PublicKey 返回公钥
func (i *Identity) PublicKey() ed25519.PublicKey {
	return i.publicKey
}

// PrivateKey 返回私钥
func (i *Identity) PrivateKey() ed25519.PrivateKey {
	return i.privateKey
}

// Sign 使用身份私钥签名数据
func (i *Identity) Sign(data []byte) []byte {
	return ed25519.Sign(i.privateKey, data)
}

// Verify 验证某公钥对数据的签名
func Verify(pub ed25519.PublicKey, data, sig []byte) bool {
	if len(sig) != crypto.SignatureSize || len(pub) != crypto.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, data, sig)
}
