// Package crypto 提供 Beam 的密钥原语
//
// Beam 的节点身份只使用 Ed25519。本包封装标准库 crypto/ed25519，
// 提供字节序列化、多格式反序列化与常量时间比较。
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
)

// Ed25519 密钥常量
const (
	// PrivateKeySize Ed25519 私钥大小（64 字节）
	PrivateKeySize = ed25519.PrivateKeySize
	// PublicKeySize Ed25519 公钥大小（32 字节）
	PublicKeySize = ed25519.PublicKeySize
	// SignatureSize Ed25519 签名大小（64 字节）
	SignatureSize = ed25519.SignatureSize
	// SeedSize Ed25519 种子大小（32 字节）
	SeedSize = ed25519.SeedSize
)

// ============================================================================
//                              生成与派生
// ============================================================================

// GenerateKey 生成新的 Ed25519 密钥对
//
// src 为 nil 时使用 crypto/rand.Reader。
func GenerateKey(src io.Reader) (ed25519.PrivateKey, error) {
	if src == nil {
		src = rand.Reader
	}
	_, priv, err := ed25519.GenerateKey(src)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate ed25519 key: %w", err)
	}
	return priv, nil
}

// PublicKeyOf 返回私钥对应的公钥
func PublicKeyOf(priv ed25519.PrivateKey) (ed25519.PublicKey, error) {
	if len(priv) != PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeySize, PrivateKeySize, len(priv))
	}
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, ErrInvalidPrivateKey
	}
	return pub, nil
}

// ============================================================================
//                              序列化与反序列化
// ============================================================================

// UnmarshalPublicKey 从字节反序列化 Ed25519 公钥
func UnmarshalPublicKey(data []byte) (ed25519.PublicKey, error) {
	if len(data) != PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeySize, PublicKeySize, len(data))
	}

	k := make([]byte, PublicKeySize)
	copy(k, data)
	return ed25519.PublicKey(k), nil
}

// UnmarshalPrivateKey 从字节反序列化 Ed25519 私钥
//
// 支持三种格式：
//   - 32 字节：仅私钥种子
//   - 64 字节：完整私钥（私钥种子 + 公钥）
//   - 96 字节：带冗余公钥的格式（兼容 libp2p 导出的密钥）
func UnmarshalPrivateKey(data []byte) (ed25519.PrivateKey, error) {
	switch len(data) {
	case PrivateKeySize + PublicKeySize:
		// 96 字节格式：64 字节私钥 + 32 字节冗余公钥
		// 验证冗余公钥是否匹配
		redundantPk := data[PrivateKeySize:]
		pk := data[PrivateKeySize-PublicKeySize : PrivateKeySize]
		if subtle.ConstantTimeCompare(pk, redundantPk) == 0 {
			return nil, fmt.Errorf("%w: redundant public key mismatch", ErrInvalidPrivateKey)
		}
		k := make([]byte, PrivateKeySize)
		copy(k, data[:PrivateKeySize])
		return ed25519.PrivateKey(k), nil

	case PrivateKeySize:
		// 64 字节格式：完整私钥
		k := make([]byte, PrivateKeySize)
		copy(k, data)
		return ed25519.PrivateKey(k), nil

	case SeedSize:
		// 32 字节格式：仅种子，派生完整私钥
		return ed25519.NewKeyFromSeed(data), nil

	default:
		return nil, fmt.Errorf("%w: expected %d, %d or %d bytes, got %d",
			ErrInvalidKeySize, SeedSize, PrivateKeySize, PrivateKeySize+PublicKeySize, len(data))
	}
}

// ============================================================================
//                              比较
// ============================================================================

// PublicKeysEqual 常量时间比较两个公钥
func PublicKeysEqual(a, b ed25519.PublicKey) bool {
	if len(a) != PublicKeySize || len(b) != PublicKeySize {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// PrivateKeysEqual 常量时间比较两个私钥
func PrivateKeysEqual(a, b ed25519.PrivateKey) bool {
	if len(a) != PrivateKeySize || len(b) != PrivateKeySize {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
