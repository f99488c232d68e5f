package tls

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
	"time"

	"github.com/dep2p/go-beam/pkg/types"
)

// nodeIDExtensionOID 证书中携带节点公钥的扩展标识（私有企业编号段）
var nodeIDExtensionOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 53594, 2, 1}

const (
	// certValidity 自签名证书有效期
	certValidity = 365 * 24 * time.Hour

	// certClockSkew 生效时间回拨量，容忍节点间时钟偏差
	certClockSkew = time.Hour
)

// ============================================================================
//                              证书生成
// ============================================================================

// GenerateCertificate 从节点私钥生成自签名 TLS 证书
//
// 证书主体公钥即节点公钥，同时在扩展中冗余携带一份原始公钥字节。
// 对同一私钥重复调用，签名字节会变化，但证书声称的身份不变。
// 任何编码或签名失败都包装为 ErrCertificateGeneration。
func GenerateCertificate(secretKey ed25519.PrivateKey) (*tls.Certificate, error) {
	pub, ok := secretKey.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: 无法从私钥恢复公钥", ErrCertificateGeneration)
	}

	nodeID, err := types.NodeIDFromPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateGeneration, err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(now.UnixNano()),
		Subject: pkix.Name{
			Organization: []string{"Beam"},
			CommonName:   fmt.Sprintf("Beam Node %s", nodeID.ShortString()),
		},
		NotBefore: now.Add(-certClockSkew),
		NotAfter:  now.Add(certValidity),

		// Ed25519 仅用于签名
		KeyUsage: x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
			x509.ExtKeyUsageClientAuth,
		},
		BasicConstraintsValid: true,

		ExtraExtensions: []pkix.Extension{
			{
				Id:    nodeIDExtensionOID,
				Value: nodeID.Bytes(),
			},
		},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, pub, secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCertificateGeneration, err)
	}

	leaf, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析生成的证书失败: %v", ErrCertificateGeneration, err)
	}

	return &tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  secretKey,
		Leaf:        leaf,
	}, nil
}

// ============================================================================
//                              对端验证
// ============================================================================

// DeriveNodeIDFromCert 从证书主体公钥派生 NodeID
//
// 派生值不可伪造：对端必须在握手中证明持有对应私钥，
// 因此证书公钥是对端身份的唯一信任根。
func DeriveNodeIDFromCert(cert *x509.Certificate) (types.NodeID, error) {
	pub, ok := cert.PublicKey.(ed25519.PublicKey)
	if !ok {
		return types.EmptyNodeID, fmt.Errorf("证书公钥不是 Ed25519: %T", cert.PublicKey)
	}
	return types.NodeIDFromPublicKey(pub)
}

// VerifyPeerCertificate 验证对端出示的证书
//
// 验证逻辑：
//  1. 从证书公钥派生 NodeID（始终执行，不可伪造）
//  2. 若证书带有 NodeID 扩展，校验扩展值等于派生值（始终执行）
//  3. expectedID 非空时，校验派生值与其一致
//  4. 校验证书有效期
func VerifyPeerCertificate(rawCerts [][]byte, expectedID types.NodeID) error {
	if len(rawCerts) == 0 {
		return ErrNoCertificate
	}

	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("解析对端证书失败: %w", err)
	}

	// 1. 从证书公钥派生 NodeID
	derivedID, err := DeriveNodeIDFromCert(cert)
	if err != nil {
		return err
	}

	// 2. 校验 NodeID 扩展与派生值一致
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(nodeIDExtensionOID) {
			if len(ext.Value) != 32 {
				return fmt.Errorf("%w: 长度 %d", ErrInvalidExtension, len(ext.Value))
			}
			extensionID, err := types.NodeIDFromBytes(ext.Value)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidExtension, err)
			}
			if !extensionID.Equal(derivedID) {
				return fmt.Errorf("%w: 扩展 %s 与公钥派生 %s 不一致",
					ErrInvalidExtension, extensionID.ShortString(), derivedID.ShortString())
			}
			break
		}
	}

	// 3. 校验 expectedID
	if !expectedID.IsEmpty() && !derivedID.Equal(expectedID) {
		return fmt.Errorf("%w: 期望 %s, 实际 %s",
			ErrNodeIDMismatch, expectedID.ShortString(), derivedID.ShortString())
	}

	// 4. 校验证书有效期
	now := time.Now()
	if now.Before(cert.NotBefore) {
		return fmt.Errorf("证书尚未生效: NotBefore=%v", cert.NotBefore)
	}
	if now.After(cert.NotAfter) {
		return fmt.Errorf("证书已过期: NotAfter=%v", cert.NotAfter)
	}

	// 注意：不验证自签名完整性，因为：
	// 1. TLS 握手本身会验证证书签名
	// 2. 安全性来自 NodeID 与公钥的强绑定，而非证书链
	// 3. cert.CheckSignatureFrom(cert) 对非 CA 证书会失败
	return nil
}

// NodeIDFromTLSState 从握手完成的连接状态提取对端 NodeID
func NodeIDFromTLSState(state tls.ConnectionState) (types.NodeID, error) {
	if len(state.PeerCertificates) == 0 {
		return types.EmptyNodeID, ErrNoCertificate
	}
	return DeriveNodeIDFromCert(state.PeerCertificates[0])
}
