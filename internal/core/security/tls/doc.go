// Package tls 实现身份到 TLS 凭证的解析
//
// tls 将节点的 Ed25519 身份转换为 TLS 1.3 握手可以出示的凭证，
// 基于自签名证书携带节点公钥，不依赖任何 CA。
//
// # 核心功能
//
//   - 凭证解析：一次构造，所有握手共享同一份不可变凭证
//   - 双模式认证：自签名证书模式与裸公钥模式
//   - 角色对称：同一凭证同时服务客户端与服务端握手
//   - 身份验证：从对端证书公钥派生 NodeID 并校验
//
// # 证书格式
//
// 证书模式下，证书包含 Beam 扩展（OID 1.3.6.1.4.1.53594.2.1），
// 携带节点的原始公钥。证书主体公钥即节点身份公钥。
//
// # 使用示例
//
//	resolver, err := tls.NewCredentialResolver(tls.AuthModeCertificate, priv)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	builder := tls.NewConfigBuilder(resolver)
//	serverConf, _ := builder.BuildServerConfig()
//	clientConf, _ := builder.BuildClientConfig(expectedServerID)
package tls
