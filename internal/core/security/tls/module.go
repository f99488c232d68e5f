package tls

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/dep2p/go-beam/internal/config"
	"github.com/dep2p/go-beam/internal/core/identity"
	"github.com/dep2p/go-beam/pkg/lib/log"
)

var logger = log.Logger("tls")

// ProvideResolver 从配置与节点身份构造凭证解析器
//
// 构造失败意味着节点无法证明自己的身份，启动必须中止。
func ProvideResolver(cfg *config.Config, ident *identity.Identity) (*CredentialResolver, error) {
	mode, err := ParseAuthMode(cfg.Identity.AuthMode)
	if err != nil {
		return nil, err
	}

	resolver, err := NewCredentialResolver(mode, ident.PrivateKey())
	if err != nil {
		return nil, fmt.Errorf("构造 TLS 凭证失败: %w", err)
	}

	logger.Debug("TLS 凭证已就绪",
		"mode", mode.String(),
		"node_id", resolver.NodeID().ShortString())
	return resolver, nil
}

// Module 返回 TLS 凭证模块
func Module() fx.Option {
	return fx.Module("tls",
		fx.Provide(ProvideResolver),
		fx.Provide(NewConfigBuilder),
	)
}
