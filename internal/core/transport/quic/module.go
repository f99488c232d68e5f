package quic

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-beam/internal/config"
	tlsimpl "github.com/dep2p/go-beam/internal/core/security/tls"
)

// ProvideTransport 构造 QUIC 传输并挂接生命周期
func ProvideTransport(lc fx.Lifecycle, cfg *config.Config, builder *tlsimpl.ConfigBuilder) *Transport {
	t := New(builder, cfg.Transport)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return t.Close()
		},
	})
	return t
}

// Module 返回传输模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideTransport),
	)
}
