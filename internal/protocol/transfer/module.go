package transfer

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-beam/internal/config"
	"github.com/dep2p/go-beam/internal/core/blob"
	transport "github.com/dep2p/go-beam/internal/core/transport/quic"
)

// ProvideServer 构建内容提供方
func ProvideServer(store *blob.Store) *Server {
	return NewServer(store)
}

// ProvideClient 构建内容拉取方
func ProvideClient(tr *transport.Transport, cfg *config.Config, clk clock.Clock) *Client {
	return NewClient(tr, cfg.Transfer, clk)
}

// Module 返回传输协议的 fx 模块
func Module() fx.Option {
	return fx.Module("transfer",
		fx.Provide(ProvideServer),
		fx.Provide(ProvideClient),
	)
}
