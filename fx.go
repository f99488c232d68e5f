package beam

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-beam/internal/config"
	"github.com/dep2p/go-beam/internal/core/blob"
	"github.com/dep2p/go-beam/internal/core/identity"
	tlsimpl "github.com/dep2p/go-beam/internal/core/security/tls"
	transport "github.com/dep2p/go-beam/internal/core/transport/quic"
	"github.com/dep2p/go-beam/internal/protocol/transfer"
)

// buildFxApp 构建 Fx 应用
//
// 组装所有内部模块，加载顺序（按依赖）：
//
//	Identity → TLS 凭证 → Transport(QUIC) → Blob 索引 → Transfer 协议
//
// 所有构造函数在此阶段执行，身份加载、凭证派生、索引打开的失败
// 都会在 New() 返回前暴露出来。
func buildFxApp(cfg *config.Config, opts *options, node *Node) (*fx.App, error) {
	// 配置验证（前置）
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		// 配置注入
		fx.Supply(cfg),

		// 时钟（测试可通过 WithClock 覆盖）
		fx.Provide(func() clock.Clock {
			if opts.clk != nil {
				return opts.clk
			}
			return clock.New()
		}),

		// 核心模块
		identity.Module(),  // 节点身份
		tlsimpl.Module(),   // TLS 凭证解析
		transport.Module(), // QUIC 传输
		blob.Module(),      // 内容索引
		transfer.Module(),  // 传输协议

		// Node 组件注入
		fx.Invoke(injectNodeComponents(node)),

		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	}

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// nodeInjectParams Node 组件注入参数
type nodeInjectParams struct {
	fx.In

	Identity  *identity.Identity
	Transport *transport.Transport
	Store     *blob.Store
	Server    *transfer.Server
	Client    *transfer.Client
}

// injectNodeComponents 创建 Node 组件注入函数
func injectNodeComponents(node *Node) interface{} {
	return func(params nodeInjectParams) {
		node.identity = params.Identity
		node.transport = params.Transport
		node.store = params.Store
		node.server = params.Server
		node.client = params.Client
	}
}
