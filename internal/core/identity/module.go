package identity

import (
	"path/filepath"

	"go.uber.org/fx"

	"github.com/dep2p/go-beam/internal/config"
)

// ============================================================================
//                              Fx 模块
// ============================================================================

// ProvideIdentity 提供节点身份
//
// 密钥来源优先级：
//  1. 显式指定的 KeyFile
//  2. DataDir 下的默认密钥文件（不存在则生成并持久化）
//  3. 临时身份（无任何持久化路径时）
func ProvideIdentity(cfg *config.Config) (*Identity, error) {
	switch {
	case cfg.Identity.KeyFile != "":
		return LoadOrCreate(cfg.Identity.KeyFile)
	case cfg.DataDir != "":
		return LoadOrCreate(filepath.Join(cfg.DataDir, config.DefaultKeyFileName))
	default:
		logger.Debug("使用临时节点身份")
		return Generate(nil)
	}
}

// Module 返回身份模块
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideIdentity),
	)
}
