package blob

import (
	"context"
	"path/filepath"

	"go.uber.org/fx"

	"github.com/dep2p/go-beam/internal/config"
)

// ProvideStore 从配置构建内容索引
//
// IndexPath 为空时从 DataDir 派生；两者都为空则退化为内存索引
// （纯拉取场景不需要落盘）。
func ProvideStore(lc fx.Lifecycle, cfg *config.Config) (*Store, error) {
	blobCfg := cfg.Blob
	if !blobCfg.InMemory && blobCfg.IndexPath == "" {
		if cfg.DataDir == "" {
			blobCfg.InMemory = true
		} else {
			blobCfg.IndexPath = filepath.Join(cfg.DataDir, config.DefaultIndexDirName)
		}
	}

	store, err := NewStore(blobCfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}

// Module 返回内容存储的 fx 模块
func Module() fx.Option {
	return fx.Module("blob",
		fx.Provide(ProvideStore),
	)
}
