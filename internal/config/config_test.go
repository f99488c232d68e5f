package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultAuthMode, cfg.Identity.AuthMode)
	assert.Equal(t, DefaultListenAddr, cfg.Transport.ListenAddr)
	assert.Equal(t, DefaultOutboardCacheSize, cfg.Blob.OutboardCacheSize)
	assert.Equal(t, DefaultRequestTimeout, cfg.Transfer.RequestTimeout)
}

func TestValidate(t *testing.T) {
	t.Run("DefaultsWithDataDir", func(t *testing.T) {
		cfg := NewConfig()
		cfg.DataDir = t.TempDir()
		require.NoError(t, Validate(cfg), "默认配置应通过校验")
	})

	t.Run("InMemoryWithoutDataDir", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Blob.InMemory = true
		require.NoError(t, Validate(cfg), "内存索引不需要数据目录")
	})

	t.Run("BadAuthMode", func(t *testing.T) {
		cfg := NewConfig()
		cfg.DataDir = t.TempDir()
		cfg.Identity.AuthMode = "x509"
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Identity.AuthMode")
	})

	t.Run("BadListenAddr", func(t *testing.T) {
		cfg := NewConfig()
		cfg.DataDir = t.TempDir()
		cfg.Transport.ListenAddr = "no-port"
		err := Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Transport.ListenAddr")
	})

	t.Run("MissingIndexLocation", func(t *testing.T) {
		cfg := NewConfig()
		err := Validate(cfg)
		require.Error(t, err, "无数据目录又非内存索引应报错")
		assert.Contains(t, err.Error(), "Blob.IndexPath")
	})

	t.Run("MultipleErrors", func(t *testing.T) {
		cfg := NewConfig()
		cfg.DataDir = t.TempDir()
		cfg.Identity.AuthMode = ""
		cfg.Transport.DialTimeout = 0
		err := Validate(cfg)
		require.Error(t, err)

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.GreaterOrEqual(t, len(verrs), 2, "应聚合多个校验错误")
	})
}
