package blob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-beam/internal/config"
)

// ============= Fx 模块测试 =============

func TestModule_Basic(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := config.NewConfig()
	cfg.DataDir = tmpDir

	var store *Store
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&store),
	)

	app.RequireStart()
	require.NotNil(t, store)

	path := writeTestFile(t, tmpDir, "hello.txt", []byte("hello fx"))
	entry, err := store.Add(path)
	require.NoError(t, err)

	ok, err := store.Has(entry.Hash)
	require.NoError(t, err)
	assert.True(t, ok)

	// 索引目录应派生自 DataDir
	_, err = os.Stat(filepath.Join(tmpDir, config.DefaultIndexDirName))
	require.NoError(t, err, "索引目录应已创建")

	app.RequireStop()

	// OnStop 应已关闭索引
	_, err = store.Get(entry.Hash)
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestModule_InMemoryFallback(t *testing.T) {
	// DataDir 为空时退化为内存索引
	cfg := config.NewConfig()

	var store *Store
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&store),
	)

	app.RequireStart()
	defer app.RequireStop()

	path := writeTestFile(t, t.TempDir(), "mem.txt", []byte("in memory"))
	entry, err := store.Add(path)
	require.NoError(t, err)

	ok, err := store.Has(entry.Hash)
	require.NoError(t, err)
	assert.True(t, ok)
}
