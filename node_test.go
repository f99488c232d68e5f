package beam

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestNode 创建并启动测试节点（内存索引 + 回环监听）
func newTestNode(t *testing.T, opts ...Option) *Node {
	t.Helper()

	base := []Option{
		WithListenAddr("127.0.0.1:0"),
		WithInMemory(),
	}
	node, err := New(context.Background(), append(base, opts...)...)
	require.NoError(t, err, "创建节点失败")

	require.NoError(t, node.Start(context.Background()), "启动节点失败")
	t.Cleanup(func() { _ = node.Stop(context.Background()) })
	return node
}

// collectEvents 读取事件直到通道关闭
func collectEvents(t *testing.T, ch <-chan Event) []Event {
	t.Helper()

	var events []Event
	timeout := time.After(30 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("等待拉取事件超时")
		}
	}
}

// requireDone 断言最后一个事件为 EventDone 并返回它
func requireDone(t *testing.T, events []Event) EventDone {
	t.Helper()

	require.NotEmpty(t, events)
	done, ok := events[len(events)-1].(EventDone)
	require.True(t, ok, "最后一个事件应为 EventDone，实际为 %#v", events[len(events)-1])
	return done
}

func TestNode_Lifecycle(t *testing.T) {
	ctx := context.Background()

	node, err := New(ctx, WithListenAddr("127.0.0.1:0"), WithInMemory())
	require.NoError(t, err)

	assert.Equal(t, StateIdle, node.State())
	assert.False(t, node.ID().IsEmpty(), "身份应在创建阶段就绪")
	assert.Empty(t, node.Addr(), "未启动时没有监听地址")

	// 未启动时分享与拉取都应拒绝
	_, err = node.Serve(t.TempDir())
	assert.ErrorIs(t, err, ErrNotStarted)
	_, err = node.Fetch(ctx, &Ticket{}, t.TempDir())
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.ErrorIs(t, node.Stop(ctx), ErrNotStarted)

	require.NoError(t, node.Start(ctx))
	assert.Equal(t, StateRunning, node.State())
	assert.True(t, node.IsRunning())
	assert.NotEmpty(t, node.Addr())
	assert.ErrorIs(t, node.Start(ctx), ErrAlreadyStarted)

	require.NoError(t, node.Stop(ctx))
	assert.Equal(t, StateStopped, node.State())
	assert.False(t, node.IsRunning())

	// 停止是终态：重复停止幂等，重新启动被拒绝
	assert.NoError(t, node.Stop(ctx))
	assert.ErrorIs(t, node.Start(ctx), ErrNodeClosed)
}

func TestNodeState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopping", StateStopping.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unknown", NodeState(99).String())
}

func TestNode_ServeFetchSingleFile(t *testing.T) {
	provider := newTestNode(t)
	fetcher := newTestNode(t)

	data := bytes.Repeat([]byte("beam data "), 30_000)
	path := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	ticket, err := provider.Serve(path)
	require.NoError(t, err)
	assert.True(t, ticket.Manifest, "单文件应包装为清单分享")
	assert.Equal(t, provider.ID(), ticket.NodeID)
	assert.NotEmpty(t, ticket.Addrs)

	// 票据经文本编解码后仍然可用
	encoded, err := ticket.Encode()
	require.NoError(t, err)
	parsed, err := ParseTicket(encoded)
	require.NoError(t, err)

	outDir := t.TempDir()
	events, err := fetcher.Fetch(context.Background(), parsed, outDir)
	require.NoError(t, err)

	done := requireDone(t, collectEvents(t, events))
	assert.Equal(t, 1, done.Files)
	assert.Equal(t, int64(len(data)), done.Written)

	got, err := os.ReadFile(filepath.Join(outDir, "payload.bin"))
	require.NoError(t, err)
	assert.Equal(t, data, got, "拉取内容应与原文件逐字节一致")
}

func TestNode_ServeFetchDirectory(t *testing.T) {
	provider := newTestNode(t)
	fetcher := newTestNode(t)

	srcDir := t.TempDir()
	files := map[string][]byte{
		"readme.txt":     []byte("hello beam"),
		"sub/nested.bin": bytes.Repeat([]byte{0xAB, 0xCD}, 20_000),
	}
	for name, data := range files {
		p := filepath.Join(srcDir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, data, 0o644))
	}

	ticket, err := provider.Serve(srcDir)
	require.NoError(t, err)
	assert.True(t, ticket.Manifest)

	outDir := t.TempDir()
	events, err := fetcher.Fetch(context.Background(), ticket, outDir)
	require.NoError(t, err)

	done := requireDone(t, collectEvents(t, events))
	assert.Equal(t, 2, done.Files)

	for name, data := range files {
		got, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(name)))
		require.NoError(t, err, "文件 %s 应已落盘", name)
		assert.Equal(t, data, got, "文件 %s 内容不一致", name)
	}
}

func TestNode_ServeFetchMultiplePaths(t *testing.T) {
	provider := newTestNode(t)
	fetcher := newTestNode(t)

	srcDir := t.TempDir()
	fileData := []byte("standalone file")
	filePath := filepath.Join(srcDir, "single.txt")
	require.NoError(t, os.WriteFile(filePath, fileData, 0o644))

	subDir := filepath.Join(srcDir, "docs")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	docData := []byte("inside the directory")
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "guide.md"), docData, 0o644))

	ticket, err := provider.Serve(filePath, subDir)
	require.NoError(t, err)

	outDir := t.TempDir()
	events, err := fetcher.Fetch(context.Background(), ticket, outDir)
	require.NoError(t, err)

	done := requireDone(t, collectEvents(t, events))
	assert.Equal(t, 2, done.Files)

	got, err := os.ReadFile(filepath.Join(outDir, "single.txt"))
	require.NoError(t, err)
	assert.Equal(t, fileData, got)

	// 目录条目带基础名前缀
	got, err = os.ReadFile(filepath.Join(outDir, "docs", "guide.md"))
	require.NoError(t, err)
	assert.Equal(t, docData, got)
}

func TestNode_ServeDuplicateName(t *testing.T) {
	provider := newTestNode(t)

	dirA := t.TempDir()
	dirB := t.TempDir()
	pathA := filepath.Join(dirA, "same.txt")
	pathB := filepath.Join(dirB, "same.txt")
	require.NoError(t, os.WriteFile(pathA, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(pathB, []byte("b"), 0o644))

	_, err := provider.Serve(pathA, pathB)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestNode_ServeNoPaths(t *testing.T) {
	provider := newTestNode(t)

	_, err := provider.Serve()
	assert.ErrorIs(t, err, ErrNoPaths)
}

func TestNode_ServeMissingPath(t *testing.T) {
	provider := newTestNode(t)

	_, err := provider.Serve(filepath.Join(t.TempDir(), "no-such-file"))
	assert.Error(t, err)
}

func TestNode_PersistentIdentity(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	node1, err := New(ctx, WithDataDir(dataDir), WithListenAddr("127.0.0.1:0"))
	require.NoError(t, err)
	require.NoError(t, node1.Start(ctx))
	id := node1.ID()
	require.NoError(t, node1.Stop(ctx))

	// 同一数据目录再次启动应恢复相同身份
	node2, err := New(ctx, WithDataDir(dataDir), WithListenAddr("127.0.0.1:0"))
	require.NoError(t, err)
	require.NoError(t, node2.Start(ctx))
	defer func() { _ = node2.Stop(ctx) }()

	assert.Equal(t, id, node2.ID(), "数据目录中的身份密钥应被复用")
}

func TestNode_RawAuthModeFailsAtListen(t *testing.T) {
	ctx := context.Background()

	// raw 模式构造合法，但标准 TLS 栈无法承载裸公钥，监听时报错
	node, err := New(ctx,
		WithListenAddr("127.0.0.1:0"),
		WithInMemory(),
		WithAuthMode("raw"),
	)
	require.NoError(t, err)
	assert.False(t, node.ID().IsEmpty())

	err = node.Start(ctx)
	require.Error(t, err)
	assert.Equal(t, StateStopped, node.State())
}

func TestNode_InvalidOptions(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, WithAuthMode("bogus"))
	assert.Error(t, err)

	_, err = New(ctx, WithDataDir(""))
	assert.Error(t, err)

	_, err = New(ctx, WithListenAddr(""))
	assert.Error(t, err)

	_, err = New(ctx, WithClock(nil))
	assert.Error(t, err)
}

func TestNode_EntriesAfterServe(t *testing.T) {
	provider := newTestNode(t)

	path := filepath.Join(t.TempDir(), "entry.txt")
	require.NoError(t, os.WriteFile(path, []byte("indexed"), 0o644))

	_, err := provider.Serve(path)
	require.NoError(t, err)

	entries, err := provider.Entries()
	require.NoError(t, err)
	// 文件本体 + 包装清单
	assert.Len(t, entries, 2)
}
