package beam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-beam/internal/config"
	"github.com/dep2p/go-beam/internal/core/blob"
	"github.com/dep2p/go-beam/internal/core/identity"
	transport "github.com/dep2p/go-beam/internal/core/transport/quic"
	"github.com/dep2p/go-beam/internal/protocol/transfer"
	"github.com/dep2p/go-beam/pkg/lib/log"
	"github.com/dep2p/go-beam/pkg/types"
)

var logger = log.Logger("beam")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
//
// 表示节点在生命周期中的当前阶段。状态单向推进，
// 停止后的节点不可重新启动。
type NodeState int

const (
	// StateIdle 空闲状态（已创建，未启动）
	StateIdle NodeState = iota

	// StateInitializing 初始化中（Fx App 启动中）
	StateInitializing

	// StateRunning 运行中（正常工作状态）
	StateRunning

	// StateStopping 停止中（正在关闭组件）
	StateStopping

	// StateStopped 已停止
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// initializeTimeout 初始化超时（Fx App Start）
const initializeTimeout = 30 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              Node
// ════════════════════════════════════════════════════════════════════════════

// Node beam 节点
//
// Node 是用户与 beam 网络交互的主入口。
// 它是一个门面（Facade），聚合了所有内部组件。
//
// 架构层次：
//   - API Layer: Node（本层，用户直接交互）
//   - Protocol Layer: Transfer（请求与校验流）
//   - Core Layer: Identity, TLS, Transport(QUIC), Blob Store
//
// 使用示例：
//
//	node, err := beam.New(ctx, beam.WithDataDir(dir))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := node.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Stop(context.Background())
//
//	ticket, err := node.Serve("./photos")
type Node struct {
	// ────────────────────────────────────────────────────────────────────────
	// 配置和状态
	// ────────────────────────────────────────────────────────────────────────

	// config 用户选项
	config *options

	// cfg 内部配置
	cfg *config.Config

	// app Fx 应用
	app *fx.App

	// ────────────────────────────────────────────────────────────────────────
	// 核心组件（由 Fx 注入）
	// ────────────────────────────────────────────────────────────────────────

	// identity 节点身份
	identity *identity.Identity

	// transport QUIC 传输
	transport *transport.Transport

	// store 内容索引
	store *blob.Store

	// server 内容服务端
	server *transfer.Server

	// client 内容拉取端
	client *transfer.Client

	// ────────────────────────────────────────────────────────────────────────
	// 监听与服务状态
	// ────────────────────────────────────────────────────────────────────────

	// listener 传输监听器
	listener *transport.Listener

	// serveCancel 取消接收循环
	serveCancel context.CancelFunc

	// serveDone 接收循环已退出
	serveDone chan struct{}

	// ────────────────────────────────────────────────────────────────────────
	// 生命周期状态
	// ────────────────────────────────────────────────────────────────────────

	mu      sync.RWMutex
	state   NodeState
	started bool
	closed  bool
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建新节点
//
// 创建节点但不开始监听，需要调用 Start() 启动。
// 身份加载、TLS 凭证派生和内容索引打开都在此阶段完成，
// 任何一步失败都会直接返回错误。
//
// 示例：
//
//	node, err := beam.New(ctx,
//	    beam.WithDataDir("~/.beam"),
//	    beam.WithListenAddr("0.0.0.0:4242"),
//	)
func New(ctx context.Context, opts ...Option) (*Node, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg := o.toInternalConfig()

	// 日志文件最先生效，之后所有组件日志都写入该文件
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		log.SetOutput(f)
	}

	node := &Node{
		config: o,
		cfg:    cfg,
		state:  StateIdle,
	}

	app, err := buildFxApp(cfg, o, node)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	node.app = app

	return node, nil
}

// Start 快捷启动函数
//
// 创建节点并立即启动，等价于 New() + Start()。
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	node, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if err := node.Start(ctx); err != nil {
		return nil, fmt.Errorf("start node: %w", err)
	}

	return node, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              基本信息
// ════════════════════════════════════════════════════════════════════════════

// ID 返回节点 ID
//
// 节点 ID 即节点的 Ed25519 公钥，全局唯一。
func (n *Node) ID() types.NodeID {
	if n.identity == nil {
		return types.NodeID{}
	}
	return n.identity.ID()
}

// Addr 返回监听地址
//
// 节点未启动时返回空字符串。
func (n *Node) Addr() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.listener == nil {
		return ""
	}
	return n.listener.Addr().String()
}

// State 返回节点当前状态
func (n *Node) State() NodeState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// IsRunning 检查节点是否正在运行
func (n *Node) IsRunning() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state == StateRunning
}

// Entries 返回索引中已登记的全部条目
func (n *Node) Entries() ([]*blob.Entry, error) {
	if n.store == nil {
		return nil, ErrNotStarted
	}
	return n.store.Entries()
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期管理
// ════════════════════════════════════════════════════════════════════════════

// Start 启动节点
//
// 启动 Fx 应用并开始监听。启动成功后节点可以分享与拉取内容。
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if n.started {
		return ErrAlreadyStarted
	}

	n.state = StateInitializing
	logger.Info("正在启动节点")

	initCtx, initCancel := context.WithTimeout(ctx, initializeTimeout)
	defer initCancel()

	if err := n.app.Start(initCtx); err != nil {
		n.state = StateIdle
		logger.Error("节点初始化失败", "error", err)
		return fmt.Errorf("initialize failed: %w", err)
	}

	ln, err := n.transport.Listen(n.cfg.Transport.ListenAddr)
	if err != nil {
		n.state = StateStopping
		logger.Error("监听地址失败", "error", err)
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = n.app.Stop(stopCtx)
		n.state = StateStopped
		n.closed = true
		return fmt.Errorf("listen failed: %w", err)
	}
	n.listener = ln

	// 接收循环在后台运行，监听器关闭时自行退出
	serveCtx, cancel := context.WithCancel(context.Background())
	n.serveCancel = cancel
	n.serveDone = make(chan struct{})
	go func() {
		defer close(n.serveDone)
		if err := n.server.Serve(serveCtx, ln); err != nil {
			logger.Warn("内容服务退出", "error", err)
		}
	}()

	n.state = StateRunning
	n.started = true
	logger.Info("节点启动成功",
		"node_id", n.identity.ID().ShortString(),
		"addr", ln.Addr().String())
	return nil
}

// Stop 停止节点并释放所有资源
//
// 停止顺序：先关闭监听并等待接收循环退出，再关闭传输与索引，
// 进行中的请求会随连接关闭而中断。停止后节点不可重新启动，
// 重复调用返回 nil。
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	if !n.started {
		return ErrNotStarted
	}

	n.state = StateStopping
	logger.Info("正在停止节点")

	// 先停接入
	n.serveCancel()
	_ = n.listener.Close()
	<-n.serveDone

	// 停止 Fx 应用（按反向顺序调用 OnStop，关闭传输与索引）
	stopErr := n.app.Stop(ctx)

	// 传输关闭后进行中的处理协程会很快退出
	_ = n.server.Close()

	n.state = StateStopped
	n.started = false
	n.closed = true

	if stopErr != nil {
		logger.Error("停止节点失败", "error", stopErr)
		return fmt.Errorf("stop fx app: %w", stopErr)
	}

	logger.Info("节点已停止")
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              内容分享
// ════════════════════════════════════════════════════════════════════════════

// Serve 登记本地路径并返回分享票据
//
// 支持的路径组合：
//   - 单个目录：目录下全部文件构成清单，文件名为相对路径
//   - 单个文件：包装为单条目清单，文件名为基础名
//   - 多个路径：文件以基础名登记，目录以 基础名/相对路径 登记
//
// 数据字节不会复制进索引，分享期间原文件必须保持可读且不被修改。
// 返回的票据包含节点 ID、拨号地址和内容哈希，凭票据即可拉取。
func (n *Node) Serve(paths ...string) (*types.Ticket, error) {
	n.mu.RLock()
	running := n.state == StateRunning
	n.mu.RUnlock()

	if !running {
		return nil, ErrNotStarted
	}
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}

	entry, err := n.register(paths)
	if err != nil {
		return nil, err
	}

	addrs := n.ticketAddrs()
	ticket := types.NewTicket(n.identity.ID(), addrs, entry.Hash, true)

	logger.Info("内容已登记",
		"hash", entry.Hash.ShortString(),
		"size", entry.Size,
		"addrs", len(addrs))
	return ticket, nil
}

// register 将路径集登记入索引，返回分享单元的清单条目
func (n *Node) register(paths []string) (*blob.Entry, error) {
	// 单个目录：目录清单即分享单元
	if len(paths) == 1 {
		info, err := os.Stat(paths[0])
		if err != nil {
			return nil, fmt.Errorf("读取路径信息失败: %w", err)
		}
		if info.IsDir() {
			entry, _, err := n.store.AddDir(paths[0])
			return entry, err
		}
	}

	// 其余情况：逐个登记后合成清单
	var manifest blob.Manifest
	seen := make(map[string]struct{})
	appendEntry := func(name string, hash types.Hash, size int64) error {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}
		manifest.Entries = append(manifest.Entries, blob.ManifestEntry{
			Name: name,
			Hash: hash,
			Size: size,
		})
		return nil
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("读取路径信息失败: %w", err)
		}

		if info.IsDir() {
			_, m, err := n.store.AddDir(p)
			if err != nil {
				return nil, err
			}
			base := filepath.Base(filepath.Clean(p))
			for _, me := range m.Entries {
				if err := appendEntry(base+"/"+me.Name, me.Hash, me.Size); err != nil {
					return nil, err
				}
			}
			continue
		}

		entry, err := n.store.Add(p)
		if err != nil {
			return nil, err
		}
		if err := appendEntry(filepath.Base(p), entry.Hash, entry.Size); err != nil {
			return nil, err
		}
	}

	return n.store.AddManifest(&manifest)
}

// ════════════════════════════════════════════════════════════════════════════
//                              内容拉取
// ════════════════════════════════════════════════════════════════════════════

// Fetch 凭票据从提供方拉取内容到本地目录
//
// 返回的事件通道按发生顺序投递进度，通道关闭表示拉取结束，
// 结束前必有一个终态事件（EventDone 或 EventFailed）。
// 取消 ctx 会中断拉取。
func (n *Node) Fetch(ctx context.Context, ticket *types.Ticket, outDir string) (<-chan transfer.Event, error) {
	n.mu.RLock()
	running := n.state == StateRunning
	n.mu.RUnlock()

	if !running {
		return nil, ErrNotStarted
	}

	return n.client.Fetch(ctx, ticket, outDir)
}
