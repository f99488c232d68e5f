package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-beam/internal/config"
	"github.com/dep2p/go-beam/internal/core/blob"
	transport "github.com/dep2p/go-beam/internal/core/transport/quic"
	"github.com/dep2p/go-beam/internal/util/addrutil"
	"github.com/dep2p/go-beam/pkg/types"
)

// Client 内容拉取方
type Client struct {
	transport *transport.Transport
	clk       clock.Clock

	timeout  time.Duration
	eventBuf int
}

// NewClient 创建内容拉取方
func NewClient(tr *transport.Transport, cfg config.TransferConfig, clk clock.Clock) *Client {
	eventBuf := cfg.EventBuffer
	if eventBuf <= 0 {
		eventBuf = config.DefaultEventBuffer
	}
	return &Client{
		transport: tr,
		clk:       clk,
		timeout:   cfg.RequestTimeout,
		eventBuf:  eventBuf,
	}
}

// Fetch 按票据拉取内容到 outDir
//
// 立即返回事件通道，拉取在后台进行；通道在拉取结束后关闭，
// 关闭前必然送出 EventDone 或 EventFailed。
func (c *Client) Fetch(ctx context.Context, ticket *types.Ticket, outDir string) (<-chan Event, error) {
	if ticket == nil || ticket.NodeID.IsEmpty() || ticket.Hash.IsEmpty() {
		return nil, fmt.Errorf("%w: 票据不完整", types.ErrInvalidTicket)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	events := make(chan Event, c.eventBuf)
	go c.run(ctx, ticket, outDir, events)
	return events, nil
}

// run 执行一次完整拉取
func (c *Client) run(ctx context.Context, ticket *types.Ticket, outDir string, events chan Event) {
	defer close(events)

	start := c.clk.Now()

	conn, err := c.dial(ctx, ticket)
	if err != nil {
		sendEvent(events, EventFailed{Err: err}, true)
		return
	}
	defer conn.Close()

	sendEvent(events, EventConnected{
		Node: conn.RemoteNodeID(),
		Addr: conn.RemoteAddr().String(),
	}, false)

	var written int64
	var files int
	if ticket.Manifest {
		written, files, err = c.fetchDir(ctx, conn, ticket.Hash, outDir, events)
	} else {
		name := ticket.Hash.ShortString() + ".blob"
		written, err = c.fetchToFile(ctx, conn, ticket.Hash, filepath.Join(outDir, name), name, events)
		files = 1
	}
	if err != nil {
		sendEvent(events, EventFailed{Err: err}, true)
		return
	}

	sendEvent(events, EventDone{
		Files:   files,
		Written: written,
		Elapsed: c.clk.Now().Sub(start),
	}, true)
}

// dial 按票据中的地址提示依次尝试连接
//
// 所有连接都以票据的 NodeID 为期望身份，握手阶段验证不通过的
// 地址视为不可达。
func (c *Client) dial(ctx context.Context, ticket *types.Ticket) (*transport.Conn, error) {
	if len(ticket.Addrs) == 0 {
		return nil, ErrNoAddresses
	}

	var lastErr error
	for _, addr := range addrutil.SortDialAddrs(ticket.Addrs) {
		conn, err := c.transport.Dial(ctx, addr, ticket.NodeID)
		if err == nil {
			return conn, nil
		}
		logger.Debug("地址不可达",
			"addr", addr,
			"addr_type", addrutil.AddrType(addr),
			"error", err)
		lastErr = err
	}
	return nil, fmt.Errorf("所有地址均不可达: %w", lastErr)
}

// fetchDir 按清单拉取目录内容
func (c *Client) fetchDir(ctx context.Context, conn *transport.Conn, manifestHash types.Hash, outDir string, events chan Event) (int64, int, error) {
	// 清单先落内存并按哈希校验，再决定写盘布局
	var buf bytes.Buffer
	if _, err := c.fetchBlob(ctx, conn, manifestHash, &buf, "", nil); err != nil {
		return 0, 0, fmt.Errorf("拉取清单失败: %w", err)
	}

	manifest, err := blob.DecodeManifest(buf.Bytes())
	if err != nil {
		return 0, 0, err
	}

	sendEvent(events, EventManifest{
		Hash:  manifestHash,
		Files: len(manifest.Entries),
		Total: manifest.TotalSize(),
	}, false)

	var written int64
	for _, entry := range manifest.Entries {
		if err := ctx.Err(); err != nil {
			return written, 0, err
		}

		// 清单路径来自对端，写盘前必须确认不越出输出目录
		name := filepath.FromSlash(entry.Name)
		if !filepath.IsLocal(name) {
			return written, 0, fmt.Errorf("%w: 清单路径越界: %q", ErrInvalidMessage, entry.Name)
		}

		n, err := c.fetchToFile(ctx, conn, entry.Hash, filepath.Join(outDir, name), entry.Name, events)
		if err != nil {
			return written, 0, fmt.Errorf("拉取 %s 失败: %w", entry.Name, err)
		}
		written += n
	}

	return written, len(manifest.Entries), nil
}

// fetchToFile 拉取单个内容并原子写入 outPath
//
// 数据先进同目录的暂存文件，校验全部通过后 fsync 并重命名就位；
// 任何失败都会清理暂存文件，目标路径要么不存在要么是完整内容。
func (c *Client) fetchToFile(ctx context.Context, conn *transport.Conn, hash types.Hash, outPath, name string, events chan Event) (int64, error) {
	start := c.clk.Now()

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("创建目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".beam-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("创建暂存文件失败: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := c.fetchBlob(ctx, conn, hash, tmp, name, events)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("落盘失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("关闭暂存文件失败: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("移动到目标路径失败: %w", err)
	}

	sendEvent(events, EventFileDone{
		Name:    name,
		Hash:    hash,
		Written: n,
		Elapsed: c.clk.Now().Sub(start),
	}, false)

	logger.Debug("内容已写入",
		"hash", hash.ShortString(),
		"path", outPath,
		"bytes", n)

	return n, nil
}

// fetchBlob 在一条新流上请求内容，边收边校验并写入 dst
//
// dst 只会收到通过校验树验证的字节。events 为 nil 时静默拉取。
func (c *Client) fetchBlob(ctx context.Context, conn *transport.Conn, hash types.Hash, dst io.Writer, name string, events chan Event) (int64, error) {
	stream, err := conn.OpenStream(ctx)
	if err != nil {
		return 0, fmt.Errorf("打开流失败: %w", err)
	}
	defer stream.Close()

	// 请求与响应阶段限时，数据阶段交给 QUIC 空闲超时
	if c.timeout > 0 {
		_ = stream.SetDeadline(time.Now().Add(c.timeout))
	}

	req := &Request{ID: uuid.NewString(), Hash: hash}
	if err := writeRequest(stream, req); err != nil {
		return 0, fmt.Errorf("发送请求失败: %w", err)
	}
	sendEvent(events, EventRequested{Name: name, Hash: hash}, false)

	resp, err := readResponse(stream)
	if err != nil {
		return 0, fmt.Errorf("读取响应失败: %w", err)
	}

	switch resp.Status {
	case StatusOK:
	case StatusNotFound:
		return 0, fmt.Errorf("%w: %s", ErrContentNotFound, hash.ShortString())
	case StatusError:
		return 0, fmt.Errorf("%w: %s", ErrRemoteFailure, resp.Message)
	default:
		return 0, fmt.Errorf("%w: 响应状态 %d", ErrInvalidMessage, resp.Status)
	}

	if resp.Size < 0 {
		return 0, fmt.Errorf("%w: 内容长度为负", ErrInvalidMessage)
	}
	if resp.OutboardSize < 0 || resp.OutboardSize > maxOutboardSize {
		return 0, fmt.Errorf("%w: 校验树长度 %d 超出范围", ErrInvalidMessage, resp.OutboardSize)
	}

	outboard := make([]byte, resp.OutboardSize)
	if _, err := io.ReadFull(stream, outboard); err != nil {
		return 0, fmt.Errorf("读取校验树失败: %w", err)
	}

	if c.timeout > 0 {
		_ = stream.SetDeadline(time.Time{})
	}

	// 请求的哈希就是校验树的根，伪造数据到不了 dst
	track := newTracker(c.clk, events, name, hash, resp.Size)
	data := io.LimitReader(stream, resp.Size)
	if err := blob.VerifyStream(io.MultiWriter(dst, track), data, outboard, hash); err != nil {
		return track.offset, err
	}

	return track.offset, nil
}
