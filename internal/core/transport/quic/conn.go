package quic

import (
	"context"
	"net"
	"time"

	"github.com/quic-go/quic-go"

	tlsimpl "github.com/dep2p/go-beam/internal/core/security/tls"
	"github.com/dep2p/go-beam/pkg/types"
)

// 应用层连接关闭码
const (
	codeNoError         quic.ApplicationErrorCode = 0
	codeIdentityFailure quic.ApplicationErrorCode = 1
)

// Direction 连接方向
type Direction uint8

const (
	// DirInbound 入站连接
	DirInbound Direction = iota + 1

	// DirOutbound 出站连接
	DirOutbound
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// Conn 经过身份验证的 QUIC 连接
//
// 对端 NodeID 在连接建立时从 TLS 状态提取一次，之后保持不变。
type Conn struct {
	quicConn  *quic.Conn
	remoteID  types.NodeID
	direction Direction
	opened    time.Time
}

// newConn 包装 QUIC 连接并提取对端身份
//
// 握手已完成，TLS 状态中必然携带对端证书；提取失败说明
// 对端证书形态不符合预期，连接不可用。
func newConn(quicConn *quic.Conn, direction Direction) (*Conn, error) {
	remoteID, err := tlsimpl.NodeIDFromTLSState(quicConn.ConnectionState().TLS)
	if err != nil {
		return nil, err
	}

	return &Conn{
		quicConn:  quicConn,
		remoteID:  remoteID,
		direction: direction,
		opened:    time.Now(),
	}, nil
}

// RemoteNodeID 返回经 TLS 验证的对端节点标识
func (c *Conn) RemoteNodeID() types.NodeID {
	return c.remoteID
}

// Direction 返回连接方向
func (c *Conn) Direction() Direction {
	return c.direction
}

// Opened 返回连接建立时间
func (c *Conn) Opened() time.Time {
	return c.opened
}

// LocalAddr 返回本地地址
func (c *Conn) LocalAddr() net.Addr {
	return c.quicConn.LocalAddr()
}

// RemoteAddr 返回远端地址
func (c *Conn) RemoteAddr() net.Addr {
	return c.quicConn.RemoteAddr()
}

// OpenStream 打开一条新的双向流
//
// 流控窗口耗尽时阻塞等待，直到对端放行或 ctx 取消。
func (c *Conn) OpenStream(ctx context.Context) (*Stream, error) {
	if c.IsClosed() {
		return nil, ErrConnectionClosed
	}

	quicStream, err := c.quicConn.OpenStreamSync(ctx)
	if err != nil {
		return nil, err
	}
	return newStream(quicStream, c), nil
}

// AcceptStream 接受对端打开的流
func (c *Conn) AcceptStream(ctx context.Context) (*Stream, error) {
	if c.IsClosed() {
		return nil, ErrConnectionClosed
	}

	quicStream, err := c.quicConn.AcceptStream(ctx)
	if err != nil {
		return nil, err
	}
	return newStream(quicStream, c), nil
}

// IsClosed 报告连接是否已关闭
func (c *Conn) IsClosed() bool {
	return c.quicConn.Context().Err() != nil
}

// Close 关闭连接及其所有流
func (c *Conn) Close() error {
	return c.quicConn.CloseWithError(codeNoError, "connection closed")
}
