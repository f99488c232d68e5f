package quic

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/quic-go/quic-go"
)

// Listener QUIC 监听器
type Listener struct {
	quicListener *quic.Listener
	localAddr    net.Addr
	closed       atomic.Bool
}

// newListener 创建监听器封装
func newListener(ql *quic.Listener, localAddr net.Addr) *Listener {
	return &Listener{
		quicListener: ql,
		localAddr:    localAddr,
	}
}

// Accept 接受一条入站连接
//
// 阻塞直到有新连接、ctx 取消或监听器关闭。
// 对端身份提取失败时关闭该连接并返回错误，调用方可继续 Accept。
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	if l.closed.Load() {
		return nil, ErrListenerClosed
	}

	quicConn, err := l.quicListener.Accept(ctx)
	if err != nil {
		if l.closed.Load() {
			return nil, ErrListenerClosed
		}
		return nil, fmt.Errorf("接受连接失败: %w", err)
	}

	conn, err := newConn(quicConn, DirInbound)
	if err != nil {
		_ = quicConn.CloseWithError(codeIdentityFailure, "identity verification failed")
		return nil, err
	}

	logger.Debug("入站连接已建立",
		"remote_addr", conn.RemoteAddr().String(),
		"remote_id", conn.RemoteNodeID().ShortString())
	return conn, nil
}

// Addr 返回监听地址
func (l *Listener) Addr() net.Addr {
	return l.localAddr
}

// IsClosed 报告监听器是否已关闭
func (l *Listener) IsClosed() bool {
	return l.closed.Load()
}

// Close 关闭监听器
func (l *Listener) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	return l.quicListener.Close()
}
