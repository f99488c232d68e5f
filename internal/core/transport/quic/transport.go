package quic

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/quic-go/quic-go"

	"github.com/dep2p/go-beam/internal/config"
	tlsimpl "github.com/dep2p/go-beam/internal/core/security/tls"
	"github.com/dep2p/go-beam/pkg/lib/log"
	"github.com/dep2p/go-beam/pkg/types"
)

var logger = log.Logger("transport")

// Transport QUIC 传输
//
// 监听和拨号共用一个 UDP socket 与一个 quic.Transport，
// 因此出站连接的源端口与监听端口一致，对端回连无需新的端口映射。
type Transport struct {
	mu sync.Mutex

	builder  *tlsimpl.ConfigBuilder
	quicConf *quic.Config
	cfg      config.TransportConfig

	udpConn       *net.UDPConn
	quicTransport *quic.Transport

	listener *Listener
	closed   bool
}

// New 创建 QUIC 传输
//
// TLS 配置在 Listen/Dial 时由 builder 按角色生成，
// 凭证本身在进程启动时已经构造完毕。
func New(builder *tlsimpl.ConfigBuilder, cfg config.TransportConfig) *Transport {
	return &Transport{
		builder: builder,
		quicConf: &quic.Config{
			MaxIdleTimeout:     cfg.MaxIdleTimeout,
			KeepAlivePeriod:    cfg.KeepAlivePeriod,
			MaxIncomingStreams: cfg.MaxIncomingStreams,
		},
		cfg: cfg,
	}
}

// Listen 在给定地址上监听入站连接
//
// 首次调用时创建共享 UDP socket；端口为 0 时由内核分配。
// 每个传输实例至多一个监听器。
func (t *Transport) Listen(addr string) (*Listener, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrTransportClosed
	}
	if t.listener != nil {
		return nil, ErrAlreadyListening
	}

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	if err := t.ensureSocketLocked(udpAddr); err != nil {
		return nil, err
	}

	serverConf, err := t.builder.BuildServerConfig()
	if err != nil {
		return nil, err
	}

	quicListener, err := t.quicTransport.Listen(serverConf, t.quicConf)
	if err != nil {
		return nil, fmt.Errorf("监听 QUIC 失败: %w", err)
	}

	t.listener = newListener(quicListener, t.udpConn.LocalAddr())
	logger.Info("传输监听已启动", "addr", t.listener.Addr().String())
	return t.listener, nil
}

// Dial 拨号到指定地址并验证对端身份
//
// expectedID 非空时，握手会校验对端证书公钥派生的 NodeID 与之一致，
// 不一致则连接建立失败。复用共享 socket，未监听时绑定随机端口。
func (t *Transport) Dial(ctx context.Context, addr string, expectedID types.NodeID) (*Conn, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrTransportClosed
	}
	if err := t.ensureSocketLocked(&net.UDPAddr{Port: 0}); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	quicTransport := t.quicTransport
	t.mu.Unlock()

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	clientConf, err := t.builder.BuildClientConfig(expectedID)
	if err != nil {
		return nil, err
	}

	dialCtx := ctx
	if t.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, t.cfg.DialTimeout)
		defer cancel()
	}

	quicConn, err := quicTransport.Dial(dialCtx, udpAddr, clientConf, t.quicConf)
	if err != nil {
		return nil, fmt.Errorf("拨号 %s 失败: %w", addr, err)
	}

	conn, err := newConn(quicConn, DirOutbound)
	if err != nil {
		_ = quicConn.CloseWithError(codeIdentityFailure, "identity verification failed")
		return nil, err
	}

	logger.Debug("出站连接已建立",
		"remote_addr", addr,
		"remote_id", conn.RemoteNodeID().ShortString())
	return conn, nil
}

// LocalAddr 返回共享 socket 的本地地址，未创建时为 nil
func (t *Transport) LocalAddr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.udpConn == nil {
		return nil
	}
	return t.udpConn.LocalAddr()
}

// Close 关闭传输及其全部连接
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if t.listener != nil {
		_ = t.listener.Close()
		t.listener = nil
	}
	if t.quicTransport != nil {
		_ = t.quicTransport.Close()
		t.quicTransport = nil
	}
	if t.udpConn != nil {
		_ = t.udpConn.Close()
		t.udpConn = nil
	}
	return nil
}

// ensureSocketLocked 确保共享 socket 已创建，须持有 t.mu 调用
//
// socket 只绑定一次：先 Dial 后 Listen 时沿用已绑定的随机端口。
func (t *Transport) ensureSocketLocked(udpAddr *net.UDPAddr) error {
	if t.udpConn != nil {
		return nil
	}

	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("绑定 UDP 失败: %w", err)
	}
	t.udpConn = udpConn
	t.quicTransport = &quic.Transport{Conn: udpConn}
	return nil
}
