package transfer

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-beam/internal/core/blob"
	transport "github.com/dep2p/go-beam/internal/core/transport/quic"
	"github.com/dep2p/go-beam/pkg/lib/log"
)

var logger = log.Logger("transfer")

// Server 内容提供方
//
// 在监听器上接受连接，每条入站流处理一次内容请求。
// 所有状态来自 blob.Store，Server 本身无持久状态。
type Server struct {
	store *blob.Store

	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewServer 创建内容提供方
func NewServer(store *blob.Store) *Server {
	return &Server{store: store}
}

// Serve 在监听器上接受连接并处理请求
//
// 阻塞运行直到 ctx 取消或监听器关闭。单个连接的失败
//（身份验证不通过等）只记日志，不中断服务。
func (s *Server) Serve(ctx context.Context, ln *transport.Listener) error {
	logger.Info("开始提供内容", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrListenerClosed) || ctx.Err() != nil {
				return nil
			}
			logger.Warn("接受连接失败", "error", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConn(ctx, conn)
	}
}

// Close 停止接收新请求并等待在途请求结束
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.wg.Wait()
	return nil
}

// handleConn 处理单个连接上的所有流
func (s *Server) handleConn(ctx context.Context, conn *transport.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	remote := conn.RemoteNodeID()
	logger.Debug("连接已建立",
		"remote", remote.ShortString(),
		"addr", conn.RemoteAddr().String())

	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			logger.Debug("连接结束", "remote", remote.ShortString(), "reason", err)
			return
		}
		if s.closed.Load() {
			_ = stream.Close()
			return
		}

		s.wg.Add(1)
		go s.handleStream(stream)
	}
}

// handleStream 处理一次内容请求
func (s *Server) handleStream(stream *transport.Stream) {
	defer s.wg.Done()
	defer stream.Close()

	// 限时等待请求帧，防止对端开流后挂起
	_ = stream.SetReadDeadline(time.Now().Add(requestReadTimeout))
	req, err := readRequest(stream)
	if err != nil {
		logger.Warn("读取请求失败", "error", err)
		return
	}
	_ = stream.SetReadDeadline(time.Time{})

	lg := logger.With(
		"request_id", req.ID,
		"hash", req.Hash.ShortString(),
		"remote", stream.Conn().RemoteNodeID().ShortString())

	rc, entry, err := s.store.Open(req.Hash)
	if err != nil {
		s.refuse(stream, err)
		lg.Debug("请求被拒绝", "reason", err)
		return
	}
	defer rc.Close()

	outboard, err := s.store.Outboard(req.Hash)
	if err != nil {
		s.refuse(stream, err)
		lg.Warn("读取校验树失败", "error", err)
		return
	}

	resp := &Response{
		Status:       StatusOK,
		Size:         entry.Size,
		OutboardSize: int64(len(outboard)),
	}
	if err := writeResponse(stream, resp); err != nil {
		lg.Debug("写入响应失败", "error", err)
		return
	}
	if _, err := stream.Write(outboard); err != nil {
		lg.Debug("发送校验树失败", "error", err)
		return
	}

	n, err := io.Copy(stream, rc)
	if err != nil {
		lg.Debug("发送数据中断", "sent", n, "error", err)
		return
	}

	lg.Info("内容已发送", "bytes", n)
}

// refuse 回复失败响应
func (s *Server) refuse(stream *transport.Stream, cause error) {
	resp := &Response{Status: StatusError, Message: cause.Error()}
	if errors.Is(cause, blob.ErrNotFound) {
		// 不透出内部错误细节，未登记就是未登记
		resp = &Response{Status: StatusNotFound}
	}
	_ = writeResponse(stream, resp)
}
