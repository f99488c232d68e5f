package quic

import (
	"time"

	"github.com/quic-go/quic-go"

	"github.com/dep2p/go-beam/pkg/types"
)

// Stream QUIC 流封装
type Stream struct {
	quicStream *quic.Stream
	conn       *Conn
}

// newStream 创建流封装
func newStream(qs *quic.Stream, conn *Conn) *Stream {
	return &Stream{
		quicStream: qs,
		conn:       conn,
	}
}

// Read 从流中读取数据
func (s *Stream) Read(p []byte) (int, error) {
	return s.quicStream.Read(p)
}

// Write 向流写入数据
func (s *Stream) Write(p []byte) (int, error) {
	return s.quicStream.Write(p)
}

// Close 关闭写端并等待对端确认
func (s *Stream) Close() error {
	return s.quicStream.Close()
}

// CloseRead 关闭读端，丢弃后续到达的数据
func (s *Stream) CloseRead() error {
	s.quicStream.CancelRead(quic.StreamErrorCode(0))
	return nil
}

// ID 返回流标识
func (s *Stream) ID() types.StreamID {
	return types.StreamID(s.quicStream.StreamID())
}

// Conn 返回所属连接
func (s *Stream) Conn() *Conn {
	return s.conn
}

// SetDeadline 设置读写超时
func (s *Stream) SetDeadline(t time.Time) error {
	return s.quicStream.SetDeadline(t)
}

// SetReadDeadline 设置读超时
func (s *Stream) SetReadDeadline(t time.Time) error {
	return s.quicStream.SetReadDeadline(t)
}

// SetWriteDeadline 设置写超时
func (s *Stream) SetWriteDeadline(t time.Time) error {
	return s.quicStream.SetWriteDeadline(t)
}
