package quic

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("transport closed")

	// ErrConnectionClosed 连接已关闭
	ErrConnectionClosed = errors.New("connection closed")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("listener closed")

	// ErrAlreadyListening 传输已在监听
	ErrAlreadyListening = errors.New("transport already listening")

	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = errors.New("invalid address")
)
