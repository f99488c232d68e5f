// Package types 定义 Beam 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

var (
	// ErrInvalidNodeID 无效的节点ID
	ErrInvalidNodeID = errors.New("types: invalid node ID")

	// ErrInvalidHash 无效的内容哈希
	ErrInvalidHash = errors.New("types: invalid hash")

	// ErrInvalidTicket 无效的传输票据
	ErrInvalidTicket = errors.New("types: invalid ticket")
)
