package beam

import (
	"github.com/dep2p/go-beam/internal/core/blob"
	"github.com/dep2p/go-beam/internal/protocol/transfer"
	"github.com/dep2p/go-beam/pkg/types"
)

// 根包通过类型别名暴露常用类型，调用方无需直接依赖内部包。

// ════════════════════════════════════════════════════════════════════════════
//                              标识类型
// ════════════════════════════════════════════════════════════════════════════

// NodeID 节点标识（Ed25519 公钥）
type NodeID = types.NodeID

// Hash 内容哈希（BLAKE3 根哈希）
type Hash = types.Hash

// Ticket 分享票据
type Ticket = types.Ticket

// ParseTicket 解析 beam:// 票据字符串
func ParseTicket(s string) (*Ticket, error) {
	return types.ParseTicket(s)
}

// ParseHash 解析 Base58 编码的内容哈希
func ParseHash(s string) (Hash, error) {
	return types.ParseHash(s)
}

// ════════════════════════════════════════════════════════════════════════════
//                              内容条目
// ════════════════════════════════════════════════════════════════════════════

// Entry 内容索引条目
type Entry = blob.Entry

// Manifest 目录清单
type Manifest = blob.Manifest

// ════════════════════════════════════════════════════════════════════════════
//                              传输事件
// ════════════════════════════════════════════════════════════════════════════

// Event 拉取过程中的进度事件
//
// Fetch 返回的通道按发生顺序投递事件，终态事件（EventDone/EventFailed）
// 保证送达，进度事件（EventReceiving）在消费跟不上时可能被丢弃。
type Event = transfer.Event

type (
	// EventConnected 已连接到提供方
	EventConnected = transfer.EventConnected

	// EventManifest 已取得目录清单
	EventManifest = transfer.EventManifest

	// EventRequested 已发出单个内容请求
	EventRequested = transfer.EventRequested

	// EventReceiving 正在接收（含进度与速率）
	EventReceiving = transfer.EventReceiving

	// EventFileDone 单个文件完成
	EventFileDone = transfer.EventFileDone

	// EventDone 全部完成
	EventDone = transfer.EventDone

	// EventFailed 拉取失败
	EventFailed = transfer.EventFailed
)
