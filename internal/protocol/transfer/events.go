package transfer

import (
	"time"

	"github.com/dep2p/go-beam/pkg/types"
)

// Event 拉取过程中的进度事件
//
// 事件从 Fetch 返回的通道送出，拉取结束后通道关闭。
// 消费方必须持续读取直到通道关闭，否则终态事件的发送会阻塞
// 拉取协程的收尾。
type Event interface {
	isEvent()
}

// EventConnected 已连接到提供方并完成身份验证
type EventConnected struct {
	// Node 提供方的节点标识（已经过 TLS 握手验证）
	Node types.NodeID

	// Addr 实际连上的地址
	Addr string
}

// EventManifest 已取得并校验目录清单
type EventManifest struct {
	Hash  types.Hash
	Files int
	Total int64
}

// EventRequested 已发出内容请求
type EventRequested struct {
	Name string
	Hash types.Hash
}

// EventReceiving 正在接收内容
type EventReceiving struct {
	Name   string
	Hash   types.Hash
	Offset int64
	Total  int64

	// Rate 平均吞吐（字节/秒）
	Rate float64
}

// EventFileDone 单个内容接收并通过校验
type EventFileDone struct {
	Name    string
	Hash    types.Hash
	Written int64
	Elapsed time.Duration
}

// EventDone 整个拉取成功结束
type EventDone struct {
	Files   int
	Written int64
	Elapsed time.Duration
}

// EventFailed 拉取失败
//
// 已写盘的完整文件保留，失败文件的暂存数据已清理。
type EventFailed struct {
	Err error
}

func (EventConnected) isEvent() {}
func (EventManifest) isEvent()  {}
func (EventRequested) isEvent() {}
func (EventReceiving) isEvent() {}
func (EventFileDone) isEvent()  {}
func (EventDone) isEvent()      {}
func (EventFailed) isEvent()    {}

// sendEvent 发送事件
//
// block 为 false 时通道满则丢弃（进度事件可丢），通道为 nil 时
// 直接丢弃；为 true 时阻塞直到送达（终态事件必达）。
func sendEvent(ch chan<- Event, ev Event, block bool) {
	if block {
		ch <- ev
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
