package transfer

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-beam/pkg/types"
)

// progressInterval 进度事件的最小发射间隔
const progressInterval = 200 * time.Millisecond

// tracker 统计单个内容的接收进度
//
// 作为 io.Writer 挂在校验输出一侧，只统计通过校验的字节。
// 进度事件按 progressInterval 节流，末尾位置不再发进度
// （EventFileDone 会覆盖）。
type tracker struct {
	clk    clock.Clock
	events chan<- Event

	name  string
	hash  types.Hash
	total int64

	offset   int64
	started  time.Time
	lastEmit time.Time
}

// newTracker 创建进度统计器
func newTracker(clk clock.Clock, events chan<- Event, name string, hash types.Hash, total int64) *tracker {
	now := clk.Now()
	return &tracker{
		clk:      clk,
		events:   events,
		name:     name,
		hash:     hash,
		total:    total,
		started:  now,
		lastEmit: now,
	}
}

// Write 记录写入字节数并按需发射进度事件
func (t *tracker) Write(p []byte) (int, error) {
	t.offset += int64(len(p))

	now := t.clk.Now()
	if now.Sub(t.lastEmit) >= progressInterval && t.offset < t.total {
		t.lastEmit = now
		sendEvent(t.events, EventReceiving{
			Name:   t.name,
			Hash:   t.hash,
			Offset: t.offset,
			Total:  t.total,
			Rate:   t.rate(now),
		}, false)
	}
	return len(p), nil
}

// rate 返回到 now 为止的平均吞吐（字节/秒）
func (t *tracker) rate(now time.Time) float64 {
	elapsed := now.Sub(t.started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(t.offset) / elapsed
}

// elapsed 返回自开始接收以来经过的时间
func (t *tracker) elapsed() time.Duration {
	return t.clk.Now().Sub(t.started)
}
