package transfer

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_ThrottledProgress(t *testing.T) {
	mock := clock.NewMock()
	events := make(chan Event, 16)
	track := newTracker(mock, events, "a.bin", testHash(1), 10_000)

	// 间隔未到，不发进度
	_, err := track.Write(make([]byte, 1000))
	require.NoError(t, err)
	assert.Empty(t, events)

	// 越过节流间隔后的下一次写入发出进度
	mock.Add(progressInterval + 50*time.Millisecond)
	_, err = track.Write(make([]byte, 1000))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev, ok := (<-events).(EventReceiving)
	require.True(t, ok)
	assert.Equal(t, "a.bin", ev.Name)
	assert.Equal(t, testHash(1), ev.Hash)
	assert.Equal(t, int64(2000), ev.Offset)
	assert.Equal(t, int64(10_000), ev.Total)
	assert.InDelta(t, 8000.0, ev.Rate, 1.0, "250ms 收到 2000 字节应折算 8000 B/s")

	// 刚发过，再写一次不应重复发
	_, err = track.Write(make([]byte, 1000))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTracker_NoProgressAtEnd(t *testing.T) {
	mock := clock.NewMock()
	events := make(chan Event, 16)
	track := newTracker(mock, events, "a.bin", testHash(1), 2000)

	mock.Add(time.Second)
	_, err := track.Write(make([]byte, 2000))
	require.NoError(t, err)
	assert.Empty(t, events, "末尾位置由 EventFileDone 覆盖，不应再发进度")
}

func TestTracker_NilEventsSafe(t *testing.T) {
	mock := clock.NewMock()
	track := newTracker(mock, nil, "", testHash(1), 5000)

	mock.Add(time.Second)
	n, err := track.Write(make([]byte, 1000))
	require.NoError(t, err)
	assert.Equal(t, 1000, n)
	assert.Equal(t, int64(1000), track.offset)
}

func TestTracker_Elapsed(t *testing.T) {
	mock := clock.NewMock()
	track := newTracker(mock, nil, "", testHash(1), 100)

	mock.Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, track.elapsed())
}
