package addrutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want string
	}{
		{"IPv4 带端口", "192.168.1.10:4001", "192.168.1.10"},
		{"IPv6 带端口", "[::1]:4001", "::1"},
		{"纯 IPv4", "10.0.0.1", "10.0.0.1"},
		{"纯 IPv6", "fd00::1", "fd00::1"},
		{"主机名", "example.com:4001", ""},
		{"空字符串", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := ExtractIP(tt.addr)
			if tt.want == "" {
				assert.Nil(t, ip, "应无法提取 IP")
				return
			}
			assert.True(t, net.ParseIP(tt.want).Equal(ip), "提取的 IP 应一致")
		})
	}
}

func TestAddrType(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"127.0.0.1:4001", "loopback"},
		{"[::1]:4001", "loopback"},
		{"192.168.1.10:4001", "private"},
		{"10.1.2.3:9000", "private"},
		{"[fd00::1]:4001", "private"},
		{"8.8.8.8:4001", "public"},
		{"[2001:db8::1]:4001", "public"},
		{"example.com:4001", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AddrType(tt.addr), "地址 %q 分类错误", tt.addr)
	}
}

func TestUsableIP(t *testing.T) {
	assert.False(t, UsableIP(nil), "nil 不可用")
	assert.False(t, UsableIP(net.ParseIP("0.0.0.0")), "通配地址不可用")
	assert.False(t, UsableIP(net.ParseIP("::")), "IPv6 通配地址不可用")
	assert.False(t, UsableIP(net.ParseIP("fe80::1")), "链路本地地址不可用")
	assert.False(t, UsableIP(net.ParseIP("224.0.0.1")), "组播地址不可用")
	assert.True(t, UsableIP(net.ParseIP("127.0.0.1")), "回环地址可用（同机场景）")
	assert.True(t, UsableIP(net.ParseIP("192.168.1.10")), "私网地址可用")
	assert.True(t, UsableIP(net.ParseIP("8.8.8.8")), "公网地址可用")
}

func TestSortDialAddrs(t *testing.T) {
	t.Run("回环地址排到最后", func(t *testing.T) {
		got := SortDialAddrs([]string{
			"127.0.0.1:4001",
			"192.168.1.10:4001",
			"8.8.8.8:4001",
			"[::1]:4001",
		})
		assert.Equal(t, []string{
			"192.168.1.10:4001",
			"8.8.8.8:4001",
			"127.0.0.1:4001",
			"[::1]:4001",
		}, got)
	})

	t.Run("非回环地址保持原序", func(t *testing.T) {
		addrs := []string{"8.8.8.8:1", "192.168.0.2:1", "example.com:1"}
		assert.Equal(t, addrs, SortDialAddrs(addrs))
	})

	t.Run("单地址原样返回", func(t *testing.T) {
		addrs := []string{"127.0.0.1:4001"}
		assert.Equal(t, addrs, SortDialAddrs(addrs))
	})

	t.Run("空列表", func(t *testing.T) {
		assert.Empty(t, SortDialAddrs(nil))
	})
}
