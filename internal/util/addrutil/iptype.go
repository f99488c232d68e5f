// Package addrutil 提供地址判断工具
//
// 地址一律使用 host:port 文本格式（IPv6 为 [host]:port）。
package addrutil

import (
	"net"
)

// ============================================================================
//                              IP 类型判断工具
// ============================================================================

// IsLoopbackAddr 判断地址是否是回环地址
//
// 支持格式：
//   - 127.0.0.1:4001
//   - [::1]:4001
func IsLoopbackAddr(addr string) bool {
	ip := ExtractIP(addr)
	if ip == nil {
		return false
	}
	return ip.IsLoopback()
}

// IsPrivateAddr 判断地址是否是私网地址
//
// 私网地址范围：
//   - 10.0.0.0/8
//   - 172.16.0.0/12
//   - 192.168.0.0/16
//   - fc00::/7 (IPv6 ULA)
//   - fe80::/10 (IPv6 链路本地)
func IsPrivateAddr(addr string) bool {
	ip := ExtractIP(addr)
	if ip == nil {
		return false
	}
	return ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// IsPublicAddr 判断地址是否是公网地址
//
// 公网地址：非回环、非私网、非链路本地的有效单播地址
func IsPublicAddr(addr string) bool {
	ip := ExtractIP(addr)
	if ip == nil {
		return false
	}
	return ip.IsGlobalUnicast() && !ip.IsPrivate() && !ip.IsLoopback()
}

// ExtractIP 从地址字符串中提取 IP 地址
//
// 支持格式：
//   - host:port: 1.2.3.4:4001
//   - [ipv6]:port: [::1]:4001
//   - 纯 IP: 1.2.3.4 / ::1
//
// 主机名地址（如 example.com:4001）无法判断 IP 类型，返回 nil。
func ExtractIP(addr string) net.IP {
	if addr == "" {
		return nil
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		// 可能不是 host:port 格式，尝试直接解析为 IP
		return net.ParseIP(addr)
	}
	return net.ParseIP(host)
}

// AddrType 返回地址类型描述
//
// 返回值：
//   - "loopback" - 回环地址
//   - "private" - 私网地址
//   - "public" - 公网地址
//   - "unknown" - 未知类型（主机名或无法解析的地址）
func AddrType(addr string) string {
	if IsLoopbackAddr(addr) {
		return "loopback"
	}
	if IsPrivateAddr(addr) {
		return "private"
	}
	if IsPublicAddr(addr) {
		return "public"
	}
	return "unknown"
}

// UsableIP 判断网卡地址是否适合对外公告
//
// link-local 地址离开本链路不可达，且 IPv6 形式还需要 zone 标识，
// 一律排除。
func UsableIP(ip net.IP) bool {
	if ip == nil || ip.IsUnspecified() || ip.IsMulticast() {
		return false
	}
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return false
	}
	return true
}
