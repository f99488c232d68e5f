package beam

import (
	"net"
	"strconv"

	"github.com/dep2p/go-beam/internal/util/addrutil"
)

// ticketAddrs 返回票据中携带的可拨号地址
//
// 监听在通配地址（0.0.0.0 / ::）时展开为各网卡的具体地址，
// 否则直接使用监听地址。非通配监听下地址就是用户指定的那一个。
func (n *Node) ticketAddrs() []string {
	n.mu.RLock()
	ln := n.listener
	n.mu.RUnlock()

	if ln == nil {
		return nil
	}

	udpAddr, ok := ln.Addr().(*net.UDPAddr)
	if !ok {
		return []string{ln.Addr().String()}
	}
	if !udpAddr.IP.IsUnspecified() {
		return []string{udpAddr.String()}
	}
	return expandUnspecified(udpAddr.Port)
}

// expandUnspecified 将通配监听展开为各网卡地址
//
// 非回环地址排在前面，回环地址放在末尾兜底（同机拉取场景）。
func expandUnspecified(port int) []string {
	ifaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		logger.Warn("枚举网卡地址失败", "error", err)
		return nil
	}

	var addrs, loopback []string
	for _, a := range ifaceAddrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP
		if !addrutil.UsableIP(ip) {
			continue
		}

		hostPort := net.JoinHostPort(ip.String(), strconv.Itoa(port))
		if ip.IsLoopback() {
			loopback = append(loopback, hostPort)
		} else {
			addrs = append(addrs, hostPort)
		}
	}

	return append(addrs, loopback...)
}
