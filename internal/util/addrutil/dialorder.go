package addrutil

// SortDialAddrs 返回按拨号优先级排列的地址副本
//
// 回环地址排到最后，其余地址保持原有顺序。票据生成方最了解
// 自己的网络环境，非回环地址的先后以票据给出的顺序为准；
// 回环地址只对同机拉取有意义，放在末尾兜底。
func SortDialAddrs(addrs []string) []string {
	if len(addrs) < 2 {
		return addrs
	}

	sorted := make([]string, 0, len(addrs))
	var loopback []string
	for _, addr := range addrs {
		if IsLoopbackAddr(addr) {
			loopback = append(loopback, addr)
			continue
		}
		sorted = append(sorted, addr)
	}
	return append(sorted, loopback...)
}
