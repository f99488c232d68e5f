package transfer

import "time"

const (
	// ProtocolID 传输协议标识
	//
	// ALPN 协商用 beam/1（见 tls 包的默认 NextProtos），
	// 本标识用于日志与将来的多协议复用。
	ProtocolID = "/beam/transfer/1.0.0"

	// maxFrameSize 控制帧长度上限
	//
	// 请求与响应都是小消息，超长的长度前缀视为恶意输入。
	maxFrameSize = 1 << 20

	// maxOutboardSize 校验树长度上限
	//
	// 16 KiB 组的校验树约为数据量的 1/256，
	// 256 MiB 的树对应约 64 GiB 内容。
	maxOutboardSize = 256 << 20

	// requestReadTimeout 提供方等待请求帧的时限
	//
	// 防止对端打开流后不发请求占住处理协程。
	requestReadTimeout = 30 * time.Second
)
