// Package quic 实现 QUIC 传输层
//
// 传输层在一个共享 UDP socket 上同时监听与拨号，连接建立时
// 由 TLS 凭证解析器完成双向身份验证，成功后从连接状态提取
// 对端 NodeID，上层协议据此识别对端。
//
// # 核心功能
//
//   - 共享 socket：监听与拨号复用同一端口
//   - 身份绑定：每条连接携带经 TLS 验证的对端 NodeID
//   - 流复用：单连接上多条双向流
//
// # 使用示例
//
//	tr := quic.New(builder, cfg.Transport)
//	listener, _ := tr.Listen("0.0.0.0:4433")
//	conn, _ := tr.Dial(ctx, "198.51.100.7:4433", serverID)
package quic
