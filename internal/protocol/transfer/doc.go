// Package transfer 实现内容传输协议
//
// 协议在一条 QUIC 流上完成一次内容交换：
//
//	拉取方                                提供方
//	  |--- Request{id, hash} ------------->|
//	  |<-- Response{status, size, obSize} -|
//	  |<-- 校验树（obSize 字节）------------|
//	  |<-- 数据（size 字节）----------------|
//
// 请求与响应是 varint 长度前缀的 protobuf wire format 帧，
// 校验树与数据紧随响应帧之后以原始字节流式传输。拉取方边收边按
// Bao 校验树验证，任何一组数据不符立即中断，落盘的字节永远是
// 通过校验的。
//
// # 目录传输
//
// 目录以清单为根：清单本身是一个普通的内容条目（哈希可验证），
// 拉取方先取清单，再按清单逐个拉取文件。清单中的相对路径在写盘
// 前做越界检查。
//
// # 进度事件
//
// Fetch 返回的事件通道按发生顺序送出 EventConnected、EventManifest、
// EventRequested、EventReceiving、EventFileDone，最后必然是
// EventDone 或 EventFailed 之一，然后通道关闭。进度类事件在消费
// 不及时时会被丢弃，终态事件保证送达。
package transfer
