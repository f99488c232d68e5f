// Package lib 包含基础设施工具库
//
// 本目录包含与架构组件无关的通用工具库：
//
//   - crypto: 密码学原语（Ed25519 密钥的生成与序列化）
//   - log: 日志封装
//
// # 与 pkg/ 其他目录的关系
//
// pkg/ 目录包含两类内容：
//
//   - types/: 公共类型定义（NodeID、Hash、Ticket）
//   - lib/: 基础设施工具库（本目录）
//
// # 使用示例
//
//	import (
//	    "github.com/dep2p/go-beam/pkg/lib/crypto"
//	    "github.com/dep2p/go-beam/pkg/lib/log"
//	)
package lib
