// Package blob 实现内容寻址的本地索引
//
// blob 对外提供按 BLAKE3 根哈希寻址的内容条目。文件数据保留在
// 原始路径，索引只记录元信息与 Bao 校验树；目录以清单（manifest）
// 形式登记，清单本身也是一个可按哈希请求的内容条目。
//
// # 特性
//
//   - 索引持久化：BadgerDB 存储条目与清单记录
//   - 校验树：添加时一次计算 Bao outboard，供对端流式校验
//   - 热点缓存：LRU 缓存最近使用的校验树
//   - 零拷贝登记：Add 不复制文件内容
//
// # 键空间
//
//	b/<hash> 内容条目（文件路径或内联字节 + 校验树）
//	m/<hash> 目录清单
//
// # 使用示例
//
//	store, err := blob.NewStore(cfg.Blob)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	entry, err := store.Add("/data/video.mp4")
//	fmt.Println(entry.Hash)
package blob
