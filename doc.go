// Package beam 提供点对点内容寻址传输节点
//
// beam 在两个节点之间直接传输文件或目录，不经过任何中间服务器。
// 内容按 BLAKE3 哈希寻址，接收端对每一段数据做增量校验，
// 落盘的字节保证与发送端登记的内容完全一致。
//
// 架构层次：
//   - API Layer: Node（本层，用户直接交互）
//   - Protocol Layer: Transfer（请求与校验流）
//   - Core Layer: Identity, TLS, Transport(QUIC), Blob Store
//
// 发送端：
//
//	node, err := beam.New(ctx, beam.WithDataDir("~/.beam"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := node.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Stop(context.Background())
//
//	ticket, err := node.Serve("./photos")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("分享此票据:", ticket.String())
//
// 接收端：
//
//	ticket, _ := beam.ParseTicket(encoded)
//	events, err := node.Fetch(ctx, ticket, "./downloads")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range events {
//	    switch e := ev.(type) {
//	    case beam.EventFileDone:
//	        fmt.Println("完成:", e.Name)
//	    case beam.EventFailed:
//	        log.Fatal(e.Err)
//	    }
//	}
//
// 节点身份是一把 Ed25519 密钥，公钥即节点 ID。连接建立在 QUIC 之上，
// 双方在 TLS 握手中互验对方身份，票据中的 NodeID 决定了信任锚点，
// 因此拿到票据的人只能从票据签发者处取到对应哈希的内容。
package beam
