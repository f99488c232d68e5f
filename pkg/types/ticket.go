package types

import (
	"fmt"
	"net"
	"strings"

	"github.com/mr-tron/base58"
	"google.golang.org/protobuf/encoding/protowire"
)

// ============================================================================
//                              Ticket - 传输票据
// ============================================================================

// 票据载荷的 protobuf 字段编号
//
// 载荷采用 protobuf wire format 手工编码，不依赖代码生成，
// 未知字段在解码时跳过，保证前向兼容。
const (
	ticketFieldNodeID   = protowire.Number(1)
	ticketFieldAddr     = protowire.Number(2)
	ticketFieldHash     = protowire.Number(3)
	ticketFieldManifest = protowire.Number(4)
)

// ticketPrefix 票据字符串前缀
const ticketPrefix = "beam://"

// maxTicketLen 票据字符串长度上限（防止超长输入）
const maxTicketLen = 2048

// maxTicketAddrs 票据中地址提示数量上限
const maxTicketAddrs = 16

// Ticket 传输票据
//
// 用户友好的取回凭证，由提供方生成、接收方粘贴使用，
// 一个字符串同时携带身份、寻址与内容三要素。
//
// 设计理念：
//   - NodeID 是必需字段（必须知道向谁验证身份）
//   - Hash 是必需字段（必须知道取什么内容）
//   - Addrs 是地址提示（udp host:port，用于直连）
//   - Manifest 标记 Hash 指向清单（目录传输）还是单个文件
type Ticket struct {
	// NodeID 提供方节点身份（必需）
	NodeID NodeID

	// Addrs 地址提示（host:port 格式）
	Addrs []string

	// Hash 内容哈希（必需）
	Hash Hash

	// Manifest Hash 是否指向目录清单
	Manifest bool
}

// NewTicket 创建传输票据
func NewTicket(nodeID NodeID, addrs []string, hash Hash, manifest bool) *Ticket {
	return &Ticket{
		NodeID:   nodeID,
		Addrs:    addrs,
		Hash:     hash,
		Manifest: manifest,
	}
}

// Encode 编码为可分享的字符串
//
// 格式：beam://base58(protobuf(ticket))
func (t *Ticket) Encode() (string, error) {
	if t.NodeID.IsEmpty() {
		return "", fmt.Errorf("%w: missing node ID", ErrInvalidTicket)
	}
	if t.Hash.IsEmpty() {
		return "", fmt.Errorf("%w: missing hash", ErrInvalidTicket)
	}

	var buf []byte
	buf = protowire.AppendTag(buf, ticketFieldNodeID, protowire.BytesType)
	buf = protowire.AppendBytes(buf, t.NodeID.Bytes())
	for _, addr := range t.Addrs {
		buf = protowire.AppendTag(buf, ticketFieldAddr, protowire.BytesType)
		buf = protowire.AppendString(buf, addr)
	}
	buf = protowire.AppendTag(buf, ticketFieldHash, protowire.BytesType)
	buf = protowire.AppendBytes(buf, t.Hash.Bytes())
	if t.Manifest {
		buf = protowire.AppendTag(buf, ticketFieldManifest, protowire.VarintType)
		buf = protowire.AppendVarint(buf, 1)
	}

	return ticketPrefix + base58.Encode(buf), nil
}

// String 返回票据字符串，编码失败时返回空串
func (t *Ticket) String() string {
	s, err := t.Encode()
	if err != nil {
		return ""
	}
	return s
}

// ParseTicket 从字符串解析传输票据
//
// 安全检查：
//   - 前缀验证
//   - 长度上限
//   - Base58 解码
//   - 字段完整性（NodeID、Hash 必须存在且长度正确）
//   - 地址格式基本检查（host:port、危险字符过滤）
func ParseTicket(s string) (*Ticket, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidTicket)
	}

	if !strings.HasPrefix(s, ticketPrefix) {
		return nil, fmt.Errorf("%w: missing %s prefix", ErrInvalidTicket, ticketPrefix)
	}

	encoded := strings.TrimPrefix(s, ticketPrefix)
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidTicket)
	}
	if len(encoded) > maxTicketLen {
		return nil, fmt.Errorf("%w: payload too long (%d > %d)", ErrInvalidTicket, len(encoded), maxTicketLen)
	}

	payload, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}

	var ticket Ticket
	b := payload
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed payload", ErrInvalidTicket)
		}
		b = b[n:]

		switch {
		case num == ticketFieldNodeID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed node ID field", ErrInvalidTicket)
			}
			b = b[n:]
			id, err := NodeIDFromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("%w: node ID: %v", ErrInvalidTicket, err)
			}
			ticket.NodeID = id

		case num == ticketFieldAddr && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed addr field", ErrInvalidTicket)
			}
			b = b[n:]
			if addr, ok := sanitizeAddr(string(v)); ok {
				ticket.Addrs = append(ticket.Addrs, addr)
			}

		case num == ticketFieldHash && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed hash field", ErrInvalidTicket)
			}
			b = b[n:]
			h, err := HashFromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("%w: hash: %v", ErrInvalidTicket, err)
			}
			ticket.Hash = h

		case num == ticketFieldManifest && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed manifest field", ErrInvalidTicket)
			}
			b = b[n:]
			ticket.Manifest = v != 0

		default:
			// 跳过未知字段，保证前向兼容
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed payload", ErrInvalidTicket)
			}
			b = b[n:]
		}
	}

	if ticket.NodeID.IsEmpty() {
		return nil, fmt.Errorf("%w: missing node ID", ErrInvalidTicket)
	}
	if ticket.Hash.IsEmpty() {
		return nil, fmt.Errorf("%w: missing hash", ErrInvalidTicket)
	}
	if len(ticket.Addrs) > maxTicketAddrs {
		ticket.Addrs = ticket.Addrs[:maxTicketAddrs]
	}

	return &ticket, nil
}

// sanitizeAddr 校验并规范化地址提示
//
// 返回 false 表示地址应被丢弃（而非使解析失败：
// 地址只是提示，个别无效不影响票据整体有效性）。
func sanitizeAddr(addr string) (string, bool) {
	addr = strings.TrimSpace(addr)
	if addr == "" || len(addr) > 500 {
		return "", false
	}
	if strings.ContainsAny(addr, ";|&$`\n\r\\") {
		return "", false
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", false
	}
	return addr, true
}
