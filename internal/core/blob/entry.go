package blob

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-beam/pkg/types"
)

// 条目记录的 protobuf 字段编号
const (
	entryFieldHash     = protowire.Number(1)
	entryFieldPath     = protowire.Number(2)
	entryFieldSize     = protowire.Number(3)
	entryFieldAdded    = protowire.Number(4)
	entryFieldOutboard = protowire.Number(5)
	entryFieldInline   = protowire.Number(6)
)

// Entry 内容条目
//
// 数据来源二选一：Path 指向磁盘上的原始文件（登记时不复制内容），
// 或 Inline 直接内联字节（目录清单等小内容）。Outboard 是添加时
// 一次算好的 Bao 校验树，供对端流式校验。
type Entry struct {
	// Hash 内容的 BLAKE3 根哈希
	Hash types.Hash

	// Path 文件绝对路径，内联条目为空
	Path string

	// Size 内容字节数
	Size int64

	// Added 登记时间
	Added time.Time

	// Outboard Bao 校验树（分离形式）
	Outboard []byte

	// Inline 内联内容字节，文件条目为 nil
	Inline []byte
}

// IsInline 报告条目内容是否内联在索引中
func (e *Entry) IsInline() bool {
	return len(e.Inline) > 0 || e.Path == ""
}

// encodeEntry 编码条目记录
func encodeEntry(e *Entry) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, entryFieldHash, protowire.BytesType)
	buf = protowire.AppendBytes(buf, e.Hash.Bytes())
	if e.Path != "" {
		buf = protowire.AppendTag(buf, entryFieldPath, protowire.BytesType)
		buf = protowire.AppendString(buf, e.Path)
	}
	buf = protowire.AppendTag(buf, entryFieldSize, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.Size))
	buf = protowire.AppendTag(buf, entryFieldAdded, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.Added.UnixNano()))
	if len(e.Outboard) > 0 {
		buf = protowire.AppendTag(buf, entryFieldOutboard, protowire.BytesType)
		buf = protowire.AppendBytes(buf, e.Outboard)
	}
	if len(e.Inline) > 0 {
		buf = protowire.AppendTag(buf, entryFieldInline, protowire.BytesType)
		buf = protowire.AppendBytes(buf, e.Inline)
	}
	return buf
}

// decodeEntry 解码条目记录
func decodeEntry(data []byte) (*Entry, error) {
	var e Entry
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed tag", ErrInvalidEntry)
		}
		b = b[n:]

		switch {
		case num == entryFieldHash && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed hash", ErrInvalidEntry)
			}
			b = b[n:]
			h, err := types.HashFromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("%w: hash: %v", ErrInvalidEntry, err)
			}
			e.Hash = h

		case num == entryFieldPath && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed path", ErrInvalidEntry)
			}
			b = b[n:]
			e.Path = string(v)

		case num == entryFieldSize && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed size", ErrInvalidEntry)
			}
			b = b[n:]
			e.Size = int64(v)

		case num == entryFieldAdded && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed added time", ErrInvalidEntry)
			}
			b = b[n:]
			e.Added = time.Unix(0, int64(v))

		case num == entryFieldOutboard && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed outboard", ErrInvalidEntry)
			}
			b = b[n:]
			e.Outboard = append([]byte(nil), v...)

		case num == entryFieldInline && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed inline data", ErrInvalidEntry)
			}
			b = b[n:]
			e.Inline = append([]byte(nil), v...)

		default:
			// 跳过未知字段，保证前向兼容
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed field", ErrInvalidEntry)
			}
			b = b[n:]
		}
	}

	if e.Hash.IsEmpty() {
		return nil, fmt.Errorf("%w: missing hash", ErrInvalidEntry)
	}
	return &e, nil
}
