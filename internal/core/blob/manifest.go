package blob

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-beam/pkg/types"
)

// 清单记录的 protobuf 字段编号
const (
	manifestFieldEntry = protowire.Number(1)

	manifestEntryFieldName = protowire.Number(1)
	manifestEntryFieldHash = protowire.Number(2)
	manifestEntryFieldSize = protowire.Number(3)
)

// maxManifestEntries 清单条目数上限（防御异常输入）
const maxManifestEntries = 65536

// ManifestEntry 清单中的一个文件
type ManifestEntry struct {
	// Name 目录内的相对路径（斜杠分隔）
	Name string

	// Hash 文件内容哈希
	Hash types.Hash

	// Size 文件字节数
	Size int64
}

// Manifest 目录清单
//
// 清单按文件名字典序排列，同一目录内容必然得到相同的清单字节，
// 因此清单哈希也是确定的。
type Manifest struct {
	Entries []ManifestEntry
}

// TotalSize 返回清单所有文件的字节数之和
func (m *Manifest) TotalSize() int64 {
	var total int64
	for _, e := range m.Entries {
		total += e.Size
	}
	return total
}

// EncodeManifest 编码清单
func EncodeManifest(m *Manifest) []byte {
	var buf []byte
	for _, e := range m.Entries {
		var entry []byte
		entry = protowire.AppendTag(entry, manifestEntryFieldName, protowire.BytesType)
		entry = protowire.AppendString(entry, e.Name)
		entry = protowire.AppendTag(entry, manifestEntryFieldHash, protowire.BytesType)
		entry = protowire.AppendBytes(entry, e.Hash.Bytes())
		entry = protowire.AppendTag(entry, manifestEntryFieldSize, protowire.VarintType)
		entry = protowire.AppendVarint(entry, uint64(e.Size))

		buf = protowire.AppendTag(buf, manifestFieldEntry, protowire.BytesType)
		buf = protowire.AppendBytes(buf, entry)
	}
	return buf
}

// DecodeManifest 解码清单
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed tag", ErrInvalidManifest)
		}
		b = b[n:]

		switch {
		case num == manifestFieldEntry && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed entry", ErrInvalidManifest)
			}
			b = b[n:]

			entry, err := decodeManifestEntry(v)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, entry)
			if len(m.Entries) > maxManifestEntries {
				return nil, fmt.Errorf("%w: too many entries", ErrInvalidManifest)
			}

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed field", ErrInvalidManifest)
			}
			b = b[n:]
		}
	}
	return &m, nil
}

// decodeManifestEntry 解码清单中的单个文件记录
func decodeManifestEntry(data []byte) (ManifestEntry, error) {
	var e ManifestEntry
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return e, fmt.Errorf("%w: malformed entry tag", ErrInvalidManifest)
		}
		b = b[n:]

		switch {
		case num == manifestEntryFieldName && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return e, fmt.Errorf("%w: malformed entry name", ErrInvalidManifest)
			}
			b = b[n:]
			e.Name = string(v)

		case num == manifestEntryFieldHash && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return e, fmt.Errorf("%w: malformed entry hash", ErrInvalidManifest)
			}
			b = b[n:]
			h, err := types.HashFromBytes(v)
			if err != nil {
				return e, fmt.Errorf("%w: entry hash: %v", ErrInvalidManifest, err)
			}
			e.Hash = h

		case num == manifestEntryFieldSize && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return e, fmt.Errorf("%w: malformed entry size", ErrInvalidManifest)
			}
			b = b[n:]
			e.Size = int64(v)

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return e, fmt.Errorf("%w: malformed entry field", ErrInvalidManifest)
			}
			b = b[n:]
		}
	}

	if e.Name == "" {
		return e, fmt.Errorf("%w: entry missing name", ErrInvalidManifest)
	}
	if e.Hash.IsEmpty() {
		return e, fmt.Errorf("%w: entry missing hash", ErrInvalidManifest)
	}
	return e, nil
}
