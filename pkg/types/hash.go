package types

import (
	"encoding/hex"

	"github.com/mr-tron/base58"
)

// ============================================================================
//                              Hash - 内容标识
// ============================================================================

// HashSize 内容哈希长度（字节）
const HashSize = 32

// Hash 内容唯一标识符
//
// BLAKE3 根哈希（32 字节）。内容寻址的核心：相同内容必然得到
// 相同 Hash，传输完成后按 Hash 逐段校验数据完整性。
//
// 计算逻辑在 blob 包中，本类型只承载值。
type Hash [HashSize]byte

// EmptyHash 空哈希
var EmptyHash Hash

// String 返回 Hash 的 Base58 字符串表示
func (h Hash) String() string {
	if h.IsEmpty() {
		return ""
	}
	return base58.Encode(h[:])
}

// ShortString 返回 Hash 的短字符串表示
//
// 格式：Base58 前 8 个字符，用于日志中的简短标识。
func (h Hash) ShortString() string {
	s := h.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Hex 返回 Hash 的十六进制表示
//
// 用于与外部工具（b3sum 等）比对。
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Bytes 返回 Hash 的字节切片
func (h Hash) Bytes() []byte {
	return h[:]
}

// Equal 比较两个 Hash 是否相等
func (h Hash) Equal(other Hash) bool {
	return h == other
}

// IsEmpty 检查 Hash 是否为空
func (h Hash) IsEmpty() bool {
	return h == EmptyHash
}

// HashFromBytes 从字节切片创建 Hash
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != HashSize {
		return EmptyHash, ErrInvalidHash
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// ParseHash 从字符串解析 Hash
//
// 仅支持 Base58 编码（票据与命令行输入的规范格式）。
func ParseHash(s string) (Hash, error) {
	if s == "" {
		return EmptyHash, ErrInvalidHash
	}

	b, err := base58.Decode(s)
	if err != nil {
		return EmptyHash, ErrInvalidHash
	}
	if len(b) != HashSize {
		return EmptyHash, ErrInvalidHash
	}

	var h Hash
	copy(h[:], b)
	return h, nil
}
