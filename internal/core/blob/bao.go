package blob

import (
	"bytes"
	"fmt"
	"io"

	"lukechampine.com/blake3"
	"lukechampine.com/blake3/bao"

	"github.com/dep2p/go-beam/pkg/types"
)

// baoGroupLog 校验树块组大小（log2 个 1 KiB chunk），4 即 16 KiB 一组
//
// 组越小校验粒度越细但树越大；16 KiB 组的树约为数据量的 1/256。
const baoGroupLog = 4

// HashBytes 计算字节串的 BLAKE3 根哈希
//
// 与 Bao 校验树的根哈希一致：同一内容无论整体哈希还是
// 流式校验，得到的都是同一个根。
func HashBytes(data []byte) types.Hash {
	return types.Hash(blake3.Sum256(data))
}

// ComputeOutboard 流式计算内容的 Bao 校验树与根哈希
//
// outboard 为分离形式，不含数据本身；r 必须恰好提供 size 字节。
func ComputeOutboard(r io.Reader, size int64) (types.Hash, []byte, error) {
	buf := make([]byte, bao.EncodedSize(int(size), baoGroupLog, true))
	root, err := bao.Encode(&sliceWriterAt{buf: buf}, r, size, baoGroupLog, true)
	if err != nil {
		return types.EmptyHash, nil, fmt.Errorf("计算校验树失败: %w", err)
	}
	return types.Hash(root), buf, nil
}

// ComputeOutboardBuf 对内存中的字节串计算校验树与根哈希
func ComputeOutboardBuf(data []byte) (types.Hash, []byte) {
	outboard, root := bao.EncodeBuf(data, baoGroupLog, true)
	return types.Hash(root), outboard
}

// VerifyStream 边读边校验数据流并写入 dst
//
// 任何一组数据与校验树不符即返回 ErrVerificationFailed；
// 此时已写入 dst 的前缀仍是通过校验的字节。
func VerifyStream(dst io.Writer, data io.Reader, outboard []byte, root types.Hash) error {
	ok, err := bao.Decode(dst, data, bytes.NewReader(outboard), baoGroupLog, [32]byte(root))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	if !ok {
		return ErrVerificationFailed
	}
	return nil
}

// VerifyBuf 校验内存中的完整字节串
func VerifyBuf(data, outboard []byte, root types.Hash) bool {
	return bao.VerifyBuf(data, outboard, baoGroupLog, [32]byte(root))
}

// sliceWriterAt 在预分配切片上实现 io.WriterAt
type sliceWriterAt struct {
	buf []byte
}

func (w *sliceWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(w.buf)) {
		return 0, io.ErrShortWrite
	}
	copy(w.buf[off:], p)
	return len(p), nil
}
