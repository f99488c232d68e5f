package transfer

import (
	"fmt"
	"io"

	"github.com/multiformats/go-varint"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-beam/pkg/types"
)

// 请求与响应的 protobuf 字段编号
const (
	requestFieldID   = protowire.Number(1)
	requestFieldHash = protowire.Number(2)

	responseFieldStatus   = protowire.Number(1)
	responseFieldSize     = protowire.Number(2)
	responseFieldOutboard = protowire.Number(3)
	responseFieldMessage  = protowire.Number(4)
)

// maxRequestIDLen 请求标识长度上限
const maxRequestIDLen = 64

// Status 响应状态
type Status uint8

const (
	// StatusOK 内容存在，响应帧后跟随校验树与数据
	StatusOK Status = iota + 1

	// StatusNotFound 内容未在提供方登记
	StatusNotFound

	// StatusError 提供方内部错误
	StatusError
)

// String 返回状态的字符串表示
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Request 内容请求
type Request struct {
	// ID 请求标识，用于两端日志关联
	ID string

	// Hash 请求的内容哈希
	Hash types.Hash
}

// Response 内容响应
//
// StatusOK 时 OutboardSize 与 Size 描述随后的字节布局：
// 先 OutboardSize 字节校验树，再 Size 字节数据。
type Response struct {
	// Status 处理结果
	Status Status

	// Size 内容字节数
	Size int64

	// OutboardSize 校验树字节数
	OutboardSize int64

	// Message 错误详情（StatusError 时）
	Message string
}

// ============================================================
//	消息编解码
// ============================================================

// encodeRequest 编码请求
func encodeRequest(req *Request) []byte {
	var buf []byte
	if req.ID != "" {
		buf = protowire.AppendTag(buf, requestFieldID, protowire.BytesType)
		buf = protowire.AppendString(buf, req.ID)
	}
	buf = protowire.AppendTag(buf, requestFieldHash, protowire.BytesType)
	buf = protowire.AppendBytes(buf, req.Hash.Bytes())
	return buf
}

// decodeRequest 解码请求
func decodeRequest(data []byte) (*Request, error) {
	var req Request
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed tag", ErrInvalidMessage)
		}
		b = b[n:]

		switch {
		case num == requestFieldID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed request id", ErrInvalidMessage)
			}
			b = b[n:]
			if len(v) > maxRequestIDLen {
				return nil, fmt.Errorf("%w: request id too long", ErrInvalidMessage)
			}
			req.ID = string(v)

		case num == requestFieldHash && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed hash", ErrInvalidMessage)
			}
			b = b[n:]
			h, err := types.HashFromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("%w: hash: %v", ErrInvalidMessage, err)
			}
			req.Hash = h

		default:
			// 跳过未知字段，保证前向兼容
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed field", ErrInvalidMessage)
			}
			b = b[n:]
		}
	}

	if req.Hash.IsEmpty() {
		return nil, fmt.Errorf("%w: missing hash", ErrInvalidMessage)
	}
	return &req, nil
}

// encodeResponse 编码响应
func encodeResponse(resp *Response) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, responseFieldStatus, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(resp.Status))
	if resp.Size > 0 {
		buf = protowire.AppendTag(buf, responseFieldSize, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(resp.Size))
	}
	if resp.OutboardSize > 0 {
		buf = protowire.AppendTag(buf, responseFieldOutboard, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(resp.OutboardSize))
	}
	if resp.Message != "" {
		buf = protowire.AppendTag(buf, responseFieldMessage, protowire.BytesType)
		buf = protowire.AppendString(buf, resp.Message)
	}
	return buf
}

// decodeResponse 解码响应
func decodeResponse(data []byte) (*Response, error) {
	var resp Response
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed tag", ErrInvalidMessage)
		}
		b = b[n:]

		switch {
		case num == responseFieldStatus && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed status", ErrInvalidMessage)
			}
			b = b[n:]
			resp.Status = Status(v)

		case num == responseFieldSize && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed size", ErrInvalidMessage)
			}
			b = b[n:]
			resp.Size = int64(v)

		case num == responseFieldOutboard && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed outboard size", ErrInvalidMessage)
			}
			b = b[n:]
			resp.OutboardSize = int64(v)

		case num == responseFieldMessage && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed message", ErrInvalidMessage)
			}
			b = b[n:]
			resp.Message = string(v)

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed field", ErrInvalidMessage)
			}
			b = b[n:]
		}
	}

	switch resp.Status {
	case StatusOK, StatusNotFound, StatusError:
	default:
		return nil, fmt.Errorf("%w: unknown status %d", ErrInvalidMessage, resp.Status)
	}
	return &resp, nil
}

// ============================================================
//	帧收发
// ============================================================

// writeFrame 写入一个 varint 长度前缀帧
func writeFrame(w io.Writer, payload []byte) error {
	header := varint.ToUvarint(uint64(len(payload)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("写入帧长度失败: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("写入帧载荷失败: %w", err)
	}
	return nil
}

// readFrame 读取一个 varint 长度前缀帧
func readFrame(r io.Reader) ([]byte, error) {
	size, err := varint.ReadUvarint(&byteReader{r: r})
	if err != nil {
		return nil, fmt.Errorf("读取帧长度失败: %w", err)
	}
	if size > maxFrameSize {
		return nil, fmt.Errorf("%w: frame size %d exceeds limit", ErrInvalidMessage, size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("读取帧载荷失败: %w", err)
	}
	return payload, nil
}

// writeRequest 将请求帧写入流
func writeRequest(w io.Writer, req *Request) error {
	return writeFrame(w, encodeRequest(req))
}

// readRequest 从流读取请求帧
func readRequest(r io.Reader) (*Request, error) {
	payload, err := readFrame(r)
	if err != nil {
		return nil, err
	}
	return decodeRequest(payload)
}

// writeResponse 将响应帧写入流
func writeResponse(w io.Writer, resp *Response) error {
	return writeFrame(w, encodeResponse(resp))
}

// readResponse 从流读取响应帧
func readResponse(r io.Reader) (*Response, error) {
	payload, err := readFrame(r)
	if err != nil {
		return nil, err
	}
	return decodeResponse(payload)
}

// byteReader 把 io.Reader 适配成 varint 需要的 io.ByteReader
type byteReader struct {
	r io.Reader
}

func (b *byteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
