package transfer

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/multiformats/go-varint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-beam/pkg/types"
)

// testHash 生成确定性的非空哈希
func testHash(seed byte) types.Hash {
	var h types.Hash
	for i := range h {
		h[i] = seed + byte(i)
	}
	return h
}

func TestRequestCodec(t *testing.T) {
	req := &Request{ID: uuid.NewString(), Hash: testHash(7)}

	decoded, err := decodeRequest(encodeRequest(req))
	require.NoError(t, err)
	assert.Equal(t, req.ID, decoded.ID)
	assert.Equal(t, req.Hash, decoded.Hash)
}

func TestRequestCodec_MissingHash(t *testing.T) {
	req := &Request{ID: uuid.NewString()}

	_, err := decodeRequest(encodeRequest(req))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestRequestCodec_Malformed(t *testing.T) {
	_, err := decodeRequest([]byte{0xFF})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestResponseCodec(t *testing.T) {
	cases := []*Response{
		{Status: StatusOK, Size: 123456, OutboardSize: 520},
		{Status: StatusNotFound},
		{Status: StatusError, Message: "索引已关闭"},
	}
	for _, resp := range cases {
		decoded, err := decodeResponse(encodeResponse(resp))
		require.NoError(t, err, "status=%s", resp.Status)
		assert.Equal(t, resp, decoded)
	}
}

func TestResponseCodec_UnknownStatus(t *testing.T) {
	resp := &Response{Status: Status(42)}

	_, err := decodeResponse(encodeResponse(resp))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "not_found", StatusNotFound.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "unknown(9)", Status(9).String())
}

func TestFrameRoundtrip(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeFrame(&buf, []byte("hello")))
	require.NoError(t, writeFrame(&buf, nil))
	require.NoError(t, writeFrame(&buf, []byte("world")))

	first, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), first)

	second, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Empty(t, second)

	third, err := readFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), third)
}

func TestReadFrame_TooLarge(t *testing.T) {
	header := varint.ToUvarint(maxFrameSize + 1)

	_, err := readFrame(bytes.NewReader(header))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestReadFrame_Truncated(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(varint.ToUvarint(100))
	buf.WriteString("short")

	_, err := readFrame(&buf)
	assert.Error(t, err)
}

func TestRequestResponseOverStream(t *testing.T) {
	// 模拟一条流上的完整交换布局：请求帧、响应帧、校验树、数据
	var wire bytes.Buffer

	req := &Request{ID: uuid.NewString(), Hash: testHash(3)}
	require.NoError(t, writeRequest(&wire, req))

	gotReq, err := readRequest(&wire)
	require.NoError(t, err)
	assert.Equal(t, req.Hash, gotReq.Hash)

	outboard := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	data := []byte("payload bytes")
	resp := &Response{Status: StatusOK, Size: int64(len(data)), OutboardSize: int64(len(outboard))}
	require.NoError(t, writeResponse(&wire, resp))
	wire.Write(outboard)
	wire.Write(data)

	gotResp, err := readResponse(&wire)
	require.NoError(t, err)
	assert.Equal(t, resp, gotResp)
	assert.Equal(t, append(outboard, data...), wire.Bytes(), "帧后应紧跟原始字节")
}
