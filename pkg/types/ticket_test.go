package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"google.golang.org/protobuf/encoding/protowire"
)

func testTicket() *Ticket {
	var id NodeID
	for i := range id {
		id[i] = byte(i + 1)
	}
	var h Hash
	for i := range h {
		h[i] = byte(0xff - i)
	}
	return NewTicket(id, []string{"127.0.0.1:4001", "[::1]:4001"}, h, false)
}

// TestTicket_RoundTrip 测试票据编解码往返
func TestTicket_RoundTrip(t *testing.T) {
	ticket := testTicket()
	ticket.Manifest = true

	encoded, err := ticket.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "beam://") {
		t.Errorf("missing beam:// prefix: %s", encoded)
	}

	decoded, err := ParseTicket(encoded)
	if err != nil {
		t.Fatalf("ParseTicket failed: %v", err)
	}

	if !decoded.NodeID.Equal(ticket.NodeID) {
		t.Error("NodeID mismatch")
	}
	if !decoded.Hash.Equal(ticket.Hash) {
		t.Error("Hash mismatch")
	}
	if len(decoded.Addrs) != 2 {
		t.Errorf("Addrs count = %d, want 2", len(decoded.Addrs))
	}
	if !decoded.Manifest {
		t.Error("Manifest flag lost")
	}
}

// TestTicket_ParseInvalid 测试无效输入
func TestTicket_ParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"missing prefix", "dGVzdA"},
		{"empty payload", "beam://"},
		{"bad base58", "beam://0OIl"},
		{"too long", "beam://" + strings.Repeat("1", 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTicket(tt.input)
			if err == nil {
				t.Fatalf("ParseTicket(%q) expected error", tt.input)
			}
			if !errors.Is(err, ErrInvalidTicket) {
				t.Errorf("error should wrap ErrInvalidTicket, got %v", err)
			}
		})
	}
}

// TestTicket_MissingFields 测试缺失必需字段
func TestTicket_MissingFields(t *testing.T) {
	// 只含地址字段的载荷：缺 NodeID 和 Hash
	var buf []byte
	buf = protowire.AppendTag(buf, ticketFieldAddr, protowire.BytesType)
	buf = protowire.AppendString(buf, "127.0.0.1:4001")

	_, err := ParseTicket(ticketPrefix + base58.Encode(buf))
	if err == nil {
		t.Fatal("expected error for payload without node ID")
	}
	if !errors.Is(err, ErrInvalidTicket) {
		t.Errorf("error should wrap ErrInvalidTicket, got %v", err)
	}
}

// TestTicket_UnknownFieldSkipped 测试未知字段前向兼容
func TestTicket_UnknownFieldSkipped(t *testing.T) {
	ticket := testTicket()
	encoded, err := ticket.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// 在有效载荷末尾追加一个未知字段
	payload, err := base58.Decode(strings.TrimPrefix(encoded, ticketPrefix))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	payload = protowire.AppendTag(payload, protowire.Number(99), protowire.BytesType)
	payload = protowire.AppendString(payload, "future extension")

	decoded, err := ParseTicket(ticketPrefix + base58.Encode(payload))
	if err != nil {
		t.Fatalf("ParseTicket with unknown field failed: %v", err)
	}
	if !decoded.NodeID.Equal(ticket.NodeID) {
		t.Error("NodeID mismatch after skipping unknown field")
	}
}

// TestTicket_BadAddrsFiltered 测试无效地址被过滤而非报错
func TestTicket_BadAddrsFiltered(t *testing.T) {
	ticket := testTicket()
	ticket.Addrs = []string{
		"127.0.0.1:4001",   // 有效
		"",                 // 空
		"no-port",          // 缺端口
		"a;b:42",           // 危险字符
		"  10.0.0.1:9 ",    // 有效（应去除空格）
	}

	encoded, err := ticket.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, err := ParseTicket(encoded)
	if err != nil {
		t.Fatalf("ParseTicket failed: %v", err)
	}

	if len(decoded.Addrs) != 2 {
		t.Errorf("Addrs = %v, want 2 entries", decoded.Addrs)
	}
}

// TestTicket_EncodeMissingIdentity 测试编码前的字段校验
func TestTicket_EncodeMissingIdentity(t *testing.T) {
	ticket := testTicket()
	ticket.NodeID = EmptyNodeID
	if _, err := ticket.Encode(); err == nil {
		t.Error("expected error when encoding without node ID")
	}

	ticket = testTicket()
	ticket.Hash = EmptyHash
	if _, err := ticket.Encode(); err == nil {
		t.Error("expected error when encoding without hash")
	}
}
