package types

import (
	"bytes"
	"testing"
)

func TestHash(t *testing.T) {
	raw := make([]byte, HashSize)
	for i := range raw {
		raw[i] = byte(i)
	}

	t.Run("FromBytes", func(t *testing.T) {
		h, err := HashFromBytes(raw)
		if err != nil {
			t.Fatalf("HashFromBytes failed: %v", err)
		}
		if !bytes.Equal(h.Bytes(), raw) {
			t.Error("Bytes() 应返回原始字节")
		}
	})

	t.Run("ParseRoundTrip", func(t *testing.T) {
		h, _ := HashFromBytes(raw)
		parsed, err := ParseHash(h.String())
		if err != nil {
			t.Fatalf("ParseHash failed: %v", err)
		}
		if !parsed.Equal(h) {
			t.Errorf("round trip mismatch: got %s, want %s", parsed, h)
		}
	})

	t.Run("Hex", func(t *testing.T) {
		h, _ := HashFromBytes(raw)
		hx := h.Hex()
		if len(hx) != HashSize*2 {
			t.Errorf("Hex() len = %d, want %d", len(hx), HashSize*2)
		}
	})

	t.Run("ParseInvalid", func(t *testing.T) {
		tests := []struct {
			name  string
			input string
		}{
			{"empty", ""},
			{"not base58", "0OIl"},
			{"wrong length", "3mJr"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := ParseHash(tt.input); err == nil {
					t.Errorf("ParseHash(%q) expected error", tt.input)
				}
			})
		}
	})

	t.Run("IsEmpty", func(t *testing.T) {
		if !EmptyHash.IsEmpty() {
			t.Error("EmptyHash.IsEmpty() = false, want true")
		}
		h, _ := HashFromBytes(raw)
		if h.IsEmpty() {
			t.Error("非空 Hash 的 IsEmpty() 应为 false")
		}
	})

	t.Run("FromBytesWrongLength", func(t *testing.T) {
		if _, err := HashFromBytes(make([]byte, 31)); err == nil {
			t.Error("expected error for 31-byte input")
		}
	})
}
