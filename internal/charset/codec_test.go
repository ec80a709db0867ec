package charset

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		encoding string
	}{
		{"ascii as utf-8", "hello world", "utf-8"},
		{"japanese as utf-8", "こんにちは世界", "utf-8"},
		{"japanese as cp932", "日本語のテキストです", "cp932"},
		{"alias spelling reaches same codec", "カタカナとひらがな", "shift_jis"},
		{"japanese as euc-jp", "昔の文字コード", "euc-jp"},
		{"latin as windows-1252", "naïve café", "windows-1252"},
		{"mixed as iso-2022-jp", "Hello 世界", "iso-2022-jp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Encode(tt.text, tt.encoding)
			if err != nil {
				t.Fatalf("Encode(%q, %q): %v", tt.text, tt.encoding, err)
			}
			got, err := Decode(raw, tt.encoding)
			if err != nil {
				t.Fatalf("Decode(..., %q): %v", tt.encoding, err)
			}
			if got != tt.text {
				t.Errorf("round trip through %s = %q, want %q", tt.encoding, got, tt.text)
			}
		})
	}
}

func TestEncodeUnrepresentable(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		encoding string
	}{
		{"euro sign in cp932", "price: €100", "cp932"},
		{"japanese in windows-1252", "日本語", "windows-1252"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.text, tt.encoding)
			if err == nil {
				t.Fatalf("Encode(%q, %q) succeeded, want EncodeError", tt.text, tt.encoding)
			}
			var encErr *EncodeError
			if !errors.As(err, &encErr) {
				t.Fatalf("Encode(%q, %q) error = %T, want *EncodeError", tt.text, tt.encoding, err)
			}
			if encErr.Encoding != tt.encoding {
				t.Errorf("EncodeError.Encoding = %q, want %q", encErr.Encoding, tt.encoding)
			}
			if !strings.Contains(err.Error(), "utf-8") {
				t.Errorf("error %q does not point at utf-8 as the way out", err)
			}
		})
	}
}

func TestEncodeUnknownEncoding(t *testing.T) {
	_, err := Encode("hello", "martian-5")
	if err == nil {
		t.Fatal("Encode with unknown encoding succeeded, want EncodeError")
	}
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("error = %T, want *EncodeError", err)
	}
	if encErr.Encoding != "martian-5" {
		t.Errorf("EncodeError.Encoding = %q, want %q", encErr.Encoding, "martian-5")
	}
}

func TestDecodeLenientOnInvalidBytes(t *testing.T) {
	raw := []byte{'a', 0xFF, 0xFE, 'b'}
	got, err := Decode(raw, "utf-8")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !strings.Contains(got, "�") {
		t.Errorf("Decode(%v) = %q, want replacement characters for invalid bytes", raw, got)
	}
	if !strings.HasPrefix(got, "a") || !strings.HasSuffix(got, "b") {
		t.Errorf("Decode(%v) = %q, want surrounding valid bytes preserved", raw, got)
	}
}

func TestDecodeLenientOnTruncatedMultibyte(t *testing.T) {
	raw, err := Encode("日本語", "cp932")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(raw[:len(raw)-1], "cp932")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !strings.Contains(got, "�") {
		t.Errorf("Decode of truncated bytes = %q, want a replacement character", got)
	}
	if !strings.HasPrefix(got, "日本") {
		t.Errorf("Decode of truncated bytes = %q, want intact leading characters", got)
	}
}

func TestDecodeUnknownEncoding(t *testing.T) {
	if _, err := Decode([]byte("hi"), "martian-5"); err == nil {
		t.Error("Decode with unknown encoding succeeded, want error")
	}
}
