package utils

import (
	"encoding/base64"
	"testing"
)

// 1x1 透明 PNG
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func TestDecodeMediaPayloadDataURL(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(tinyPNG)

	data, ext, err := DecodeMediaPayload(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != len(tinyPNG) {
		t.Fatalf("expected %d bytes, got %d", len(tinyPNG), len(data))
	}
	if ext != "png" {
		t.Fatalf("expected png extension, got %q", ext)
	}
}

func TestDecodeMediaPayloadBareBase64(t *testing.T) {
	// 无 data URL 前缀时 SplitDataURL 默认 image/jpeg
	data, ext, err := DecodeMediaPayload(base64.StdEncoding.EncodeToString(tinyPNG))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != len(tinyPNG) {
		t.Fatalf("expected %d bytes, got %d", len(tinyPNG), len(data))
	}
	if ext != "jpg" {
		t.Fatalf("expected jpg extension from default mime, got %q", ext)
	}
}

func TestDecodeMediaPayloadErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"invalid base64", "data:image/png;base64,!!!not-base64!!!"},
		{"data url without payload", "data:image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeMediaPayload(tt.payload); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExtensionFromMime(t *testing.T) {
	tests := []struct {
		mime     string
		expected string
	}{
		{"image/png", "png"},
		{"image/jpeg", "jpg"},
		{"image/webp", "webp"},
		{"image/gif", "gif"},
		{"image/svg+xml", "svg"},
		{"image/png; charset=utf-8", "png"},
		{"application/octet-stream", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtensionFromMime(tt.mime); got != tt.expected {
			t.Errorf("ExtensionFromMime(%q) = %q, expected %q", tt.mime, got, tt.expected)
		}
	}
}

func TestEnsureDataURL(t *testing.T) {
	if got := EnsureDataURL("abc"); got != "data:image/jpeg;base64,abc" {
		t.Fatalf("unexpected wrap: %q", got)
	}
	already := "data:image/png;base64,abc"
	if got := EnsureDataURL(already); got != already {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestSplitDataURL(t *testing.T) {
	mimeType, payload := SplitDataURL("data:image/png;base64,abc")
	if mimeType != "image/png" || payload != "abc" {
		t.Fatalf("got mime=%q payload=%q", mimeType, payload)
	}

	mimeType, payload = SplitDataURL("abc")
	if mimeType != "image/jpeg" || payload != "abc" {
		t.Fatalf("got mime=%q payload=%q", mimeType, payload)
	}

	mimeType, payload = SplitDataURL("data:image/png")
	if mimeType != "image/jpeg" || payload != "" {
		t.Fatalf("got mime=%q payload=%q", mimeType, payload)
	}
}
