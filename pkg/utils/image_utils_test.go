package utils

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R'}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	webpHeader = []byte{'R', 'I', 'F', 'F', 0x24, 0x00, 0x00, 0x00, 'W', 'E', 'B', 'P', 'V', 'P', '8', ' '}
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		suffix string
		mime   string
	}{
		{"png", pngHeader, "png", "image/png"},
		{"jpeg", jpegHeader, "jpg", "image/jpeg"},
		{"gif87a", []byte("GIF87a\x01\x00\x01\x00"), "gif", "image/gif"},
		{"gif89a", []byte("GIF89a\x01\x00\x01\x00"), "gif", "image/gif"},
		{"webp", webpHeader, "webp", "image/webp"},
		{"bmp", []byte("BM\x36\x00\x00\x00"), "bmp", "image/bmp"},
		{"tiff little endian", []byte{'I', 'I', 0x2A, 0x00, 0x08}, "tif", "image/tiff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, ok := DetectType(tt.data)
			require.True(t, ok)
			assert.Equal(t, tt.suffix, typ.Suffix)
			assert.Equal(t, tt.mime, typ.MimeType)
		})
	}
}

func TestDetectTypeUnrecognized(t *testing.T) {
	inputs := map[string][]byte{
		"empty":        nil,
		"text":         []byte("hello world"),
		"pdf":          []byte("%PDF-1.7"),
		"short png":    pngHeader[:4],
		"riff no webp": []byte("RIFF\x24\x00\x00\x00WAVEfmt "),
		"riff short":   []byte("RIFF\x24\x00"),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			_, ok := DetectType(data)
			assert.False(t, ok)
		})
	}
}

func TestContentKeyIsStable(t *testing.T) {
	first := ContentKey(pngHeader, "png")
	second := ContentKey(append([]byte(nil), pngHeader...), "png")

	assert.Equal(t, first, second)
	assert.True(t, strings.HasSuffix(first, ".png"))
	assert.Len(t, strings.TrimSuffix(first, ".png"), 64)
	assert.NotEqual(t, first, ContentKey(jpegHeader, "png"))
}

func TestDecodeBase64(t *testing.T) {
	data, err := DecodeBase64(base64.StdEncoding.EncodeToString(jpegHeader))
	require.NoError(t, err)
	assert.Equal(t, jpegHeader, data)

	_, err = DecodeBase64("not*base64")
	assert.ErrorIs(t, err, ErrInvalidBase64)
}
