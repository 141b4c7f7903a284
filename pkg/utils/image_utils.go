package utils

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrInvalidBase64 is returned by DecodeBase64 for payloads that are not standard base64.
var ErrInvalidBase64 = errors.New("invalid base64 payload")

type ImageType struct {
	Suffix   string
	MimeType string
}

type signature struct {
	offset int
	magic  []byte
}

type format struct {
	typ  ImageType
	sigs []signature
}

// webp is RIFF....WEBP; the four size bytes in between are skipped.
var formats = []format{
	{ImageType{"png", "image/png"}, []signature{{0, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}}}},
	{ImageType{"jpg", "image/jpeg"}, []signature{{0, []byte{0xFF, 0xD8, 0xFF}}}},
	{ImageType{"gif", "image/gif"}, []signature{{0, []byte("GIF87a")}}},
	{ImageType{"gif", "image/gif"}, []signature{{0, []byte("GIF89a")}}},
	{ImageType{"webp", "image/webp"}, []signature{{0, []byte("RIFF")}, {8, []byte("WEBP")}}},
	{ImageType{"bmp", "image/bmp"}, []signature{{0, []byte("BM")}}},
	{ImageType{"tif", "image/tiff"}, []signature{{0, []byte{'I', 'I', 0x2A, 0x00}}}},
	{ImageType{"tif", "image/tiff"}, []signature{{0, []byte{'M', 'M', 0x00, 0x2A}}}},
}

// DetectType reports the image format of data by its leading magic bytes.
func DetectType(data []byte) (ImageType, bool) {
	for _, f := range formats {
		if matches(data, f.sigs) {
			return f.typ, true
		}
	}
	return ImageType{}, false
}

func matches(data []byte, sigs []signature) bool {
	for _, s := range sigs {
		end := s.offset + len(s.magic)
		if len(data) < end || !bytes.Equal(data[s.offset:end], s.magic) {
			return false
		}
	}
	return true
}

// ContentKey builds the content-addressed object key <sha256>.<suffix>.
func ContentKey(data []byte, suffix string) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s.%s", hex.EncodeToString(sum[:]), suffix)
}

// DecodeBase64 decodes a standard, padded base64 payload.
func DecodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	return data, nil
}
