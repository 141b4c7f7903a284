package domain

import (
	"encoding/json"
	"errors"
)

var ErrUnsupportedImage = errors.New("image type not recognized")

// CaptionRequest accepts the flat {"image"} shape used by both routes and
// the legacy nested {"body": {"image"}} shape of older caption clients.
type CaptionRequest struct {
	Image string       `json:"image" binding:"omitempty,base64"`
	Body  *NestedImage `json:"body,omitempty"`
}

type NestedImage struct {
	Image string `json:"image" binding:"required,base64"`
}

// EncodedImage returns the base64 payload from whichever shape was sent.
func (r *CaptionRequest) EncodedImage() string {
	if r.Image != "" {
		return r.Image
	}
	if r.Body != nil {
		return r.Body.Image
	}
	return ""
}

type TranslateRequest struct {
	Image    string `json:"image" binding:"required,base64"`
	Language string `json:"language" binding:"required,notblank,max=64"`
}

type StoredImage struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

// ModelResponse is the provider envelope passed back to callers untouched.
type ModelResponse struct {
	Content string
	Raw     json.RawMessage
}
