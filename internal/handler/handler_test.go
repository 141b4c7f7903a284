package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"visiongate/internal/domain"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

type translateCall struct {
	data     []byte
	language string
}

type stubService struct {
	captions   [][]byte
	translates []translateCall
	resp       *domain.ModelResponse
	err        error
}

func (s *stubService) Caption(_ context.Context, data []byte) (*domain.ModelResponse, error) {
	s.captions = append(s.captions, data)
	return s.resp, s.err
}

func (s *stubService) Translate(_ context.Context, data []byte, language string) (*domain.ModelResponse, error) {
	s.translates = append(s.translates, translateCall{data: data, language: language})
	return s.resp, s.err
}

func newTestRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	h := NewHandler(svc, zap.NewNop())
	r := gin.New()
	r.POST("/chat/", h.CaptionImage)
	r.POST("/ocr/", h.TranslateImage)
	r.GET("/chat/", h.AuthCheck)
	r.GET("/health", h.HealthCheck)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func encoded() string {
	return base64.StdEncoding.EncodeToString(pngBytes)
}

func TestCaptionImageShapes(t *testing.T) {
	bodies := map[string]string{
		"flat":   `{"image":"` + encoded() + `"}`,
		"nested": `{"body":{"image":"` + encoded() + `"}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			svc := &stubService{resp: &domain.ModelResponse{Raw: []byte(`{"content":"{\"description\":\"猫\"}"}`)}}
			w := post(newTestRouter(svc), "/chat/", body)

			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"content":"{\"description\":\"猫\"}"}`, w.Body.String())
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			require.Len(t, svc.captions, 1)
			assert.Equal(t, pngBytes, svc.captions[0])
		})
	}
}

func TestCaptionImageRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing image", `{}`, http.StatusUnprocessableEntity},
		{"empty nested image", `{"body":{"image":""}}`, http.StatusUnprocessableEntity},
		{"invalid base64", `{"image":"not base64!!"}`, http.StatusUnprocessableEntity},
		{"invalid nested base64", `{"body":{"image":"%%%"}}`, http.StatusUnprocessableEntity},
		{"malformed json", `{"image":`, http.StatusBadRequest},
		{"wrong type", `{"image":42}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			w := post(newTestRouter(svc), "/chat/", tt.body)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Empty(t, svc.captions)
		})
	}
}

func TestCaptionImageValidationFields(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		tag   string
	}{
		{"flat image", `{"image":"***"}`, "image", "base64"},
		{"nested image", `{"body":{"image":"***"}}`, "body.image", "base64"},
		{"nested image missing", `{"body":{}}`, "body.image", "required"},
		{"no image", `{}`, "image", "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			w := post(newTestRouter(svc), "/chat/", tt.body)

			require.Equal(t, http.StatusUnprocessableEntity, w.Code)

			var body struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{tt.field: tt.tag}, body.Fields)
		})
	}
}

func TestTranslateImageValidationFields(t *testing.T) {
	svc := &stubService{}
	w := post(newTestRouter(svc), "/ocr/", `{"image":"`+encoded()+`"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"language": "required"}, body.Fields)
}

func TestTranslateImage(t *testing.T) {
	svc := &stubService{resp: &domain.ModelResponse{Raw: []byte(`{"content":"Hello"}`)}}
	w := post(newTestRouter(svc), "/ocr/", `{"image":"`+encoded()+`","language":"French"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"content":"Hello"}`, w.Body.String())
	require.Len(t, svc.translates, 1)
	assert.Equal(t, "French", svc.translates[0].language)
	assert.Equal(t, pngBytes, svc.translates[0].data)
}

func TestTranslateImageRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing language", `{"image":"` + encoded() + `"}`},
		{"blank language", `{"image":"` + encoded() + `","language":"   "}`},
		{"long language", `{"image":"` + encoded() + `","language":"` + strings.Repeat("x", 65) + `"}`},
		{"missing image", `{"language":"French"}`},
		{"nested image only", `{"body":{"image":"` + encoded() + `"},"language":"French"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			w := post(newTestRouter(svc), "/ocr/", tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			assert.Empty(t, svc.translates)
		})
	}
}

func TestServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"unsupported image", domain.ErrUnsupportedImage, http.StatusNotFound, `{"error":"image type not recognized"}`},
		{"upstream failure", errors.New("openai: 500"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err}
			w := post(newTestRouter(svc), "/chat/", `{"image":"`+encoded()+`"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestAuthCheckAndHealth(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Auth OK", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())
}
