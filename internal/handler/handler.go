package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"visiongate/internal/domain"
	"visiongate/internal/service"
	"visiongate/pkg/utils"
)

// RequestIDKey is the gin context key holding the per-request id.
const RequestIDKey = "request_id"

type Handler struct {
	service service.VisionService
	log     *zap.Logger
}

func NewHandler(service service.VisionService, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

func (h *Handler) CaptionImage(c *gin.Context) {
	var req domain.CaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectBody(c, err)
		return
	}

	data, err := utils.DecodeBase64(req.EncodedImage())
	if err != nil {
		h.rejectBody(c, err)
		return
	}

	resp, err := h.service.Caption(c.Request.Context(), data)
	if err != nil {
		h.serviceError(c, "Failed to caption image", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", resp.Raw)
}

func (h *Handler) TranslateImage(c *gin.Context) {
	var req domain.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectBody(c, err)
		return
	}

	data, err := utils.DecodeBase64(req.Image)
	if err != nil {
		h.rejectBody(c, err)
		return
	}

	resp, err := h.service.Translate(c.Request.Context(), data, req.Language)
	if err != nil {
		h.serviceError(c, "Failed to translate image", err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", resp.Raw)
}

func (h *Handler) AuthCheck(c *gin.Context) {
	c.String(http.StatusOK, "Auth OK")
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) rejectBody(c *gin.Context, err error) {
	status, body := bindStatus(err)
	if errors.Is(err, utils.ErrInvalidBase64) {
		status, body = http.StatusUnprocessableEntity, gin.H{"error": err.Error()}
	}

	h.log.Info("Rejected request body",
		zap.String("request_id", c.GetString(RequestIDKey)),
		zap.Int("status", status),
		zap.Error(err))

	c.JSON(status, body)
}

func (h *Handler) serviceError(c *gin.Context, msg string, err error) {
	if errors.Is(err, domain.ErrUnsupportedImage) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	h.log.Error(msg,
		zap.String("request_id", c.GetString(RequestIDKey)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
