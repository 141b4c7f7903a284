package server

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"visiongate/internal/config"
	"visiongate/internal/handler"
	"visiongate/internal/service"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
}

func New(cfg *config.Config, svc service.VisionService, log *zap.Logger) *Server {
	server := &Server{
		httpServer: &http.Server{
			Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:        NewRouter(cfg, svc, log),
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		cfg: cfg,
		log: log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port))

	return server
}

// NewRouter wires the caption (/chat) and OCR+translate (/ocr) routes.
// Both groups sit behind the same Basic Auth credentials.
func NewRouter(cfg *config.Config, svc service.VisionService, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handler.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(log))

	if len(cfg.Server.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
		corsCfg.AddAllowHeaders("Authorization")
		router.Use(cors.New(corsCfg))
	}

	h := handler.NewHandler(svc, log)

	router.GET("/health", h.HealthCheck)

	auth := gin.BasicAuth(gin.Accounts{cfg.Auth.User: cfg.Auth.Pass})
	limit := limitBody(cfg.App.MaxUploadSize)

	chat := router.Group("/chat", auth)
	{
		chat.GET("/", h.AuthCheck)
		chat.POST("/", limit, h.CaptionImage)
	}

	ocr := router.Group("/ocr", auth)
	{
		ocr.GET("/", h.AuthCheck)
		ocr.POST("/", limit, h.TranslateImage)
	}

	return router
}

func (s *Server) Run() error {
	s.log.Info("Server is running",
		zap.String("host", s.cfg.Server.Host),
		zap.String("port", s.cfg.Server.Port),
		zap.String("address", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
