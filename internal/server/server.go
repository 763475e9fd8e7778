package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"threatscan/internal/config"
	"threatscan/internal/datastore"
	"threatscan/internal/handler"
	"threatscan/internal/middleware"
	"threatscan/internal/modelstatus"
	"threatscan/internal/repository"
	"threatscan/internal/service"
	"threatscan/internal/trainer"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// Deps carries the wired components the route handlers are built from.
type Deps struct {
	Config     *config.Config
	DB         *sqlx.DB
	Classifier handler.Classifier
	Status     *modelstatus.Store
	Datasets   *datastore.Store
	Trainer    *trainer.Trainer
	Jobs       *trainer.JobManager
}

func NewServer(deps Deps, logger *zap.Logger) *Server {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		router: router,
		logger: logger,
	}

	s.setupRoutes(deps)

	return s
}

func (s *Server) setupRoutes(deps Deps) {
	scanRepo := repository.NewScanRepository(deps.DB, s.logger)
	authRepo := repository.NewAuthRepository(deps.DB, s.logger)

	jwtSecret := []byte(deps.Config.Auth.JWTSecret)
	tokenTTL := time.Duration(deps.Config.Auth.TokenTTLHours) * time.Hour
	authService := service.NewAuthService(authRepo, jwtSecret, tokenTTL, s.logger)

	scanHandler := handler.NewScanHandler(deps.Classifier, scanRepo, s.logger)
	historyHandler := handler.NewScanHistoryHandler(scanRepo, s.logger)
	datasetHandler := handler.NewDatasetHandler(deps.Datasets, s.logger)
	modelHandler := handler.NewModelAdminHandler(deps.Status, s.logger)
	retrainHandler := handler.NewRetrainHandler(deps.Jobs, deps.Trainer, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := s.router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	api.POST("/scan", scanHandler.ScanText)
	api.POST("/scan/email", scanHandler.ScanEmail)
	api.POST("/scan/html", scanHandler.ScanHTML)

	api.GET("/scans", historyHandler.ListScans)
	api.GET("/scans/:id", historyHandler.GetScan)

	api.GET("/datasets", datasetHandler.ListDatasets)
	api.GET("/model/status", modelHandler.GetStatus)
	api.GET("/model/metrics", retrainHandler.GetMetrics)
	api.GET("/model/retrain/jobs/:id", retrainHandler.GetJob)

	// Admin surface requires a valid token
	admin := api.Group("/")
	admin.Use(middleware.AuthMiddleware(jwtSecret, s.logger))
	{
		admin.POST("/datasets", datasetHandler.UploadDataset)
		admin.DELETE("/datasets/:filename", datasetHandler.DeleteDataset)
		admin.POST("/model/switch", modelHandler.SwitchMode)
		admin.POST("/model/retrain", retrainHandler.Retrain)
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests before
// returning. Retraining jobs keep the configured shutdown window to finish
// their status and metrics writes.
func (s *Server) Run(ctx context.Context, addr string) {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		s.logger.Info("Server starting", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server shutdown failed", zap.Error(err))
		return
	}
	s.logger.Info("Server stopped")
}
