package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iamasit07/knock/backend/internal/config"
	"github.com/iamasit07/knock/backend/internal/logger"
	"github.com/iamasit07/knock/backend/internal/service/cleanup"
	"github.com/iamasit07/knock/backend/internal/service/game"
	transportHttp "github.com/iamasit07/knock/backend/internal/transport/http"
	"github.com/iamasit07/knock/backend/internal/transport/http/middleware"
	"github.com/iamasit07/knock/backend/internal/transport/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	// 1. Configuration and logging
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("starting server",
		zap.String("environment", cfg.Environment),
		zap.Int("rows", cfg.Rules.Rows),
		zap.Int("columns", cfg.Rules.Columns),
		zap.Int("max_stack_height", cfg.Rules.MaxStackHeight))

	// 2. Services
	sessionManager := game.NewSessionManager(cfg.Rules, zl)
	connManager := websocket.NewConnectionManager()

	// 3. Background workers
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	cleanupWorker := cleanup.NewWorker(sessionManager, cfg.CleanupInterval, cfg.SessionIdleTimeout, cfg.FinishedSessionTTL, zl)
	go cleanupWorker.Start(ctx)

	// 4. Handlers
	gameHandler := transportHttp.NewGameHandler(sessionManager, connManager, zl)
	wsHandler := websocket.NewHandler(connManager, sessionManager, middleware.CheckOrigin(cfg.AllowedOrigins), zl)

	// 5. Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(zl))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, zl))

	gameHandler.Register(router)
	router.GET("/ws", gin.WrapF(wsHandler.HandleWebSocket))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zl.Info("server is shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Fatal("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited gracefully")
}
