package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "gomoku-server/internal/api/http"
	"gomoku-server/internal/api/ws"
	"gomoku-server/internal/archive"
	"gomoku-server/internal/config"
	"gomoku-server/internal/logger"
	"gomoku-server/internal/room"
	"gomoku-server/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logger.Init(&cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	zl := logger.Get()

	gin.SetMode(cfg.Server.Mode)

	mem := store.NewMemoryStore()
	arc := archive.New()
	rm := room.NewManager(mem, cfg.Game, arc, zl)
	hub := ws.NewHub(rm, zl)
	rm.SetBroadcaster(hub)
	router := httpapi.NewRouter(hub, rm)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zl.Info("listening", zap.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("shutdown error", zap.Error(err))
	}
}
