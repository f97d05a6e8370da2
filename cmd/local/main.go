package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"chat-relay/internal/app"
	"chat-relay/internal/localserver"
)

func main() {
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, os.Getenv)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to start chat relay: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := a.Log
	defer func() { _ = log.Sync() }()
	if envErr != nil {
		log.Warn(".env file not loaded", zap.Error(envErr))
	}

	addr := os.Getenv("LOCAL_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           localserver.NewRouter(a.Handler.Handle, "/chat", log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("local server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("local server failed", zap.Error(err))
		os.Exit(1)
	}
}
