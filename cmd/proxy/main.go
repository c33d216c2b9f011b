package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/teams-worktime/internal/config"
	appHTTP "github.com/cmlabs-hris/teams-worktime/internal/handler/http"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/logger"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/teams"
)

func main() {
	cfg, err := config.LoadProxy()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(cfg.App))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Proxy.Port),
		Handler:           appHTTP.NewProxyRouter(appHTTP.NewProxyHandler(teams.NewClient(cfg.Teams))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info(fmt.Sprintf("Proxy server running at http://localhost:%d/attendance", cfg.Proxy.Port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Proxy server error", "error", err)
		os.Exit(1)
	}
}
