package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/larkes/communities-api/internal/config"
	httpx "github.com/larkes/communities-api/internal/http"
)

const shutdownTimeout = 10 * time.Second

// NewLogger builds the process logger: text in development, JSON elsewhere
func NewLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if cfg.Env == config.EnvDevelopment {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// NewRegistry returns a registry carrying the process and Go runtime collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Run serves the API until ctx is cancelled or SIGINT/SIGTERM arrives
func Run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := NewContainer(ctx, cfg, logger, NewRegistry())
	if err != nil {
		return err
	}
	defer container.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpx.BuildRouter(*container.Router()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
