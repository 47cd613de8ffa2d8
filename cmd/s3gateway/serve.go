package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/s3gateway"
	"github.com/sagarc03/s3gateway/config"
	gatewayhttp "github.com/sagarc03/s3gateway/http"
	"github.com/sagarc03/s3gateway/metrics"
	"github.com/sagarc03/s3gateway/s3store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the s3gateway HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address host:port (default: 127.0.0.1:7878, env: HOST)")
	serveCmd.Flags().Bool("legacy-errors", false, "answer every failure with 500 like earlier deployments")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg.WarnMissing(slog.Default())

	store, err := s3store.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}

	service, err := s3gateway.NewService(store,
		s3gateway.WithKeyPolicy(cfg.Keys),
		s3gateway.WithDefaultTTL(cfg.Presign.DefaultTTL),
		s3gateway.WithMaxTTL(cfg.Presign.MaxTTL),
		s3gateway.WithHTTPClient(&http.Client{Timeout: cfg.Proxy.Timeout}),
		s3gateway.WithLogger(slog.Default()),
		s3gateway.WithRejectHook(func(v *s3gateway.ValidationError) {
			metrics.RecordRejection(v.Field)
		}),
	)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handlerConfig := gatewayhttp.HandlerConfig{
		CORS:          cfg.CORS,
		LegacyErrors:  cfg.Server.LegacyErrors,
		MaxUploadSize: cfg.Proxy.MaxUploadSize,
	}
	if cfg.Metrics.Enabled {
		handlerConfig.Metrics = metrics.Handler()
		handlerConfig.MetricsPath = cfg.Metrics.Path
		handlerConfig.Middleware = append(handlerConfig.Middleware, metrics.Middleware)
	}

	handler := gatewayhttp.NewHandler(&handlerConfig, meteredService{service})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", cfg.Server.Addr,
		"endpoint", cfg.Storage.Endpoint,
		"bucket", cfg.Storage.Bucket,
		"legacy_errors", cfg.Server.LegacyErrors,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// meteredService counts the bytes relayed by successful uploads.
type meteredService struct {
	*s3gateway.Service
}

func (m meteredService) ProxyUpload(ctx context.Context, ids s3gateway.IdentifierSet, content io.Reader, size int64, contentType string) (s3gateway.UploadResult, error) {
	result, err := m.Service.ProxyUpload(ctx, ids, content, size, contentType)
	if err == nil {
		metrics.RecordUpload(result.Size)
	}
	return result, err
}
