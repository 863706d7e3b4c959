package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mercado/internal/api"
	"mercado/internal/config"
	"mercado/internal/models"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, st, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := seedIfEmpty(cmd, st); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.StaticDir, 0o755); err != nil {
		return err
	}

	auth, err := authorizer(cfg)
	if err != nil {
		return err
	}
	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(api.Options{
			Store:          st,
			Auth:           auth,
			StaticDir:      cfg.StaticDir,
			SessionSecret:  cfg.SessionSecret,
			WriteRate:      cfg.WriteRate,
			WriteBurst:     cfg.WriteBurst,
			TrustedProxies: cfg.TrustedProxies,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("server listening", "addr", srv.Addr, "store", cfg.StoreDriver, "auth_required", cfg.AuthRequired)
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

	zap.S().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// authorizer builds the write policy, hashing a plain API_TOKEN once.
func authorizer(cfg *config.Config) (*api.Authorizer, error) {
	if cfg.SessionSecret == config.DefaultSessionSecret {
		zap.S().Warn("SESSION_SECRET not set, using insecure default")
	}
	if !cfg.AuthRequired {
		zap.S().Warn("write authorization disabled (AUTH_REQUIRED=false)")
		return api.NewAuthorizer(false, ""), nil
	}
	if cfg.APITokenHash != "" {
		return api.NewAuthorizer(true, cfg.APITokenHash), nil
	}
	if cfg.InsecureToken() {
		zap.S().Warnw("API_TOKEN not set, writes accept the placeholder token", "token", config.DefaultAPIToken)
	}
	hash, err := models.HashToken(cfg.APIToken)
	if err != nil {
		return nil, err
	}
	return api.NewAuthorizer(true, hash), nil
}
