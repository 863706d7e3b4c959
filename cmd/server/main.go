package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mercado/internal/config"
	"mercado/internal/logging"
	"mercado/internal/models"
	"mercado/internal/store"
)

var flags struct {
	port      string
	staticDir string
}

var rootCmd = &cobra.Command{
	Use:           "mercado",
	Short:         "Mercado Circular marketplace backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.port, "port", "", "listen port (overrides APP_PORT)")
	rootCmd.PersistentFlags().StringVar(&flags.staticDir, "static", "", "frontend directory (overrides STATIC_DIR)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		zap.S().Errorw("fatal", "error", err)
		_ = zap.L().Sync()
		os.Exit(1)
	}
}

// bootstrap loads configuration, installs the logger and opens the store.
func bootstrap() (*config.Config, store.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if flags.port != "" {
		cfg.Port = flags.port
	}
	if flags.staticDir != "" {
		cfg.StaticDir = flags.staticDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.Setup(logging.Options{Mode: cfg.LogMode, File: cfg.LogFile})
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := store.Open(store.Options{
		Driver:   cfg.StoreDriver,
		DataFile: cfg.DataFile,
		BoltPath: cfg.BoltPath,
		DSN:      cfg.DBDSN,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := st.Close(); err != nil {
			zap.S().Warnw("closing store", "error", err)
		}
		_ = logger.Sync()
	}
	return cfg, st, cleanup, nil
}

// seedIfEmpty writes the example listings when the store has none.
func seedIfEmpty(cmd *cobra.Command, st store.Store) error {
	seeded, err := st.Seed(cmd.Context(), models.SeedProducts())
	if err != nil {
		return err
	}
	if seeded {
		zap.S().Infow("store seeded with example products", "count", len(models.SeedProducts()))
	}
	return nil
}
