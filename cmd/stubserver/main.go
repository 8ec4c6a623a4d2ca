// Package main runs the stub personalization server over the bundled catalog
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/infrastructure/container"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var addr string

	root := &cobra.Command{
		Use:          "stubserver",
		Short:        "Serve the personalization endpoints from the bundled catalog",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Stub.Addr = addr
			}
			return run(cfg)
		},
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./recipebook.yaml)")
	root.Flags().StringVar(&addr, "addr", "", "listen address (overrides stub.addr)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		container.StubModule,
	)

	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start stub server: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop stub server gracefully: %w", err)
	}

	log.Println("Stub server stopped")
	return nil
}
