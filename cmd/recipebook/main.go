// Package main provides the recipebook command line client
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/infrastructure/container"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/healthcheck"
)

// globalFlags are shared by every command
type globalFlags struct {
	configPath string
	verbose    bool
	ephemeral  bool
}

// core is the set of services a command can reach
type core struct {
	fx.In

	Config          *config.Config
	Index           *recipe.Index
	Sessions        inbound.SessionService
	Likes           inbound.LikeService
	Search          inbound.SearchService
	Recommendations inbound.RecommendationService
	Remote          outbound.PersonalizationService
	Health          *healthcheck.HealthCheck
}

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "recipebook",
		Short:         "Browse, search and personalize the recipe catalog",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default is ./recipebook.yaml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&flags.ephemeral, "ephemeral", false, "keep the session in memory only")

	root.AddCommand(
		loginCMD(flags),
		logoutCMD(flags),
		whoamiCMD(flags),
		likeCMD(flags),
		savedCMD(flags),
		searchCMD(flags),
		tagCMD(flags),
		tagsCMD(flags),
		recommendCMD(flags),
		ingredientsCMD(flags),
		showCMD(flags),
		statusCMD(flags),
	)
	return root
}

// loadConfig reads the configuration and applies the CLI overrides
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	// Command output goes to stdout; keep the log quiet unless asked
	cfg.App.LogFormat = "console"
	cfg.App.LogLevel = "warn"
	if flags.verbose {
		cfg.App.LogLevel = "debug"
	}
	if flags.ephemeral {
		cfg.Storage.Driver = "memory"
	}
	return cfg, nil
}

// withCore starts the core, runs fn and stops the core again. Stopping waits
// for pending like notifications and closes storage.
func withCore(ctx context.Context, flags *globalFlags, fn func(ctx context.Context, c core) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	var c core
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		container.Module,
		fx.Invoke(func(p core) { c = p }),
	)

	startCtx, startCancel := context.WithTimeout(ctx, 15*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	runErr := fn(ctx, c)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop cleanly: %w", err)
	}
	return runErr
}
