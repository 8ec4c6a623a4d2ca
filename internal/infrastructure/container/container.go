// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	appcatalog "github.com/alchemorsel/recipebook/internal/application/catalog"
	"github.com/alchemorsel/recipebook/internal/application/like"
	"github.com/alchemorsel/recipebook/internal/application/recommendation"
	"github.com/alchemorsel/recipebook/internal/application/search"
	"github.com/alchemorsel/recipebook/internal/application/session"
	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/infrastructure/catalog"
	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/infrastructure/http/client"
	"github.com/alchemorsel/recipebook/internal/infrastructure/http/stubserver"
	"github.com/alchemorsel/recipebook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/healthcheck"
	"github.com/alchemorsel/recipebook/pkg/logger"
)

// Module provides the personalization core. The caller supplies
// *config.Config, either through ConfigModule or fx.Supply.
var Module = fx.Options(
	// Infrastructure modules
	LoggerModule,
	MetricsModule,
	CatalogModule,
	StorageModule,
	RemoteModule,

	// Service modules
	ServiceModule,
	HealthModule,

	// Lifecycle hooks
	LifecycleModule,
)

// StubModule provides the stub personalization server
var StubModule = fx.Options(
	LoggerModule,
	MetricsModule,
	CatalogModule,
	fx.Provide(NewStubServer),
	fx.Invoke(RegisterStubServerHooks),
)

// ConfigModule provides configuration loaded from path, or from the default
// search locations when path is empty
func ConfigModule(path string) fx.Option {
	return fx.Provide(
		func() (*config.Config, error) {
			return config.Load(path)
		},
	)
}

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
			OutputPaths: cfg.App.LogOutputs,
		})
	},
)

// MetricsModule provides the Prometheus collector under the interfaces its
// consumers expect
var MetricsModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) outbound.MetricsRecorder {
		return m
	},
	func(m *monitoring.MetricsCollector) client.Metrics {
		return m
	},
)

// CatalogModule loads the bundled catalog and builds the recipe index
var CatalogModule = fx.Provide(
	appcatalog.NewService,
	func(cfg *config.Config, svc *appcatalog.Service, log *zap.Logger) (*recipe.Index, error) {
		records, err := catalog.NewLoader(cfg.Catalog.Path, log).Load()
		if err != nil {
			return nil, err
		}
		return svc.LoadOnce(records), nil
	},
)

// StorageModule provides the durable key-value store
var StorageModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.KeyValueStore, error) {
		return persistence.OpenKeyValueStore(context.Background(), &cfg.Storage, log)
	},
)

// RemoteModule provides the personalization service client
var RemoteModule = fx.Provide(
	func(cfg *config.Config, m client.Metrics, log *zap.Logger) outbound.PersonalizationService {
		return client.NewClient(&cfg.Remote, log, client.WithMetrics(m))
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	// Session store
	session.NewStore,
	func(s *session.Store) inbound.SessionService {
		return s
	},

	// Like synchronizer
	fx.Annotate(
		like.NewSynchronizer,
		fx.As(new(inbound.LikeService)),
	),

	// Search orchestrator
	fx.Annotate(
		func(
			remote outbound.PersonalizationService,
			index *recipe.Index,
			m outbound.MetricsRecorder,
			log *zap.Logger,
			cfg *config.Config,
		) *search.Orchestrator {
			return search.NewOrchestrator(remote, index, m, log, SearchOptions(cfg.Personalization))
		},
		fx.As(new(inbound.SearchService)),
	),

	// Recommendation orchestrator
	fx.Annotate(
		func(
			sessions inbound.SessionService,
			remote outbound.PersonalizationService,
			index *recipe.Index,
			m outbound.MetricsRecorder,
			log *zap.Logger,
			cfg *config.Config,
		) *recommendation.Orchestrator {
			return recommendation.NewOrchestrator(sessions, remote, index, m, log, RecommendationOptions(cfg.Personalization))
		},
		fx.As(new(inbound.RecommendationService)),
	),
)

// HealthModule provides the health checks behind the status command
var HealthModule = fx.Provide(NewHealthCheck)

// NewHealthCheck checks storage, the catalog and both remote base URLs
func NewHealthCheck(cfg *config.Config, store outbound.KeyValueStore, index *recipe.Index, log *zap.Logger) *healthcheck.HealthCheck {
	hc := healthcheck.New(cfg.App.Version, log)
	hc.SetCacheTTL(0)

	hc.Register("storage", healthcheck.NewCustomChecker(func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		meta := map[string]string{"driver": cfg.Storage.Driver}
		if _, err := store.Get(ctx, session.KeyToken); err != nil && !errors.Is(err, outbound.ErrKeyNotFound) {
			return healthcheck.StatusUnhealthy, err.Error(), meta
		}
		return healthcheck.StatusHealthy, "", meta
	}))

	hc.Register("catalog", healthcheck.NewCustomChecker(func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		if index.Len() == 0 {
			return healthcheck.StatusUnhealthy, "catalog is empty", nil
		}
		return healthcheck.StatusHealthy, "", map[string]int{"recipes": index.Len()}
	}))

	hc.Register("remote", healthcheck.NewExternalServiceChecker(
		strings.TrimRight(cfg.Remote.BaseURL, "/")+client.PathIngredients, cfg.Remote.Timeout))
	hc.Register("remote-api", healthcheck.NewExternalServiceChecker(
		strings.TrimRight(cfg.Remote.APIBaseURL, "/")+client.PathSearch, cfg.Remote.Timeout))

	return hc
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// SearchOptions maps the personalization section onto the search orchestrator
func SearchOptions(cfg config.PersonalizationConfig) search.Options {
	return search.Options{
		PageSize:       cfg.PageSize,
		Tags:           cfg.Tags,
		LegacyFallback: cfg.LegacyFallback,
	}
}

// RecommendationOptions maps the personalization section onto the
// recommendation orchestrator
func RecommendationOptions(cfg config.PersonalizationConfig) recommendation.Options {
	return recommendation.Options{
		Threshold:     cfg.Threshold,
		InitialReveal: cfg.InitialReveal,
		RevealStep:    cfg.RevealStep,
	}
}

// RegisterLifecycleHooks restores the persisted session on start; on stop it
// drains pending like notifications and closes storage
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	store outbound.KeyValueStore,
	sessions *session.Store,
	likes inbound.LikeService,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			snap := sessions.Restore(ctx)
			log.Debug("Recipebook core started",
				zap.String("version", cfg.App.Version),
				zap.String("storage", cfg.Storage.Driver),
				zap.Bool("authenticated", snap.IsAuthenticated),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := likes.Wait(ctx); err != nil {
				log.Warn("Like notifications still in flight at shutdown", zap.Error(err))
			}
			if err := store.Close(); err != nil {
				log.Warn("Failed to close storage", zap.Error(err))
			}
			_ = log.Sync()
			return nil
		},
	})
}

// NewStubServer builds the stub server on the configured address
func NewStubServer(cfg *config.Config, index *recipe.Index, m *monitoring.MetricsCollector, log *zap.Logger) *stubserver.Server {
	if !cfg.Monitoring.EnableMetrics {
		m = nil
	}
	return stubserver.NewServer(index, m, log, cfg.Stub.Addr)
}

// RegisterStubServerHooks starts and stops the stub server with the app
func RegisterStubServerHooks(lc fx.Lifecycle, log *zap.Logger, srv *stubserver.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					log.Error("Stub server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
