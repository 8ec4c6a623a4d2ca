// Package stubserver implements a local stand-in for the personalization
// service over the bundled catalog. Its ranking is a development aid and
// makes no claim about how the real service recommends.
package stubserver

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/user"
	"github.com/alchemorsel/recipebook/internal/infrastructure/http/client"
	"github.com/alchemorsel/recipebook/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/recipebook/internal/infrastructure/monitoring"
	apperrors "github.com/alchemorsel/recipebook/pkg/errors"
	"github.com/alchemorsel/recipebook/pkg/healthcheck"
)

// MaxRecommendations caps the recommendation list
const MaxRecommendations = 20

// Server represents the stub HTTP server
type Server struct {
	index   *recipe.Index
	metrics *monitoring.MetricsCollector
	logger  *zap.Logger
	health  *healthcheck.HealthCheck
	router  *chi.Mux
	server  *http.Server

	mu    sync.RWMutex
	likes map[user.ID][]recipe.ID
}

// NewServer creates the stub server. addr may be empty when only Handler is used.
func NewServer(index *recipe.Index, metrics *monitoring.MetricsCollector, logger *zap.Logger, addr string) *Server {
	s := &Server{
		index:   index,
		metrics: metrics,
		logger:  logger.Named("stub-server"),
		likes:   make(map[user.ID][]recipe.ID),
	}
	s.health = healthcheck.New("stub", s.logger)
	s.health.Register("catalog", healthcheck.NewCustomChecker(s.checkCatalog))
	s.router = s.setupRouter()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting stub personalization server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down stub personalization server")
	return s.server.Shutdown(ctx)
}

// Likes returns the identifiers userID has liked, in arrival order
func (s *Server) Likes(userID user.ID) []recipe.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]recipe.ID, len(s.likes[userID]))
	copy(out, s.likes[userID])
	return out
}

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/healthz", s.health.Handler())
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, apperrors.NewNotFoundError("route "+r.URL.Path))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JSONOnly())

		r.Post(client.PathLike, s.handleLike)
		r.Get(client.PathRecipes+"{query}", s.handleRecipes)
		r.Get(client.PathIngredients, s.handleIngredients)
		r.Get(client.PathSearch, s.handleSearch)
		r.Get(client.PathRecommendation, s.handleRecommendation)
	})

	return r
}

func (s *Server) checkCatalog(ctx context.Context) (healthcheck.Status, string, interface{}) {
	n := s.index.Len()
	if n == 0 {
		return healthcheck.StatusUnhealthy, "catalog is empty", nil
	}

	s.mu.RLock()
	users := len(s.likes)
	s.mu.RUnlock()

	return healthcheck.StatusHealthy, "", map[string]int{"recipes": n, "users": users}
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	var req client.LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, apperrors.NewBadRequestError("invalid like body"))
		return
	}
	if req.IDUser <= 0 || req.IDRecipe <= 0 {
		s.writeError(w, r, apperrors.NewValidationError("id_user and id_recipe must be positive"))
		return
	}

	s.mu.Lock()
	s.likes[req.IDUser] = append(s.likes[req.IDUser], req.IDRecipe)
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(chi.URLParam(r, "query"))

	resp := make([]client.LegacyRecipe, 0)
	for _, rec := range s.match(query) {
		resp = append(resp, client.LegacyRecipe{RecipeID: rec.RecipeID, Name: rec.Name})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIngredients(w http.ResponseWriter, r *http.Request) {
	seen := make(map[string]struct{})
	resp := make([]client.IngredientResponse, 0)
	for _, rec := range s.index.All() {
		for _, ing := range rec.Ingredients {
			name := strings.ToLower(strings.TrimSpace(ing.Name))
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			resp = append(resp, client.IngredientResponse{IDIngredient: int64(len(resp) + 1), Name: name})
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search_bar")))
	s.writeJSON(w, http.StatusOK, client.SearchResponse{Recipes: s.match(query).IDs()})
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, err := user.ParseID(r.URL.Query().Get("id"))
	if err != nil {
		s.writeError(w, r, apperrors.NewBadRequestError("id must be a positive integer"))
		return
	}
	s.writeJSON(w, http.StatusOK, client.RecommendationResponse{RecipeList: s.recommend(userID)})
}

// match returns records whose tags, name or ingredients contain query, in catalog order
func (s *Server) match(query string) recipe.ResultSet {
	out := recipe.ResultSet{}
	if query == "" {
		return out
	}
	for _, rec := range s.index.All() {
		if rec.HasTag(query) || strings.Contains(strings.ToLower(rec.Name), query) || hasIngredient(rec, query) {
			out = append(out, rec)
		}
	}
	return out
}

// recommend scores every record the user has not liked by how many tags it
// shares with the liked ones
func (s *Server) recommend(userID user.ID) []recipe.ID {
	liked := make(map[recipe.ID]struct{})
	tagWeight := make(map[string]int)
	for _, id := range s.Likes(userID) {
		if _, dup := liked[id]; dup {
			continue
		}
		liked[id] = struct{}{}
		if rec, err := s.index.Get(id); err == nil {
			for _, tag := range rec.Tags {
				tagWeight[strings.ToLower(tag)]++
			}
		}
	}

	type scored struct {
		id    recipe.ID
		score int
		pos   int
	}
	var candidates []scored
	for pos, rec := range s.index.All() {
		if _, ok := liked[rec.RecipeID]; ok {
			continue
		}
		score := 0
		for _, tag := range rec.Tags {
			score += tagWeight[strings.ToLower(tag)]
		}
		if score > 0 {
			candidates = append(candidates, scored{id: rec.RecipeID, score: score, pos: pos})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	ids := make([]recipe.ID, 0, MaxRecommendations)
	for _, c := range candidates {
		if len(ids) == MaxRecommendations {
			break
		}
		ids = append(ids, c.id)
	}
	return ids
}

func hasIngredient(rec *recipe.Record, query string) bool {
	for _, ing := range rec.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), query) {
			return true
		}
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		appErr := apperrors.Wrap(err, "failed to encode response")
		s.logger.Error("Failed to encode response", zap.Error(appErr))
		status = appErr.StatusCode()
		data, _ = json.Marshal(apperrors.ToErrorResponse(appErr, w.Header().Get(middleware.RequestIDHeader)))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	s.writeJSON(w, err.StatusCode(), apperrors.ToErrorResponse(err, r.Header.Get(middleware.RequestIDHeader)))
}
