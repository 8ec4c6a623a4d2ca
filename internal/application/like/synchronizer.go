// Package like applies like taps: a best-effort notification to the remote
// service plus an optimistic, persisted update of the liked set
package like

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/session"
	"github.com/alchemorsel/recipebook/internal/domain/user"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/errors"
)

// DefaultNotifyTimeout bounds a single like notification
const DefaultNotifyTimeout = 10 * time.Second

// Synchronizer implements inbound.LikeService. Likes are append-only: a
// repeated tap re-notifies the service but never duplicates the identifier.
type Synchronizer struct {
	sessions inbound.SessionService
	remote   outbound.PersonalizationService
	index    *recipe.Index
	metrics  outbound.MetricsRecorder
	logger   *zap.Logger

	notifyTimeout time.Duration
	inflight      sync.WaitGroup
}

var _ inbound.LikeService = (*Synchronizer)(nil)

// NewSynchronizer creates a like synchronizer
func NewSynchronizer(
	sessions inbound.SessionService,
	remote outbound.PersonalizationService,
	index *recipe.Index,
	metrics outbound.MetricsRecorder,
	logger *zap.Logger,
) *Synchronizer {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Synchronizer{
		sessions:      sessions,
		remote:        remote,
		index:         index,
		metrics:       metrics,
		logger:        logger.Named("like-synchronizer"),
		notifyTimeout: DefaultNotifyTimeout,
	}
}

// ToggleLike marks recipeID as liked for the signed-in user and returns the
// new liked set. The remote notification runs in the background and its
// outcome never affects the result.
func (s *Synchronizer) ToggleLike(ctx context.Context, recipeID recipe.ID) (session.LikedSet, error) {
	snap := s.sessions.Current()
	if !snap.IsAuthenticated {
		return snap.Likes, errors.NewNotAuthenticatedError("like a recipe")
	}

	s.notify(ctx, snap.UserID, recipeID)

	likes := snap.Likes.With(recipeID)
	s.sessions.UpdateLikedIDs(ctx, likes)

	s.logger.Debug("Recipe liked",
		zap.String("user_id", snap.UserID.String()),
		zap.String("recipe_id", recipeID.String()),
		zap.Int("likes", likes.Len()),
	)
	return likes, nil
}

// IsLiked reports whether the signed-in user has liked recipeID
func (s *Synchronizer) IsLiked(recipeID recipe.ID) bool {
	return s.sessions.Current().Likes.Contains(recipeID)
}

// Saved resolves the liked set into records, in like order. Liked
// identifiers the catalog does not know are dropped.
func (s *Synchronizer) Saved() recipe.ResultSet {
	ids := s.sessions.Current().Likes.IDs()
	saved := s.index.Resolve(ids)
	if gap := len(ids) - len(saved); gap > 0 {
		s.metrics.ResolutionGap("saved", gap)
		s.logger.Debug("Liked recipes missing from catalog", zap.Int("count", gap))
	}
	return saved
}

// Wait blocks until every in-flight notification has finished or ctx is done
func (s *Synchronizer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Synchronizer) notify(ctx context.Context, userID user.ID, recipeID recipe.ID) {
	// The notification outlives the tap that triggered it
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()

		if err := s.remote.Like(notifyCtx, userID, recipeID); err != nil {
			s.metrics.LikeNotification("failure")
			s.logger.Warn("Like notification failed",
				zap.String("user_id", userID.String()),
				zap.String("recipe_id", recipeID.String()),
				zap.String("code", string(errors.GetCode(err))),
				zap.Error(err),
			)
			return
		}
		s.metrics.LikeNotification("success")
	}()
}
