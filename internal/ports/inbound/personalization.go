// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the operations the UI layer invokes; every result is plain data
package inbound

import (
	"context"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/session"
	"github.com/alchemorsel/recipebook/internal/domain/user"
)

// SessionService owns identity and the liked set
type SessionService interface {
	Login(ctx context.Context, info user.Info, likes []recipe.ID) (session.Snapshot, error)
	Logout(ctx context.Context) session.Snapshot
	Restore(ctx context.Context) session.Snapshot
	UpdateLikedIDs(ctx context.Context, likes session.LikedSet) session.Snapshot
	Current() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// LikeService applies like taps
type LikeService interface {
	ToggleLike(ctx context.Context, recipeID recipe.ID) (session.LikedSet, error)
	IsLiked(recipeID recipe.ID) bool
	Saved() recipe.ResultSet
	Wait(ctx context.Context) error
}

// SearchService runs free-text and tag searches against the remote service
// and resolves the answers through the local catalog
type SearchService interface {
	Search(ctx context.Context, text string) recipe.ResultSet
	SearchByTag(ctx context.Context, tag string) recipe.ResultSet
	Reset() recipe.ResultSet
	Current() SearchPublication
	Subscribe(fn func(SearchPublication)) (unsubscribe func())
	Tags() []string
}

// RecommendationService drives the "Recommended for you" strip
type RecommendationService interface {
	Refresh(ctx context.Context, userID user.ID) RecommendationState
	RevealMore() RecommendationState
	Current() RecommendationState
	Subscribe(fn func(RecommendationState)) (unsubscribe func())
}

// SearchPublication is the result set currently on screen together with the
// query that produced it
type SearchPublication struct {
	Seq     uint64
	Query   string
	ByTag   bool
	Results recipe.ResultSet
}

// RecommendationState is what the recommendation strip renders from
type RecommendationState struct {
	Eligible    bool
	Message     string
	Items       recipe.ResultSet
	RevealCount int
}

// Visible returns the slice of Items the strip currently shows
func (s RecommendationState) Visible() recipe.ResultSet {
	if s.RevealCount <= 0 || len(s.Items) == 0 {
		return recipe.ResultSet{}
	}
	if s.RevealCount >= len(s.Items) {
		return s.Items
	}
	return s.Items[:s.RevealCount]
}

// CanRevealMore reports whether RevealMore would show additional items
func (s RecommendationState) CanRevealMore() bool {
	return s.Eligible && s.RevealCount < len(s.Items)
}
