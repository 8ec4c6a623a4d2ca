// Package recommendation drives the "Recommended for you" strip: it gates
// the remote call on the number of liked recipes and pages the answer out
// a few items at a time
package recommendation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/user"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/errors"
)

// Options parametrizes the orchestrator
type Options struct {
	Threshold     int
	InitialReveal int
	RevealStep    int
}

// DefaultOptions returns the thresholds of the mobile client
func DefaultOptions() Options {
	return Options{
		Threshold:     5,
		InitialReveal: 5,
		RevealStep:    3,
	}
}

// GatedMessage returns the prompt shown until the user has liked enough recipes
func (o Options) GatedMessage() string {
	return fmt.Sprintf("Like at least %d recipes to get custom recommendations", o.Threshold)
}

// Orchestrator implements inbound.RecommendationService. There is no
// caching: every Refresh of an eligible user fetches again.
type Orchestrator struct {
	sessions inbound.SessionService
	remote   outbound.PersonalizationService
	index    *recipe.Index
	metrics  outbound.MetricsRecorder
	logger   *zap.Logger
	opts     Options

	seq atomic.Uint64

	mu          sync.RWMutex
	state       inbound.RecommendationState
	subscribers map[int]func(inbound.RecommendationState)
	nextSubID   int
}

var _ inbound.RecommendationService = (*Orchestrator)(nil)

// NewOrchestrator creates a recommendation orchestrator in the gated state
func NewOrchestrator(
	sessions inbound.SessionService,
	remote outbound.PersonalizationService,
	index *recipe.Index,
	metrics outbound.MetricsRecorder,
	logger *zap.Logger,
	opts Options,
) *Orchestrator {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	defaults := DefaultOptions()
	if opts.Threshold <= 0 {
		opts.Threshold = defaults.Threshold
	}
	if opts.InitialReveal <= 0 {
		opts.InitialReveal = defaults.InitialReveal
	}
	if opts.RevealStep <= 0 {
		opts.RevealStep = defaults.RevealStep
	}

	o := &Orchestrator{
		sessions:    sessions,
		remote:      remote,
		index:       index,
		metrics:     metrics,
		logger:      logger.Named("recommendation-orchestrator"),
		opts:        opts,
		subscribers: make(map[int]func(inbound.RecommendationState)),
	}
	o.state = o.gated()
	return o
}

// Refresh recomputes the strip for userID. Below the like threshold it
// publishes the gated state and makes no remote call.
func (o *Orchestrator) Refresh(ctx context.Context, userID user.ID) inbound.RecommendationState {
	seq := o.seq.Add(1)

	likes := o.sessions.Current().LikeCount()
	if likes < o.opts.Threshold {
		o.publish(seq, func(inbound.RecommendationState) inbound.RecommendationState {
			return o.gated()
		})
		return o.Current()
	}

	ids, err := o.remote.Recommend(ctx, userID)
	if err != nil {
		o.logger.Warn("Recommendation fetch failed",
			zap.String("user_id", userID.String()),
			zap.Uint64("seq", seq),
			zap.String("code", string(errors.GetCode(err))),
			zap.Error(err),
		)
		// Eligibility follows the like count; previously fetched items stay visible
		o.publish(seq, func(prev inbound.RecommendationState) inbound.RecommendationState {
			if prev.Eligible {
				return prev
			}
			return inbound.RecommendationState{
				Eligible:    true,
				Items:       recipe.ResultSet{},
				RevealCount: o.opts.InitialReveal,
			}
		})
		return o.Current()
	}

	items := o.index.Resolve(ids)
	if gap := len(o.index.Missing(ids)); gap > 0 {
		o.metrics.ResolutionGap("recommendation", gap)
		o.logger.Debug("Recommended recipes missing from catalog",
			zap.String("user_id", userID.String()),
			zap.Error(errors.NewResolutionGapError(gap)),
		)
	}

	o.publish(seq, func(prev inbound.RecommendationState) inbound.RecommendationState {
		reveal := prev.RevealCount
		if !prev.Eligible {
			reveal = o.opts.InitialReveal
		}
		return inbound.RecommendationState{
			Eligible:    true,
			Items:       items,
			RevealCount: reveal,
		}
	})
	return o.Current()
}

// RevealMore shows RevealStep more items. It never fetches.
func (o *Orchestrator) RevealMore() inbound.RecommendationState {
	o.mu.Lock()
	if !o.state.Eligible {
		state := o.state
		o.mu.Unlock()
		return state
	}
	o.state.RevealCount += o.opts.RevealStep
	state := o.state
	subscribers := o.subscriberList()
	o.mu.Unlock()

	for _, fn := range subscribers {
		fn(state)
	}
	return state
}

// Current returns the state the strip renders from
func (o *Orchestrator) Current() inbound.RecommendationState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Subscribe registers fn to receive every new state
func (o *Orchestrator) Subscribe(fn func(inbound.RecommendationState)) func() {
	o.mu.Lock()
	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subscribers, id)
		o.mu.Unlock()
	}
}

func (o *Orchestrator) gated() inbound.RecommendationState {
	return inbound.RecommendationState{
		Eligible:    false,
		Message:     o.opts.GatedMessage(),
		Items:       recipe.ResultSet{},
		RevealCount: o.opts.InitialReveal,
	}
}

func (o *Orchestrator) publish(seq uint64, next func(prev inbound.RecommendationState) inbound.RecommendationState) {
	o.mu.Lock()
	if latest := o.seq.Load(); seq != latest {
		o.mu.Unlock()
		o.metrics.StaleResponse("recommendation")
		o.logger.Debug("Discarding superseded recommendation response",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", latest),
		)
		return
	}

	o.state = next(o.state)
	state := o.state
	subscribers := o.subscriberList()
	o.mu.Unlock()

	for _, fn := range subscribers {
		fn(state)
	}
}

// subscriberList must be called with mu held
func (o *Orchestrator) subscriberList() []func(inbound.RecommendationState) {
	subscribers := make([]func(inbound.RecommendationState), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subscribers = append(subscribers, fn)
	}
	return subscribers
}
