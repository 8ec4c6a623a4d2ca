// Package search runs free-text and tag searches against the personalization
// service and publishes the results resolved through the local catalog
package search

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/errors"
)

// AllTag selects the unfiltered browse view instead of a remote search
const AllTag = "all"

// Options parametrizes the orchestrator
type Options struct {
	PageSize       int
	Tags           []string
	LegacyFallback bool
}

// DefaultOptions mirrors the browsing screen of the mobile client
func DefaultOptions() Options {
	return Options{
		PageSize: 10,
		Tags: []string{
			"All", "Breakfast", "Sweet", "Vegan", "Dessert",
			"Inexpensive", "Appetizers", "Dietary", "Gluten-free",
		},
	}
}

// Orchestrator implements inbound.SearchService. Every query draws a
// sequence number when submitted; a response is published only if no newer
// query has been submitted since, so a slow answer can never overwrite a
// fresher one.
type Orchestrator struct {
	remote  outbound.PersonalizationService
	index   *recipe.Index
	metrics outbound.MetricsRecorder
	logger  *zap.Logger
	opts    Options

	seq atomic.Uint64

	mu          sync.RWMutex
	current     inbound.SearchPublication
	subscribers map[int]func(inbound.SearchPublication)
	nextSubID   int
}

var _ inbound.SearchService = (*Orchestrator)(nil)

// NewOrchestrator creates a search orchestrator showing the browse view
func NewOrchestrator(
	remote outbound.PersonalizationService,
	index *recipe.Index,
	metrics outbound.MetricsRecorder,
	logger *zap.Logger,
	opts Options,
) *Orchestrator {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultOptions().PageSize
	}

	o := &Orchestrator{
		remote:      remote,
		index:       index,
		metrics:     metrics,
		logger:      logger.Named("search-orchestrator"),
		opts:        opts,
		subscribers: make(map[int]func(inbound.SearchPublication)),
	}
	o.current = inbound.SearchPublication{Results: o.browseView()}
	return o
}

// Search runs a free-text search and returns the published result set.
// Blank text clears the results without contacting the service.
func (o *Orchestrator) Search(ctx context.Context, text string) recipe.ResultSet {
	seq := o.seq.Add(1)
	query := normalize(text)

	if query == "" {
		o.publish(seq, inbound.SearchPublication{Results: recipe.ResultSet{}})
		return o.Current().Results
	}

	o.run(ctx, seq, query, false)
	return o.Current().Results
}

// SearchByTag searches for recipes carrying tag. The "All" tag shows the
// browse view without contacting the service.
func (o *Orchestrator) SearchByTag(ctx context.Context, tag string) recipe.ResultSet {
	seq := o.seq.Add(1)
	query := normalize(tag)

	if query == "" || query == AllTag {
		o.publish(seq, inbound.SearchPublication{Query: AllTag, ByTag: true, Results: o.browseView()})
		return o.Current().Results
	}

	o.run(ctx, seq, query, true)
	return o.Current().Results
}

// Reset publishes the browse view, superseding any query in flight
func (o *Orchestrator) Reset() recipe.ResultSet {
	seq := o.seq.Add(1)
	o.publish(seq, inbound.SearchPublication{Results: o.browseView()})
	return o.Current().Results
}

// Current returns the publication on screen
func (o *Orchestrator) Current() inbound.SearchPublication {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current
}

// Subscribe registers fn to receive every new publication
func (o *Orchestrator) Subscribe(fn func(inbound.SearchPublication)) func() {
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

// Tags returns the tag vocabulary
func (o *Orchestrator) Tags() []string {
	tags := make([]string, len(o.opts.Tags))
	copy(tags, o.opts.Tags)
	return tags
}

func (o *Orchestrator) run(ctx context.Context, seq uint64, query string, byTag bool) {
	ids, err := o.remote.Search(ctx, query)
	if err != nil && o.opts.LegacyFallback {
		o.logger.Debug("Search failed, trying legacy recipe lookup",
			zap.String("query", query),
			zap.Error(err),
		)
		ids, err = o.remote.RecipesByQuery(ctx, query)
	}
	if err != nil {
		// The previous results stay on screen
		o.logger.Warn("Search failed",
			zap.String("query", query),
			zap.Uint64("seq", seq),
			zap.String("code", string(errors.GetCode(err))),
			zap.Error(err),
		)
		return
	}

	results := o.index.Resolve(ids)
	if gap := countGap(ids, results); gap > 0 {
		o.metrics.ResolutionGap("search", gap)
		o.logger.Debug("Search results missing from catalog",
			zap.String("query", query),
			zap.Error(errors.NewResolutionGapError(gap)),
		)
	}

	o.publish(seq, inbound.SearchPublication{
		Query:   query,
		ByTag:   byTag,
		Results: results.Limit(o.opts.PageSize),
	})
}

func (o *Orchestrator) publish(seq uint64, pub inbound.SearchPublication) bool {
	o.mu.Lock()
	if latest := o.seq.Load(); seq != latest {
		o.mu.Unlock()
		o.metrics.StaleResponse("search")
		o.logger.Debug("Discarding superseded search response",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", latest),
		)
		return false
	}

	pub.Seq = seq
	o.current = pub
	subscribers := make([]func(inbound.SearchPublication), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subscribers = append(subscribers, fn)
	}
	o.mu.Unlock()

	for _, fn := range subscribers {
		fn(pub)
	}
	return true
}

func (o *Orchestrator) browseView() recipe.ResultSet {
	return o.index.All().Limit(o.opts.PageSize)
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// countGap returns how many distinct identifiers did not resolve
func countGap(ids []recipe.ID, resolved recipe.ResultSet) int {
	distinct := make(map[recipe.ID]struct{}, len(ids))
	for _, id := range ids {
		distinct[id] = struct{}{}
	}
	return len(distinct) - len(resolved)
}
