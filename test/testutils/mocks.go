// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/user"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
)

// MockKeyValueStore provides a mock implementation of KeyValueStore
type MockKeyValueStore struct {
	mock.Mock
}

// Get retrieves a value
func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

// Set stores a value
func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Delete removes a value
func (m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Close closes the store
func (m *MockKeyValueStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPersonalizationService provides a mock implementation of the remote service
type MockPersonalizationService struct {
	mock.Mock
}

// Like records a like
func (m *MockPersonalizationService) Like(ctx context.Context, userID user.ID, recipeID recipe.ID) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

// Search runs a search
func (m *MockPersonalizationService) Search(ctx context.Context, text string) ([]recipe.ID, error) {
	args := m.Called(ctx, text)
	return idsArg(args, 0), args.Error(1)
}

// Recommend fetches recommendations
func (m *MockPersonalizationService) Recommend(ctx context.Context, userID user.ID) ([]recipe.ID, error) {
	args := m.Called(ctx, userID)
	return idsArg(args, 0), args.Error(1)
}

// RecipesByQuery runs the legacy catalog fetch
func (m *MockPersonalizationService) RecipesByQuery(ctx context.Context, query string) ([]recipe.ID, error) {
	args := m.Called(ctx, query)
	return idsArg(args, 0), args.Error(1)
}

// Ingredients fetches the ingredient list
func (m *MockPersonalizationService) Ingredients(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func idsArg(args mock.Arguments, i int) []recipe.ID {
	if v := args.Get(i); v != nil {
		return v.([]recipe.ID)
	}
	return nil
}

// RecordingMetrics counts what the core reports. Safe for concurrent use.
type RecordingMetrics struct {
	mu                sync.Mutex
	Stale             map[string]int
	Gaps              map[string]int
	LikeNotifications map[string]int
	PersistenceErrors map[string]int
}

var _ outbound.MetricsRecorder = (*RecordingMetrics)(nil)

// NewRecordingMetrics creates an empty recorder
func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{
		Stale:             make(map[string]int),
		Gaps:              make(map[string]int),
		LikeNotifications: make(map[string]int),
		PersistenceErrors: make(map[string]int),
	}
}

func (r *RecordingMetrics) StaleResponse(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Stale[kind]++
}

func (r *RecordingMetrics) ResolutionGap(kind string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Gaps[kind] += count
}

func (r *RecordingMetrics) LikeNotification(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LikeNotifications[outcome]++
}

func (r *RecordingMetrics) PersistenceError(op, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PersistenceErrors[op+":"+key]++
}

// Count returns a counter value under the recorder's lock
func (r *RecordingMetrics) Count(counter map[string]int, key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return counter[key]
}
