// Package session implements the session store: the signed-in identity and
// liked set, held in memory and mirrored to durable key-value storage
package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/session"
	"github.com/alchemorsel/recipebook/internal/domain/user"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/errors"
)

// Persisted entry keys
const (
	KeyToken = "userToken"
	KeyInfo  = "userInfo"
	KeyLikes = "userLikes"
)

// Store implements inbound.SessionService. The mutex only guards the
// in-memory snapshot; callers must not issue overlapping mutations.
type Store struct {
	kv       outbound.KeyValueStore
	metrics  outbound.MetricsRecorder
	validate *validator.Validate
	logger   *zap.Logger

	mu          sync.RWMutex
	current     session.Snapshot
	subscribers map[int]func(session.Snapshot)
	nextSubID   int
}

var _ inbound.SessionService = (*Store)(nil)

// NewStore creates a logged-out store over kv. Call Restore to pick up a
// session persisted by an earlier process.
func NewStore(kv outbound.KeyValueStore, metrics outbound.MetricsRecorder, logger *zap.Logger) *Store {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Store{
		kv:          kv,
		metrics:     metrics,
		validate:    validator.New(),
		logger:      logger.Named("session-store"),
		current:     session.Anonymous(),
		subscribers: make(map[int]func(session.Snapshot)),
	}
}

// Login establishes the session for info and persists it. Each of the three
// entries is written independently; a failed write is logged and the rest
// still go ahead.
func (s *Store) Login(ctx context.Context, info user.Info, likes []recipe.ID) (session.Snapshot, error) {
	if err := s.validate.Struct(info); err != nil {
		return s.Current(), validationError(err)
	}

	snap := session.Authenticated(info, info.Token(), session.NewLikedSet(likes...))
	s.set(snap)

	s.logger.Info("User logged in",
		zap.String("user_id", info.IDUser.String()),
		zap.Int("likes", snap.LikeCount()),
	)

	s.write(ctx, KeyToken, []byte(snap.AuthToken))
	if data, err := json.Marshal(info); err == nil {
		s.write(ctx, KeyInfo, data)
	} else {
		s.writeFailed(KeyInfo, "encode", err)
	}
	s.writeLikes(ctx, snap.Likes)

	s.notify(snap)
	return snap, nil
}

// Logout clears the session in memory and removes every persisted entry
func (s *Store) Logout(ctx context.Context) session.Snapshot {
	previous := s.Current()
	snap := session.Anonymous()
	s.set(snap)

	for _, key := range []string{KeyToken, KeyInfo, KeyLikes} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.writeFailed(key, "remove", err)
		}
	}

	if previous.IsAuthenticated {
		s.logger.Info("User logged out", zap.String("user_id", previous.UserID.String()))
	}

	s.notify(snap)
	return snap
}

// Restore rebuilds the session from storage. Anything unreadable falls back
// to the logged-out state (missing or bad userInfo) or to an empty liked set
// (missing or bad userLikes); nothing is returned as an error.
func (s *Store) Restore(ctx context.Context) session.Snapshot {
	snap := s.load(ctx)
	s.set(snap)

	s.logger.Debug("Session restored",
		zap.Bool("authenticated", snap.IsAuthenticated),
		zap.Int("likes", snap.LikeCount()),
	)

	s.notify(snap)
	return snap
}

// UpdateLikedIDs replaces the liked set and persists it before returning
func (s *Store) UpdateLikedIDs(ctx context.Context, likes session.LikedSet) session.Snapshot {
	s.mu.Lock()
	s.current = s.current.WithLikes(likes)
	snap := s.current
	s.mu.Unlock()

	s.writeLikes(ctx, likes)

	s.notify(snap)
	return snap
}

// Current returns the current snapshot
func (s *Store) Current() session.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn to receive every snapshot published after a mutation
func (s *Store) Subscribe(fn func(session.Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) load(ctx context.Context) session.Snapshot {
	raw, err := s.kv.Get(ctx, KeyInfo)
	if err != nil {
		if !stderrors.Is(err, outbound.ErrKeyNotFound) {
			s.readFailed(KeyInfo, err)
		}
		return session.Anonymous()
	}

	var info user.Info
	if err := json.Unmarshal(raw, &info); err != nil {
		s.readFailed(KeyInfo, err)
		return session.Anonymous()
	}
	if err := s.validate.Struct(info); err != nil {
		s.readFailed(KeyInfo, err)
		return session.Anonymous()
	}

	token := info.Token()
	if rawToken, err := s.kv.Get(ctx, KeyToken); err == nil && len(rawToken) > 0 {
		token = string(rawToken)
	} else if err != nil && !stderrors.Is(err, outbound.ErrKeyNotFound) {
		s.readFailed(KeyToken, err)
	}

	return session.Authenticated(info, token, s.loadLikes(ctx))
}

func (s *Store) loadLikes(ctx context.Context) session.LikedSet {
	raw, err := s.kv.Get(ctx, KeyLikes)
	if err != nil {
		if !stderrors.Is(err, outbound.ErrKeyNotFound) {
			s.readFailed(KeyLikes, err)
		}
		return session.NewLikedSet()
	}

	var ids []recipe.ID
	if err := json.Unmarshal(raw, &ids); err != nil {
		s.readFailed(KeyLikes, err)
		return session.NewLikedSet()
	}
	return session.NewLikedSet(ids...)
}

func (s *Store) writeLikes(ctx context.Context, likes session.LikedSet) {
	data, err := json.Marshal(likes.IDs())
	if err != nil {
		s.writeFailed(KeyLikes, "encode", err)
		return
	}
	s.write(ctx, KeyLikes, data)
}

func (s *Store) write(ctx context.Context, key string, value []byte) {
	if err := s.kv.Set(ctx, key, value); err != nil {
		s.writeFailed(key, "write", err)
	}
}

func (s *Store) writeFailed(key, op string, err error) {
	appErr := errors.NewPersistenceWriteError(key, op, err)
	s.metrics.PersistenceError(op, key)
	s.logger.Warn("Session entry not persisted",
		zap.String("key", key),
		zap.String("code", string(appErr.Code)),
		zap.Error(err),
	)
}

func (s *Store) readFailed(key string, err error) {
	appErr := errors.NewPersistenceReadError(key, err)
	s.metrics.PersistenceError("read", key)
	s.logger.Warn("Session entry unreadable, using default",
		zap.String("key", key),
		zap.String("code", string(appErr.Code)),
		zap.Error(err),
	)
}

func (s *Store) set(snap session.Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
}

func (s *Store) notify(snap session.Snapshot) {
	s.mu.RLock()
	subscribers := make([]func(session.Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subscribers {
		fn(snap)
	}
}

// validationError reports every failing field of a user record
func validationError(err error) *errors.AppError {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidationError(err.Error())
	}

	out := make([]errors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errors.ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag()),
		})
	}
	return errors.NewValidationErrors(out)
}
