// Package catalog owns the process-wide recipe index built from the bundled catalog
package catalog

import (
	stderrors "errors"
	"sync"

	"go.uber.org/zap"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/pkg/errors"
)

// Service builds the recipe index exactly once per process
type Service struct {
	logger *zap.Logger

	once       sync.Once
	index      *recipe.Index
	duplicates []*errors.AppError
}

// NewService creates a catalog service with no index loaded yet
func NewService(logger *zap.Logger) *Service {
	return &Service{
		logger: logger.Named("catalog-service"),
	}
}

// LoadOnce builds the index from records on the first call. Later calls
// ignore their argument and return the index built the first time.
// Duplicate identifiers are not fatal: the first record wins and each
// dropped record is logged.
func (s *Service) LoadOnce(records []*recipe.Record) *recipe.Index {
	s.once.Do(func() {
		idx, err := recipe.NewIndex(records)
		s.index = idx
		if err != nil {
			s.reportLoadProblems(err)
		}

		s.logger.Info("Recipe catalog loaded",
			zap.Int("records", len(records)),
			zap.Int("indexed", idx.Len()),
			zap.Int("duplicates", len(s.duplicates)),
		)
	})
	return s.index
}

// Index returns the loaded index, or nil before LoadOnce
func (s *Service) Index() *recipe.Index {
	return s.index
}

// Duplicates returns the duplicate-identifier errors seen while loading
func (s *Service) Duplicates() []*errors.AppError {
	return s.duplicates
}

func (s *Service) reportLoadProblems(err error) {
	joined, ok := err.(interface{ Unwrap() []error })
	problems := []error{err}
	if ok {
		problems = joined.Unwrap()
	}

	for _, problem := range problems {
		var dup *recipe.DuplicateError
		if stderrors.As(problem, &dup) {
			appErr := errors.NewDuplicateIdentifierError(dup.ID.String(), dup)
			s.duplicates = append(s.duplicates, appErr)
			s.logger.Warn("Duplicate recipe identifier, keeping the first record",
				zap.String("recipe_id", dup.ID.String()),
				zap.Int("position", dup.Position),
			)
			continue
		}
		s.logger.Warn("Skipping invalid catalog record", zap.Error(problem))
	}
}
