// Package catalog serves the ordered intake question list.
package catalog

import (
	"context"
	"fmt"

	"github.com/majkahealth/majka-server/internal/domain"
	"github.com/majkahealth/majka-server/internal/store"
)

// Service supplies the active question catalog. The order is fixed by the
// order_index column and is never reordered locally.
type Service struct {
	repo     store.Repository
	maxOrder int
}

// NewService creates a catalog service capped at maxOrder.
func NewService(repo store.Repository, maxOrder int) *Service {
	return &Service{repo: repo, maxOrder: maxOrder}
}

// Questions returns the active catalog in order.
func (s *Service) Questions(ctx context.Context) ([]domain.Question, error) {
	questions, err := s.repo.ActiveQuestions(ctx, s.maxOrder)
	if err != nil {
		return nil, fmt.Errorf("load question catalog: %w", err)
	}
	return questions, nil
}

// EnsureSeeded inserts the default catalog when the questions table is empty
// and reports how many questions were added.
func (s *Service) EnsureSeeded(ctx context.Context) (int64, error) {
	return s.repo.SeedQuestions(ctx, DefaultQuestions())
}
