package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/majkahealth/majka-server/internal/domain"
)

// Service-level failures surfaced to the transport layer.
var (
	// ErrNoAnswers means the mother has not completed any of the intake.
	ErrNoAnswers = errors.New("no answers found for this mother")
	// ErrNotConfigured means no generator (Gemini API key) is available.
	ErrNotConfigured = errors.New("plan generation is not configured on the server")
	// ErrMotherNotFound means the mother id does not exist.
	ErrMotherNotFound = errors.New("mother profile not found")
)

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Store is the slice of the repository the plan service needs.
type Store interface {
	GetMother(ctx context.Context, id int64) (*domain.Mother, error)
	AnswerPairs(ctx context.Context, motherID int64, maxOrder int) ([]domain.AnswerPair, error)
}

// Service builds the coach prompt from stored answers and asks the model
// for a plan. A nil generator leaves the service in a not-configured state
// so the rest of the server keeps working without an API key.
type Service struct {
	store    Store
	gen      Generator
	maxOrder int
	now      func() time.Time
}

// NewService creates a plan service. gen may be nil.
func NewService(store Store, gen Generator, maxOrder int) *Service {
	return &Service{store: store, gen: gen, maxOrder: maxOrder, now: time.Now}
}

// GeneratePlan produces a plan for the mother's accumulated answers. The
// raw model text is always returned; the structured plan only when the text
// decodes into it.
func (s *Service) GeneratePlan(ctx context.Context, motherID int64) (*domain.PlanResult, error) {
	if s.gen == nil {
		return nil, ErrNotConfigured
	}

	pairs, err := s.store.AnswerPairs(ctx, motherID, s.maxOrder)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	if len(pairs) == 0 {
		return nil, ErrNoAnswers
	}

	mother, err := s.store.GetMother(ctx, motherID)
	if err != nil {
		return nil, fmt.Errorf("load mother: %w", err)
	}
	if mother == nil {
		return nil, ErrMotherNotFound
	}

	weeks, hasWeeks := mother.PostpartumWeeks(s.now())
	var deliveredLabel string
	if mother.DeliveredAt != nil {
		deliveredLabel = mother.DeliveredAt.Format("2006-01-02")
	}

	prompt := buildPrompt(pairs, weeks, hasWeeks, deliveredLabel, mother.Name)
	text, err := s.gen.Generate(ctx, "", prompt)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	return &domain.PlanResult{Plan: Parse(text), PlanText: text}, nil
}
