// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/majkahealth/majka-server/internal/domain"
)

// ErrNameTaken is returned when creating a mother whose name already exists.
var ErrNameTaken = errors.New("a profile with this name already exists")

// Repository defines the interface for persisting mothers, the question
// catalog, and answers.
type Repository interface {
	// CreateMother inserts a new mother record and returns its id.
	// Returns ErrNameTaken when the name is already registered.
	CreateMother(ctx context.Context, m *domain.Mother) (int64, error)

	// GetMother retrieves a mother by id. Returns nil, nil when absent.
	GetMother(ctx context.Context, id int64) (*domain.Mother, error)

	// GetMotherByName retrieves a mother by name. Returns nil, nil when absent.
	GetMotherByName(ctx context.Context, name string) (*domain.Mother, error)

	// ActiveQuestions returns the active catalog questions with
	// order_index <= maxOrder, ordered by order_index, options included.
	ActiveQuestions(ctx context.Context, maxOrder int) ([]domain.Question, error)

	// AnswersFor returns every stored answer for a mother keyed by question id.
	AnswersFor(ctx context.Context, motherID int64) (map[int64]string, error)

	// SaveAnswer records an answer for (mother, question), replacing any
	// previous one, and returns the new answer row id.
	SaveAnswer(ctx context.Context, motherID, questionID int64, answer string) (int64, error)

	// DeleteAnswers removes every answer for a mother.
	DeleteAnswers(ctx context.Context, motherID int64) error

	// AnswerPairs returns the mother's answered questions joined with their
	// text, restricted to the active catalog, in catalog order.
	AnswerPairs(ctx context.Context, motherID int64, maxOrder int) ([]domain.AnswerPair, error)

	// SeedQuestions inserts the given catalog when the questions table is
	// empty, and reports how many questions were inserted.
	SeedQuestions(ctx context.Context, questions []domain.Question) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
