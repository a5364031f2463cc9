// Package intake implements the guided intake session controller: the state
// machine that tracks authentication, question position, per-question answer
// caching with dirty tracking, resume-after-login, and the single-fire plan
// request. It depends only on the collaborator interfaces below.
package intake

import (
	"context"

	"github.com/majkahealth/majka-server/internal/domain"
)

// Catalog supplies the ordered question list.
type Catalog interface {
	Questions(ctx context.Context) ([]domain.Question, error)
}

// SignupRequest carries the fields needed to create a mother profile.
type SignupRequest struct {
	Name        string `json:"name"`
	Password    string `json:"password"`
	Age         *int   `json:"age"`
	Country     string `json:"country"`
	DeliveredAt string `json:"delivered_at"`
}

// LoginResult reports the authenticated identity plus prior answers and the
// declared resume point. ResumeQuestionID is zero when the server did not
// declare one.
type LoginResult struct {
	MotherID         int64
	Profile          *domain.Profile
	Answers          map[int64]string
	ResumeQuestionID int64
}

// Identity creates and authenticates mother profiles.
type Identity interface {
	Signup(ctx context.Context, req SignupRequest) (int64, error)
	Login(ctx context.Context, name, password string) (*LoginResult, error)
}

// AnswerStore persists one answer per (mother, question).
type AnswerStore interface {
	SaveAnswer(ctx context.Context, motherID, questionID int64, answer string) error
	DeleteAnswers(ctx context.Context, motherID int64) error
}

// PlanService produces a personalized plan from accumulated answers.
type PlanService interface {
	GeneratePlan(ctx context.Context, motherID int64) (*domain.PlanResult, error)
}
