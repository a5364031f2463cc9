// Package identity creates and authenticates mother profiles.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/majkahealth/majka-server/internal/domain"
	"github.com/majkahealth/majka-server/internal/intake"
	"github.com/majkahealth/majka-server/internal/store"
)

// ErrInvalidCredentials is returned for an unknown name or a wrong password.
// The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid name or password")

// Service implements signup, login, retake, and profile fetch over the store.
type Service struct {
	repo     store.Repository
	maxOrder int
}

// NewService creates an identity service.
func NewService(repo store.Repository, maxOrder int) *Service {
	return &Service{repo: repo, maxOrder: maxOrder}
}

var _ intake.Identity = (*Service)(nil)

// Signup hashes the password and creates the mother record.
func (s *Service) Signup(ctx context.Context, req intake.SignupRequest) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	mother := &domain.Mother{
		Name:         req.Name,
		PasswordHash: string(hash),
		Age:          req.Age,
		Country:      req.Country,
	}
	if req.DeliveredAt != "" {
		delivered, err := parseDeliveredAt(req.DeliveredAt)
		if err != nil {
			return 0, fmt.Errorf("parse delivered_at: %w", err)
		}
		mother.DeliveredAt = &delivered
	}

	id, err := s.repo.CreateMother(ctx, mother)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func parseDeliveredAt(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Login verifies credentials and reports the answer history together with
// the resume point: the first active catalog question, in order, that has no
// answer yet. The resume id is zero when every question is answered. The
// answer map is filtered to ids present in the active catalog.
func (s *Service) Login(ctx context.Context, name, password string) (*intake.LoginResult, error) {
	mother, err := s.repo.GetMotherByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("look up mother: %w", err)
	}
	if mother == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(mother.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	answers, err := s.repo.AnswersFor(ctx, mother.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	questions, err := s.repo.ActiveQuestions(ctx, s.maxOrder)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	var resumeID int64
	filtered := make(map[int64]string)
	for _, q := range questions {
		answer, ok := answers[q.ID]
		if ok {
			filtered[q.ID] = answer
		} else if resumeID == 0 {
			resumeID = q.ID
		}
	}

	return &intake.LoginResult{
		MotherID:         mother.ID,
		Profile:          mother.Profile(),
		Answers:          filtered,
		ResumeQuestionID: resumeID,
	}, nil
}

// Retake deletes every answer for the mother so the sequence restarts.
func (s *Service) Retake(ctx context.Context, motherID int64) error {
	return s.repo.DeleteAnswers(ctx, motherID)
}

// ProfileResult is the profile fetch payload: the public profile plus the
// answered questions in catalog order.
type ProfileResult struct {
	Profile *domain.Profile     `json:"profile"`
	Answers []domain.AnswerPair `json:"answers"`
}

// Profile returns the mother's profile and ordered answer pairs. Returns
// nil, nil when the mother does not exist.
func (s *Service) Profile(ctx context.Context, motherID int64) (*ProfileResult, error) {
	mother, err := s.repo.GetMother(ctx, motherID)
	if err != nil {
		return nil, fmt.Errorf("load mother: %w", err)
	}
	if mother == nil {
		return nil, nil
	}
	pairs, err := s.repo.AnswerPairs(ctx, motherID, s.maxOrder)
	if err != nil {
		return nil, fmt.Errorf("load answer pairs: %w", err)
	}
	if pairs == nil {
		pairs = []domain.AnswerPair{}
	}
	return &ProfileResult{Profile: mother.Profile(), Answers: pairs}, nil
}
