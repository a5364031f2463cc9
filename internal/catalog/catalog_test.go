package catalog

import (
	"context"
	"testing"

	"github.com/majkahealth/majka-server/internal/domain"
)

type fakeRepo struct {
	questions []domain.Question
	seeded    []domain.Question
	seedCount int64
}

func (f *fakeRepo) ActiveQuestions(_ context.Context, maxOrder int) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range f.questions {
		if q.OrderIndex <= maxOrder {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeRepo) SeedQuestions(_ context.Context, questions []domain.Question) (int64, error) {
	f.seeded = questions
	return f.seedCount, nil
}

func (f *fakeRepo) CreateMother(_ context.Context, _ *domain.Mother) (int64, error) { return 0, nil }
func (f *fakeRepo) GetMother(_ context.Context, _ int64) (*domain.Mother, error)   { return nil, nil }
func (f *fakeRepo) GetMotherByName(_ context.Context, _ string) (*domain.Mother, error) {
	return nil, nil
}
func (f *fakeRepo) AnswersFor(_ context.Context, _ int64) (map[int64]string, error) {
	return nil, nil
}
func (f *fakeRepo) SaveAnswer(_ context.Context, _, _ int64, _ string) (int64, error) {
	return 0, nil
}
func (f *fakeRepo) DeleteAnswers(_ context.Context, _ int64) error { return nil }
func (f *fakeRepo) AnswerPairs(_ context.Context, _ int64, _ int) ([]domain.AnswerPair, error) {
	return nil, nil
}
func (f *fakeRepo) Ping(_ context.Context) error { return nil }
func (f *fakeRepo) Close() error                 { return nil }

func TestQuestionsAppliesMaxOrder(t *testing.T) {
	repo := &fakeRepo{questions: []domain.Question{
		{ID: 1, OrderIndex: 1},
		{ID: 2, OrderIndex: 2},
		{ID: 3, OrderIndex: 3},
	}}
	svc := NewService(repo, 2)

	questions, err := svc.Questions(context.Background())
	if err != nil {
		t.Fatalf("Questions failed: %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("Expected 2 questions under the cap, got %d", len(questions))
	}
}

func TestEnsureSeededUsesDefaultCatalog(t *testing.T) {
	repo := &fakeRepo{seedCount: 18}
	svc := NewService(repo, 18)

	seeded, err := svc.EnsureSeeded(context.Background())
	if err != nil {
		t.Fatalf("EnsureSeeded failed: %v", err)
	}
	if seeded != 18 {
		t.Errorf("Expected 18 seeded, got %d", seeded)
	}
	if len(repo.seeded) != len(DefaultQuestions()) {
		t.Errorf("Expected full default catalog, got %d questions", len(repo.seeded))
	}
}

func TestDefaultQuestionsShape(t *testing.T) {
	questions := DefaultQuestions()
	if len(questions) != 18 {
		t.Fatalf("Expected 18 questions, got %d", len(questions))
	}

	seenText := make(map[string]bool)
	for i, q := range questions {
		if q.Text == "" {
			t.Errorf("Question %d has empty text", i)
		}
		if seenText[q.Text] {
			t.Errorf("Duplicate question text %q", q.Text)
		}
		seenText[q.Text] = true
		if q.OrderIndex != i+1 {
			t.Errorf("Question %d: expected order %d, got %d", i, i+1, q.OrderIndex)
		}
		for _, o := range q.Options {
			if o.Label == "" || o.Value == "" {
				t.Errorf("Question %d has an incomplete option: %+v", i, o)
			}
		}
	}
}
