//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/majkahealth/majka-server/internal/catalog"
	"github.com/majkahealth/majka-server/internal/chat"
	"github.com/majkahealth/majka-server/internal/domain"
	"github.com/majkahealth/majka-server/internal/guided"
	"github.com/majkahealth/majka-server/internal/identity"
	"github.com/majkahealth/majka-server/internal/plan"
	"github.com/majkahealth/majka-server/internal/store"
)

type fakeRepo struct {
	mothers   map[int64]*domain.Mother
	nextID    int64
	questions []domain.Question
	answers   map[int64]map[int64]string
}

func newFakeRepo() *fakeRepo {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	return &fakeRepo{
		mothers: map[int64]*domain.Mother{
			1: {ID: 1, Name: "Ana", PasswordHash: string(hash), Country: "PT"},
		},
		nextID: 2,
		questions: []domain.Question{
			{ID: 10, Text: "How are you feeling?", OrderIndex: 1, Options: []domain.Option{
				{ID: 1, Label: "Great", Value: "great"},
			}},
			{ID: 20, Text: "Anything hurting?", OrderIndex: 2},
		},
		answers: make(map[int64]map[int64]string),
	}
}

func (f *fakeRepo) CreateMother(_ context.Context, m *domain.Mother) (int64, error) {
	for _, existing := range f.mothers {
		if existing.Name == m.Name {
			return 0, store.ErrNameTaken
		}
	}
	id := f.nextID
	f.nextID++
	stored := *m
	stored.ID = id
	f.mothers[id] = &stored
	return id, nil
}

func (f *fakeRepo) GetMother(_ context.Context, id int64) (*domain.Mother, error) {
	return f.mothers[id], nil
}

func (f *fakeRepo) GetMotherByName(_ context.Context, name string) (*domain.Mother, error) {
	for _, m := range f.mothers {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ActiveQuestions(_ context.Context, _ int) ([]domain.Question, error) {
	return f.questions, nil
}

func (f *fakeRepo) AnswersFor(_ context.Context, motherID int64) (map[int64]string, error) {
	return f.answers[motherID], nil
}

func (f *fakeRepo) SaveAnswer(_ context.Context, motherID, questionID int64, answer string) (int64, error) {
	if f.answers[motherID] == nil {
		f.answers[motherID] = make(map[int64]string)
	}
	f.answers[motherID][questionID] = answer
	return 42, nil
}

func (f *fakeRepo) DeleteAnswers(_ context.Context, motherID int64) error {
	delete(f.answers, motherID)
	return nil
}

func (f *fakeRepo) AnswerPairs(_ context.Context, motherID int64, _ int) ([]domain.AnswerPair, error) {
	var pairs []domain.AnswerPair
	for _, q := range f.questions {
		if answer, ok := f.answers[motherID][q.ID]; ok {
			pairs = append(pairs, domain.AnswerPair{OrderIndex: q.OrderIndex, Question: q.Text, Answer: answer})
		}
	}
	return pairs, nil
}

func (f *fakeRepo) SeedQuestions(_ context.Context, _ []domain.Question) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return nil }
func (f *fakeRepo) Close() error                 { return nil }

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

type fakeAssistant struct {
	answer string
	err    error
}

func (f *fakeAssistant) Ask(_ context.Context, _ string, _ int64, _ string) (string, error) {
	return f.answer, f.err
}

func newTestRouter(repo *fakeRepo, gen plan.Generator, assistant chat.Assistant) chi.Router {
	catalogSvc := catalog.NewService(repo, 18)
	identitySvc := identity.NewService(repo, 18)
	planSvc := plan.NewService(repo, gen, 18)
	launcher := guided.NewLauncher("/bin/true")

	h := NewHandler(catalogSvc, identitySvc, repo, planSvc, assistant, launcher)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestListQuestions(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodGet, "/api/questions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var questions []domain.Question
	decodeBody(t, w, &questions)
	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %d", len(questions))
	}
	if len(questions[0].Options) != 1 {
		t.Errorf("Expected options included, got %+v", questions[0])
	}
}

func TestCreateMother(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/mothers", map[string]interface{}{
		"name": "Bea", "password": "pw", "age": 28, "country": "PT", "delivered_at": "2026-07-01",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]int64
	decodeBody(t, w, &resp)
	if resp["mother_id"] == 0 {
		t.Error("Expected non-zero mother id")
	}
}

func TestCreateMotherDuplicateName(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/mothers", map[string]string{
		"name": "Ana", "password": "pw",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
}

func TestCreateMotherMissingFields(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/mothers", map[string]string{"name": "Bea"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeRepo()
	repo.answers[1] = map[int64]string{10: "great"}
	r := newTestRouter(repo, nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"name": "Ana", "password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		MotherID         int64            `json:"mother_id"`
		ResumeQuestionID int64            `json:"resume_question_id"`
		AnsweredAnswers  map[int64]string `json:"answered_answers"`
	}
	decodeBody(t, w, &resp)
	if resp.MotherID != 1 {
		t.Errorf("Expected mother id 1, got %d", resp.MotherID)
	}
	if resp.ResumeQuestionID != 20 {
		t.Errorf("Expected resume at question 20, got %d", resp.ResumeQuestionID)
	}
	if resp.AnsweredAnswers[10] != "great" {
		t.Errorf("Expected answer history, got %+v", resp.AnsweredAnswers)
	}
}

func TestLoginBadPassword(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"name": "Ana", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestSaveAnswerBothRoutes(t *testing.T) {
	repo := newFakeRepo()
	r := newTestRouter(repo, nil, nil)

	for _, path := range []string{"/api/answers", "/api/answer"} {
		w := doJSON(t, r, http.MethodPost, path, map[string]interface{}{
			"mother_id": 1, "question_id": 10, "answer": "great",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d", path, w.Code)
		}
		var resp map[string]interface{}
		decodeBody(t, w, &resp)
		if resp["status"] != "ok" {
			t.Errorf("%s: expected ok status, got %v", path, resp)
		}
	}
	if repo.answers[1][10] != "great" {
		t.Error("Expected answer persisted")
	}
}

func TestSaveAnswerMissingFields(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/answers", map[string]interface{}{
		"mother_id": 1, "question_id": 10,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestRecommendationsNoAnswers(t *testing.T) {
	r := newTestRouter(newFakeRepo(), &fakeGenerator{text: "{}"}, nil)

	w := doJSON(t, r, http.MethodPost, "/api/recommendations", map[string]int64{"mother_id": 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}

	var resp map[string]string
	decodeBody(t, w, &resp)
	if resp["error"] != "No answers found for this mother. Please complete the intake first." {
		t.Errorf("Unexpected error message: %q", resp["error"])
	}
}

func TestRecommendationsNotConfigured(t *testing.T) {
	repo := newFakeRepo()
	repo.answers[1] = map[int64]string{10: "great"}
	r := newTestRouter(repo, nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/recommendations", map[string]int64{"mother_id": 1})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestRecommendationsSuccess(t *testing.T) {
	repo := newFakeRepo()
	repo.answers[1] = map[int64]string{10: "great"}
	gen := &fakeGenerator{text: `{"greeting": "Hi Ana", "exercises": []}`}
	r := newTestRouter(repo, gen, nil)

	w := doJSON(t, r, http.MethodPost, "/api/recommendations", map[string]int64{"mother_id": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var result domain.PlanResult
	decodeBody(t, w, &result)
	if result.Plan == nil || result.Plan.Greeting != "Hi Ana" {
		t.Error("Expected structured plan in response")
	}
	if result.PlanText == "" {
		t.Error("Expected raw plan text in response")
	}
}

func TestProfileFound(t *testing.T) {
	repo := newFakeRepo()
	repo.answers[1] = map[int64]string{10: "great"}
	r := newTestRouter(repo, nil, nil)

	w := doJSON(t, r, http.MethodGet, "/api/mothers/1/profile", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Profile *domain.Profile     `json:"profile"`
		Answers []domain.AnswerPair `json:"answers"`
	}
	decodeBody(t, w, &resp)
	if resp.Profile == nil || resp.Profile.Name != "Ana" {
		t.Error("Expected profile payload")
	}
	if len(resp.Answers) != 1 {
		t.Errorf("Expected 1 answer pair, got %d", len(resp.Answers))
	}
}

func TestProfileNotFound(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodGet, "/api/mothers/999/profile", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}

	var resp map[string]string
	decodeBody(t, w, &resp)
	if resp["error"] != "Mother profile not found" {
		t.Errorf("Unexpected error message: %q", resp["error"])
	}
}

func TestRetake(t *testing.T) {
	repo := newFakeRepo()
	repo.answers[1] = map[int64]string{10: "great"}
	r := newTestRouter(repo, nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/mothers/1/retake", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(repo.answers[1]) != 0 {
		t.Error("Expected answers deleted")
	}
}

func TestAsk(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, &fakeAssistant{answer: "You're doing great."})

	w := doJSON(t, r, http.MethodPost, "/api/ask", map[string]interface{}{
		"question": "Is this normal?", "mother_id": 1, "mother_name": "Ana",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	decodeBody(t, w, &resp)
	if resp["answer"] != "You're doing great." {
		t.Errorf("Unexpected answer: %q", resp["answer"])
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, &fakeAssistant{answer: "x"})

	w := doJSON(t, r, http.MethodPost, "/api/ask", map[string]string{"question": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestAskWithoutAssistant(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/ask", map[string]string{"question": "hi"})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestAskAssistantError(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, &fakeAssistant{err: errors.New("model down")})

	w := doJSON(t, r, http.MethodPost, "/api/ask", map[string]string{"question": "hi"})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestGuidedSession(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/guided-session", map[string]string{"exercise": "Pelvic Tilts"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	decodeBody(t, w, &resp)
	if resp["status"] != "launching" || resp["exercise"] != "pelvic_tilt" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestGuidedSessionUnknownExercise(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/guided-session", map[string]string{"exercise": "Backflip"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGuidedSessionMissingName(t *testing.T) {
	r := newTestRouter(newFakeRepo(), nil, nil)

	w := doJSON(t, r, http.MethodPost, "/api/guided-session", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}
