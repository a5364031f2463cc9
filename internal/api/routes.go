package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/majkahealth/majka-server/internal/domain"
	"github.com/majkahealth/majka-server/internal/guided"
	"github.com/majkahealth/majka-server/internal/identity"
	"github.com/majkahealth/majka-server/internal/intake"
	"github.com/majkahealth/majka-server/internal/plan"
	"github.com/majkahealth/majka-server/internal/store"
)

// RegisterRoutes mounts the REST API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/questions", h.ListQuestions)
	r.Post("/api/mothers", h.CreateMother)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/answers", h.SaveAnswer)
	// Kept for clients built against the earlier route name.
	r.Post("/api/answer", h.SaveAnswer)
	r.Post("/api/recommendations", h.Recommendations)
	r.Get("/api/mothers/{motherID}/profile", h.Profile)
	r.Post("/api/mothers/{motherID}/retake", h.Retake)
	r.Post("/api/ask", h.Ask)
	r.Post("/api/guided-session", h.GuidedSession)
}

// ListQuestions returns the active catalog in order.
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalog.Questions(r.Context())
	if err != nil {
		slog.Error("Failed to list questions", "error", err)
		Error(w, http.StatusInternalServerError, "Unable to load questions")
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	JSON(w, http.StatusOK, questions)
}

// CreateMother registers a new profile and returns its id.
func (h *Handler) CreateMother(w http.ResponseWriter, r *http.Request) {
	var req intake.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Name == "" || req.Password == "" {
		Error(w, http.StatusBadRequest, "Name and password are required")
		return
	}

	motherID, err := h.identity.Signup(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrNameTaken) {
			Error(w, http.StatusConflict, "A profile with this name already exists")
			return
		}
		slog.Error("Failed to create mother", "error", err)
		Error(w, http.StatusInternalServerError, "Unable to create mother record")
		return
	}
	JSON(w, http.StatusOK, map[string]int64{"mother_id": motherID})
}

type loginResponse struct {
	MotherID         int64            `json:"mother_id"`
	Profile          *domain.Profile  `json:"profile"`
	ResumeQuestionID int64            `json:"resume_question_id,omitempty"`
	AnsweredAnswers  map[int64]string `json:"answered_answers"`
}

// Login authenticates and reports prior answers plus the resume point.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid input")
		return
	}

	result, err := h.identity.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			Error(w, http.StatusUnauthorized, "Invalid name or password")
			return
		}
		slog.Error("Login failed", "error", err)
		Error(w, http.StatusInternalServerError, "Unable to sign in")
		return
	}

	JSON(w, http.StatusOK, loginResponse{
		MotherID:         result.MotherID,
		Profile:          result.Profile,
		ResumeQuestionID: result.ResumeQuestionID,
		AnsweredAnswers:  result.Answers,
	})
}

// SaveAnswer persists one answer for (mother, question), replacing any
// previous one.
func (h *Handler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MotherID   int64  `json:"mother_id"`
		QuestionID int64  `json:"question_id"`
		Answer     string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.MotherID == 0 || req.QuestionID == 0 || req.Answer == "" {
		Error(w, http.StatusBadRequest, "mother_id, question_id and answer are required")
		return
	}

	answerID, err := h.repo.SaveAnswer(r.Context(), req.MotherID, req.QuestionID, req.Answer)
	if err != nil {
		slog.Error("Failed to save answer", "error", err, "mother_id", req.MotherID, "question_id", req.QuestionID)
		Error(w, http.StatusInternalServerError, "Unable to save answer")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "answer_id": answerID})
}

// Recommendations generates a plan from the mother's accumulated answers.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MotherID int64 `json:"mother_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid input")
		return
	}

	result, err := h.plans.GeneratePlan(r.Context(), req.MotherID)
	if err != nil {
		switch {
		case errors.Is(err, plan.ErrNoAnswers):
			Error(w, http.StatusBadRequest, "No answers found for this mother. Please complete the intake first.")
		case errors.Is(err, plan.ErrMotherNotFound):
			Error(w, http.StatusNotFound, "Mother profile not found")
		case errors.Is(err, plan.ErrNotConfigured):
			Error(w, http.StatusInternalServerError, "GEMINI_API_KEY is not configured on the server.")
		default:
			slog.Error("Plan generation failed", "error", err, "mother_id", req.MotherID)
			Error(w, http.StatusInternalServerError, "Unable to generate your plan")
		}
		return
	}
	JSON(w, http.StatusOK, result)
}

// Profile returns the mother's profile and her answers in catalog order.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	motherID, err := strconv.ParseInt(chi.URLParam(r, "motherID"), 10, 64)
	if err != nil {
		Error(w, http.StatusBadRequest, "Invalid mother id")
		return
	}

	result, err := h.identity.Profile(r.Context(), motherID)
	if err != nil {
		slog.Error("Failed to load profile", "error", err, "mother_id", motherID)
		Error(w, http.StatusInternalServerError, "Unable to load profile")
		return
	}
	if result == nil {
		Error(w, http.StatusNotFound, "Mother profile not found")
		return
	}
	JSON(w, http.StatusOK, result)
}

// Retake deletes every answer for the mother so the intake restarts.
func (h *Handler) Retake(w http.ResponseWriter, r *http.Request) {
	motherID, err := strconv.ParseInt(chi.URLParam(r, "motherID"), 10, 64)
	if err != nil {
		Error(w, http.StatusBadRequest, "Invalid mother id")
		return
	}

	if err := h.identity.Retake(r.Context(), motherID); err != nil {
		slog.Error("Retake failed", "error", err, "mother_id", motherID)
		Error(w, http.StatusInternalServerError, "Unable to reset answers")
		return
	}
	JSON(w, http.StatusOK, map[string]string{})
}

// Ask forwards one question to the assistant.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question   string `json:"question"`
		MotherID   int64  `json:"mother_id"`
		MotherName string `json:"mother_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Question == "" {
		Error(w, http.StatusBadRequest, "No question provided")
		return
	}
	if h.assistant == nil {
		Error(w, http.StatusInternalServerError, "GEMINI_API_KEY is not configured on the server.")
		return
	}

	answer, err := h.assistant.Ask(r.Context(), req.Question, req.MotherID, req.MotherName)
	if err != nil {
		slog.Error("Assistant ask failed", "error", err)
		Error(w, http.StatusInternalServerError, "Failed to get response")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// GuidedSession resolves the exercise name and launches the helper.
func (h *Handler) GuidedSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Exercise string `json:"exercise"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Exercise == "" {
		Error(w, http.StatusBadRequest, "Exercise name is required.")
		return
	}

	key, err := guided.Resolve(req.Exercise)
	if err != nil {
		Error(w, http.StatusNotFound, "Exercise '"+req.Exercise+"' is not available for guided sessions.")
		return
	}

	if err := h.launcher.Start(key); err != nil {
		slog.Error("Failed to launch guided session", "error", err, "exercise", key)
		Error(w, http.StatusInternalServerError, "Unable to launch guided session")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "launching", "exercise": key})
}
