package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/majkahealth/majka-server/internal/chat"
	"github.com/majkahealth/majka-server/internal/domain"
	"github.com/majkahealth/majka-server/internal/intake"
	"github.com/majkahealth/majka-server/internal/store"
)

// Handler upgrades connections to intake sessions. Every connection owns a
// fresh controller; events mutate it and each event is answered with a
// state snapshot.
type Handler struct {
	catalog   intake.Catalog
	identity  intake.Identity
	repo      store.Repository
	plans     intake.PlanService
	assistant chat.Assistant
	mgr       *Manager

	allowedOrigin string
	isDev         bool
}

// NewHandler creates the WebSocket intake handler. assistant may be nil
// when chat is not configured.
func NewHandler(catalog intake.Catalog, identity intake.Identity, repo store.Repository,
	plans intake.PlanService, assistant chat.Assistant, mgr *Manager,
	allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		catalog:       catalog,
		identity:      identity,
		repo:          repo,
		plans:         plans,
		assistant:     assistant,
		mgr:           mgr,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// answerStore adapts the repository to the controller's answer port.
type answerStore struct {
	repo store.Repository
}

func (a answerStore) SaveAnswer(ctx context.Context, motherID, questionID int64, answer string) error {
	_, err := a.repo.SaveAnswer(ctx, motherID, questionID, answer)
	return err
}

func (a answerStore) DeleteAnswers(ctx context.Context, motherID int64) error {
	return a.repo.DeleteAnswers(ctx, motherID)
}

// event is a client-to-server intake command.
type event struct {
	Type string `json:"type"`

	// signup / login
	Name        string `json:"name,omitempty"`
	Password    string `json:"password,omitempty"`
	Age         *int   `json:"age,omitempty"`
	Country     string `json:"country,omitempty"`
	DeliveredAt string `json:"delivered_at,omitempty"`

	// select
	Value string `json:"value,omitempty"`
	// input / chat_send
	Text string `json:"text,omitempty"`
}

// snapshot is the server-to-client state message written after each event.
type snapshot struct {
	intake.Snapshot
	Chat      []domain.ChatMessage `json:"chat,omitempty"`
	ChatState domain.RequestState  `json:"chat_state,omitempty"`
	ChatError string               `json:"chat_error,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	sessionID := uuid.NewString()
	slog.Info("Intake session opened", "session_id", sessionID, "ip", r.RemoteAddr)

	ctrl := intake.NewController(h.catalog, h.identity, answerStore{h.repo}, h.plans)

	ctx := r.Context()
	var lastErr string
	if err := ctrl.LoadQuestions(ctx); err != nil {
		slog.Error("Failed to load question catalog", "error", err, "session_id", sessionID)
		lastErr = "Unable to load questions"
	}

	var chatSession *chat.Session
	registered := false
	defer func() {
		if registered {
			h.mgr.Unregister(ctrl.MotherID(), sessionID, ws)
		}
	}()

	if err := h.writeSnapshot(ctx, ws, ctrl, chatSession, lastErr); err != nil {
		return
	}

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			slog.Info("Intake session closed", "session_id", sessionID)
			return
		}

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			lastErr = "invalid event"
			if err := h.writeSnapshot(ctx, ws, ctrl, chatSession, lastErr); err != nil {
				return
			}
			continue
		}

		wasAuthed := ctrl.MotherID() != 0
		if err := h.dispatch(ctx, ctrl, &chatSession, ev); err != nil {
			lastErr = err.Error()
		} else {
			lastErr = ""
		}

		if !wasAuthed && ctrl.MotherID() != 0 {
			h.mgr.Register(ctrl.MotherID(), sessionID, ws)
			registered = true
		}

		// Entering the done phase triggers the automatic plan request;
		// repeating this on every event is harmless because the
		// orchestrator fires at most once per episode.
		if ctrl.Phase() == intake.PhaseDone {
			if err := ctrl.EnsurePlan(ctx); err != nil {
				slog.Warn("Plan request failed", "error", err, "session_id", sessionID)
			}
		}

		if err := h.writeSnapshot(ctx, ws, ctrl, chatSession, lastErr); err != nil {
			return
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, ctrl *intake.Controller, chatSession **chat.Session, ev event) error {
	switch ev.Type {
	case "signup":
		return ctrl.Signup(ctx, intake.SignupRequest{
			Name:        ev.Name,
			Password:    ev.Password,
			Age:         ev.Age,
			Country:     ev.Country,
			DeliveredAt: ev.DeliveredAt,
		})
	case "login":
		return ctrl.Login(ctx, ev.Name, ev.Password)
	case "select":
		return ctrl.SelectOption(ev.Value)
	case "input":
		return ctrl.SetText(ev.Text)
	case "submit":
		return ctrl.Submit(ctx)
	case "prev":
		return ctrl.Prev()
	case "retake":
		return ctrl.Retake(ctx)
	case "refresh_plan":
		return ctrl.RefreshPlan(ctx)
	case "chat_open":
		return h.openChat(ctrl, chatSession)
	case "chat_send":
		if *chatSession == nil {
			if err := h.openChat(ctrl, chatSession); err != nil {
				return err
			}
		}
		return (*chatSession).Send(ctx, ev.Text)
	default:
		return errors.New("unknown event type")
	}
}

func (h *Handler) openChat(ctrl *intake.Controller, chatSession **chat.Session) error {
	if h.assistant == nil {
		return errors.New("assistant is not configured")
	}
	motherID := ctrl.MotherID()
	if motherID == 0 {
		return intake.ErrNotAuthenticated
	}
	if *chatSession == nil {
		var name string
		if profile := ctrl.Profile(); profile != nil {
			name = profile.Name
		}
		*chatSession = chat.NewSession(h.assistant, motherID, name)
	}
	(*chatSession).Open()
	return nil
}

func (h *Handler) writeSnapshot(ctx context.Context, ws *websocket.Conn, ctrl *intake.Controller, chatSession *chat.Session, lastErr string) error {
	snap := snapshot{Snapshot: ctrl.Snapshot(), Error: lastErr}
	if chatSession != nil {
		snap.Chat = chatSession.Messages()
		snap.ChatState = chatSession.State()
		snap.ChatError = chatSession.Err()
	}

	data, err := json.Marshal(snap)
	if err != nil {
		slog.Error("Failed to encode snapshot", "error", err)
		return err
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("WebSocket write error", "error", err)
		return err
	}
	return nil
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev || h.allowedOrigin == "" {
		return true
	}
	return r.Header.Get("Origin") == h.allowedOrigin
}
