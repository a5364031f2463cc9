package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/majkahealth/majka-server/internal/domain"
)

// Phase is the top-level state of an intake session.
type Phase string

const (
	// PhaseAuth means no identity is established yet.
	PhaseAuth Phase = "auth"
	// PhaseQuestions means the mother is answering the catalog.
	PhaseQuestions Phase = "questions"
	// PhaseDone means every question is answered; plan orchestration runs here.
	PhaseDone Phase = "done"
)

// Validation and gating errors. None of these issue a network call or
// mutate session state.
var (
	ErrSubmitPending    = errors.New("a submission is already in flight")
	ErrEmptyAnswer      = errors.New("an answer is required before continuing")
	ErrMissingFields    = errors.New("all signup fields are required")
	ErrMissingCreds     = errors.New("name and password are required")
	ErrNotAuthenticated = errors.New("sign up or sign in first")
	ErrNoActiveQuestion = errors.New("no question is active")
	ErrNotCompleted     = errors.New("the intake is not finished")
)

// Controller is the intake session state machine. One Controller serves one
// logical client session; a server holds one instance per connected client.
// All mutating methods are safe for concurrent use, but overlapping writes
// for the same logical slot are rejected rather than queued: at most one
// answer submission is in flight at a time, and the plan gate is independent.
type Controller struct {
	mu       sync.Mutex
	catalog  Catalog
	identity Identity
	answers  AnswerStore
	plan     *PlanOrchestrator

	questions []domain.Question
	cache     *AnswerCache

	phase            Phase
	motherID         int64
	profile          *domain.Profile
	resumeQuestionID int64

	currentIndex   int
	selectedOption string
	textAnswer     string
	dirty          bool
	submitState    domain.RequestState
}

// NewController creates a controller in the auth phase with an empty cache.
func NewController(catalog Catalog, identity Identity, answers AnswerStore, plans PlanService) *Controller {
	return &Controller{
		catalog:     catalog,
		identity:    identity,
		answers:     answers,
		plan:        NewPlanOrchestrator(plans),
		cache:       NewAnswerCache(),
		phase:       PhaseAuth,
		submitState: domain.StateIdle,
	}
}

// LoadQuestions fetches the catalog. The order is fixed for the session.
// When questions arrive after a login has already set a resume point, the
// position is recomputed against the loaded list.
func (c *Controller) LoadQuestions(ctx context.Context) error {
	questions, err := c.catalog.Questions(ctx)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.questions = questions
	if c.phase == PhaseQuestions {
		c.applyResume()
		c.loadCurrent()
		c.checkComplete()
	}
	return nil
}

// Signup creates a profile and enters questioning at index 0 with an empty
// cache. All fields are required.
func (c *Controller) Signup(ctx context.Context, req SignupRequest) error {
	c.mu.Lock()
	if c.submitState.InFlight() {
		c.mu.Unlock()
		return ErrSubmitPending
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Country = strings.TrimSpace(req.Country)
	if req.Name == "" || req.Password == "" || req.Age == nil || req.Country == "" || req.DeliveredAt == "" {
		c.mu.Unlock()
		return ErrMissingFields
	}
	c.submitState = domain.StatePending
	c.mu.Unlock()

	motherID, err := c.identity.Signup(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.submitState = domain.StateFailed
		return err
	}

	c.motherID = motherID
	c.profile = &domain.Profile{Name: req.Name, Age: req.Age, Country: req.Country}
	c.cache.Clear()
	c.resumeQuestionID = 0
	c.selectedOption = ""
	c.textAnswer = ""
	c.dirty = false
	c.plan.Reset()
	c.submitState = domain.StateSucceeded
	c.phase = PhaseQuestions
	c.currentIndex = 0
	c.loadCurrent()
	c.checkComplete()
	return nil
}

// Login authenticates, rebuilds the cache from the reported history, and
// resumes. A server-declared resume question id wins over the count-derived
// index; a declared id missing from the catalog falls back to index 0. When
// the history already covers every catalog question the session moves
// straight to the done phase without rendering a question.
func (c *Controller) Login(ctx context.Context, name, password string) error {
	c.mu.Lock()
	if c.submitState.InFlight() {
		c.mu.Unlock()
		return ErrSubmitPending
	}
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		c.mu.Unlock()
		return ErrMissingCreds
	}
	c.submitState = domain.StatePending
	c.mu.Unlock()

	result, err := c.identity.Login(ctx, name, password)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.submitState = domain.StateFailed
		return err
	}

	c.motherID = result.MotherID
	c.profile = result.Profile
	c.cache.Replace(result.Answers)
	c.resumeQuestionID = result.ResumeQuestionID
	c.dirty = false
	c.plan.Reset()
	c.submitState = domain.StateSucceeded
	c.phase = PhaseQuestions
	c.applyResume()
	c.loadCurrent()
	c.checkComplete()
	return nil
}

// applyResume computes the current index. Caller holds the lock.
func (c *Controller) applyResume() {
	if len(c.questions) == 0 {
		c.currentIndex = 0
		return
	}
	if c.resumeQuestionID != 0 {
		for i := range c.questions {
			if c.questions[i].ID == c.resumeQuestionID {
				c.currentIndex = i
				return
			}
		}
		c.currentIndex = 0
		return
	}
	// Heuristic: assume answers were given in catalog order. This is not
	// validated against the answered question ids.
	if n := c.cache.Size(); n > 0 {
		c.currentIndex = min(n, len(c.questions)-1)
	} else {
		c.currentIndex = 0
	}
}

// loadCurrent prefills the displayed answer from the cache and marks the
// question clean. The load itself never dirties state. Caller holds the lock.
func (c *Controller) loadCurrent() {
	c.selectedOption = ""
	c.textAnswer = ""
	c.dirty = false

	q := c.activeQuestion()
	if q == nil {
		return
	}
	cached, ok := c.cache.Get(q.ID)
	if !ok || cached == "" {
		return
	}
	if opt, matched := q.MatchOption(cached); matched {
		c.selectedOption = opt.Value
	} else {
		c.textAnswer = cached
	}
}

// checkComplete moves to the done phase when the cache already covers the
// whole catalog. Caller holds the lock.
func (c *Controller) checkComplete() {
	if c.phase == PhaseQuestions && len(c.questions) > 0 && c.cache.Size() >= len(c.questions) {
		c.enterDone()
	}
}

// enterDone starts a fresh completion episode. Caller holds the lock.
func (c *Controller) enterDone() {
	c.plan.Reset()
	c.phase = PhaseDone
}

func (c *Controller) activeQuestion() *domain.Question {
	if len(c.questions) == 0 || c.currentIndex < 0 || c.currentIndex >= len(c.questions) {
		return nil
	}
	return &c.questions[c.currentIndex]
}

// SelectOption records an option pick and marks the question dirty.
func (c *Controller) SelectOption(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseQuestions || c.activeQuestion() == nil {
		return ErrNoActiveQuestion
	}
	c.selectedOption = value
	c.textAnswer = ""
	c.dirty = true
	return nil
}

// SetText records a free-text edit and marks the question dirty.
func (c *Controller) SetText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseQuestions || c.activeQuestion() == nil {
		return ErrNoActiveQuestion
	}
	c.textAnswer = text
	c.selectedOption = ""
	c.dirty = true
	return nil
}

// Prev moves back one question, never below 0. The cache is untouched and
// the newly shown question is reloaded from it, clearing the dirty flag.
func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseQuestions {
		return ErrNoActiveQuestion
	}
	if c.submitState.InFlight() {
		return ErrSubmitPending
	}
	if c.currentIndex == 0 {
		return nil
	}
	c.currentIndex--
	c.loadCurrent()
	return nil
}

// Submit advances past the current question. A clean revisit with a cached
// answer is a pure navigation and issues no write. Otherwise the current
// answer must be non-empty; on a committed write the cache is updated, the
// dirty flag cleared, and the index advances or the phase moves to done.
// A second submit while one is pending is rejected, not queued.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseQuestions {
		c.mu.Unlock()
		return ErrNoActiveQuestion
	}
	if c.motherID == 0 {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	q := c.activeQuestion()
	if q == nil {
		c.mu.Unlock()
		return ErrNoActiveQuestion
	}
	if c.submitState.InFlight() {
		c.mu.Unlock()
		return ErrSubmitPending
	}

	if cached, ok := c.cache.Get(q.ID); !c.dirty && ok && cached != "" {
		c.advance()
		c.mu.Unlock()
		return nil
	}

	var answer string
	if q.IsFreeText() {
		answer = strings.TrimSpace(c.textAnswer)
	} else {
		answer = c.selectedOption
	}
	if answer == "" {
		c.mu.Unlock()
		return ErrEmptyAnswer
	}

	c.submitState = domain.StatePending
	motherID, questionID := c.motherID, q.ID
	c.mu.Unlock()

	err := c.answers.SaveAnswer(ctx, motherID, questionID, answer)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// Pre-attempt state stays intact: no index advance, no cache write.
		c.submitState = domain.StateFailed
		return err
	}
	c.cache.Set(questionID, answer)
	c.dirty = false
	c.submitState = domain.StateSucceeded
	c.advance()
	return nil
}

// advance moves to the next question or the done phase. Caller holds the lock.
func (c *Controller) advance() {
	if c.currentIndex >= len(c.questions)-1 {
		c.enterDone()
		return
	}
	c.currentIndex++
	c.loadCurrent()
}

// Retake discards every stored answer and restarts the question sequence at
// index 0 with an empty cache and fully cleared plan state.
func (c *Controller) Retake(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseDone {
		c.mu.Unlock()
		return ErrNotCompleted
	}
	if c.submitState.InFlight() {
		c.mu.Unlock()
		return ErrSubmitPending
	}
	c.submitState = domain.StatePending
	motherID := c.motherID
	c.mu.Unlock()

	err := c.answers.DeleteAnswers(ctx, motherID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.submitState = domain.StateFailed
		return err
	}
	c.cache.Clear()
	c.resumeQuestionID = 0
	c.currentIndex = 0
	c.dirty = false
	c.plan.Reset()
	c.submitState = domain.StateSucceeded
	c.phase = PhaseQuestions
	c.loadCurrent()
	return nil
}

// EnsurePlan issues the automatic plan request for the current completion
// episode. It is idempotent: re-rendering the done view any number of times
// issues exactly one request. Outside the done phase it is a no-op.
func (c *Controller) EnsurePlan(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseDone || c.motherID == 0 {
		c.mu.Unlock()
		return nil
	}
	motherID := c.motherID
	c.mu.Unlock()
	return c.plan.Ensure(ctx, motherID)
}

// RefreshPlan manually re-issues the plan request.
func (c *Controller) RefreshPlan(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseDone || c.motherID == 0 {
		c.mu.Unlock()
		return ErrNotCompleted
	}
	motherID := c.motherID
	c.mu.Unlock()
	return c.plan.Refresh(ctx, motherID)
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// MotherID returns the authenticated mother id, 0 before auth.
func (c *Controller) MotherID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.motherID
}

// Profile returns the authenticated profile, nil before auth.
func (c *Controller) Profile() *domain.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// CurrentIndex returns the active question index.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIndex
}

// ActiveQuestion returns a copy of the active question, nil when none.
func (c *Controller) ActiveQuestion() *domain.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.activeQuestion()
	if q == nil {
		return nil
	}
	copied := *q
	return &copied
}

// Dirty reports whether the displayed answer has been edited since it was
// loaded from the cache.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// SubmitState returns the submission gate state.
func (c *Controller) SubmitState() domain.RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitState
}

// SelectedOption returns the displayed option value.
func (c *Controller) SelectedOption() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedOption
}

// TextAnswer returns the displayed free-text answer.
func (c *Controller) TextAnswer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.textAnswer
}

// CacheSize returns the number of cached answers.
func (c *Controller) CacheSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Size()
}

// CachedAnswer returns the cached answer for a question id.
func (c *Controller) CachedAnswer(questionID int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(questionID)
}

// PlanState returns the plan gate state.
func (c *Controller) PlanState() domain.RequestState {
	return c.plan.State()
}

// PlanResult returns the structured plan (if any) and raw plan text.
func (c *Controller) PlanResult() (*domain.Plan, string) {
	return c.plan.Result()
}

// PlanErr returns the inline plan error message.
func (c *Controller) PlanErr() string {
	return c.plan.Err()
}

// Snapshot captures the controller state for transport to a client.
type Snapshot struct {
	Phase          Phase               `json:"phase"`
	CurrentIndex   int                 `json:"current_index"`
	QuestionCount  int                 `json:"question_count"`
	Question       *domain.Question    `json:"question,omitempty"`
	SelectedOption string              `json:"selected_option"`
	TextAnswer     string              `json:"text_answer"`
	Dirty          bool                `json:"dirty"`
	SubmitState    domain.RequestState `json:"submit_state"`
	PlanState      domain.RequestState `json:"plan_state"`
	Plan           *domain.Plan        `json:"plan,omitempty"`
	PlanText       string              `json:"plan_text,omitempty"`
	PlanError      string              `json:"plan_error,omitempty"`
}

// Snapshot returns the current state for transport to a client.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		Phase:          c.phase,
		CurrentIndex:   c.currentIndex,
		QuestionCount:  len(c.questions),
		SelectedOption: c.selectedOption,
		TextAnswer:     c.textAnswer,
		Dirty:          c.dirty,
		SubmitState:    c.submitState,
	}
	if q := c.activeQuestion(); q != nil && c.phase == PhaseQuestions {
		copied := *q
		snap.Question = &copied
	}
	c.mu.Unlock()

	snap.PlanState = c.plan.State()
	snap.Plan, snap.PlanText = c.plan.Result()
	snap.PlanError = c.plan.Err()
	return snap
}
