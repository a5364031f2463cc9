package intake

import (
	"context"
	"errors"
	"sync"

	"github.com/majkahealth/majka-server/internal/domain"
)

// ErrPlanPending is returned when a plan refresh is attempted while a plan
// request is already in flight.
var ErrPlanPending = errors.New("plan request already in flight")

// PlanOrchestrator issues at most one automatic plan request per completion
// episode. The requested flag is distinct from the load state: once a request
// has been issued for this episode, re-entering the completed view does not
// issue another, even after a failure. A manual Refresh re-arms the flag.
// Reset (retake, or any transition away from the completed phase) clears
// everything. The orchestrator carries its own lock; it shares no mutable
// state with the submission or chat gates.
type PlanOrchestrator struct {
	mu      sync.Mutex
	service PlanService

	requested bool
	state     domain.RequestState
	plan      *domain.Plan
	planText  string
	errMsg    string
}

// NewPlanOrchestrator creates an orchestrator over the given plan service.
func NewPlanOrchestrator(service PlanService) *PlanOrchestrator {
	return &PlanOrchestrator{service: service, state: domain.StateIdle}
}

// Reset clears plan payload, error, and the requested flag.
func (o *PlanOrchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requested = false
	o.state = domain.StateIdle
	o.plan = nil
	o.planText = ""
	o.errMsg = ""
}

// Ensure issues the plan request for this episode if none has been issued
// yet. Calling it again while a request is in flight, after success, or
// after failure is a no-op; only Refresh re-issues.
func (o *PlanOrchestrator) Ensure(ctx context.Context, motherID int64) error {
	o.mu.Lock()
	if o.requested {
		o.mu.Unlock()
		return nil
	}
	o.requested = true
	o.state = domain.StatePending
	o.errMsg = ""
	o.mu.Unlock()

	return o.fetch(ctx, motherID)
}

// Refresh re-arms the orchestrator and issues one more request. Rejected
// while a request is pending.
func (o *PlanOrchestrator) Refresh(ctx context.Context, motherID int64) error {
	o.mu.Lock()
	if o.state.InFlight() {
		o.mu.Unlock()
		return ErrPlanPending
	}
	o.requested = true
	o.state = domain.StatePending
	o.errMsg = ""
	o.mu.Unlock()

	return o.fetch(ctx, motherID)
}

func (o *PlanOrchestrator) fetch(ctx context.Context, motherID int64) error {
	result, err := o.service.GeneratePlan(ctx, motherID)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.state = domain.StateFailed
		o.errMsg = err.Error()
		return err
	}
	o.state = domain.StateSucceeded
	o.plan = result.Plan
	o.planText = result.PlanText
	return nil
}

// State returns the current request state.
func (o *PlanOrchestrator) State() domain.RequestState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Result returns the structured plan (nil when the service returned raw text
// only) and the raw plan text.
func (o *PlanOrchestrator) Result() (*domain.Plan, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.plan, o.planText
}

// Err returns the inline error message of the last failed request.
func (o *PlanOrchestrator) Err() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errMsg
}
