package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/majkahealth/majka-server/internal/domain"
)

type blockingPlans struct {
	calls   int
	entered chan struct{}
	release chan struct{}
	result  *domain.PlanResult
	err     error
}

func (f *blockingPlans) GeneratePlan(_ context.Context, _ int64) (*domain.PlanResult, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.PlanResult{PlanText: "raw plan"}, nil
}

func TestOrchestratorEnsureSingleFire(t *testing.T) {
	plans := &blockingPlans{result: &domain.PlanResult{
		Plan:     &domain.Plan{Greeting: "Hi"},
		PlanText: "{}",
	}}
	o := NewPlanOrchestrator(plans)

	if o.State() != domain.StateIdle {
		t.Errorf("Expected idle, got %s", o.State())
	}
	for i := 0; i < 3; i++ {
		if err := o.Ensure(context.Background(), 7); err != nil {
			t.Fatalf("Ensure failed: %v", err)
		}
	}
	if plans.calls != 1 {
		t.Errorf("Expected 1 plan call, got %d", plans.calls)
	}
	if o.State() != domain.StateSucceeded {
		t.Errorf("Expected succeeded, got %s", o.State())
	}
	plan, text := o.Result()
	if plan == nil || plan.Greeting != "Hi" {
		t.Error("Expected structured plan payload")
	}
	if text != "{}" {
		t.Errorf("Expected raw text kept, got %q", text)
	}
}

func TestOrchestratorFailureStaysArmed(t *testing.T) {
	plans := &blockingPlans{err: errors.New("quota exceeded")}
	o := NewPlanOrchestrator(plans)

	if err := o.Ensure(context.Background(), 7); err == nil {
		t.Fatal("Expected error")
	}
	if o.State() != domain.StateFailed {
		t.Errorf("Expected failed, got %s", o.State())
	}
	if o.Err() != "quota exceeded" {
		t.Errorf("Expected inline error message, got %q", o.Err())
	}

	// Failure does not re-arm the automatic request.
	if err := o.Ensure(context.Background(), 7); err != nil {
		t.Fatalf("Expected no-op Ensure, got %v", err)
	}
	if plans.calls != 1 {
		t.Errorf("Expected 1 plan call, got %d", plans.calls)
	}
}

func TestOrchestratorRefreshReissues(t *testing.T) {
	plans := &blockingPlans{err: errors.New("transient")}
	o := NewPlanOrchestrator(plans)

	if err := o.Ensure(context.Background(), 7); err == nil {
		t.Fatal("Expected error")
	}

	plans.err = nil
	if err := o.Refresh(context.Background(), 7); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if plans.calls != 2 {
		t.Errorf("Expected 2 plan calls, got %d", plans.calls)
	}
	if o.Err() != "" {
		t.Errorf("Expected error cleared, got %q", o.Err())
	}
}

func TestOrchestratorRefreshRejectedWhilePending(t *testing.T) {
	plans := &blockingPlans{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	o := NewPlanOrchestrator(plans)

	done := make(chan error, 1)
	go func() {
		done <- o.Ensure(context.Background(), 7)
	}()
	<-plans.entered

	if err := o.Refresh(context.Background(), 7); !errors.Is(err, ErrPlanPending) {
		t.Errorf("Expected ErrPlanPending, got %v", err)
	}

	close(plans.release)
	if err := <-done; err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if plans.calls != 1 {
		t.Errorf("Expected 1 plan call, got %d", plans.calls)
	}
}

func TestOrchestratorReset(t *testing.T) {
	plans := &blockingPlans{}
	o := NewPlanOrchestrator(plans)

	if err := o.Ensure(context.Background(), 7); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	o.Reset()

	if o.State() != domain.StateIdle {
		t.Errorf("Expected idle after reset, got %s", o.State())
	}
	if plan, text := o.Result(); plan != nil || text != "" {
		t.Error("Expected payload cleared after reset")
	}

	// A fresh episode fires again.
	if err := o.Ensure(context.Background(), 7); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if plans.calls != 2 {
		t.Errorf("Expected 2 plan calls, got %d", plans.calls)
	}
}
