package domain

// RequestState tracks one in-flight network-bound operation. The intake
// controller keeps an independent RequestState per subsystem (answer
// submission, plan fetch, chat send) instead of loose booleans that can
// drift apart.
type RequestState string

const (
	// StateIdle means no request has been attempted yet.
	StateIdle RequestState = "idle"
	// StatePending means a request is in flight; a second attempt is rejected.
	StatePending RequestState = "pending"
	// StateSucceeded means the last request completed.
	StateSucceeded RequestState = "succeeded"
	// StateFailed means the last request errored; the gate is released.
	StateFailed RequestState = "failed"
)

// InFlight reports whether a request holds this gate.
func (s RequestState) InFlight() bool {
	return s == StatePending
}
