package domain

// PlanExercise is a single recommended exercise inside a structured plan.
type PlanExercise struct {
	Title    string `json:"title"`
	Summary  string `json:"summary,omitempty"`
	Why      string `json:"why,omitempty"`
	How      string `json:"how,omitempty"`
	CTALabel string `json:"cta_label,omitempty"`
}

// Plan is the structured form of a generated recovery plan.
type Plan struct {
	Greeting  string         `json:"greeting"`
	Intro     string         `json:"intro,omitempty"`
	Exercises []PlanExercise `json:"exercises"`
	Closing   string         `json:"closing,omitempty"`
}

// PlanResult is the outcome of one plan-generation request. PlanText always
// carries the raw model output; Plan is non-nil only when that output decoded
// into the structured shape. The two are alternative payloads, not layers.
type PlanResult struct {
	Plan     *Plan  `json:"plan"`
	PlanText string `json:"plan_text"`
}
