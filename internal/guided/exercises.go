// Package guided resolves exercise names and launches the guided-session
// helper process.
package guided

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Entry is one exercise in the approved library. Key is the canonical
// identifier; aliases cover the label variants the plan model emits.
type Entry struct {
	Key     string
	Label   string
	Aliases []string
}

// Library is the full set of exercises approved for guided sessions.
var Library = []Entry{
	{Key: "breathing", Label: "Breathing"},
	{Key: "pelvic_floor", Label: "Pelvic Floor"},
	{Key: "pelvic_tilt", Label: "Pelvic Tilt", Aliases: []string{"Pelvic Tilts"}},
	{Key: "heel_slide", Label: "Heel Slide", Aliases: []string{"Heel Slides"}},
	{Key: "glute_bridge", Label: "Glute Bridge", Aliases: []string{"Glute Bridges"}},
	{Key: "walking", Label: "Walking", Aliases: []string{"Gentle Walk"}},
	{Key: "bodyweight_squat", Label: "Bodyweight Squat", Aliases: []string{"Bodyweight Squats"}},
	{Key: "stationary_lunge", Label: "Stationary Lunge", Aliases: []string{"Stationary Lunges"}},
	{Key: "bird_dog", Label: "Bird-Dog", Aliases: []string{"Bird Dog", "Bird Dogs"}},
	{Key: "dead_bug", Label: "Dead Bug", Aliases: []string{"Dead Bugs"}},
	{Key: "modified_plank", Label: "Modified Plank", Aliases: []string{"Modified Planks"}},
	{Key: "bent_over_row", Label: "Bent-Over Row", Aliases: []string{"Bent Over Row", "Bent Over Rows"}},
	{Key: "bicep_curl", Label: "Bicep Curl", Aliases: []string{"Bicep Curls"}},
	{Key: "overhead_press", Label: "Overhead Press", Aliases: []string{"Overhead Presses"}},
	{Key: "goblet_squat", Label: "Goblet Squat", Aliases: []string{"Goblet Squats"}},
	{Key: "weighted_lunge", Label: "Weighted Lunge", Aliases: []string{"Weighted Lunges"}},
	{Key: "single_leg_deadlift", Label: "Single-Leg Deadlift", Aliases: []string{"Single Leg Deadlift"}},
	{Key: "squat_jump", Label: "Squat Jump", Aliases: []string{"Squat Jumps"}},
	{Key: "run_intervals", Label: "Run/Walk", Aliases: []string{"Run Walk", "Intervals"}},
	{Key: "hiit", Label: "HIIT Posture", Aliases: []string{"HIIT"}},
}

// ErrUnknownExercise is returned when a name resolves to no library entry.
var ErrUnknownExercise = errors.New("exercise is not available for guided sessions")

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
	lookupOnce sync.Once
	lookup     map[string]string
)

func normalizeLabel(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	normalized := nonAlnum.ReplaceAllString(lowered, "_")
	return strings.Trim(normalized, "_")
}

func buildLookup() {
	lookup = make(map[string]string)
	for _, entry := range Library {
		lookup[entry.Key] = entry.Key
		lookup[normalizeLabel(entry.Label)] = entry.Key
		for _, alias := range entry.Aliases {
			if normalized := normalizeLabel(alias); normalized != "" {
				lookup[normalized] = entry.Key
			}
		}
	}
}

// Resolve maps a display name, alias, or key (singular or plural) to the
// canonical exercise key.
func Resolve(name string) (string, error) {
	lookupOnce.Do(buildLookup)

	normalized := normalizeLabel(name)
	if normalized == "" {
		return "", ErrUnknownExercise
	}

	candidates := []string{normalized}
	if strings.HasSuffix(normalized, "es") {
		candidates = append(candidates, strings.TrimSuffix(normalized, "es"))
	}
	if strings.HasSuffix(normalized, "s") {
		candidates = append(candidates, strings.TrimSuffix(normalized, "s"))
	}

	for _, candidate := range candidates {
		if key, ok := lookup[candidate]; ok {
			return key, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownExercise)
}
