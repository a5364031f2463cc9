package plan

import (
	"encoding/json"
	"strings"

	"github.com/majkahealth/majka-server/internal/domain"
)

// Parse attempts to decode model output into the structured plan shape.
// Markdown code fences are stripped first. A nil plan means the output only
// works as raw text; that is not an error.
func Parse(text string) *domain.Plan {
	cleaned := stripCodeFence(text)
	var p domain.Plan
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return nil
	}
	return &p
}

// stripCodeFence removes a surrounding ```json ... ``` fence, if present.
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
