package chat

import (
	"context"
	"fmt"
)

// masterSafetyPrompt pins the assistant to emotional support and blocks
// medical advice.
const masterSafetyPrompt = `
You are 'Majka,' a warm, nurturing, and maternal AI assistant for new mothers.
YOUR PRIMARY DIRECTIVE IS SAFETY. YOU ARE NOT A DOCTOR.

1.  You MUST NOT give any medical advice, diagnosis, or treatment recommendations.
2.  If the user's question sounds medical, you MUST gently decline and guide them to a doctor.
3.  CRITICAL RULE: If a user mentions bleeding, fever, pus, severe headache, dizziness, or suicidal thoughts, you MUST stop. Your ONLY response must be: 'That sounds serious, and your safety is most important. Please stop and call your doctor or 911 immediately.'
4.  Your job is to provide emotional support, validation, and general (non-medical) information.
`

// Generator produces a text completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GeminiAssistant answers questions with the Majka safety prompt as system
// instruction. Each ask is stateless; the session history is not sent.
type GeminiAssistant struct {
	gen Generator
}

// NewGeminiAssistant creates an assistant over a generator.
func NewGeminiAssistant(gen Generator) *GeminiAssistant {
	return &GeminiAssistant{gen: gen}
}

var _ Assistant = (*GeminiAssistant)(nil)

// Ask sends one question and returns the assistant's answer.
func (a *GeminiAssistant) Ask(ctx context.Context, question string, _ int64, motherName string) (string, error) {
	prompt := question
	if motherName != "" {
		prompt = fmt.Sprintf("The mother's name is %s.\n\n%s", motherName, question)
	}
	answer, err := a.gen.Generate(ctx, masterSafetyPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("ask assistant: %w", err)
	}
	return answer, nil
}
