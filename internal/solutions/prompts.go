package solutions

import (
	"fmt"
	"strings"

	"github.com/exampapers/backend/internal/models"
)

func SystemPrompt() string {
	return `You are a mathematics teacher writing memorandum-style worked solutions for South African
matric and first-year university exam papers.

Write the solution as a short sequence of steps a student can follow one at a time:
- Each step does one thing: state the method, substitute, simplify, or conclude.
- Show the working, not just the result. Keep notation plain text (x², √, ±).
- Respect the marks allocation: a 2-mark question needs about two steps, a 6-mark question more.
- The last step states the final answer exactly as the question asks (rounding, units, form).

Respond with JSON only, no commentary:
{"steps":[{"step_number":1,"content":"..."},{"step_number":2,"content":"..."}]}`
}

// BuildUserPrompt describes one question with its paper context. Existing
// steps, if any, are included so a redraft can improve on them.
func BuildUserPrompt(q models.Question, paper models.Paper, existing []models.Answer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Paper: %s (%s)\n", paper.Title, paper.Year)
	fmt.Fprintf(&b, "Question number: %s\n", q.QuestionNumber)
	fmt.Fprintf(&b, "Marks: %d\n", q.Marks)
	fmt.Fprintf(&b, "Question: %s\n", strings.ReplaceAll(q.Content, "\n", " "))

	if len(existing) > 0 {
		b.WriteString("\nCurrent memorandum (improve on it, keep it correct):\n")
		for _, a := range existing {
			fmt.Fprintf(&b, "%d. %s\n", a.StepNumber, a.Content)
		}
	}
	return b.String()
}
