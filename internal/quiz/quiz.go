// Package quiz scores quiz runs and converts them into credit awards.
package quiz

import (
	"context"
	"fmt"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/backend"
)

// CreditsPerAnswer is the credit swing of one answer: correct earns it,
// wrong loses it.
const CreditsPerAnswer = 10

// Result is the outcome of one completed quiz run.
type Result struct {
	Theme       string `json:"theme"`
	Total       int    `json:"total"`
	Correct     int    `json:"correct"`
	Wrong       int    `json:"wrong"`
	Unanswered  int    `json:"unanswered"`
	CreditDelta int    `json:"credit_delta"`
}

// Score grades a run against the served questions. answers maps question id
// to the chosen answer id; a question absent from the map counts as
// unanswered and neither earns nor costs credits.
func Score(theme string, questions []backend.QuizQuestion, answers map[int]int) Result {
	result := Result{Theme: theme, Total: len(questions)}
	for _, question := range questions {
		chosen, answered := answers[question.ID]
		if !answered {
			result.Unanswered++
			continue
		}
		if isCorrect(question, chosen) {
			result.Correct++
			result.CreditDelta += CreditsPerAnswer
		} else {
			result.Wrong++
			result.CreditDelta -= CreditsPerAnswer
		}
	}
	return result
}

func isCorrect(question backend.QuizQuestion, answerID int) bool {
	for _, answer := range question.Answers {
		if answer.ID == answerID {
			return answer.IsCorrect
		}
	}
	return false
}

// Rewarder is the slice of the API client the award step needs.
type Rewarder interface {
	AdjustCredits(ctx context.Context, delta int) (*backend.Credits, error)
}

var _ Rewarder = (*backend.Client)(nil)

// Award applies the run's credit delta to the user's balance. A zero delta
// skips the network call and reports the balance as unknown (nil).
func Award(ctx context.Context, rewarder Rewarder, result Result) (*backend.Credits, error) {
	if result.CreditDelta == 0 {
		return nil, nil
	}
	credits, err := rewarder.AdjustCredits(ctx, result.CreditDelta)
	if err != nil {
		return nil, fmt.Errorf("award quiz credits: %w", err)
	}
	return credits, nil
}
