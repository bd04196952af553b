package backend

import (
	"context"
	"fmt"
)

// QuizThemes lists the available quiz topics.
func (c *Client) QuizThemes(ctx context.Context) ([]QuizTheme, error) {
	var payload struct {
		Themes []QuizTheme `json:"themes"`
	}
	if err := c.get(ctx, "/api/quiz/themes/", &payload); err != nil {
		return nil, fmt.Errorf("get quiz themes: %w", err)
	}
	return payload.Themes, nil
}

// QuizQuestions fetches the questions of one theme by slug.
func (c *Client) QuizQuestions(ctx context.Context, slug string) ([]QuizQuestion, error) {
	var payload struct {
		Theme     QuizTheme      `json:"theme"`
		Questions []QuizQuestion `json:"questions"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/quiz/themes/%s/", slug), &payload); err != nil {
		return nil, fmt.Errorf("get quiz questions for %s: %w", slug, err)
	}
	return payload.Questions, nil
}
