package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/quiz"
)

// runQuiz lists themes or plays one interactively.
func (a *app) runQuiz(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "themes" {
		return a.runQuizThemes(ctx)
	}
	if args[0] == "play" {
		if len(args) < 2 {
			return fmt.Errorf("usage: cartecalcio quiz play <theme-slug>")
		}
		return a.runQuizPlay(ctx, args[1])
	}
	fmt.Println("Usage: cartecalcio quiz [themes|play <theme-slug>]")
	return fmt.Errorf("unknown quiz command: %s", args[0])
}

func (a *app) runQuizThemes(ctx context.Context) error {
	themes, err := a.client.QuizThemes(ctx)
	if err != nil {
		return err
	}
	if len(themes) == 0 {
		fmt.Println("No quiz themes available.")
		return nil
	}
	for _, theme := range themes {
		fmt.Printf("%-20s %s (%d questions)\n", theme.Slug, theme.Name, theme.QuestionCount)
	}
	return nil
}

func (a *app) runQuizPlay(ctx context.Context, slug string) error {
	questions, err := a.client.QuizQuestions(ctx, slug)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		fmt.Println("This theme has no questions.")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	answers := make(map[int]int)

	for i, question := range questions {
		fmt.Printf("\n%d) %s\n", i+1, question.Text)
		for j, answer := range question.Answers {
			fmt.Printf("   %d. %s\n", j+1, answer.Text)
		}
		choice, err := promptChoice(reader, len(question.Answers))
		if err != nil {
			return err
		}
		if choice > 0 {
			answers[question.ID] = question.Answers[choice-1].ID
		}
	}

	result := quiz.Score(slug, questions, answers)
	fmt.Printf("\n%d correct, %d wrong, %d skipped.\n",
		result.Correct, result.Wrong, result.Unanswered)

	credits, err := quiz.Award(ctx, a.client, result)
	if err != nil {
		return err
	}
	if result.CreditDelta >= 0 {
		fmt.Printf("Credits earned: %d\n", result.CreditDelta)
	} else {
		fmt.Printf("Credits lost: %d\n", -result.CreditDelta)
	}
	if credits != nil {
		fmt.Printf("New balance: %d\n", credits.Credits)
	}
	return nil
}

// promptChoice reads an answer number, 0 or empty to skip.
func promptChoice(reader *bufio.Reader, max int) (int, error) {
	for {
		fmt.Print("Answer (0 to skip): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("read answer: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return 0, nil
		}
		choice, err := strconv.Atoi(line)
		if err != nil || choice < 0 || choice > max {
			fmt.Printf("Enter a number between 0 and %d.\n", max)
			continue
		}
		return choice, nil
	}
}
