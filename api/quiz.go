package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/intelliquiz/iqclient/httpx"
)

// GenerateQuiz asks for a quiz on topic at difficulty.
func (c *Client) GenerateQuiz(ctx context.Context, topic, difficulty string) (Quiz, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}

	var out Quiz
	query := map[string]string{"topic": topic, "difficulty": difficulty}
	if _, err := c.http.Get(ctx, "/quiz/generate", &out, httpx.WithQuery(query)); err != nil {
		return Quiz{}, fmt.Errorf("api: generate quiz: %w", err)
	}
	return out, nil
}

// SubmitQuiz grades a completed quiz server-side. Empty answer lists are
// rejected without a request.
func (c *Client) SubmitQuiz(ctx context.Context, sub Submission) (Result, error) {
	if len(sub.Answers) == 0 {
		return Result{}, ErrNoAnswers
	}
	if sub.UserID == 0 {
		id, err := c.userID("")
		if err != nil {
			return Result{}, err
		}
		if sub.UserID, err = numericID(id); err != nil {
			return Result{}, err
		}
	}
	if sub.Topic == "" {
		sub.Topic = DefaultTopic
	}
	if sub.Difficulty == "" {
		sub.Difficulty = DefaultDifficulty
	}

	var out Result
	if _, err := c.http.Post(ctx, "/quiz/submit", sub, &out); err != nil {
		return Result{}, fmt.Errorf("api: submit quiz: %w", err)
	}
	return out, nil
}

// Attempts lists past attempts of userID, or of the session's user when empty.
func (c *Client) Attempts(ctx context.Context, userID string) ([]Attempt, error) {
	id, err := c.userID(userID)
	if err != nil {
		return nil, err
	}
	var out []Attempt
	if _, err := c.http.Get(ctx, "/quiz/attempts/"+url.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("api: attempts: %w", err)
	}
	return out, nil
}
