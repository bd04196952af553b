package backend

import (
	"context"
	"fmt"
	"net/http"
)

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	_, err := c.doRequest(ctx, request{method: http.MethodPost, path: "/api/users/register/", body: body}, nil)
	if err != nil {
		return fmt.Errorf("register %s: %w", username, err)
	}
	return nil
}

// Login exchanges credentials for a JWT pair.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	body := map[string]string{"username": username, "password": password}
	var pair TokenPair
	_, err := c.doRequest(ctx, request{method: http.MethodPost, path: "/api/users/token/", body: body}, &pair)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &pair, nil
}

// RefreshToken exchanges a refresh token for a new access token. The backend
// keeps the refresh token valid, so only Access is set on the result.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*TokenPair, error) {
	body := map[string]string{"refresh": refresh}
	var pair TokenPair
	_, err := c.doRequest(ctx, request{method: http.MethodPost, path: "/api/users/token/refresh/", body: body}, &pair)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if pair.Access == "" {
		return nil, fmt.Errorf("refresh token: empty access token in response")
	}
	return &pair, nil
}

// Credits fetches the user's current balance and username.
func (c *Client) Credits(ctx context.Context) (*Credits, error) {
	var credits Credits
	if err := c.authedGet(ctx, "/api/users/me/credits/", &credits); err != nil {
		return nil, fmt.Errorf("get credits: %w", err)
	}
	return &credits, nil
}

// AdjustCredits applies a signed delta to the balance and returns the new
// total, mirroring the optimistic credit updates the client performs after
// quizzes and missions.
func (c *Client) AdjustCredits(ctx context.Context, delta int) (*Credits, error) {
	body := map[string]int{"delta": delta}
	var credits Credits
	_, err := c.doRequest(ctx, request{
		method: http.MethodPost,
		path:   "/api/users/me/credits/",
		body:   body,
		authed: true,
	}, &credits)
	if err != nil {
		return nil, fmt.Errorf("adjust credits by %d: %w", delta, err)
	}
	return &credits, nil
}

// Achievements fetches the user's achievement progress.
func (c *Client) Achievements(ctx context.Context) ([]Achievement, error) {
	var achievements []Achievement
	if err := c.authedGet(ctx, "/api/users/me/achievements/", &achievements); err != nil {
		return nil, fmt.Errorf("get achievements: %w", err)
	}
	return achievements, nil
}
