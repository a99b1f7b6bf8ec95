package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Account is the shopper profile returned by the user endpoints.
type Account struct {
	ID         string `json:"_id" validate:"required"`
	Name       string `json:"name"`
	Email      string `json:"email" validate:"required,email"`
	ProfilePic string `json:"profilePic"`
}

// Session is a signed-in shopper and the bearer token the API issued.
type Session struct {
	User      Account `json:"user" validate:"required"`
	Token     string  `json:"token" validate:"required"`
	ExpiresIn int     `json:"expiresIn"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signin exchanges email and password for a session.
func (c *CatalogClient) Signin(ctx context.Context, email, password string) (*Session, error) {
	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(signinRequest{Email: strings.TrimSpace(email), Password: password})

	raw, err := c.execute(ctx, req, http.MethodPost, "/api/signin")
	if err != nil {
		return nil, fmt.Errorf("sign in %s: %w", email, err)
	}

	var session Session
	if err := c.decode(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
