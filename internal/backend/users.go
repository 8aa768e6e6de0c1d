package backend

import (
	"context"
	"fmt"

	"github.com/katatrina/blood-notify/internal/session"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login signs in and returns the flattened profile from the
// {user, message, token} response.
func (c *Client) Login(ctx context.Context, arg LoginRequest) (*session.UserProfile, error) {
	var body loginResponse
	res, err := c.request(ctx).
		SetBody(arg).
		SetResult(&body).
		Post("/users/login")
	if err = check(res, err); err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if body.profile == nil {
		return nil, fmt.Errorf("failed to decode profile: %w", session.ErrNoProfile)
	}
	return body.profile, nil
}

// loginResponse flattens whichever profile shape the backend answers with.
type loginResponse struct {
	profile *session.UserProfile
}

func (l *loginResponse) UnmarshalJSON(data []byte) error {
	profile, _, err := session.ParseProfile(data)
	if err != nil {
		return err
	}
	l.profile = profile
	return nil
}
