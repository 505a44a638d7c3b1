package hunt_api_client

import (
	"context"
	"fmt"
)

type Credentials struct {
	TeamName string `json:"teamName"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	Msg   string `json:"msg"`
}

// Login exchanges team credentials for a session token.
func (c *HuntAPIClient) Login(ctx context.Context, teamName, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.PostJSON(ctx, LoginEndpoint, Credentials{TeamName: teamName, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &resp, nil
}

// Signup registers a new team and returns its session token.
func (c *HuntAPIClient) Signup(ctx context.Context, teamName, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.PostJSON(ctx, SignupEndpoint, Credentials{TeamName: teamName, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	return &resp, nil
}
