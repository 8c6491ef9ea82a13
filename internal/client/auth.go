// ABOUTME: Account endpoints: login, registration, password and admin check
// ABOUTME: Login stores the returned tokens and user in the session

package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot_password/sendmail
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body of POST /auth/forgot-password/{token}
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /auth/change_password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login calls POST /auth/login. On success the tokens and, when returned,
// the user are persisted in the session.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*model.LoginResponse, error) {
	var out model.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, ErrUnexpectedFormat
	}
	if c.session != nil {
		if err := c.session.SetTokens(out.Tokens); err != nil {
			return nil, err
		}
		if out.User != nil {
			if err := c.session.SetUser(*out.User); err != nil {
				return nil, err
			}
		}
	}
	return &out, nil
}

// Register calls POST /auth/register
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*model.MessageResponse, error) {
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	var out model.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout calls POST /auth/logout. The local session is left to the caller.
func (c *Client) Logout(ctx context.Context) error {
	return c.authJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// ForgotPassword calls POST /auth/forgot_password/sendmail
func (c *Client) ForgotPassword(ctx context.Context, in ForgotPasswordRequest) (*model.MessageResponse, error) {
	var out model.MessageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/forgot_password/sendmail", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword calls POST /auth/forgot-password/{token}
func (c *Client) ResetPassword(ctx context.Context, token string, in ResetPasswordRequest) (*model.MessageResponse, error) {
	var out model.MessageResponse
	path := "/auth/forgot-password/" + url.PathEscape(token)
	if err := c.doJSON(ctx, http.MethodPost, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword calls POST /auth/change_password
func (c *Client) ChangePassword(ctx context.Context, in ChangePasswordRequest) (*model.MessageResponse, error) {
	var out model.MessageResponse
	if err := c.authJSON(ctx, http.MethodPost, "/auth/change_password", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyAdmin calls GET /auth/verify-admin. A 403 means "not an admin" and
// is not an error.
func (c *Client) VerifyAdmin(ctx context.Context) (bool, error) {
	resp, err := c.FetchWithAuth(ctx, http.MethodGet, "/auth/verify-admin", nil)
	if err != nil {
		return false, err
	}
	if resp.StatusCode == http.StatusForbidden {
		drain(resp)
		return false, nil
	}
	if err := c.decode(resp, nil); err != nil {
		return false, err
	}
	return true, nil
}
