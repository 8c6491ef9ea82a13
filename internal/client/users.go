// ABOUTME: Current-user and academic profile endpoints
// ABOUTME: Keeps the cached user and profile in the session up to date

package client

import (
	"context"
	"net/http"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

// ProfileSetupRequest is the body of POST /users/profile/setup. The backend
// requires every key to be present, so absent exams are sent as null and a
// missing bac as "unknown".
type ProfileSetupRequest struct {
	BacAverage *float64 `json:"bac_average"`
	BacType    *string  `json:"bac_type"`
	TCFScore   *int     `json:"tcf_score"`
	Speciality string   `json:"speciality"`
	StudyYear  string   `json:"annee_etude_actuelle"`
	Accepted   bool     `json:"accepted"`
}

// Me calls GET /users/me and refreshes the cached user
func (c *Client) Me(ctx context.Context) (*model.UserSummary, error) {
	var out model.UserSummary
	if err := c.authJSON(ctx, http.MethodGet, "/users/me", nil, &out); err != nil {
		return nil, err
	}
	if c.session != nil {
		if err := c.session.SetUser(out); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// ProfileStatus calls GET /users/profile/status
func (c *Client) ProfileStatus(ctx context.Context) (*model.ProfileStatus, error) {
	var out model.ProfileStatus
	if err := c.authJSON(ctx, http.MethodGet, "/users/profile/status", nil, &out); err != nil {
		return nil, err
	}
	if out.IsComplete && out.ProfileData != nil && c.session != nil {
		if err := c.session.SetProfile(*out.ProfileData); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// AcademicProfile calls GET /users/profile/academic
func (c *Client) AcademicProfile(ctx context.Context) (*model.AcademicProfile, error) {
	var out model.AcademicProfile
	if err := c.authJSON(ctx, http.MethodGet, "/users/profile/academic", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAcademicProfile calls PUT /users/profile/academic and caches the result
func (c *Client) UpdateAcademicProfile(ctx context.Context, p model.AcademicProfile) error {
	if err := c.authJSON(ctx, http.MethodPut, "/users/profile/academic", p, nil); err != nil {
		return err
	}
	if c.session != nil {
		return c.session.SetProfile(p)
	}
	return nil
}

// SetupProfile calls POST /users/profile/setup and caches the profile
func (c *Client) SetupProfile(ctx context.Context, p model.AcademicProfile) error {
	if err := c.authJSON(ctx, http.MethodPost, "/users/profile/setup", newProfileSetupRequest(p), nil); err != nil {
		return err
	}
	if c.session != nil {
		return c.session.SetProfile(p)
	}
	return nil
}

func newProfileSetupRequest(p model.AcademicProfile) ProfileSetupRequest {
	bacType := model.BacUnknown
	if b, ok := model.LookupBacType(p.BacType); ok {
		bacType = b.ProfileValue
	}
	return ProfileSetupRequest{
		BacAverage: p.BacAverage,
		BacType:    &bacType,
		TCFScore:   p.TCFScore,
		Speciality: p.Specialty,
		StudyYear:  p.StudyYear,
		Accepted:   p.HasAcceptance(),
	}
}
