// ABOUTME: Public catalog and experience endpoints
// ABOUTME: Universities and specialities are served from the TTL cache when attached

package client

import (
	"context"
	"net/http"

	"github.com/Rayanebsh/Pathwayfr/internal/cache"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

const (
	universitiesKey = "catalog:universities"
	specialitiesKey = "catalog:specialities"
)

// Universities calls GET /universities/
func (c *Client) Universities(ctx context.Context) ([]model.University, error) {
	return cache.Fetch(c.catalog, universitiesKey, func() ([]model.University, error) {
		var out []model.University
		if err := c.doJSON(ctx, http.MethodGet, "/universities/", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Specialities calls GET /specialities/
func (c *Client) Specialities(ctx context.Context) ([]model.Speciality, error) {
	return cache.Fetch(c.catalog, specialitiesKey, func() ([]model.Speciality, error) {
		var out []model.Speciality
		if err := c.doJSON(ctx, http.MethodGet, "/specialities/", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// ShareExperience calls POST /experience/share. Sharing is open to visitors,
// so the request is authenticated only when a token is stored.
func (c *Client) ShareExperience(ctx context.Context, p model.ExperiencePayload) (*model.ShareResponse, error) {
	var out model.ShareResponse
	var err error
	if c.session != nil && c.session.AccessToken() != "" {
		err = c.authJSON(ctx, http.MethodPost, "/experience/share", p, &out)
	} else {
		err = c.doJSON(ctx, http.MethodPost, "/experience/share", p, &out)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Explorer calls GET /experience/explorer
func (c *Client) Explorer(ctx context.Context) ([]model.PublicExperience, error) {
	var out []model.PublicExperience
	if err := c.doJSON(ctx, http.MethodGet, "/experience/explorer", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
