// ABOUTME: Admin dashboard endpoints: listings, stats and moderation actions
// ABOUTME: All calls are authenticated and never retried beyond the refresh retry

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

// AdminUsers calls GET /admin/stats/users
func (c *Client) AdminUsers(ctx context.Context) ([]model.AdminUser, error) {
	var out []model.AdminUser
	if err := c.authJSON(ctx, http.MethodGet, "/admin/stats/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminStats calls GET /admin/all_stats
func (c *Client) AdminStats(ctx context.Context) (*model.Stats, error) {
	var out model.Stats
	if err := c.authJSON(ctx, http.MethodGet, "/admin/all_stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExperienceSummaries calls GET /experience/summary
func (c *Client) ExperienceSummaries(ctx context.Context) ([]model.ExperienceSummary, error) {
	var out []model.ExperienceSummary
	if err := c.authJSON(ctx, http.MethodGet, "/experience/summary", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BanUser calls PATCH /admin/users/{id}/ban
func (c *Client) BanUser(ctx context.Context, id int) error {
	return c.authJSON(ctx, http.MethodPatch, fmt.Sprintf("/admin/users/%d/ban", id), nil, nil)
}

// UnbanUser calls PATCH /admin/users/{id}/unban
func (c *Client) UnbanUser(ctx context.Context, id int) error {
	return c.authJSON(ctx, http.MethodPatch, fmt.Sprintf("/admin/users/%d/unban", id), nil, nil)
}

// DeleteUser calls DELETE /admin/delete/{id}
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.authJSON(ctx, http.MethodDelete, fmt.Sprintf("/admin/delete/%d", id), nil, nil)
}

// ApproveExperience calls PATCH /admin/experiences/{id}/approve
func (c *Client) ApproveExperience(ctx context.Context, id int) error {
	return c.authJSON(ctx, http.MethodPatch, fmt.Sprintf("/admin/experiences/%d/approve", id), nil, nil)
}

// RejectExperience calls PATCH /admin/experiences/{id}/reject
func (c *Client) RejectExperience(ctx context.Context, id int) error {
	return c.authJSON(ctx, http.MethodPatch, fmt.Sprintf("/admin/experiences/%d/reject", id), nil, nil)
}

// DeleteExperience calls DELETE /admin/{id}
func (c *Client) DeleteExperience(ctx context.Context, id int) error {
	return c.authJSON(ctx, http.MethodDelete, fmt.Sprintf("/admin/%d", id), nil, nil)
}
