// ABOUTME: Account and profile types exchanged with the backend
// ABOUTME: Mirrors the JSON shapes of the auth and users endpoints

package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Subscription and role values used by the backend
const (
	SubscriptionPremium = "premium"
	RoleAdmin           = "admin"
	RoleUser            = "user"
)

// UserSummary is the cached view of the logged-in account. The backend stays
// authoritative; this copy only drives what the client shows.
type UserSummary struct {
	ID           int    `json:"id_user,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"`
	Subscription string `json:"subscription,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	IsBanned     bool   `json:"isbanned,omitempty"`
}

// SubscriptionActive reports whether the account has a premium subscription
func (u UserSummary) SubscriptionActive() bool {
	return strings.EqualFold(u.Subscription, SubscriptionPremium)
}

// IsAdmin reports whether the account has the admin role
func (u UserSummary) IsAdmin() bool {
	return strings.EqualFold(u.Role, RoleAdmin)
}

// FullName joins first and last name
func (u UserSummary) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Acceptance answers "have you already been accepted somewhere?"
type Acceptance string

const (
	AcceptanceYes     Acceptance = "oui"
	AcceptanceNo      Acceptance = "non"
	AcceptancePending Acceptance = "en-cours"
)

// Label returns the French label shown to users
func (a Acceptance) Label() string {
	switch a {
	case AcceptanceYes:
		return "Oui"
	case AcceptanceNo:
		return "Non"
	case AcceptancePending:
		return "En cours"
	default:
		return string(a)
	}
}

// MarshalJSON writes the backend's boolean; only a confirmed acceptance is true
func (a Acceptance) MarshalJSON() ([]byte, error) {
	return json.Marshal(a == AcceptanceYes)
}

// UnmarshalJSON reads the backend's boolean. String values from older cached
// profiles are kept as they are.
func (a *Acceptance) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = ""
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*a = AcceptanceNo
		if b {
			*a = AcceptanceYes
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Acceptance(s)
	return nil
}

// AcademicProfile is the profile built by the setup wizard. Bac and TCF
// fields are nil when the student has not taken the exam.
type AcademicProfile struct {
	BacAverage *float64   `json:"bac_average,omitempty"`
	BacType    string     `json:"bac_type,omitempty"`
	TCFScore   *int       `json:"tcf_score,omitempty"`
	Specialty  string     `json:"speciality"`
	StudyYear  string     `json:"annee_etude_actuelle"`
	Acceptance Acceptance `json:"accepted"`
}

// HasAcceptance reports a confirmed acceptance
func (p AcademicProfile) HasAcceptance() bool {
	return p.Acceptance == AcceptanceYes
}

// ProfileStatus is returned by GET /users/profile/status
type ProfileStatus struct {
	IsComplete    bool             `json:"is_complete"`
	ProfileData   *AcademicProfile `json:"profile_data,omitempty"`
	MissingFields []string         `json:"missing_fields,omitempty"`
}

// Tokens is a bearer credential pair
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResponse is returned by POST /auth/login
type LoginResponse struct {
	Message string       `json:"message,omitempty"`
	User    *UserSummary `json:"user,omitempty"`
	Tokens
}

// MessageResponse is the generic {"message": ...} success body
type MessageResponse struct {
	Message string `json:"message"`
}

// ParseTime parses the backend's ISO timestamps, with or without zone
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
