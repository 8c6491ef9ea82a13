// ABOUTME: Experience, catalog and admin types for the backend API
// ABOUTME: Includes the share payload and the public explorer shape

package model

import (
	"encoding/json"
	"strings"
)

// University is a catalog entry from GET /universities/
type University struct {
	ID   int    `json:"id_university"`
	Name string `json:"univ_name"`
	City string `json:"city,omitempty"`
}

// Speciality is a catalog entry from GET /specialities/
type Speciality struct {
	ID   int    `json:"id_speciality"`
	Name string `json:"speciality_name"`
}

// ExperiencePayload is the body of POST /experience/share. The backend
// validates the presence of average_each_year_list but parses
// average_each_year as a JSON-encoded string, so both carry the same map.
type ExperiencePayload struct {
	BacType                *string            `json:"bac_type"`
	BacAverage             *float64           `json:"bac_average"`
	Comment                string             `json:"comment"`
	ApplicationYear        int                `json:"application_year"`
	StudyYearAtApplication string             `json:"study_year_at_application_time"`
	AverageEachYearList    map[string]float64 `json:"average_each_year_list"`
	AverageEachYear        string             `json:"average_each_year"`
	LevelTCF               *int               `json:"level_tcf"`
	CandidatureYear        int                `json:"candidature_year"`
	SpecialityID           int                `json:"speciality_id"`
	SpecialityIDs          []int              `json:"speciality_ids"`
	UniversityIDs          []int              `json:"university_ids"`
	UniversityAcceptedIn   []int              `json:"university_accepted_in"`
	UniversityRejectedIn   []int              `json:"university_rejected_in"`
	IsValidated            bool               `json:"is_validated"`
	IsPublic               bool               `json:"is_public"`
	IsAnonymous            bool               `json:"is_anonymous"`
}

// ShareResponse is returned by POST /experience/share
type ShareResponse struct {
	Message      string `json:"message"`
	ExperienceID int    `json:"experience_id,omitempty"`
}

// PublicExperience is an entry of GET /experience/explorer
type PublicExperience struct {
	ID                     int                `json:"id_experience"`
	ApplicationYear        int                `json:"application_year"`
	CandidatureYear        any                `json:"candidature_year"`
	StudyYearAtApplication string             `json:"study_year_at_application_time"`
	LevelTCF               *int               `json:"level_tcf"`
	BacAverage             *float64           `json:"bac_average"`
	Comment                string             `json:"comment"`
	IsValidated            ExperienceStatus   `json:"is_validated"`
	Speciality             *Speciality        `json:"speciality"`
	Universities           []University       `json:"universities"`
	AverageEachYear        map[string]float64 `json:"average_each_year"`
	UniversityAcceptedIn   []string           `json:"university_accepted_in"`
	UniversityRejectedIn   []string           `json:"university_rejected_in"`
}

// Moderation states of an experience
const (
	ExperiencePending  = "pending"
	ExperienceApproved = "approved"
	ExperienceRejected = "rejected"
)

// ExperienceStatus is the moderation state carried by an explorer entry
type ExperienceStatus string

// Approved reports an experience accepted by moderation
func (s ExperienceStatus) Approved() bool {
	return string(s) == ExperienceApproved
}

// UnmarshalJSON reads the moderation enum. A bare boolean is also accepted,
// true meaning approved and false pending.
func (s *ExperienceStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ExperiencePending
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*s = ExperiencePending
		if b {
			*s = ExperienceApproved
		}
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = ExperienceStatus(strings.ToLower(strings.TrimSpace(v)))
	return nil
}

// ExperienceSummary is an entry of GET /experience/summary (admin)
type ExperienceSummary struct {
	ID          int    `json:"id_experience"`
	UserID      int    `json:"user_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Comment     string `json:"comment"`
	IsValidated string `json:"is_validated"`
	CreatedAt   string `json:"created_at"`
}

// AdminUser is an entry of GET /admin/stats/users. The backend has shipped
// both "isbanned"/"subscription" and "isBanned"/"premium" spellings, and
// subscription as either a bool or "premium"; UnmarshalJSON accepts all.
type AdminUser struct {
	ID        int    `json:"id_user"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	IsBanned  bool   `json:"isbanned"`
	Premium   bool   `json:"subscription"`
}

// FullName joins first and last name
func (u AdminUser) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UnmarshalJSON decodes either spelling of the ban and premium flags
func (u *AdminUser) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           int             `json:"id_user"`
		FirstName    string          `json:"first_name"`
		LastName     string          `json:"last_name"`
		Email        string          `json:"email"`
		CreatedAt    *string         `json:"created_at"`
		IsBanned     *bool           `json:"isbanned"`
		IsBannedAlt  *bool           `json:"isBanned"`
		Subscription json.RawMessage `json:"subscription"`
		Premium      *bool           `json:"premium"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = AdminUser{
		ID:        raw.ID,
		FirstName: raw.FirstName,
		LastName:  raw.LastName,
		Email:     raw.Email,
	}
	if raw.CreatedAt != nil {
		u.CreatedAt = *raw.CreatedAt
	}
	switch {
	case raw.IsBanned != nil:
		u.IsBanned = *raw.IsBanned
	case raw.IsBannedAlt != nil:
		u.IsBanned = *raw.IsBannedAlt
	}
	if raw.Premium != nil {
		u.Premium = *raw.Premium
	}
	if len(raw.Subscription) > 0 && string(raw.Subscription) != "null" {
		var b bool
		var s string
		switch {
		case json.Unmarshal(raw.Subscription, &b) == nil:
			u.Premium = b
		case json.Unmarshal(raw.Subscription, &s) == nil:
			u.Premium = strings.EqualFold(s, SubscriptionPremium)
		}
	}
	return nil
}

// Stats is returned by GET /admin/all_stats
type Stats struct {
	TotalUsers          int     `json:"total_users"`
	ActiveUsers         int     `json:"active_users"`
	PremiumUsers        int     `json:"premium_users"`
	TotalExperiences    int     `json:"total_experiences"`
	PendingExperiences  int     `json:"pending_experiences"`
	ApprovedExperiences int     `json:"approved_experiences"`
	RejectedExperiences int     `json:"rejected_experiences"`
	ConversionRate      float64 `json:"taux_conversion"`
	ApprovalRate        float64 `json:"taux_approbation"`
	BannedUsers         int     `json:"banned_users_count"`
	NewUsersLast30Days  int     `json:"new_users_last_30_days"`
}
