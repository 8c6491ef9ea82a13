// ABOUTME: Tests for levels, study years and account helpers
// ABOUTME: Covers the candidature table and JSON shapes of cached types

package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{Level1AS, "1AS"},
		{Level3AS, "3AS"},
		{LevelL1, "L1"},
		{LevelM2, "M2"},
		{Level(42), "Level(42)"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, l := range Levels {
		got, ok := ParseLevel(l.String())
		if !ok || got != l {
			t.Errorf("ParseLevel(%q) = %v, %v", l.String(), got, ok)
		}
	}
	if _, ok := ParseLevel("L4"); ok {
		t.Error("expected L4 to be unknown")
	}
}

func TestRepeatKey(t *testing.T) {
	if got := LevelL2.RepeatKey(); got != "L2_redouble" {
		t.Errorf("expected L2_redouble, got %s", got)
	}
}

func TestCandidatureYears(t *testing.T) {
	tests := []struct {
		study StudyYear
		want  []CandidatureYear
	}{
		{StudyTerminale, []CandidatureYear{1}},
		{StudyL1, []CandidatureYear{1, 2}},
		{StudyL2, []CandidatureYear{1, 2, 3}},
		{StudyL3, []CandidatureYear{2, 3, 4}},
		{StudyM1, []CandidatureYear{3, 4, 5}},
		{StudyM2, []CandidatureYear{4, 5}},
		{StudyYear("doctorat"), []CandidatureYear{}},
	}
	for _, tt := range tests {
		got := CandidatureYears(tt.study)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("CandidatureYears(%s) = %v, want %v", tt.study, got, tt.want)
		}
	}
}

func TestCandidatureYearLevel(t *testing.T) {
	if CandidatureYear(1).Level() != LevelL1 {
		t.Error("year 1 should be L1")
	}
	if CandidatureYear(5).Label() != "M2" {
		t.Error("year 5 should be labelled M2")
	}
	if CandidatureYear(0).Valid() || CandidatureYear(6).Valid() {
		t.Error("years outside 1..5 must be invalid")
	}
}

func TestStudyYearLevel(t *testing.T) {
	if _, ok := StudyTerminale.Level(); ok {
		t.Error("terminale has no university level")
	}
	if l, ok := StudyL3.Level(); !ok || l != LevelL3 {
		t.Errorf("expected L3, got %v", l)
	}
}

func TestUserSummary(t *testing.T) {
	var u UserSummary
	data := `{"id_user":7,"first_name":"Inès","last_name":"Haddad","email":"ines@example.com","role":"admin","subscription":"premium"}`
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		t.Fatal(err)
	}
	if !u.SubscriptionActive() {
		t.Error("expected premium subscription")
	}
	if !u.IsAdmin() {
		t.Error("expected admin role")
	}
	if u.FullName() != "Inès Haddad" {
		t.Errorf("unexpected full name %q", u.FullName())
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-05-01T10:20:30", "2024-05-01T10:20:30.123456", "2024-05-01T10:20:30Z", "2024-05-01"} {
		if _, ok := ParseTime(s); !ok {
			t.Errorf("ParseTime(%q) failed", s)
		}
	}
	if _, ok := ParseTime("yesterday"); ok {
		t.Error("expected failure for free text")
	}
}

func TestValidBacType(t *testing.T) {
	if !ValidBacType("mathematiques") {
		t.Error("mathematiques should be valid")
	}
	if ValidBacType("cuisine") {
		t.Error("cuisine should be invalid")
	}
}

func TestAdminUserSpellings(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		banned  bool
		premium bool
	}{
		{"front-end shape", `{"id_user":1,"isbanned":true,"subscription":true}`, true, true},
		{"backend shape", `{"id_user":1,"isBanned":true,"premium":true}`, true, true},
		{"subscription string", `{"id_user":1,"subscription":"premium"}`, false, true},
		{"subscription free", `{"id_user":1,"subscription":"free"}`, false, false},
		{"null subscription keeps premium", `{"id_user":1,"subscription":null,"premium":true}`, false, true},
		{"null created_at", `{"id_user":1,"created_at":null}`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u AdminUser
			if err := json.Unmarshal([]byte(tt.body), &u); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if u.ID != 1 {
				t.Errorf("expected id 1, got %d", u.ID)
			}
			if u.IsBanned != tt.banned || u.Premium != tt.premium {
				t.Errorf("got banned=%v premium=%v, want %v %v", u.IsBanned, u.Premium, tt.banned, tt.premium)
			}
		})
	}
}

func TestAcceptanceJSON(t *testing.T) {
	tests := []struct {
		body string
		want Acceptance
	}{
		{`{"accepted":true}`, AcceptanceYes},
		{`{"accepted":false}`, AcceptanceNo},
		{`{"accepted":null}`, ""},
		{`{"accepted":"en-cours"}`, AcceptancePending},
	}
	for _, tt := range tests {
		var p AcademicProfile
		if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.body, err)
		}
		if p.Acceptance != tt.want {
			t.Errorf("%s decoded to %q, want %q", tt.body, p.Acceptance, tt.want)
		}
	}

	for a, want := range map[Acceptance]string{AcceptanceYes: "true", AcceptanceNo: "false", AcceptancePending: "false"} {
		got, err := json.Marshal(a)
		if err != nil {
			t.Fatalf("marshal %q: %v", a, err)
		}
		if string(got) != want {
			t.Errorf("%q encoded as %s, want %s", a, got, want)
		}
	}
}

func TestExperienceStatusJSON(t *testing.T) {
	tests := []struct {
		body     string
		want     ExperienceStatus
		approved bool
	}{
		{`{"is_validated":"approved"}`, ExperienceApproved, true},
		{`{"is_validated":"pending"}`, ExperiencePending, false},
		{`{"is_validated":"rejected"}`, ExperienceRejected, false},
		{`{"is_validated":true}`, ExperienceApproved, true},
		{`{"is_validated":false}`, ExperiencePending, false},
		{`{"is_validated":null}`, ExperiencePending, false},
	}
	for _, tt := range tests {
		var e PublicExperience
		if err := json.Unmarshal([]byte(tt.body), &e); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.body, err)
		}
		if e.IsValidated != tt.want || e.IsValidated.Approved() != tt.approved {
			t.Errorf("%s decoded to %q (approved=%v)", tt.body, e.IsValidated, e.IsValidated.Approved())
		}
	}
}
