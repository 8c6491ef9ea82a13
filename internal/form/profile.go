// ABOUTME: Three-step academic profile setup form
// ABOUTME: Exams, studies, then acceptance; bac and TCF fields depend on toggles

package form

import (
	"context"
	"slices"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

// Profile field names, used as FieldErrors keys
const (
	FieldBacAverage = "bacAverage"
	FieldBacType    = "bacType"
	FieldTCFScore   = "tcfScore"
	FieldSpecialty  = "specialty"
	FieldStudyYear  = "studyYear"
	FieldAcceptance = "hasAcceptance"
)

// Profile is the raw input of the setup wizard
type Profile struct {
	HasBac     bool
	BacAverage string
	BacType    string
	HasTCF     bool
	TCFScore   string
	Specialty  string
	StudyYear  string
	Acceptance model.Acceptance
}

// SetHasBac flips the bac toggle; turning it off clears the bac fields
func (p *Profile) SetHasBac(v bool) {
	p.HasBac = v
	if !v {
		p.BacAverage = ""
		p.BacType = ""
	}
}

// SetHasTCF flips the TCF toggle; turning it off clears the score
func (p *Profile) SetHasTCF(v bool) {
	p.HasTCF = v
	if !v {
		p.TCFScore = ""
	}
}

// AcademicProfile converts validated input to the cached profile shape
func (p Profile) AcademicProfile() model.AcademicProfile {
	out := model.AcademicProfile{
		Specialty:  p.Specialty,
		StudyYear:  p.StudyYear,
		Acceptance: p.Acceptance,
	}
	if p.HasBac {
		out.BacAverage = optionalAverage(p.BacAverage)
		out.BacType = p.BacType
	}
	if p.HasTCF {
		out.TCFScore = optionalTCF(p.TCFScore)
	}
	return out
}

// ProfileFromAcademic fills the wizard from an existing profile, for editing
func ProfileFromAcademic(a model.AcademicProfile) Profile {
	p := Profile{
		Specialty:  a.Specialty,
		StudyYear:  a.StudyYear,
		Acceptance: a.Acceptance,
	}
	if a.BacAverage != nil {
		p.HasBac = true
		p.BacAverage = formatFloat(*a.BacAverage)
		p.BacType = a.BacType
		if b, ok := model.LookupBacType(a.BacType); ok {
			p.BacType = b.Value
		}
	}
	if a.TCFScore != nil {
		p.HasTCF = true
		p.TCFScore = formatInt(*a.TCFScore)
	}
	return p
}

// ValidateExams checks the first step
func ValidateExams(p *Profile) FieldErrors {
	errs := FieldErrors{}
	if p.HasBac {
		requireAverage(errs, FieldBacAverage, p.BacAverage, "La moyenne du bac est requise")
		if blank(p.BacType) {
			errs.Add(FieldBacType, "Le type de bac est requis")
		} else if !model.ValidBacType(p.BacType) {
			errs.Add(FieldBacType, "Type de bac inconnu")
		}
	}
	if p.HasTCF {
		if blank(p.TCFScore) {
			errs.Add(FieldTCFScore, "Le score TCF est requis")
		} else if _, err := ParseTCF(p.TCFScore); err != nil {
			errs.Add(FieldTCFScore, err.Error())
		}
	}
	return errs
}

// ValidateStudies checks the second step
func ValidateStudies(p *Profile) FieldErrors {
	errs := FieldErrors{}
	if blank(p.Specialty) {
		errs.Add(FieldSpecialty, "La spécialité est requise")
	}
	if blank(p.StudyYear) {
		errs.Add(FieldStudyYear, "L'année d'étude est requise")
	} else if !slices.Contains(model.ProfileStudyYears, p.StudyYear) {
		errs.Add(FieldStudyYear, "Année d'étude inconnue")
	}
	return errs
}

// ValidateAcceptance checks the third step
func ValidateAcceptance(p *Profile) FieldErrors {
	errs := FieldErrors{}
	switch p.Acceptance {
	case model.AcceptanceYes, model.AcceptanceNo, model.AcceptancePending:
	default:
		errs.Add(FieldAcceptance, "Cette information est requise")
	}
	return errs
}

// ProfileSteps are the three pages of the setup wizard
func ProfileSteps() []Step[Profile] {
	return []Step[Profile]{
		{Title: "Examens", Validate: ValidateExams},
		{Title: "Études", Validate: ValidateStudies},
		{Title: "Candidatures", Validate: ValidateAcceptance},
	}
}

// ProfileSaver persists a profile; the API client satisfies it
type ProfileSaver interface {
	SetupProfile(ctx context.Context, p model.AcademicProfile) error
}

// NewProfileController wires the setup wizard to save
func NewProfileController(saver ProfileSaver) *Controller[Profile] {
	return NewProfileControllerFrom(Profile{}, saver.SetupProfile)
}

// NewProfileControllerFrom starts the wizard from existing values. save is
// called with the converted profile.
func NewProfileControllerFrom(start Profile, save func(context.Context, model.AcademicProfile) error) *Controller[Profile] {
	return NewController(
		func() Profile { return start },
		ProfileSteps(),
		func(ctx context.Context, p Profile) error {
			return save(ctx, p.AcademicProfile())
		},
	)
}
