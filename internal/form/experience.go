// ABOUTME: Four-step "share your experience" form
// ABOUTME: Visible averages and target years derive from the declared study year

package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/picker"
)

// Experience field names, used as FieldErrors keys
const (
	FieldStudyYearAtApplication = "studyYearWhenApplied"
	FieldCandidatureYear        = "candidatureYear"
	FieldApplicationYear        = "applicationYear"
	FieldTCF                    = "tcf"
	FieldSpecialities           = "targetSpecialties"
	FieldUniversities           = "targetUniversities"
	FieldOutcomes               = "outcomes"
	FieldComment                = "comment"
)

// Target-university caps
const (
	MaxUniversitiesFirstYear = 3
	MaxUniversities          = 7
	MaxCommentLength         = 2000
)

// Validation messages of the share form
const (
	MsgNoSpeciality      = "Veuillez sélectionner au moins une spécialité"
	MsgNoUniversity      = "Veuillez sélectionner au moins une université"
	MsgNoCandidatureYear = "Veuillez sélectionner une année de candidature"
)

// ApplicationYears are the years a past application can be declared for
var ApplicationYears = []int{2024, 2023, 2022, 2021, 2020}

// AverageField is the FieldErrors key of a level's average
func AverageField(l model.Level) string {
	return "average." + l.String()
}

// RepeatedAverageField is the FieldErrors key of a repeated year's average
func RepeatedAverageField(l model.Level) string {
	return "average." + l.RepeatKey()
}

// LevelRecord is the per-level sub-form. Lycée levels ignore Has and
// Repeated: an entered average is enough.
type LevelRecord struct {
	Level           model.Level
	Has             bool
	Average         string
	Repeated        bool
	RepeatedAverage string
}

// Experience is the raw input of the share form
type Experience struct {
	StudyYear       model.StudyYear
	CandidatureYear model.CandidatureYear
	ApplicationYear int
	BacType         string
	TCF             string

	Levels     []LevelRecord
	BacAverage string

	Specialities []int
	Universities []int
	Outcomes     picker.ExclusivePair

	Comment   string
	Public    bool
	Anonymous bool
}

// NewExperience returns an empty form with one record per level
func NewExperience() Experience {
	levels := make([]LevelRecord, len(model.Levels))
	for i, l := range model.Levels {
		levels[i] = LevelRecord{Level: l}
	}
	return Experience{Levels: levels, Public: true}
}

// Record returns the sub-form of level l
func (e *Experience) Record(l model.Level) *LevelRecord {
	for i := range e.Levels {
		if e.Levels[i].Level == l {
			return &e.Levels[i]
		}
	}
	e.Levels = append(e.Levels, LevelRecord{Level: l})
	return &e.Levels[len(e.Levels)-1]
}

// SetStudyYear changes the declared year and drops a candidature year that
// is no longer reachable from it
func (e *Experience) SetStudyYear(y model.StudyYear) {
	e.StudyYear = y
	if !slices.Contains(model.CandidatureYears(y), e.CandidatureYear) {
		e.CandidatureYear = 0
	}
}

// CandidatureChoices lists the target years reachable from the study year
func (e *Experience) CandidatureChoices() []model.CandidatureYear {
	return model.CandidatureYears(e.StudyYear)
}

// SetCandidatureYear accepts only a year offered for the study year
func (e *Experience) SetCandidatureYear(c model.CandidatureYear) bool {
	if !slices.Contains(e.CandidatureChoices(), c) {
		return false
	}
	e.CandidatureYear = c
	return true
}

// SetHasLevel flips a university level; turning it off clears its averages
func (e *Experience) SetHasLevel(l model.Level, v bool) {
	r := e.Record(l)
	r.Has = v
	if !v {
		r.Average = ""
		r.Repeated = false
		r.RepeatedAverage = ""
	}
}

// SetRepeated flips the repeated-year toggle; off clears its average
func (e *Experience) SetRepeated(l model.Level, v bool) {
	r := e.Record(l)
	r.Repeated = v
	if !v {
		r.RepeatedAverage = ""
	}
}

// ShowLycee reports whether the lycée averages are asked, only when applying
// to a first year
func (e *Experience) ShowLycee() bool {
	return e.CandidatureYear == 1
}

// VisibleLevels lists the levels whose averages are asked, in order: lycée
// years when applying to a first year, then university years up to and
// including the declared study year
func (e *Experience) VisibleLevels() []model.Level {
	var out []model.Level
	if e.ShowLycee() {
		out = append(out, model.LyceeLevels...)
	}
	if top, ok := e.StudyYear.Level(); ok {
		for _, l := range model.UniversityLevels {
			if l <= top {
				out = append(out, l)
			}
		}
	}
	return out
}

// ShowBacAverage reports whether the separate bac average is asked. In
// terminale the 3AS average stands for it.
func (e *Experience) ShowBacAverage() bool {
	return e.StudyYear != "" && e.StudyYear != model.StudyTerminale
}

// MaxUniversities is the cap on target universities
func (e *Experience) MaxUniversities() int {
	if e.CandidatureYear == 1 {
		return MaxUniversitiesFirstYear
	}
	return MaxUniversities
}

// UniversityPicker returns a picker over options capped for this form
func (e *Experience) UniversityPicker(options []picker.Option) *picker.Picker {
	p := picker.New(options)
	p.Max = e.MaxUniversities()
	return p
}

// TargetOptions narrows options to the selected target universities, the
// choices offered for accepted and rejected
func (e *Experience) TargetOptions(options []picker.Option) []picker.Option {
	var out []picker.Option
	for _, o := range options {
		if slices.Contains(e.Universities, o.ID) {
			out = append(out, o)
		}
	}
	return out
}

// ToggleUniversity adds or removes a target university, respecting the cap.
// Outcomes are pruned to the remaining targets.
func (e *Experience) ToggleUniversity(id int) bool {
	p := &picker.Picker{Max: e.MaxUniversities()}
	next, changed := p.Toggle(e.Universities, id)
	if changed {
		e.SetUniversities(next)
	}
	return changed
}

// SetUniversities replaces the target universities and prunes outcomes
func (e *Experience) SetUniversities(ids []int) {
	e.Universities = ids
	e.Outcomes.Prune(ids)
}

// ToggleSpeciality adds or removes a target speciality
func (e *Experience) ToggleSpeciality(id int) {
	e.Specialities, _ = (&picker.Picker{}).Toggle(e.Specialities, id)
}

// ToggleAccepted marks a target university as accepted
func (e *Experience) ToggleAccepted(id int) bool {
	if !slices.Contains(e.Universities, id) {
		return false
	}
	e.Outcomes.ToggleAccepted(id)
	return true
}

// ToggleRejected marks a target university as rejected
func (e *Experience) ToggleRejected(id int) bool {
	if !slices.Contains(e.Universities, id) {
		return false
	}
	e.Outcomes.ToggleRejected(id)
	return true
}

// Averages builds the flat per-level map sent to the backend. Only visible
// levels contribute; repeated years use the "<LEVEL>_redouble" key.
func (e *Experience) Averages() map[string]float64 {
	out := map[string]float64{}
	for _, l := range e.VisibleLevels() {
		r := e.Record(l)
		if !l.IsLycee() && !r.Has {
			continue
		}
		v := optionalAverage(r.Average)
		if v == nil {
			continue
		}
		out[l.String()] = *v
		if !l.IsLycee() && r.Repeated {
			if rv := optionalAverage(r.RepeatedAverage); rv != nil {
				out[l.RepeatKey()] = *rv
			}
		}
	}
	return out
}

// BacAverageValue is the 3AS average in terminale, the bac average otherwise
func (e *Experience) BacAverageValue() *float64 {
	if e.StudyYear == model.StudyTerminale {
		if !e.ShowLycee() {
			return nil
		}
		return optionalAverage(e.Record(model.Level3AS).Average)
	}
	if !e.ShowBacAverage() {
		return nil
	}
	return optionalAverage(e.BacAverage)
}

// Payload assembles the POST /experience/share body
func (e *Experience) Payload() (model.ExperiencePayload, error) {
	if len(e.Specialities) == 0 {
		return model.ExperiencePayload{}, errors.New(MsgNoSpeciality)
	}
	averages := e.Averages()
	encoded, err := json.Marshal(averages)
	if err != nil {
		return model.ExperiencePayload{}, fmt.Errorf("failed to encode averages: %w", err)
	}

	var bacType *string
	if t := strings.TrimSpace(e.BacType); t != "" {
		bacType = &t
	}

	return model.ExperiencePayload{
		BacType:                bacType,
		BacAverage:             e.BacAverageValue(),
		Comment:                strings.TrimSpace(e.Comment),
		ApplicationYear:        e.ApplicationYear,
		StudyYearAtApplication: string(e.StudyYear),
		AverageEachYearList:    averages,
		AverageEachYear:        string(encoded),
		LevelTCF:               optionalTCF(e.TCF),
		CandidatureYear:        int(e.CandidatureYear),
		SpecialityID:           e.Specialities[0],
		SpecialityIDs:          slices.Clone(e.Specialities),
		UniversityIDs:          slices.Clone(e.Universities),
		UniversityAcceptedIn:   nonNil(e.Outcomes.Accepted),
		UniversityRejectedIn:   nonNil(e.Outcomes.Rejected),
		IsValidated:            false,
		IsPublic:               e.Public,
		IsAnonymous:            e.Anonymous,
	}, nil
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return slices.Clone(ids)
}

// ValidateApplication checks the first step
func ValidateApplication(e *Experience) FieldErrors {
	errs := FieldErrors{}
	if e.StudyYear == "" {
		errs.Add(FieldStudyYearAtApplication, "Veuillez sélectionner votre niveau")
	} else if !slices.Contains(model.StudyYears, e.StudyYear) {
		errs.Add(FieldStudyYearAtApplication, "Niveau inconnu")
	}
	if e.CandidatureYear == 0 || !slices.Contains(e.CandidatureChoices(), e.CandidatureYear) {
		errs.Add(FieldCandidatureYear, MsgNoCandidatureYear)
	}
	if !slices.Contains(ApplicationYears, e.ApplicationYear) {
		errs.Add(FieldApplicationYear, "L'année de candidature est requise")
	}
	if !blank(e.BacType) && !model.ValidBacType(e.BacType) {
		errs.Add(FieldBacType, "Type de bac inconnu")
	}
	if !blank(e.TCF) {
		if _, err := ParseTCF(e.TCF); err != nil {
			errs.Add(FieldTCF, err.Error())
		}
	}
	return errs
}

// ValidateAverages checks the second step. Hidden levels are ignored.
func ValidateAverages(e *Experience) FieldErrors {
	errs := FieldErrors{}
	for _, l := range e.VisibleLevels() {
		r := e.Record(l)
		if l.IsLycee() {
			// in terminale the 3AS average is the bac average
			if l == model.Level3AS && e.StudyYear == model.StudyTerminale {
				requireAverage(errs, AverageField(l), r.Average, fmt.Sprintf("La moyenne %s est requise", l))
			} else {
				checkAverage(errs, AverageField(l), r.Average)
			}
			continue
		}
		if !r.Has {
			continue
		}
		requireAverage(errs, AverageField(l), r.Average, fmt.Sprintf("La moyenne %s est requise", l))
		if r.Repeated {
			requireAverage(errs, RepeatedAverageField(l), r.RepeatedAverage,
				fmt.Sprintf("La moyenne %s (redoublement) est requise", l))
		}
	}
	if e.ShowBacAverage() {
		checkAverage(errs, FieldBacAverage, e.BacAverage)
	}
	return errs
}

// ValidateTargets checks the third step
func ValidateTargets(e *Experience) FieldErrors {
	errs := FieldErrors{}
	if len(e.Specialities) == 0 {
		errs.Add(FieldSpecialities, MsgNoSpeciality)
	}
	switch limit := e.MaxUniversities(); {
	case len(e.Universities) == 0:
		errs.Add(FieldUniversities, MsgNoUniversity)
	case len(e.Universities) > limit:
		errs.Add(FieldUniversities, fmt.Sprintf("Vous pouvez sélectionner au maximum %d universités", limit))
	}
	if !e.Outcomes.Disjoint() {
		errs.Add(FieldOutcomes, "Une université ne peut pas être à la fois acceptée et refusée")
	}
	for _, id := range append(slices.Clone(e.Outcomes.Accepted), e.Outcomes.Rejected...) {
		if !slices.Contains(e.Universities, id) {
			errs.Add(FieldOutcomes, "Les résultats doivent concerner des universités visées")
			break
		}
	}
	return errs
}

// ValidateComment checks the last step
func ValidateComment(e *Experience) FieldErrors {
	errs := FieldErrors{}
	if len([]rune(e.Comment)) > MaxCommentLength {
		errs.Add(FieldComment, fmt.Sprintf("Le commentaire ne doit pas dépasser %d caractères", MaxCommentLength))
	}
	return errs
}

// ExperienceSteps are the four pages of the share form
func ExperienceSteps() []Step[Experience] {
	return []Step[Experience]{
		{Title: "Candidature", Validate: ValidateApplication},
		{Title: "Moyennes", Validate: ValidateAverages},
		{Title: "Universités", Validate: ValidateTargets},
		{Title: "Témoignage", Validate: ValidateComment},
	}
}

// ExperienceSharer sends a payload; the API client satisfies it
type ExperienceSharer interface {
	ShareExperience(ctx context.Context, p model.ExperiencePayload) (*model.ShareResponse, error)
}

// NewExperienceController wires the share form to sharer
func NewExperienceController(sharer ExperienceSharer) *Controller[Experience] {
	return NewController(
		NewExperience,
		ExperienceSteps(),
		func(ctx context.Context, e Experience) error {
			payload, err := e.Payload()
			if err != nil {
				return err
			}
			_, err = sharer.ShareExperience(ctx, payload)
			return err
		},
	)
}
