// ABOUTME: Tests for the step controller, the profile wizard and the share form
// ABOUTME: Covers step validation, back/forward stability, visibility and submit outcomes

package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

type fakeSaver struct {
	calls int
	saved model.AcademicProfile
	err   error
}

func (f *fakeSaver) SetupProfile(_ context.Context, p model.AcademicProfile) error {
	f.calls++
	f.saved = p
	return f.err
}

type fakeSharer struct {
	calls    int
	payloads []model.ExperiencePayload
	err      error
}

func (f *fakeSharer) ShareExperience(_ context.Context, p model.ExperiencePayload) (*model.ShareResponse, error) {
	f.calls++
	f.payloads = append(f.payloads, p)
	if f.err != nil {
		return nil, f.err
	}
	return &model.ShareResponse{Message: "Expérience créée avec succès"}, nil
}

func TestNextWithMissingFieldNeverAdvances(t *testing.T) {
	c := NewProfileController(&fakeSaver{})
	st := c.State()
	st.SetHasBac(true)

	err := c.Next(context.Background())

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.NotEmpty(t, fe)
	assert.Equal(t, "La moyenne du bac est requise", fe[FieldBacAverage])
	assert.Equal(t, "Le type de bac est requis", fe[FieldBacType])
	assert.Equal(t, 1, c.Step())
	assert.Equal(t, Editing, c.Phase())
}

func TestPreviousThenNextIsStable(t *testing.T) {
	c := NewProfileController(&fakeSaver{})
	st := c.State()
	st.SetHasBac(true)
	st.BacAverage = "14,5"
	st.BacType = "mathematiques"
	require.NoError(t, c.Next(context.Background()))
	assert.Equal(t, 2, c.Step())

	st.Specialty = "Informatique"
	c.Previous()
	assert.Equal(t, 1, c.Step())
	assert.Equal(t, "Informatique", c.State().Specialty, "previous keeps later values")

	require.NoError(t, c.Next(context.Background()))
	assert.Equal(t, 2, c.Step())
	assert.Empty(t, c.Errors())
}

func TestPreviousOnFirstStepStays(t *testing.T) {
	c := NewProfileController(&fakeSaver{})
	c.Previous()
	assert.Equal(t, 1, c.Step())
}

func TestToggleOffClearsDependentValues(t *testing.T) {
	var p Profile
	p.SetHasBac(true)
	p.BacAverage = "15"
	p.BacType = "mathematiques"
	p.SetHasTCF(true)
	p.TCFScore = "450"

	p.SetHasBac(false)
	p.SetHasTCF(false)
	assert.Empty(t, p.BacAverage)
	assert.Empty(t, p.BacType)
	assert.Empty(t, p.TCFScore)

	a := p.AcademicProfile()
	assert.Nil(t, a.BacAverage)
	assert.Nil(t, a.TCFScore)
}

func TestProfileRanges(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Profile)
		field string
		msg   string
	}{
		{"bac above 20", func(p *Profile) { p.HasBac, p.BacAverage, p.BacType = true, "21", "mathematiques" }, FieldBacAverage, MsgAverageRange},
		{"bac not a number", func(p *Profile) { p.HasBac, p.BacAverage, p.BacType = true, "quinze", "mathematiques" }, FieldBacAverage, MsgNotANumber},
		{"tcf above 699", func(p *Profile) { p.HasTCF, p.TCFScore = true, "700" }, FieldTCFScore, MsgTCFRange},
		{"tcf negative", func(p *Profile) { p.HasTCF, p.TCFScore = true, "-1" }, FieldTCFScore, MsgTCFRange},
		{"tcf missing", func(p *Profile) { p.HasTCF = true }, FieldTCFScore, "Le score TCF est requis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Profile
			tt.setup(&p)
			errs := ValidateExams(&p)
			assert.Equal(t, tt.msg, errs[tt.field])
		})
	}
}

func completeProfile(c *Controller[Profile]) {
	st := c.State()
	st.SetHasBac(true)
	st.BacAverage = "16"
	st.BacType = "sciences_experimentales"
	st.SetHasTCF(true)
	st.TCFScore = "520"
	st.Specialty = "Informatique"
	st.StudyYear = "L2"
	st.Acceptance = model.AcceptancePending
}

func TestProfileSubmitSuccessResets(t *testing.T) {
	saver := &fakeSaver{}
	c := NewProfileController(saver)
	completeProfile(c)

	ctx := context.Background()
	require.NoError(t, c.Next(ctx))
	require.NoError(t, c.Next(ctx))
	require.NoError(t, c.Next(ctx))

	assert.Equal(t, Submitted, c.Phase())
	assert.Equal(t, 1, saver.calls)
	require.NotNil(t, saver.saved.BacAverage)
	assert.Equal(t, 16.0, *saver.saved.BacAverage)
	assert.Equal(t, 520, *saver.saved.TCFScore)
	assert.Equal(t, Profile{}, *c.State(), "state is reset after success")
}

func TestProfileSubmitFailureKeepsStateAndRetries(t *testing.T) {
	saver := &fakeSaver{err: errors.New("backend down")}
	c := NewProfileController(saver)
	completeProfile(c)

	ctx := context.Background()
	c.Next(ctx)
	c.Next(ctx)
	err := c.Next(ctx)
	require.Error(t, err)
	assert.Equal(t, Failed, c.Phase())
	assert.Equal(t, "Informatique", c.State().Specialty)
	assert.Equal(t, 3, c.Step())

	saver.err = nil
	require.NoError(t, c.Retry(ctx))
	assert.Equal(t, Submitted, c.Phase())
	assert.Equal(t, 2, saver.calls)
}

func TestRetryOutsideFailure(t *testing.T) {
	c := NewProfileController(&fakeSaver{})
	assert.ErrorIs(t, c.Retry(context.Background()), ErrNotFailed)
}

func TestProfileFromAcademicRoundTrip(t *testing.T) {
	avg, tcf := 12.25, 380
	a := model.AcademicProfile{BacAverage: &avg, BacType: "mathematiques", TCFScore: &tcf, Specialty: "Droit", StudyYear: "M1", Acceptance: model.AcceptanceYes}
	p := ProfileFromAcademic(a)
	assert.True(t, p.HasBac)
	assert.True(t, p.HasTCF)
	assert.Equal(t, "12.25", p.BacAverage)
	assert.Equal(t, a, p.AcademicProfile())
}

func TestCandidatureTableDrivesChoices(t *testing.T) {
	e := NewExperience()
	e.SetStudyYear(model.StudyL2)
	assert.Equal(t, []model.CandidatureYear{1, 2, 3}, e.CandidatureChoices())

	assert.False(t, e.SetCandidatureYear(5))
	assert.True(t, e.SetCandidatureYear(3))

	// L3 cannot target a first year: the choice is dropped
	e.SetCandidatureYear(1)
	e.SetStudyYear(model.StudyL3)
	assert.Equal(t, model.CandidatureYear(0), e.CandidatureYear)

	e.SetCandidatureYear(3)
	e.SetStudyYear(model.StudyM1)
	assert.Equal(t, model.CandidatureYear(3), e.CandidatureYear, "a still reachable year is kept")
}

func TestVisibleLevelsL3TargetingL2(t *testing.T) {
	e := NewExperience()
	e.SetStudyYear(model.StudyL3)
	require.True(t, e.SetCandidatureYear(2))

	assert.Equal(t, []model.Level{model.LevelL1, model.LevelL2, model.LevelL3}, e.VisibleLevels())
	assert.False(t, e.ShowLycee())
	assert.True(t, e.ShowBacAverage())
}

func TestVisibleLevelsTerminale(t *testing.T) {
	e := NewExperience()
	e.SetStudyYear(model.StudyTerminale)
	require.True(t, e.SetCandidatureYear(1))

	assert.Equal(t, model.LyceeLevels, e.VisibleLevels())
	assert.False(t, e.ShowBacAverage())

	e.Record(model.Level3AS).Average = "17"
	require.NotNil(t, e.BacAverageValue())
	assert.Equal(t, 17.0, *e.BacAverageValue())
}

func TestVisibleLevelsM2(t *testing.T) {
	e := NewExperience()
	e.SetStudyYear(model.StudyM2)
	e.SetCandidatureYear(5)
	assert.Equal(t, model.UniversityLevels, e.VisibleLevels())
}

func TestFirstYearCapsUniversitiesAtThree(t *testing.T) {
	e := NewExperience()
	e.SetStudyYear(model.StudyTerminale)
	e.SetCandidatureYear(1)
	assert.Equal(t, 3, e.MaxUniversities())

	for _, id := range []int{1, 2, 3} {
		require.True(t, e.ToggleUniversity(id))
	}
	assert.False(t, e.ToggleUniversity(4))
	assert.Equal(t, []int{1, 2, 3}, e.Universities)
	assert.True(t, e.UniversityPicker(nil).LimitReached(e.Universities))

	e.SetStudyYear(model.StudyL2)
	e.SetCandidatureYear(2)
	assert.Equal(t, 7, e.MaxUniversities())
	assert.True(t, e.ToggleUniversity(4))
}

func TestRemovingTargetPrunesOutcomes(t *testing.T) {
	e := NewExperience()
	e.SetUniversities([]int{1, 2, 3})
	require.True(t, e.ToggleAccepted(1))
	require.True(t, e.ToggleRejected(2))
	assert.False(t, e.ToggleAccepted(9), "only targets can be accepted")

	e.ToggleRejected(1)
	assert.Empty(t, e.Outcomes.Accepted, "rejecting removes from accepted")

	e.ToggleUniversity(2)
	assert.NotContains(t, e.Outcomes.Rejected, 2)
	assert.True(t, e.Outcomes.Disjoint())
}

func TestAveragesFlatMap(t *testing.T) {
	e := NewExperience()
	e.SetStudyYear(model.StudyL2)
	e.SetCandidatureYear(1)

	e.Record(model.Level1AS).Average = "13"
	e.Record(model.Level3AS).Average = "15,5"
	e.SetHasLevel(model.LevelL1, true)
	e.Record(model.LevelL1).Average = "9"
	e.SetRepeated(model.LevelL1, true)
	e.Record(model.LevelL1).RepeatedAverage = "12"
	e.Record(model.LevelL2).Average = "14" // not declared, ignored

	assert.Equal(t, map[string]float64{
		"1AS":         13,
		"3AS":         15.5,
		"L1":          9,
		"L1_redouble": 12,
	}, e.Averages())

	e.SetHasLevel(model.LevelL1, false)
	assert.Empty(t, e.Record(model.LevelL1).RepeatedAverage)
}

func TestValidateAveragesRequiresDeclaredLevels(t *testing.T) {
	e := NewExperience()
	e.SetStudyYear(model.StudyL3)
	e.SetCandidatureYear(2)
	e.SetHasLevel(model.LevelL2, true)
	e.SetRepeated(model.LevelL2, true)
	e.Record(model.LevelM1).Has = true // hidden, ignored

	errs := ValidateAverages(&e)
	assert.Equal(t, "La moyenne L2 est requise", errs[AverageField(model.LevelL2)])
	assert.Equal(t, "La moyenne L2 (redoublement) est requise", errs[RepeatedAverageField(model.LevelL2)])
	assert.NotContains(t, errs, AverageField(model.LevelM1))
}

func TestValidateAveragesTerminaleRequires3AS(t *testing.T) {
	e := NewExperience()
	e.SetStudyYear(model.StudyTerminale)
	require.True(t, e.SetCandidatureYear(1))

	errs := ValidateAverages(&e)
	assert.Equal(t, "La moyenne 3AS est requise", errs[AverageField(model.Level3AS)])
	assert.NotContains(t, errs, AverageField(model.Level1AS), "earlier lycée years stay optional")

	e.Record(model.Level3AS).Average = "15.5"
	assert.Empty(t, ValidateAverages(&e))

	e.SetStudyYear(model.StudyL1)
	e.SetCandidatureYear(1)
	e.Record(model.Level3AS).Average = ""
	assert.NotContains(t, ValidateAverages(&e), AverageField(model.Level3AS), "3AS is optional outside terminale")
}

func filledExperience(e *Experience) {
	e.SetStudyYear(model.StudyL3)
	e.SetCandidatureYear(2)
	e.ApplicationYear = 2023
	e.BacType = "mathematiques"
	e.TCF = "600"
	e.SetHasLevel(model.LevelL1, true)
	e.Record(model.LevelL1).Average = "12"
	e.BacAverage = "14"
	e.ToggleSpeciality(4)
	e.ToggleSpeciality(7)
	e.SetUniversities([]int{10, 11})
	e.ToggleAccepted(10)
	e.ToggleRejected(11)
	e.Comment = "  Dossier solide, entretien court.  "
}

func TestEmptyUniversitiesFailsWithoutRequest(t *testing.T) {
	sharer := &fakeSharer{}
	c := NewExperienceController(sharer)
	filledExperience(c.State())
	c.State().SetUniversities(nil)

	ctx := context.Background()
	require.NoError(t, c.Next(ctx))
	require.NoError(t, c.Next(ctx))

	err := c.Next(ctx)
	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, MsgNoUniversity, fe[FieldUniversities])
	assert.Equal(t, 3, c.Step())
	assert.Zero(t, sharer.calls)
}

func TestExperienceSubmitPayload(t *testing.T) {
	sharer := &fakeSharer{}
	c := NewExperienceController(sharer)
	filledExperience(c.State())

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, c.Next(ctx), "step %d", c.Step())
	}
	require.Equal(t, Submitted, c.Phase())
	require.Len(t, sharer.payloads, 1)

	p := sharer.payloads[0]
	assert.Equal(t, "L3", p.StudyYearAtApplication)
	assert.Equal(t, 2, p.CandidatureYear)
	assert.Equal(t, 2023, p.ApplicationYear)
	assert.Equal(t, 4, p.SpecialityID)
	assert.Equal(t, []int{4, 7}, p.SpecialityIDs)
	assert.Equal(t, []int{10, 11}, p.UniversityIDs)
	assert.Equal(t, []int{10}, p.UniversityAcceptedIn)
	assert.Equal(t, []int{11}, p.UniversityRejectedIn)
	assert.Equal(t, map[string]float64{"L1": 12}, p.AverageEachYearList)
	assert.JSONEq(t, `{"L1":12}`, p.AverageEachYear)
	require.NotNil(t, p.BacAverage)
	assert.Equal(t, 14.0, *p.BacAverage)
	assert.Equal(t, 600, *p.LevelTCF)
	assert.Equal(t, "Dossier solide, entretien court.", p.Comment)
	assert.True(t, p.IsPublic)

	assert.Empty(t, c.State().Universities, "form is reset after success")
}

func TestExperienceSubmitFailureIsRetryable(t *testing.T) {
	sharer := &fakeSharer{err: errors.New("Spécialité introuvable")}
	c := NewExperienceController(sharer)
	filledExperience(c.State())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Next(ctx))
	}
	require.Error(t, c.Next(ctx))
	assert.Equal(t, Failed, c.Phase())
	assert.EqualError(t, c.Err(), "Spécialité introuvable")

	sharer.err = nil
	require.NoError(t, c.Retry(ctx))
	assert.Equal(t, 2, sharer.calls)
	assert.Equal(t, sharer.payloads[0], sharer.payloads[1])
}

func TestFieldErrorsError(t *testing.T) {
	fe := FieldErrors{}
	assert.NoError(t, fe.Err())
	fe.Add("b", "deux")
	fe.Add("a", "un")
	fe.Add("a", "ignored")
	assert.Equal(t, "a: un; b: deux", fe.Error())
}
