// ABOUTME: huh pages of the academic profile wizard
// ABOUTME: Bac and TCF fields only appear once their toggle is on

package wizard

import (
	"context"

	"github.com/charmbracelet/huh"

	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

// ProfileTitle heads the setup wizard
const ProfileTitle = "Profil académique"

// NewProfile wraps a profile controller, for setup or for editing
func NewProfile(ctx context.Context, ctrl *form.Controller[form.Profile]) *Wizard[form.Profile] {
	return New(ctx, ProfileTitle, ctrl, ProfilePage)
}

// BacTypeOptions lists the streams in share-form spelling
func BacTypeOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(model.BacTypes))
	for _, b := range model.BacTypes {
		opts = append(opts, huh.NewOption(b.Label, b.Value))
	}
	return opts
}

// ProfilePage builds the page of one profile step
func ProfilePage(step int, p *form.Profile) Page {
	switch step {
	case 1:
		return FormPage(huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Avez-vous obtenu le baccalauréat ?").
					Affirmative("Oui").
					Negative("Non").
					Value(&p.HasBac),
			).Title("Étape 1 : Examens"),
			huh.NewGroup(
				huh.NewInput().
					Title("Moyenne du bac").
					Description("Sur 20, par exemple 14,5").
					Placeholder("14,5").
					CharLimit(5).
					Value(&p.BacAverage).
					Validate(checkAverage),
				huh.NewSelect[string]().
					Title("Type de bac").
					Options(BacTypeOptions()...).
					Value(&p.BacType),
			).WithHideFunc(func() bool { return !p.HasBac }),
			huh.NewGroup(
				huh.NewConfirm().
					Title("Avez-vous passé le TCF ?").
					Affirmative("Oui").
					Negative("Non").
					Value(&p.HasTCF),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Score TCF").
					Description("Entre 0 et 699").
					CharLimit(3).
					Value(&p.TCFScore).
					Validate(checkTCF),
			).WithHideFunc(func() bool { return !p.HasTCF }),
		))

	case 2:
		years := make([]huh.Option[string], 0, len(model.ProfileStudyYears))
		for _, y := range model.ProfileStudyYears {
			years = append(years, huh.NewOption(studyYearLabel(y), y))
		}
		return FormPage(huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Spécialité").
					Placeholder("Informatique").
					Value(&p.Specialty),
				huh.NewSelect[string]().
					Title("Année d'étude actuelle").
					Options(years...).
					Value(&p.StudyYear),
			).Title("Étape 2 : Études"),
		))

	default:
		return FormPage(huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[model.Acceptance]().
					Title("Avez-vous déjà été accepté dans une université française ?").
					Options(
						huh.NewOption(model.AcceptanceYes.Label(), model.AcceptanceYes),
						huh.NewOption(model.AcceptanceNo.Label(), model.AcceptanceNo),
						huh.NewOption(model.AcceptancePending.Label(), model.AcceptancePending),
					).
					Value(&p.Acceptance),
			).Title("Étape 3 : Candidatures"),
		))
	}
}

func studyYearLabel(y string) string {
	switch y {
	case "doctorat":
		return "Doctorat"
	case "autre":
		return "Autre"
	default:
		return y
	}
}
