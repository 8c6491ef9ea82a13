// ABOUTME: Pages of the "share your experience" wizard
// ABOUTME: Averages follow the declared years; targets use multiselect pickers

package wizard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"golang.org/x/sync/errgroup"

	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/picker"
)

// ExperienceTitle heads the share wizard
const ExperienceTitle = "Partager mon expérience"

// Catalog holds the choices offered by the targets step
type Catalog struct {
	Universities []picker.Option
	Specialities []picker.Option
}

// CatalogFrom converts the catalog endpoints' payloads to picker options
func CatalogFrom(unis []model.University, specs []model.Speciality) Catalog {
	var c Catalog
	for _, u := range unis {
		label := u.Name
		if u.City != "" {
			label += " (" + u.City + ")"
		}
		c.Universities = append(c.Universities, picker.Option{ID: u.ID, Label: label})
	}
	for _, s := range specs {
		c.Specialities = append(c.Specialities, picker.Option{ID: s.ID, Label: s.Name})
	}
	return c
}

// CatalogAPI lists the choices of the targets step
type CatalogAPI interface {
	Universities(ctx context.Context) ([]model.University, error)
	Specialities(ctx context.Context) ([]model.Speciality, error)
}

// LoadCatalog fetches universities and specialities concurrently
func LoadCatalog(ctx context.Context, api CatalogAPI) (Catalog, error) {
	var (
		unis  []model.University
		specs []model.Speciality
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		unis, err = api.Universities(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		specs, err = api.Specialities(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Catalog{}, err
	}
	return CatalogFrom(unis, specs), nil
}

// NewExperience wraps a share controller
func NewExperience(ctx context.Context, ctrl *form.Controller[form.Experience], catalog Catalog) *Wizard[form.Experience] {
	return New(ctx, ExperienceTitle, ctrl, ExperiencePages(catalog))
}

// ExperiencePages builds the pages of the share wizard over catalog
func ExperiencePages(catalog Catalog) PageFunc[form.Experience] {
	return func(step int, e *form.Experience) Page {
		switch step {
		case 1:
			return applicationPage(e)
		case 2:
			return averagesPage(e)
		case 3:
			return NewTargetsPage(e, catalog)
		default:
			return commentPage(e)
		}
	}
}

func applicationPage(e *form.Experience) Page {
	studyYears := make([]huh.Option[model.StudyYear], 0, len(model.StudyYears))
	for _, y := range model.StudyYears {
		studyYears = append(studyYears, huh.NewOption(y.Label(), y))
	}
	appYears := make([]huh.Option[int], 0, len(form.ApplicationYears))
	for _, y := range form.ApplicationYears {
		appYears = append(appYears, huh.NewOption(strconv.Itoa(y), y))
	}
	bacTypes := append([]huh.Option[string]{huh.NewOption("Non précisé", "")}, BacTypeOptions()...)

	return FormPage(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.StudyYear]().
				Title("Votre niveau au moment de la candidature").
				Options(studyYears...).
				Value(&e.StudyYear),
			huh.NewSelect[model.CandidatureYear]().
				Title("Année visée").
				OptionsFunc(func() []huh.Option[model.CandidatureYear] {
					var opts []huh.Option[model.CandidatureYear]
					for _, c := range model.CandidatureYears(e.StudyYear) {
						opts = append(opts, huh.NewOption(c.Label(), c))
					}
					return opts
				}, &e.StudyYear).
				Value(&e.CandidatureYear),
			huh.NewSelect[int]().
				Title("Année de candidature").
				Options(appYears...).
				Value(&e.ApplicationYear),
		).Title("Étape 1 : Candidature"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type de bac").
				Options(bacTypes...).
				Value(&e.BacType),
			huh.NewInput().
				Title("Score TCF").
				Description("Facultatif, entre 0 et 699").
				CharLimit(3).
				Value(&e.TCF).
				Validate(checkTCF),
		),
	))
}

func averagesPage(e *form.Experience) Page {
	var groups []*huh.Group
	for _, l := range e.VisibleLevels() {
		r := e.Record(l)
		if l.IsLycee() {
			groups = append(groups, huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("Moyenne %s", l)).
					Description("Facultatif, sur 20").
					CharLimit(5).
					Value(&r.Average).
					Validate(checkAverage),
			))
			continue
		}
		groups = append(groups,
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Avez-vous fait une année de %s ?", l)).
					Affirmative("Oui").
					Negative("Non").
					Value(&r.Has),
			),
			huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("Moyenne %s", l)).
					CharLimit(5).
					Value(&r.Average).
					Validate(checkAverage),
				huh.NewConfirm().
					Title(fmt.Sprintf("Avez-vous redoublé la %s ?", l)).
					Affirmative("Oui").
					Negative("Non").
					Value(&r.Repeated),
			).WithHideFunc(func() bool { return !r.Has }),
			huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("Moyenne %s (redoublement)", l)).
					CharLimit(5).
					Value(&r.RepeatedAverage).
					Validate(checkAverage),
			).WithHideFunc(func() bool { return !r.Has || !r.Repeated }),
		)
	}
	if e.ShowBacAverage() {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Moyenne du bac").
				Description("Facultatif, sur 20").
				CharLimit(5).
				Value(&e.BacAverage).
				Validate(checkAverage),
		))
	}
	if len(groups) == 0 {
		groups = append(groups, huh.NewGroup(
			huh.NewNote().Title("Aucune moyenne à saisir pour ce parcours"),
		))
	}
	groups[0].Title("Étape 2 : Moyennes")
	return FormPage(huh.NewForm(groups...))
}

func commentPage(e *form.Experience) Page {
	return FormPage(huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Votre témoignage").
				Description(fmt.Sprintf("Facultatif, %d caractères au maximum", form.MaxCommentLength)).
				CharLimit(form.MaxCommentLength).
				Value(&e.Comment),
			huh.NewConfirm().
				Title("Rendre l'expérience publique ?").
				Affirmative("Oui").
				Negative("Non").
				Value(&e.Public),
			huh.NewConfirm().
				Title("Publier anonymement ?").
				Affirmative("Oui").
				Negative("Non").
				Value(&e.Anonymous),
		).Title("Étape 4 : Témoignage"),
	))
}
