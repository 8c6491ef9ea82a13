// ABOUTME: Share command: posts an admission experience
// ABOUTME: Runs the share wizard or reads the answers from a YAML file

package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/picker"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/wizard"
)

var shareFile string

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Share an admission experience",
	Long: `Share an admission experience. Without --file the share wizard runs in the
terminal. The YAML file uses these keys:

  study_year: L2            # terminale, L1, L2, L3, M1, M2
  candidature_year: 3       # year applied to, reachable from study_year
  application_year: 2023
  bac_type: general
  bac_average: "14.5"
  tcf: "450"
  averages:
    - {level: L1, average: "12", repeated_average: "9.5"}
    - {level: L2, average: "13"}
  specialities: [Informatique]
  universities: [Sorbonne, "12"]   # names or ids
  accepted: [Sorbonne]
  rejected: []
  comment: ...
  public: true
  anonymous: false`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runShare(ctx, cmd.OutOrStdout(), shareFile))
	},
}

func init() {
	shareCmd.Flags().StringVarP(&shareFile, "file", "f", "", "Read the answers from a YAML file instead of the wizard")
	rootCmd.AddCommand(shareCmd)
}

// experienceAnswers is the YAML shape of the share wizard
type experienceAnswers struct {
	StudyYear       string        `yaml:"study_year"`
	CandidatureYear int           `yaml:"candidature_year"`
	ApplicationYear int           `yaml:"application_year"`
	BacType         string        `yaml:"bac_type"`
	BacAverage      string        `yaml:"bac_average"`
	TCF             string        `yaml:"tcf"`
	Averages        []levelAnswer `yaml:"averages"`
	Specialities    []string      `yaml:"specialities"`
	Universities    []string      `yaml:"universities"`
	Accepted        []string      `yaml:"accepted"`
	Rejected        []string      `yaml:"rejected"`
	Comment         string        `yaml:"comment"`
	Public          *bool         `yaml:"public"`
	Anonymous       bool          `yaml:"anonymous"`
}

type levelAnswer struct {
	Level           string `yaml:"level"`
	Average         string `yaml:"average"`
	RepeatedAverage string `yaml:"repeated_average"`
}

// experience fills a share form from the answers. Names are resolved
// against the catalog; unknown or ambiguous names are field errors.
func (a experienceAnswers) experience(catalog wizard.Catalog) (form.Experience, form.FieldErrors) {
	e := form.NewExperience()
	errs := form.FieldErrors{}

	e.SetStudyYear(model.StudyYear(strings.TrimSpace(a.StudyYear)))
	if a.CandidatureYear != 0 && !e.SetCandidatureYear(model.CandidatureYear(a.CandidatureYear)) {
		errs.Add(form.FieldCandidatureYear, "Année de candidature impossible depuis cette année d'étude")
	}
	e.ApplicationYear = a.ApplicationYear
	e.BacType = a.BacType
	e.BacAverage = a.BacAverage
	e.TCF = a.TCF

	for _, avg := range a.Averages {
		l, ok := model.ParseLevel(avg.Level)
		if !ok {
			errs.Add("averages", fmt.Sprintf("Niveau inconnu : %s", avg.Level))
			continue
		}
		if !l.IsLycee() {
			e.SetHasLevel(l, true)
		}
		e.Record(l).Average = avg.Average
		if avg.RepeatedAverage != "" {
			e.SetRepeated(l, true)
			e.Record(l).RepeatedAverage = avg.RepeatedAverage
		}
	}

	for _, name := range a.Specialities {
		id, ok := resolve(catalog.Specialities, name, form.FieldSpecialities, errs)
		if ok && !slices.Contains(e.Specialities, id) {
			e.ToggleSpeciality(id)
		}
	}
	for _, name := range a.Universities {
		id, ok := resolve(catalog.Universities, name, form.FieldUniversities, errs)
		if !ok || slices.Contains(e.Universities, id) {
			continue
		}
		if !e.ToggleUniversity(id) {
			errs.Add(form.FieldUniversities, fmt.Sprintf("Vous pouvez sélectionner au maximum %d universités", e.MaxUniversities()))
		}
	}
	outcome := func(names []string, toggle func(int) bool) {
		for _, name := range names {
			id, ok := resolve(catalog.Universities, name, form.FieldOutcomes, errs)
			if ok && !toggle(id) {
				errs.Add(form.FieldOutcomes, fmt.Sprintf("%s ne fait pas partie des universités ciblées", name))
			}
		}
	}
	outcome(a.Accepted, e.ToggleAccepted)
	outcome(a.Rejected, e.ToggleRejected)

	e.Comment = a.Comment
	if a.Public != nil {
		e.Public = *a.Public
	}
	e.Anonymous = a.Anonymous
	return e, errs
}

// resolve finds an option by id or by name, accents and case ignored. An
// exact label wins over partial matches.
func resolve(options []picker.Option, name, field string, errs form.FieldErrors) (int, bool) {
	name = strings.TrimSpace(name)
	if id, err := strconv.Atoi(name); err == nil {
		for _, o := range options {
			if o.ID == id {
				return id, true
			}
		}
		errs.Add(field, fmt.Sprintf("Identifiant inconnu : %d", id))
		return 0, false
	}

	p := picker.New(options)
	p.SetSearch(name)
	matches := p.Candidates()
	for _, o := range matches {
		if strings.EqualFold(o.Label, name) {
			return o.ID, true
		}
	}
	switch len(matches) {
	case 1:
		return matches[0].ID, true
	case 0:
		errs.Add(field, fmt.Sprintf("Aucun résultat pour « %s »", name))
	default:
		errs.Add(field, fmt.Sprintf("« %s » est ambigu (%d résultats)", name, len(matches)))
	}
	return 0, false
}

func runShare(ctx context.Context, w io.Writer, path string) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	var answers experienceAnswers
	if path != "" {
		if err := readYAML(path, &answers); err != nil {
			return report(w, err)
		}
	}

	catalog, err := wizard.LoadCatalog(ctx, e.client)
	if err != nil {
		return report(w, err)
	}
	ctrl := form.NewExperienceController(e.client)

	if path != "" {
		exp, errs := answers.experience(catalog)
		if len(errs) > 0 {
			return report(w, errs)
		}
		*ctrl.State() = exp
		err = submit(ctx, ctrl)
	} else {
		err = runWizard(ctx, wizard.NewExperience(ctx, ctrl, catalog))
	}
	if err != nil {
		return report(w, err)
	}
	return message(w, "Merci ! Votre expérience a été partagée.")
}
