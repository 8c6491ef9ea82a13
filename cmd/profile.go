// ABOUTME: Profile commands: status, show, setup and edit
// ABOUTME: Setup and edit run the profile wizard or read a YAML file

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	core "github.com/Rayanebsh/Pathwayfr/internal/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/form"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/wizard"
)

var profileFile string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and edit the academic profile",
}

var profileStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Tell whether the academic profile is complete",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runProfileStatus(ctx, cmd.OutOrStdout()))
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the account and the academic profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runProfileShow(ctx, cmd.OutOrStdout()))
	},
}

var profileSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the academic profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runProfileSave(ctx, cmd.OutOrStdout(), profileFile, false))
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the academic profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runProfileSave(ctx, cmd.OutOrStdout(), profileFile, true))
	},
}

func init() {
	for _, c := range []*cobra.Command{profileSetupCmd, profileEditCmd} {
		c.Flags().StringVarP(&profileFile, "file", "f", "", "Read the answers from a YAML file instead of the wizard")
	}
	profileCmd.AddCommand(profileStatusCmd, profileShowCmd, profileSetupCmd, profileEditCmd)
	rootCmd.AddCommand(profileCmd)
}

// profileAnswers is the YAML shape of the profile wizard. Leaving the bac
// or TCF fields out means the exam was not taken.
type profileAnswers struct {
	BacAverage string `yaml:"bac_average"`
	BacType    string `yaml:"bac_type"`
	TCFScore   string `yaml:"tcf_score"`
	Speciality string `yaml:"speciality"`
	StudyYear  string `yaml:"study_year"`
	Accepted   string `yaml:"accepted"`
}

func (a profileAnswers) profile() form.Profile {
	p := form.Profile{
		Specialty:  strings.TrimSpace(a.Speciality),
		StudyYear:  strings.TrimSpace(a.StudyYear),
		Acceptance: model.Acceptance(strings.TrimSpace(a.Accepted)),
	}
	p.SetHasBac(a.BacAverage != "" || a.BacType != "")
	if p.HasBac {
		p.BacAverage = a.BacAverage
		p.BacType = a.BacType
	}
	p.SetHasTCF(a.TCFScore != "")
	p.TCFScore = a.TCFScore
	return p
}

func runProfileStatus(ctx context.Context, w io.Writer) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	status, err := e.client.ProfileStatus(ctx)
	if err != nil {
		return report(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, status)
	}
	if status.IsComplete {
		fmt.Fprintln(w, "Profil académique complet")
		return exitOK
	}
	fmt.Fprintln(w, "Profil académique incomplet")
	if len(status.MissingFields) > 0 {
		fmt.Fprintf(w, "Champs manquants : %s\n", strings.Join(status.MissingFields, ", "))
	}
	fmt.Fprintln(w, "Lancez « pathwayfr profile setup » pour le compléter.")
	return exitOK
}

// profileOutput is the --json shape of profile show
type profileOutput struct {
	User    *model.UserSummary     `json:"user"`
	Profile *model.AcademicProfile `json:"academic_profile"`
	Warning string                 `json:"warning,omitempty"`
}

func runProfileShow(ctx context.Context, w io.Writer) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	view := core.LoadProfile(ctx, e.client, e.sess)
	if view.Err != nil && (view.User == nil || errors.Is(view.Err, client.ErrSessionExpired)) {
		return report(w, view.Err)
	}

	if IsJSONOutput() {
		out := profileOutput{User: view.User, Profile: view.Profile}
		if view.Err != nil {
			out.Warning = client.UserMessage(view.Err)
		}
		return writeJSON(w, out)
	}
	if view.Err != nil {
		fmt.Fprintf(w, "Attention : %s (valeurs en cache)\n\n", client.UserMessage(view.Err))
	}
	table(w, rowPairs(view.IdentityRows()))
	fmt.Fprintln(w)
	if rows := view.AcademicRows(); rows != nil {
		table(w, rowPairs(rows))
	} else {
		fmt.Fprintln(w, "Aucun profil académique. Lancez « pathwayfr profile setup ».")
	}
	return exitOK
}

// runProfileSave creates or edits the profile from path, or through the
// wizard when path is empty
func runProfileSave(ctx context.Context, w io.Writer, path string, edit bool) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	ctrl := form.NewProfileController(e.client)
	if edit {
		view := core.LoadProfile(ctx, e.client, e.sess)
		if view.Profile == nil && view.Err != nil {
			return report(w, view.Err)
		}
		ctrl = view.EditController(e.client)
	}

	if path != "" {
		var answers profileAnswers
		if err := readYAML(path, &answers); err != nil {
			return report(w, err)
		}
		*ctrl.State() = answers.profile()
		err = submit(ctx, ctrl)
	} else {
		err = runWizard(ctx, wizard.NewProfile(ctx, ctrl))
	}
	if err != nil {
		return report(w, err)
	}
	return message(w, "Profil enregistré")
}

func rowPairs(rows []core.Row) [][2]string {
	out := make([][2]string, len(rows))
	for i, r := range rows {
		out[i] = [2]string{r.Label, r.Value}
	}
	return out
}
