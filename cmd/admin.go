// ABOUTME: Admin commands: statistics, users, moderation and CSV export
// ABOUTME: Every command checks the admin role with the backend first

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	core "github.com/Rayanebsh/Pathwayfr/internal/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/model"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/menu"
)

// MsgAdminOnly is printed when the account is not an admin
const MsgAdminOnly = "Accès réservé aux administrateurs."

var (
	userSearch string
	assumeYes  bool
	exportOut  string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administration: users, experiences and statistics",
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the platform statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runAdminStats(ctx, cmd.OutOrStdout()))
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List the users",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runAdminUsers(ctx, cmd.OutOrStdout(), userSearch))
	},
}

var adminExperiencesCmd = &cobra.Command{
	Use:   "experiences",
	Short: "List the shared experiences and their moderation state",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runAdminExperiences(ctx, cmd.OutOrStdout()))
	},
}

var adminExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the users to CSV",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runAdminExport(ctx, cmd.OutOrStdout(), exportOut))
	},
}

// adminAction is a moderation command taking an id
type adminAction struct {
	use, short string
	done       string
	run        func(a *core.Admin, ctx context.Context, id int) error
}

var adminActions = []adminAction{
	{"ban <id>", "Ban a user", "Utilisateur banni", (*core.Admin).Ban},
	{"unban <id>", "Unban a user", "Utilisateur débanni", (*core.Admin).Unban},
	{"approve <id>", "Approve an experience", "Expérience approuvée", (*core.Admin).Approve},
	{"reject <id>", "Reject an experience", "Expérience rejetée", (*core.Admin).Reject},
}

// adminDeletion is a deletion command; it asks before deleting
type adminDeletion struct {
	use, short string
	done       string
	run        func(a *core.Admin, ctx context.Context, id int) (bool, error)
}

var adminDeletions = []adminDeletion{
	{"delete-user <id>", "Delete a user", "Utilisateur supprimé", (*core.Admin).DeleteUser},
	{"delete-experience <id>", "Delete an experience", "Expérience supprimée", (*core.Admin).DeleteExperience},
}

func init() {
	adminUsersCmd.Flags().StringVarP(&userSearch, "search", "s", "", "Filter by first name, last name or email")
	adminExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file, - for stdout (default: pathwayfr-users-<date>.csv)")
	adminCmd.AddCommand(adminStatsCmd, adminUsersCmd, adminExperiencesCmd, adminExportCmd)

	for _, act := range adminActions {
		adminCmd.AddCommand(&cobra.Command{
			Use:   act.use,
			Short: act.short,
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				ctx, cancel := signalContext()
				defer cancel()
				exit(runAdminAction(ctx, cmd.OutOrStdout(), args[0], act))
			},
		})
	}
	for _, del := range adminDeletions {
		c := &cobra.Command{
			Use:   del.use,
			Short: del.short,
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				ctx, cancel := signalContext()
				defer cancel()
				confirm := menu.Prompt{AssumeYes: assumeYes, In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
				exit(runAdminDelete(ctx, cmd.OutOrStdout(), args[0], del, confirm))
			},
		}
		c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking")
		adminCmd.AddCommand(c)
	}

	rootCmd.AddCommand(adminCmd)
}

// adminEnv checks the admin role and returns the dashboard. A non-zero code
// means the command must stop.
func adminEnv(ctx context.Context, w io.Writer, confirm core.Confirmer) (*env, *core.Admin, int) {
	e, err := newEnv()
	if err != nil {
		return nil, nil, report(w, err)
	}
	ok, err := e.client.VerifyAdmin(ctx)
	if err != nil {
		e.Close()
		return nil, nil, report(w, err)
	}
	if !ok {
		e.Close()
		if IsJSONOutput() {
			writeJSON(w, errorOutput{Error: MsgAdminOnly})
		} else {
			fmt.Fprintln(w, MsgAdminOnly)
		}
		return nil, nil, exitUser
	}
	return e, core.NewAdmin(e.client, e.sess, confirm), exitOK
}

// loadSection loads the dashboard and returns the error of the section the
// command prints; the other sections may fail without consequence
func loadSection(ctx context.Context, a *core.Admin, section func() error) error {
	_ = a.Load(ctx)
	if err := a.Err(); err != nil {
		return err
	}
	return section()
}

func runAdminStats(ctx context.Context, w io.Writer) int {
	e, admin, code := adminEnv(ctx, w, nil)
	if code != exitOK {
		return code
	}
	defer e.Close()

	if err := loadSection(ctx, admin, func() error { return admin.Stats().Err }); err != nil {
		return report(w, err)
	}
	stats := admin.Stats().Data
	if IsJSONOutput() {
		return writeJSON(w, stats)
	}
	var rows [][2]string
	for _, r := range core.StatRows(stats) {
		rows = append(rows, [2]string{r.Label, r.Value})
	}
	table(w, rows)
	if admin.Experiences().Loaded {
		c := admin.Counts()
		fmt.Fprintf(w, "\nModération : %d en attente, %d approuvées, %d rejetées\n", c.Pending, c.Approved, c.Rejected)
	}
	return exitOK
}

func runAdminUsers(ctx context.Context, w io.Writer, search string) int {
	e, admin, code := adminEnv(ctx, w, nil)
	if code != exitOK {
		return code
	}
	defer e.Close()

	if err := loadSection(ctx, admin, func() error { return admin.Users().Err }); err != nil {
		return report(w, err)
	}
	admin.SetSearch(search)
	users := admin.FilteredUsers()
	if IsJSONOutput() {
		return writeJSON(w, users)
	}
	if len(users) == 0 {
		fmt.Fprintln(w, admin.EmptyUsersMessage())
		return exitOK
	}
	now := time.Now()
	for _, u := range users {
		flags := ""
		if u.IsBanned {
			flags += " [Banni]"
		}
		if u.Premium {
			flags += " [Premium]"
		}
		fmt.Fprintf(w, "%5d  %s <%s>%s · inscrit %s\n", u.ID, u.FullName(), u.Email, flags, core.Since(u.CreatedAt, now))
	}
	return exitOK
}

func runAdminExperiences(ctx context.Context, w io.Writer) int {
	e, admin, code := adminEnv(ctx, w, nil)
	if code != exitOK {
		return code
	}
	defer e.Close()

	if err := loadSection(ctx, admin, func() error { return admin.Experiences().Err }); err != nil {
		return report(w, err)
	}
	exps := admin.Experiences().Data
	if IsJSONOutput() {
		return writeJSON(w, exps)
	}
	if len(exps) == 0 {
		fmt.Fprintln(w, "Aucune expérience")
		return exitOK
	}
	for _, x := range exps {
		author := (model.AdminUser{FirstName: x.FirstName, LastName: x.LastName}).FullName()
		fmt.Fprintf(w, "#%d  %s  [%s]  %s\n", x.ID, author, core.StatusLabel(x.IsValidated), x.Comment)
	}
	c := admin.Counts()
	fmt.Fprintf(w, "\n%d en attente, %d approuvées, %d rejetées\n", c.Pending, c.Approved, c.Rejected)
	return exitOK
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, arg)
	}
	return id, nil
}

func runAdminAction(ctx context.Context, w io.Writer, arg string, act adminAction) int {
	id, err := parseID(arg)
	if err != nil {
		return report(w, err)
	}
	e, admin, code := adminEnv(ctx, w, nil)
	if code != exitOK {
		return code
	}
	defer e.Close()

	if err := act.run(admin, ctx, id); err != nil {
		return report(w, err)
	}
	return message(w, act.done)
}

func runAdminDelete(ctx context.Context, w io.Writer, arg string, del adminDeletion, confirm core.Confirmer) int {
	id, err := parseID(arg)
	if err != nil {
		return report(w, err)
	}
	e, admin, code := adminEnv(ctx, w, confirm)
	if code != exitOK {
		return code
	}
	defer e.Close()

	deleted, err := del.run(admin, ctx, id)
	if err != nil {
		return report(w, err)
	}
	if !deleted {
		return message(w, "Suppression annulée")
	}
	return message(w, del.done)
}

// runAdminExport writes every user, ignoring any search, to path
func runAdminExport(ctx context.Context, w io.Writer, path string) int {
	e, admin, code := adminEnv(ctx, w, nil)
	if code != exitOK {
		return code
	}
	defer e.Close()

	if err := loadSection(ctx, admin, func() error { return admin.Users().Err }); err != nil {
		return report(w, err)
	}
	if len(admin.Users().Data) == 0 {
		return message(w, core.MsgNothingToExport)
	}

	if path == "-" {
		if err := admin.ExportCSV(w); err != nil {
			return report(w, err)
		}
		return exitOK
	}
	if path == "" {
		path = core.ExportFilename(time.Now())
	}
	f, err := os.Create(path)
	if err != nil {
		return report(w, fmt.Errorf("%w: %w", errUsage, err))
	}
	err = admin.ExportCSV(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if errors.Is(err, core.ErrNothingToExport) {
		return message(w, core.MsgNothingToExport)
	}
	if err != nil {
		return report(w, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return message(w, "Export enregistré : "+path)
}
