// ABOUTME: Read-only commands: explorer, catalog, simulate and messages
// ABOUTME: Print the same views as the TUI pages, as text or JSON

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rayanebsh/Pathwayfr/internal/client"
	core "github.com/Rayanebsh/Pathwayfr/internal/dashboard"
	"github.com/Rayanebsh/Pathwayfr/internal/session"
)

var (
	searchQuery  string
	conversation int
)

var explorerCmd = &cobra.Command{
	Use:   "explorer",
	Short: "List the published admission experiences",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runExplorer(ctx, cmd.OutOrStdout(), searchQuery))
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List universities and specialities",
}

var catalogUniversitiesCmd = &cobra.Command{
	Use:   "universities",
	Short: "List the universities",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runCatalog(ctx, cmd.OutOrStdout(), catalogUniversities))
	},
}

var catalogSpecialitiesCmd = &cobra.Command{
	Use:   "specialities",
	Short: "List the specialities",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runCatalog(ctx, cmd.OutOrStdout(), catalogSpecialities))
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Show the universities recommended for your profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runSimulate(ctx, cmd.OutOrStdout()))
	},
}

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Show the community conversations (Premium)",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runMessages(ctx, cmd.OutOrStdout(), searchQuery, conversation))
	},
}

func init() {
	explorerCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "Keep experiences whose title, universities or comment match")
	messagesCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "Filter conversations by title or participant")
	messagesCmd.Flags().IntVarP(&conversation, "conversation", "c", 0, "Print the thread of this conversation")

	catalogCmd.AddCommand(catalogUniversitiesCmd, catalogSpecialitiesCmd)
	rootCmd.AddCommand(explorerCmd, catalogCmd, simulateCmd, messagesCmd)
}

func runExplorer(ctx context.Context, w io.Writer, search string) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	exps, err := e.client.Explorer(ctx)
	if err != nil {
		return report(w, err)
	}
	cards := core.FilterCards(core.BuildCards(exps), search)
	if IsJSONOutput() {
		return writeJSON(w, cards)
	}
	if len(cards) == 0 {
		if search != "" {
			fmt.Fprintf(w, "Aucune expérience ne correspond à « %s ».\n", search)
		} else {
			fmt.Fprintln(w, core.EmptyExplorerMessage)
		}
		return exitOK
	}
	for i, c := range cards {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printCard(w, c)
	}
	return exitOK
}

func printCard(w io.Writer, c core.Card) {
	fmt.Fprintf(w, "%s [%s]\n", c.Title, c.Status)
	meta := []string{"Candidature " + c.ApplicationYear}
	if c.CandidatureYear != "" {
		meta = append(meta, "Année visée : "+c.CandidatureYear)
	}
	if c.BacAverage != "" {
		meta = append(meta, "Bac : "+c.BacAverage)
	}
	if c.TCF != "" {
		meta = append(meta, "TCF : "+c.TCF)
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(meta, " · "))
	if len(c.Averages) > 0 {
		var parts []string
		for _, r := range c.Averages {
			parts = append(parts, r.Label+" "+r.Value)
		}
		fmt.Fprintf(w, "  Moyennes : %s\n", strings.Join(parts, ", "))
	}
	if len(c.Universities) > 0 {
		fmt.Fprintf(w, "  Universités : %s\n", strings.Join(c.Universities, ", "))
	}
	if len(c.Accepted) > 0 {
		fmt.Fprintf(w, "  Accepté : %s\n", strings.Join(c.Accepted, ", "))
	}
	if len(c.Rejected) > 0 {
		fmt.Fprintf(w, "  Refusé : %s\n", strings.Join(c.Rejected, ", "))
	}
	if c.Comment != "" {
		fmt.Fprintf(w, "  « %s »\n", c.Comment)
	}
}

type catalogKind int

const (
	catalogUniversities catalogKind = iota
	catalogSpecialities
)

// catalogEntry is one line of the catalog listings
type catalogEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

func runCatalog(ctx context.Context, w io.Writer, kind catalogKind) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	var entries []catalogEntry
	switch kind {
	case catalogUniversities:
		unis, err := e.client.Universities(ctx)
		if err != nil {
			return report(w, err)
		}
		for _, u := range unis {
			entries = append(entries, catalogEntry{ID: u.ID, Name: u.Name, City: u.City})
		}
	case catalogSpecialities:
		specs, err := e.client.Specialities(ctx)
		if err != nil {
			return report(w, err)
		}
		for _, s := range specs {
			entries = append(entries, catalogEntry{ID: s.ID, Name: s.Name})
		}
	}

	if IsJSONOutput() {
		return writeJSON(w, entries)
	}
	for _, c := range entries {
		line := fmt.Sprintf("%4d  %s", c.ID, c.Name)
		if c.City != "" {
			line += " (" + c.City + ")"
		}
		fmt.Fprintln(w, line)
	}
	return exitOK
}

// freshState refreshes the cached user, and the profile when none is
// cached, before deciding what the session may see. Failed refreshes keep
// the cached values.
func freshState(ctx context.Context, e *env) (session.State, error) {
	st := e.sess.State()
	if !st.LoggedIn {
		return st, nil
	}
	if _, err := e.client.Me(ctx); err != nil {
		if client.StatusCode(err) == 0 {
			return st, err
		}
	}
	if !e.sess.State().HasProfile() {
		if _, err := e.client.ProfileStatus(ctx); err != nil {
			return e.sess.State(), err
		}
	}
	return e.sess.State(), nil
}

func runSimulate(ctx context.Context, w io.Writer) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	st, err := freshState(ctx, e)
	if err != nil {
		return report(w, err)
	}
	if access := core.SimulatorAccess(st); access != core.AccessGranted {
		return denied(w, access)
	}

	recs := core.Recommendations(st)
	if IsJSONOutput() {
		return writeJSON(w, recs)
	}
	for _, r := range recs {
		fmt.Fprintf(w, "#%d %s (%s · %s)\n", r.Rank, r.Name, r.Specialty, r.Location)
		fmt.Fprintf(w, "   Compatibilité %d %%, réussite %d %%\n", r.Compatibility, r.SuccessRate)
		fmt.Fprintf(w, "   %s\n", strings.Join(r.Reasons, " • "))
	}
	return exitOK
}

func runMessages(ctx context.Context, w io.Writer, search string, id int) int {
	e, err := newEnv()
	if err != nil {
		return report(w, err)
	}
	defer e.Close()

	st, err := freshState(ctx, e)
	if err != nil {
		return report(w, err)
	}
	if access := core.MessagingAccess(st); access != core.AccessGranted {
		return denied(w, access)
	}

	m := core.NewMessaging()
	m.SetSearch(search)
	if id != 0 {
		if !m.Select(id) {
			return report(w, fmt.Errorf("%w: unknown conversation %d", errUsage, id))
		}
		if IsJSONOutput() {
			return writeJSON(w, m.Messages())
		}
		fmt.Fprintln(w, m.Selected().Title)
		for _, msg := range m.Messages() {
			fmt.Fprintf(w, "[%s] %s : %s\n", msg.Timestamp, msg.Author, msg.Content)
		}
		return exitOK
	}

	convs := m.Conversations()
	if IsJSONOutput() {
		return writeJSON(w, convs)
	}
	if len(convs) == 0 {
		fmt.Fprintln(w, "Aucune conversation")
		return exitOK
	}
	for _, c := range convs {
		unread := ""
		if c.Unread > 0 {
			unread = fmt.Sprintf(" (%d non lus)", c.Unread)
		}
		fmt.Fprintf(w, "%d  %s%s\n   %s · %s\n", c.ID, c.Title, unread, c.LastMessage, c.LastActivity)
	}
	return exitOK
}

// denied prints why a page is not available
func denied(w io.Writer, access core.Access) int {
	if IsJSONOutput() {
		writeJSON(w, errorOutput{Error: access.Message()})
		return exitUser
	}
	fmt.Fprintln(w, access.Message())
	switch access {
	case core.AccessLoginRequired:
		fmt.Fprintln(w, "Lancez « pathwayfr login » pour vous connecter.")
	case core.AccessProfileRequired:
		fmt.Fprintln(w, "Lancez « pathwayfr profile setup » pour compléter votre profil.")
	}
	return exitUser
}
