// ABOUTME: Output helpers shared by the commands
// ABOUTME: Maps errors to French messages and exit codes, writes JSON

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/Rayanebsh/Pathwayfr/internal/auth"
	"github.com/Rayanebsh/Pathwayfr/internal/client"
	"github.com/Rayanebsh/Pathwayfr/internal/form"
)

// MsgInvalidForm heads the list of field errors
const MsgInvalidForm = "Formulaire invalide"

// errorOutput is the --json shape of a failure
type errorOutput struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// exitCode maps an error to the process exit code: user errors are fixed
// locally, everything else comes from the backend or the network
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case fieldErrors(err) != nil,
		errors.Is(err, errUsage),
		errors.Is(err, client.ErrNoToken),
		errors.Is(err, client.ErrSessionExpired):
		return exitUser
	default:
		return exitBackend
	}
}

func fieldErrors(err error) form.FieldErrors {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	var fe form.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// userMessage is the French sentence shown for err
func userMessage(err error) string {
	switch {
	case fieldErrors(err) != nil:
		return MsgInvalidForm
	case errors.Is(err, errUsage):
		return err.Error()
	default:
		return client.UserMessage(err)
	}
}

// report prints err and returns its exit code
func report(w io.Writer, err error) int {
	fields := fieldErrors(err)
	if IsJSONOutput() {
		writeJSON(w, errorOutput{Error: userMessage(err), Fields: fields})
		return exitCode(err)
	}

	fmt.Fprintf(w, "Erreur : %s\n", userMessage(err))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(w, "  - %s : %s\n", k, fields[k])
	}
	if errors.Is(err, client.ErrSessionExpired) || errors.Is(err, client.ErrNoToken) {
		fmt.Fprintln(w, "Lancez « pathwayfr login » pour vous connecter.")
	}
	return exitCode(err)
}

// writeJSON prints v indented
func writeJSON(w io.Writer, v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "Erreur : %v\n", err)
		return exitBackend
	}
	fmt.Fprintln(w, string(data))
	return exitOK
}

// table aligns label/value pairs in two columns
func table(w io.Writer, rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, len([]rune(r[0])))
	}
	for _, r := range rows {
		pad := strings.Repeat(" ", width-len([]rune(r[0])))
		fmt.Fprintf(w, "%s%s  %s\n", r[0], pad, r[1])
	}
}
