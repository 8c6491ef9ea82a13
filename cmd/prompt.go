// ABOUTME: Interactive prompts for values not given as flags
// ABOUTME: Uses huh forms on the terminal; passwords can come from stdin

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/Rayanebsh/Pathwayfr/internal/tui/wizard"
)

// field is one prompted value. Fields already set are not asked again.
type field struct {
	title    string
	value    *string
	password bool
}

// ask prompts for every empty field in a single form
func ask(fields ...field) error {
	var inputs []huh.Field
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		in := huh.NewInput().Title(f.title).Value(f.value)
		if f.password {
			in = in.EchoMode(huh.EchoModePassword)
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil
	}
	err := huh.NewForm(huh.NewGroup(inputs...)).WithTheme(wizard.Theme()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return fmt.Errorf("%w: cancelled", errUsage)
	}
	return err
}

// readSecret reads one line from r, for --password-stdin
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
