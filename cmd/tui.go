// ABOUTME: TUI command launching the full-screen application
// ABOUTME: Logs go to debug.log while the terminal belongs to the TUI

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rayanebsh/Pathwayfr/internal/logger"
	"github.com/Rayanebsh/Pathwayfr/internal/navbar"
	"github.com/Rayanebsh/Pathwayfr/internal/tui"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/icons"
	"github.com/Rayanebsh/Pathwayfr/internal/tui/menu"
)

var (
	startPage string
	showMenu  bool
)

// startPages are the accepted --start values
var startPages = []navbar.Target{
	navbar.Explorer, navbar.Simulator, navbar.Share, navbar.Messaging,
	navbar.Admin, navbar.Profile, navbar.Login, navbar.Register,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the full-screen application",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()
		exit(runTUI(ctx, cmd.OutOrStdout(), startPage, showMenu))
	},
}

func init() {
	names := make([]string, len(startPages))
	for i, t := range startPages {
		names[i] = string(t)
	}
	tuiCmd.Flags().StringVar(&startPage, "start", string(navbar.Explorer), "First page: "+strings.Join(names, ", "))
	tuiCmd.Flags().BoolVar(&showMenu, "menu", false, "Choose the first page from a menu")
	rootCmd.AddCommand(tuiCmd)
}

// parseStart validates a --start value
func parseStart(s string) (navbar.Target, error) {
	t := navbar.Target(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(startPages, t) {
		return "", fmt.Errorf("%w: unknown page %q", errUsage, s)
	}
	return t, nil
}

func runTUI(ctx context.Context, w io.Writer, start string, pick bool) int {
	target, err := parseStart(start)
	if err != nil {
		return report(w, err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return report(w, err)
	}
	// The terminal belongs to the TUI from here on
	if _, err := logger.InitFile(cfg.LogPath(), cfg.LogLevel, cfg.LogFormat); err != nil {
		return report(w, fmt.Errorf("%w: %w", errUsage, err))
	}
	defer logger.Close()
	icons.SetNerdFonts(cfg.NerdFonts)

	e := newEnvFrom(cfg)
	defer e.Close()

	if pick {
		target, err = menu.New(e.sess.State()).Run()
		if err != nil {
			return report(w, fmt.Errorf("%w: %w", errUsage, err))
		}
	}

	slog.Info("Starting TUI", "start", target, "api", e.cfg.APIURL)
	if err := tui.Run(ctx, e.client, e.sess, target); err != nil {
		return report(w, err)
	}
	return exitOK
}
