// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	mu           sync.Mutex
	useNerdFonts bool
	decided      bool
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	if env := os.Getenv("PATHWAYFR_NERD_FONTS"); env != "" {
		return env == "1" || strings.EqualFold(env, "true")
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}
	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	return os.Getenv("NERD_FONTS") == "1"
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	mu.Lock()
	defer mu.Unlock()
	if !decided {
		useNerdFonts = detectNerdFonts()
		decided = true
	}
	return useNerdFonts
}

// SetNerdFonts forces the choice, as the nerd_fonts config key does.
// Detection is skipped afterwards.
func SetNerdFonts(v bool) {
	mu.Lock()
	defer mu.Unlock()
	useNerdFonts = v
	decided = true
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	// Pages
	Explorer  = Icon{"󰍉", "◎"} // nf-md-magnify
	Simulator = Icon{"󰧑", "◈"} // nf-md-brain
	Share     = Icon{"󰐕", "+"} // nf-md-plus
	Messages  = Icon{"󰍡", "✉"} // nf-md-message
	Admin     = Icon{"󰒃", "⛊"} // nf-md-shield_check
	Profile   = Icon{"󰀄", "☺"} // nf-md-account
	Login     = Icon{"󰍂", "→"} // nf-md-login
	Logout    = Icon{"󰍃", "←"} // nf-md-logout

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info
	Lock     = Icon{"󰌾", "⚿"} // nf-md-lock
	Crown    = Icon{"󰆥", "♛"} // nf-md-crown

	// Data
	University = Icon{"󰑴", "▣"} // nf-md-school
	Users      = Icon{"󰡉", "☷"} // nf-md-account_group
	Chart      = Icon{"󰄭", "▁"} // nf-md-chart_line
	Star       = Icon{"󰓎", "★"} // nf-md-star

	// Actions
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Search  = Icon{"󰍉", "⌕"} // nf-md-magnify
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app

	// Application
	App = Icon{"󰑴", "◈"} // nf-md-school
)
