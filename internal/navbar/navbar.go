// ABOUTME: Navigation links derived from the authentication state
// ABOUTME: The TUI header and the start page menu both render from Links

package navbar

import "github.com/Rayanebsh/Pathwayfr/internal/session"

// Target identifies the screen a link opens
type Target string

const (
	Explorer  Target = "explorer"
	Simulator Target = "simulateur"
	Share     Target = "partager"
	Messaging Target = "messagerie"
	Admin     Target = "admin"
	Profile   Target = "profile"
	Logout    Target = "logout"
	Login     Target = "login"
	Register  Target = "register"
)

// Link is one entry of the navigation bar
type Link struct {
	Label  string
	Target Target
}

// Links returns the ordered links for st. Premium and admin links need a
// logged-in session on top of the matching account flag.
func Links(st session.State) []Link {
	links := []Link{{Label: "Explorer", Target: Explorer}}
	if st.LoggedIn {
		links = append(links, Link{Label: "Simulateur", Target: Simulator})
	}
	links = append(links, Link{Label: "Partager", Target: Share})
	if st.Premium() {
		links = append(links, Link{Label: "Messagerie", Target: Messaging})
	}
	if st.Admin() {
		links = append(links, Link{Label: "Admin", Target: Admin})
	}
	if st.LoggedIn {
		return append(links,
			Link{Label: "Profil", Target: Profile},
			Link{Label: "Déconnexion", Target: Logout},
		)
	}
	return append(links,
		Link{Label: "Connexion", Target: Login},
		Link{Label: "Inscription", Target: Register},
	)
}

// Greeting is the short identity shown next to the links
func Greeting(st session.State) string {
	if !st.LoggedIn || st.User == nil {
		return "Invité"
	}
	if st.User.FirstName != "" {
		return "Bonjour, " + st.User.FirstName
	}
	return st.User.Email
}

// Has reports whether links contains target
func Has(links []Link, target Target) bool {
	for _, l := range links {
		if l.Target == target {
			return true
		}
	}
	return false
}
