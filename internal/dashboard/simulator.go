// ABOUTME: Simulator page: access gating and the ranked recommendation list
// ABOUTME: Recommendations are static demo data until the backend computes them

package dashboard

import (
	"cmp"
	"slices"

	"github.com/Rayanebsh/Pathwayfr/internal/session"
)

// Access is the gate in front of a restricted page
type Access int

const (
	// AccessGranted lets the page render
	AccessGranted Access = iota
	// AccessLoginRequired asks the visitor to log in
	AccessLoginRequired
	// AccessProfileRequired asks for the academic profile first
	AccessProfileRequired
	// AccessPremiumRequired asks for a premium subscription
	AccessPremiumRequired
)

// Message is the explanation shown instead of a gated page
func (a Access) Message() string {
	switch a {
	case AccessLoginRequired:
		return "Le simulateur intelligent est réservé aux utilisateurs connectés. Créez votre compte pour découvrir les universités qui vous correspondent le mieux."
	case AccessProfileRequired:
		return "Pour utiliser le simulateur, nous avons besoin de quelques informations sur votre parcours académique."
	case AccessPremiumRequired:
		return "La messagerie communautaire est réservée aux membres Premium."
	default:
		return ""
	}
}

// Recommendation is one university suggested by the simulator
type Recommendation struct {
	Rank          int
	Name          string
	Specialty     string
	Compatibility int
	SuccessRate   int
	Location      string
	Reasons       []string
}

var demoRecommendations = []Recommendation{
	{1, "Université Paris-Dauphine", "Économie & Gestion", 95, 78, "Paris",
		[]string{"Profil économique compatible", "Moyenne similaire acceptée", "Spécialité correspondante"}},
	{2, "Sciences Po Paris", "Sciences Politiques", 88, 65, "Paris",
		[]string{"Excellent dossier académique", "TCF score adapté", "Profil international"}},
	{3, "Sorbonne Université", "Lettres & Sciences Humaines", 85, 72, "Paris",
		[]string{"Spécialité littéraire", "Moyenne bac compatible", "Historique d'acceptation"}},
	{4, "Université Lyon 2", "Psychologie", 82, 69, "Lyon",
		[]string{"Profil sciences humaines", "Capacité d'accueil élevée", "Critères d'admission adaptés"}},
	{5, "Université de Bordeaux", "Droit", 79, 71, "Bordeaux",
		[]string{"Formation juridique reconnue", "Taux d'acceptation favorable", "Profil adapté"}},
	{6, "Université Grenoble Alpes", "Sciences & Technologies", 76, 74, "Grenoble",
		[]string{"Formation scientifique", "Innovation pédagogique", "Environnement recherche"}},
	{7, "Université de Strasbourg", "Relations Internationales", 73, 67, "Strasbourg",
		[]string{"Dimension européenne", "Programmes internationaux", "Profil linguistique"}},
}

// SimulatorAccess gates the simulator on a login and a stored profile
func SimulatorAccess(st session.State) Access {
	if !st.LoggedIn {
		return AccessLoginRequired
	}
	if !st.HasProfile() {
		return AccessProfileRequired
	}
	return AccessGranted
}

// Recommendations returns the suggestions best first, or nil when st does
// not grant access
func Recommendations(st session.State) []Recommendation {
	if SimulatorAccess(st) != AccessGranted {
		return nil
	}
	out := make([]Recommendation, len(demoRecommendations))
	for i, r := range demoRecommendations {
		r.Reasons = slices.Clone(r.Reasons)
		out[i] = r
	}
	slices.SortStableFunc(out, func(a, b Recommendation) int {
		return cmp.Compare(a.Rank, b.Rank)
	})
	return out
}
