// ABOUTME: Explorer cards built from public experiences
// ABOUTME: Averages follow level order; blank accepted and rejected names are skipped

package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rayanebsh/Pathwayfr/internal/model"
)

// EmptyExplorerMessage is shown when no experience is published
const EmptyExplorerMessage = "Aucune expérience partagée pour le moment."

// Card is one experience as the explorer displays it
type Card struct {
	ID              int
	Title           string
	Status          string
	ApplicationYear string
	CandidatureYear string
	BacAverage      string
	TCF             string
	Averages        []Row
	Trend           []float64
	Universities    []string
	Accepted        []string
	Rejected        []string
	Comment         string
}

// BuildCards converts the explorer payload for display
func BuildCards(exps []model.PublicExperience) []Card {
	cards := make([]Card, 0, len(exps))
	for _, e := range exps {
		cards = append(cards, BuildCard(e))
	}
	return cards
}

// BuildCard converts one experience
func BuildCard(e model.PublicExperience) Card {
	c := Card{
		ID:              e.ID,
		Title:           cardTitle(e),
		Status:          "Refusé",
		ApplicationYear: strconv.Itoa(e.ApplicationYear),
		CandidatureYear: candidatureLabel(e.CandidatureYear),
		Averages:        OrderedAverages(e.AverageEachYear),
		Trend:           AverageTrend(e.AverageEachYear),
		Accepted:        nonBlank(e.UniversityAcceptedIn),
		Rejected:        nonBlank(e.UniversityRejectedIn),
		Comment:         strings.TrimSpace(e.Comment),
	}
	if e.IsValidated.Approved() {
		c.Status = "Accepté"
	}
	if e.BacAverage != nil {
		c.BacAverage = Grade(*e.BacAverage)
	}
	if e.LevelTCF != nil {
		c.TCF = strconv.Itoa(*e.LevelTCF)
	}
	for _, u := range e.Universities {
		name := strings.TrimSpace(u.Name)
		if name == "" {
			continue
		}
		if u.City != "" {
			name += " (" + u.City + ")"
		}
		c.Universities = append(c.Universities, name)
	}
	return c
}

func cardTitle(e model.PublicExperience) string {
	speciality := "Spécialité inconnue"
	if e.Speciality != nil && strings.TrimSpace(e.Speciality.Name) != "" {
		speciality = e.Speciality.Name
	}
	if e.StudyYearAtApplication == "" {
		return speciality
	}
	return speciality + " · Année d'étude : " + model.StudyYear(e.StudyYearAtApplication).Label()
}

// candidatureLabel accepts the backend's number or string forms
func candidatureLabel(v any) string {
	switch y := v.(type) {
	case nil:
		return ""
	case float64:
		if cy := model.CandidatureYear(y); cy.Valid() && float64(cy) == y {
			return cy.Label()
		}
		return strconv.FormatFloat(y, 'f', -1, 64)
	case string:
		if n, err := strconv.Atoi(y); err == nil && model.CandidatureYear(n).Valid() {
			return model.CandidatureYear(n).Label()
		}
		return y
	default:
		return fmt.Sprint(y)
	}
}

// OrderedAverages lists the averages in level order, each repeated year
// right after its level. Unknown keys are dropped.
func OrderedAverages(m map[string]float64) []Row {
	var rows []Row
	for _, l := range model.Levels {
		if v, ok := m[l.String()]; ok {
			rows = append(rows, Row{l.String(), Grade(v)})
		}
		if v, ok := m[l.RepeatKey()]; ok {
			rows = append(rows, Row{l.String() + " (redoublement)", Grade(v)})
		}
	}
	return rows
}

// AverageTrend lists the first-attempt grades in level order
func AverageTrend(m map[string]float64) []float64 {
	var out []float64
	for _, l := range model.Levels {
		if v, ok := m[l.String()]; ok {
			out = append(out, v)
		}
	}
	return out
}

func nonBlank(names []string) []string {
	var out []string
	for _, n := range names {
		if s := strings.TrimSpace(n); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterCards keeps the cards whose title, universities or comment contain
// q, ignoring case
func FilterCards(cards []Card, q string) []Card {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return cards
	}
	var out []Card
	for _, c := range cards {
		haystack := strings.ToLower(c.Title + " " + strings.Join(c.Universities, " ") + " " + c.Comment)
		if strings.Contains(haystack, q) {
			out = append(out, c)
		}
	}
	return out
}
