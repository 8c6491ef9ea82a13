// ABOUTME: Enumerated school and university levels
// ABOUTME: Drives per-level averages and the candidature year table

package model

import "fmt"

// Level is a school year: the three lycée years then five university years
type Level int

const (
	Level1AS Level = iota
	Level2AS
	Level3AS
	LevelL1
	LevelL2
	LevelL3
	LevelM1
	LevelM2
)

// Levels lists every level in display order
var Levels = []Level{Level1AS, Level2AS, Level3AS, LevelL1, LevelL2, LevelL3, LevelM1, LevelM2}

// LyceeLevels are the three high-school years
var LyceeLevels = []Level{Level1AS, Level2AS, Level3AS}

// UniversityLevels are L1 through M2
var UniversityLevels = []Level{LevelL1, LevelL2, LevelL3, LevelM1, LevelM2}

var levelNames = [...]string{"1AS", "2AS", "3AS", "L1", "L2", "L3", "M1", "M2"}

// String returns the backend key for the level
func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// IsLycee reports whether the level is a high-school year
func (l Level) IsLycee() bool {
	return l >= Level1AS && l <= Level3AS
}

// RepeatKey is the averages-map key holding the repeated year's average
func (l Level) RepeatKey() string {
	return l.String() + "_redouble"
}

// ParseLevel maps a backend key back to a Level
func ParseLevel(s string) (Level, bool) {
	for i, name := range levelNames {
		if name == s {
			return Level(i), true
		}
	}
	return 0, false
}

// StudyYear is the year a student was in when applying
type StudyYear string

const (
	StudyTerminale StudyYear = "terminale"
	StudyL1        StudyYear = "L1"
	StudyL2        StudyYear = "L2"
	StudyL3        StudyYear = "L3"
	StudyM1        StudyYear = "M1"
	StudyM2        StudyYear = "M2"
)

// StudyYears lists the study years offered by the share form
var StudyYears = []StudyYear{StudyTerminale, StudyL1, StudyL2, StudyL3, StudyM1, StudyM2}

// Label returns the French label
func (s StudyYear) Label() string {
	if s == StudyTerminale {
		return "Terminale"
	}
	return string(s)
}

// Level returns the university level matching the study year. Terminale has
// none and reports false.
func (s StudyYear) Level() (Level, bool) {
	if s == StudyTerminale {
		return 0, false
	}
	return ParseLevel(string(s))
}

// CandidatureYear is the university year applied for, 1 (L1) through 5 (M2)
type CandidatureYear int

// Level returns the university level applied for
func (c CandidatureYear) Level() Level {
	return LevelL1 + Level(c-1)
}

// Valid reports whether the year is within L1..M2
func (c CandidatureYear) Valid() bool {
	return c >= 1 && c <= 5
}

// Label returns the level name of the candidature year
func (c CandidatureYear) Label() string {
	if !c.Valid() {
		return ""
	}
	return c.Level().String()
}

var candidatureTable = map[StudyYear][]CandidatureYear{
	StudyTerminale: {1},
	StudyL1:        {1, 2},
	StudyL2:        {1, 2, 3},
	StudyL3:        {2, 3, 4},
	StudyM1:        {3, 4, 5},
	StudyM2:        {4, 5},
}

// CandidatureYears returns the viable target years for a study year
func CandidatureYears(s StudyYear) []CandidatureYear {
	years := candidatureTable[s]
	out := make([]CandidatureYear, len(years))
	copy(out, years)
	return out
}

// ProfileStudyYears are the "current year" choices of the profile wizard
var ProfileStudyYears = []string{"L1", "L2", "L3", "M1", "M2", "doctorat", "autre"}

// BacType is a baccalauréat stream. The profile endpoint spells some
// streams differently from the share endpoint.
type BacType struct {
	Value        string
	Label        string
	ProfileValue string
}

// BacTypes lists the streams offered by both forms
var BacTypes = []BacType{
	{"sciences_experimentales", "Sciences expérimentales", "sciences_experimentales"},
	{"mathematiques", "Mathématiques", "mathematiques"},
	{"techniques_mathematiques", "Techniques mathématiques", "technique_mathematique"},
	{"gestion_economie", "Gestion et économie", "gestion_et_economie"},
	{"lettres_philosophie", "Lettres et philosophie", "lettres_et_philosophie"},
}

// BacUnknown is sent to the profile endpoint when no bac was taken
const BacUnknown = "unknown"

// ValidBacType reports whether v is a known stream
func ValidBacType(v string) bool {
	_, ok := LookupBacType(v)
	return ok
}

// LookupBacType finds a stream by either spelling
func LookupBacType(v string) (BacType, bool) {
	for _, b := range BacTypes {
		if b.Value == v || b.ProfileValue == v {
			return b, true
		}
	}
	return BacType{}, false
}
