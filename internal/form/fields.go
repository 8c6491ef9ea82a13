// ABOUTME: Numeric input parsing and range checks shared by the forms
// ABOUTME: Accepts French decimal commas; errors are the French field messages

package form

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Ranges accepted for grades and TCF scores
const (
	MinAverage = 0.0
	MaxAverage = 20.0
	MinTCF     = 0
	MaxTCF     = 699
)

// Messages shared by the forms
const (
	MsgAverageRange = "La moyenne doit être comprise entre 0 et 20"
	MsgTCFRange     = "Le score TCF doit être compris entre 0 et 699"
	MsgNotANumber   = "Veuillez saisir un nombre valide"
)

// ParseAverage parses a grade in [0,20]. "14,5" and "14.5" are both accepted.
func ParseAverage(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, errors.New(MsgNotANumber)
	}
	if v < MinAverage || v > MaxAverage {
		return 0, errors.New(MsgAverageRange)
	}
	return v, nil
}

// ParseTCF parses a TCF score in [0,699]
func ParseTCF(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New(MsgNotANumber)
	}
	if v < MinTCF || v > MaxTCF {
		return 0, errors.New(MsgTCFRange)
	}
	return v, nil
}

// checkAverage validates an optional grade field
func checkAverage(errs FieldErrors, field, raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	if _, err := ParseAverage(raw); err != nil {
		errs.Add(field, err.Error())
	}
}

// requireAverage validates a mandatory grade field
func requireAverage(errs FieldErrors, field, raw, missing string) {
	if strings.TrimSpace(raw) == "" {
		errs.Add(field, missing)
		return
	}
	checkAverage(errs, field, raw)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func optionalAverage(raw string) *float64 {
	if blank(raw) {
		return nil
	}
	v, err := ParseAverage(raw)
	if err != nil {
		return nil
	}
	return &v
}

func optionalTCF(raw string) *int {
	if blank(raw) {
		return nil
	}
	v, err := ParseTCF(raw)
	if err != nil {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}
