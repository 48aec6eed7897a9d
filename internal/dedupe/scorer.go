package dedupe

import (
	"strings"

	"golang.org/x/text/cases"

	"almoner/internal/donor"
)

// Factor strings surfaced next to a scored candidate. The wording is part
// of the UI contract; do not reword without updating every consumer.
const (
	FactorExactName   = "Exact name match"
	FactorPartialName = "Partial name match"
	FactorSameEmail   = "Same email"
	FactorSamePhone   = "Same phone"
)

// Point values for each factor. The sum is unweighted and deliberately
// unclamped: compounding checks can exceed 100 and that is accepted.
const (
	pointsExactName   = 40
	pointsPartialName = 25
	pointsSameEmail   = 35
	pointsSamePhone   = 25
)

// Match is the scored similarity between a reference donor and one
// duplicate candidate.
type Match struct {
	Score   int
	Factors []string
}

// Confidence buckets a score for presentation. Thresholds are styling
// hints only; they never decide which candidates are shown.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rate classifies a score into a confidence bucket.
func Rate(score int) Confidence {
	switch {
	case score >= 70:
		return ConfidenceHigh
	case score >= 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

var fold = cases.Fold()

// Score computes the additive similarity between two donor records.
// Deterministic and pure: name, then email, then phone, each contributing
// only when both sides carry the field. Exact and partial name matches are
// mutually exclusive, with exact taking precedence.
func Score(reference, candidate donor.Donor) Match {
	match := Match{Factors: []string{}}

	name1 := fold.String(strings.TrimSpace(reference.DisplayName()))
	name2 := fold.String(strings.TrimSpace(candidate.DisplayName()))
	if name1 != "" && name2 != "" {
		switch {
		case name1 == name2:
			match.Score += pointsExactName
			match.Factors = append(match.Factors, FactorExactName)
		case strings.Contains(name1, name2) || strings.Contains(name2, name1):
			match.Score += pointsPartialName
			match.Factors = append(match.Factors, FactorPartialName)
		}
	}

	email1 := fold.String(strings.TrimSpace(reference.Email))
	email2 := fold.String(strings.TrimSpace(candidate.Email))
	if email1 != "" && email2 != "" && email1 == email2 {
		match.Score += pointsSameEmail
		match.Factors = append(match.Factors, FactorSameEmail)
	}

	phone1 := digitsOnly(reference.Phone)
	phone2 := digitsOnly(candidate.Phone)
	if strings.TrimSpace(reference.Phone) != "" && strings.TrimSpace(candidate.Phone) != "" && phone1 == phone2 {
		match.Score += pointsSamePhone
		match.Factors = append(match.Factors, FactorSamePhone)
	}

	return match
}

func digitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}
