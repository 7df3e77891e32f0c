// Package parser converts raw gradebook exports into the tabular gradebook
// model: a token classifier, a header extractor, a block scanner for the
// classroom copy-paste format, and a CSV importer.
package parser

import (
	"strconv"
	"strings"

	"github.com/marinara16/student-email-generator/internal/models"
)

// submittedTokens are markers meaning "turned in, awaiting a grade".
// "pending" is deliberately not in this set: it stays a distinct
// pre-submission status.
var submittedTokens = map[string]bool{
	"submitted":      true,
	"not graded yet": true,
	"ungraded":       true,
	"turned in":      true,
}

// Classify maps one raw grade cell to its semantic status and optional
// score. It never fails: anything unrecognizable degrades to StatusUnknown
// and unparseable numeric suffixes degrade to "no points".
func Classify(raw string) models.Grade {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return models.Grade{Status: models.StatusNotAssigned}
	}

	lower := strings.ToLower(s)

	if strings.HasPrefix(lower, "late") {
		rest := strings.TrimSpace(s[len("late"):])
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
		if pts, err := strconv.ParseFloat(rest, 64); err == nil {
			return models.Grade{Status: models.StatusDoneLate, Points: pts, Scored: true}
		}
		return models.Grade{Status: models.StatusDoneLate}
	}

	switch lower {
	case "missing", "not submitted":
		return models.Grade{Status: models.StatusMissing, Points: 0, Scored: true}
	case "pending":
		return models.Grade{Status: models.StatusPending}
	case "excused":
		return models.Grade{Status: models.StatusExcused}
	}
	if submittedTokens[lower] {
		return models.Grade{Status: models.StatusSubmitted}
	}

	if pts, err := strconv.ParseFloat(s, 64); err == nil {
		return models.Grade{Status: models.StatusGraded, Points: pts, Scored: true}
	}

	return models.Grade{Status: models.StatusUnknown}
}
