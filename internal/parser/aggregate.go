package parser

import (
	"math"
	"strconv"

	"github.com/marinara16/student-email-generator/internal/models"
)

// ComputeTotals sums one student's earned points and the points available
// across the current assignment configuration. Omitted assignments count
// toward neither total; unassigned assignments count toward available only.
// Points accrue only from graded and scored-late cells; absent cells read as
// not assigned and contribute nothing.
func ComputeTotals(row models.StudentRow, specs []models.AssignmentSpec) (earned, available float64) {
	for i, spec := range specs {
		if spec.Omitted {
			continue
		}
		available += spec.MaxPoints
		if !spec.Assigned {
			continue
		}

		var raw string
		if i < len(row.Cells) {
			raw = row.Cells[i]
		}
		g := Classify(raw)
		if (g.Status == models.StatusGraded || g.Status == models.StatusDoneLate) && g.Scored {
			earned += g.Points
		}
	}
	return earned, available
}

// FormatPoints renders a point value without a trailing decimal part when it
// is whole: 8 -> "8", 8.5 -> "8.5".
func FormatPoints(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RefineAssigned flips assignments to upcoming when no student has any
// submission-related token for them. Columns holding only blanks and
// "Pending" markers have not been handed out yet.
func RefineAssigned(book *models.Gradebook) {
	for i := range book.Assignments {
		seen := false
		for _, row := range book.Rows {
			switch Classify(book.Cell(row, i)).Status {
			case models.StatusGraded, models.StatusDoneLate, models.StatusMissing,
				models.StatusSubmitted, models.StatusExcused:
				seen = true
			}
			if seen {
				break
			}
		}
		book.Assignments[i].Assigned = seen
	}
}
