package parser

import (
	"fmt"
	"strings"

	"github.com/marinara16/student-email-generator/internal/models"
)

// RenderSummary builds the per-student progress report: a totals header, one
// line per assigned assignment, one line per upcoming assignment, and an
// available-points footer, blank-line separated. Output is pure and stable:
// the same gradebook and configuration always render byte-identical text.
func RenderSummary(name string, specs []models.AssignmentSpec, row models.StudentRow) models.StudentSummary {
	earned, available := ComputeTotals(row, specs)

	progress := make([]string, 0, len(specs))
	upcoming := make([]string, 0)
	for i, spec := range specs {
		if spec.Omitted {
			continue
		}
		var raw string
		if i < len(row.Cells) {
			raw = row.Cells[i]
		}
		line := summaryLine(spec, Classify(raw))
		if spec.Assigned {
			progress = append(progress, line)
		} else {
			upcoming = append(upcoming, line)
		}
	}

	parts := []string{
		fmt.Sprintf("%s has earned %s out of %s points so far.", name, FormatPoints(earned), FormatPoints(available)),
	}
	if len(progress) > 0 {
		parts = append(parts, "Progress so far:\n"+strings.Join(progress, "\n"))
	}
	if len(upcoming) > 0 {
		parts = append(parts, "Upcoming assignments:\n"+strings.Join(upcoming, "\n"))
	}
	parts = append(parts, fmt.Sprintf("Total points available: %s", FormatPoints(available)))

	return models.StudentSummary{
		StudentName:    name,
		TotalEarned:    earned,
		TotalAvailable: available,
		ProgressLines:  progress,
		UpcomingLines:  upcoming,
		Report:         strings.Join(parts, "\n\n"),
	}
}

func summaryLine(spec models.AssignmentSpec, g models.Grade) string {
	max := FormatPoints(spec.MaxPoints)
	switch g.Status {
	case models.StatusGraded:
		return fmt.Sprintf("- %s: %s/%s", spec.Name, FormatPoints(g.Points), max)
	case models.StatusDoneLate:
		if g.Scored {
			return fmt.Sprintf("- %s: %s/%s (submitted late)", spec.Name, FormatPoints(g.Points), max)
		}
		return fmt.Sprintf("- %s: submitted late, awaiting grade", spec.Name)
	case models.StatusMissing:
		return fmt.Sprintf("- %s: missing (0/%s)", spec.Name, max)
	case models.StatusSubmitted:
		return fmt.Sprintf("- %s: turned in, awaiting grade", spec.Name)
	case models.StatusExcused:
		return fmt.Sprintf("- %s: excused", spec.Name)
	default:
		return fmt.Sprintf("- %s: not yet submitted (worth %s points)", spec.Name, max)
	}
}
