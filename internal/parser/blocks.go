package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/marinara16/student-email-generator/internal/models"
)

var (
	// "/20No grade": turned in, not graded; the divisor is the max points.
	noGradeRegex = regexp.MustCompile(`^/\d+No grade`)
	// "8 out of 10", "8 9 out of 10": the first number is the score.
	outOfRegex = regexp.MustCompile(`^(\d+)\s+(?:\d+\s+)?out of \d+`)
)

// ParseClassroomText parses a raw classroom export: blocks separated by a
// blank line, the first being the assignment header, each later block one
// student. Returns the gradebook plus per-row warnings for cell/column count
// mismatches. Only structural failures (no header, no assignments) are
// errors; malformed lines degrade, they never abort the import.
func ParseClassroomText(raw string) (*models.Gradebook, []models.ParseWarning, error) {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	blocks := strings.Split(normalized, "\n\n")

	if len(blocks) == 0 || strings.TrimSpace(blocks[0]) == "" {
		return nil, nil, fmt.Errorf("empty header block: expected the course header before the first blank line")
	}

	specs := ExtractAssignments(blocks[0])
	if len(specs) == 0 {
		return nil, nil, fmt.Errorf("no assignments found in header block")
	}

	book := models.NewGradebook(specs)
	warnings := make([]models.ParseWarning, 0)

	for bi, block := range blocks[1:] {
		lines := blockLines(block)
		if len(lines) == 0 {
			continue
		}

		// Line 0 is the student name, line 1 the overall-grade summary,
		// which is never interpreted.
		name := lines[0]
		cells := scanGradeTokens(lines)

		if len(cells) != len(specs) {
			warnings = append(warnings, models.ParseWarning{
				Student: name,
				Block:   bi + 1,
				Reason: fmt.Sprintf("recognized %d grade tokens for %d assignments; columns may be misaligned",
					len(cells), len(specs)),
			})
		}
		if len(cells) > len(specs) {
			cells = cells[:len(specs)]
		}
		for len(cells) < len(specs) {
			cells = append(cells, "")
		}

		book.Rows = append(book.Rows, models.StudentRow{Name: name, Cells: cells})
	}

	return book, warnings, nil
}

func blockLines(block string) []string {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// scanGradeTokens walks a student block's grade lines and emits one raw
// token per recognized assignment cell, in order. Rules apply first-match-
// wins; unrecognized lines are skipped. The "/NNo grade" rule looks ahead
// one line for a "Done late" marker and consumes it when found.
func scanGradeTokens(lines []string) []string {
	cells := make([]string, 0, len(lines))

	i := 2
	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.Contains(line, "Assigned"):
			cells = append(cells, "Pending")
			i++

		case noGradeRegex.MatchString(line):
			token := "Submitted"
			if i+1 < len(lines) && strings.Contains(lines[i+1], "Done late") {
				token = "Late"
				i++ // the lookahead line is part of this cell
			}
			cells = append(cells, token)
			i++

		case outOfRegex.MatchString(line):
			score := outOfRegex.FindStringSubmatch(line)[1]
			// A literal 0 score is a draft placeholder, not a grade.
			if score != "0" {
				cells = append(cells, score)
			}
			i++

		case strings.Contains(line, "Missing"):
			cells = append(cells, "Missing")
			i++

		case strings.Contains(line, "Excused"):
			cells = append(cells, "Excused")
			i++

		case strings.Contains(line, "Turned in"):
			cells = append(cells, "Turned in")
			i++

		default:
			i++
		}
	}

	return cells
}
