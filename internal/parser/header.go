package parser

import (
	"strconv"
	"strings"

	"github.com/marinara16/student-email-generator/internal/models"
)

// titleKeywords mark a header line as an assignment title in exports that
// lack the name-above-points pairing.
var titleKeywords = []string{"assignment", "quiz", "form", "project", "book"}

// ExtractAssignments parses the leading header block of a classroom export
// into an ordered assignment list. Two header dialects are supported and
// detected structurally:
//
//  1. Strict pairing: each "out of" line carries the max points and the line
//     directly above it is the assignment name.
//  2. Keyword scan: a line containing a known coursework keyword is a title;
//     max points come from a following "out of" line, defaulting to 0.
//
// All assignments start out assigned and not omitted; data presence refines
// that later.
func ExtractAssignments(headerBlock string) []models.AssignmentSpec {
	lines := headerLines(headerBlock)

	if hasPairedPoints(lines) {
		return extractPaired(lines)
	}
	return extractByKeyword(lines)
}

func headerLines(block string) []string {
	raw := strings.Split(strings.TrimSpace(block), "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// hasPairedPoints reports whether any "out of" line has a usable name line
// directly above it. The first line of the block is the course title and
// never counts as a name.
func hasPairedPoints(lines []string) bool {
	for i := 2; i < len(lines); i++ {
		if strings.Contains(lines[i], "out of") &&
			lines[i-1] != "" && !strings.Contains(lines[i-1], "out of") {
			return true
		}
	}
	return false
}

func extractPaired(lines []string) []models.AssignmentSpec {
	specs := make([]models.AssignmentSpec, 0)
	for i, line := range lines {
		if i == 0 {
			continue // course title
		}
		if !strings.Contains(line, "out of") {
			continue
		}
		if i == 0 || lines[i-1] == "" || strings.Contains(lines[i-1], "out of") {
			continue
		}
		pts, ok := pointsAfterOutOf(line)
		if !ok {
			continue
		}
		specs = append(specs, models.AssignmentSpec{
			Name:      lines[i-1],
			MaxPoints: pts,
			Assigned:  true,
		})
	}
	return specs
}

func extractByKeyword(lines []string) []models.AssignmentSpec {
	specs := make([]models.AssignmentSpec, 0)
	for i, line := range lines {
		if !containsKeyword(line) {
			continue
		}
		var pts float64
		if i+1 < len(lines) && strings.Contains(lines[i+1], "out of") {
			if p, ok := pointsAfterOutOf(lines[i+1]); ok {
				pts = p
			}
		}
		specs = append(specs, models.AssignmentSpec{
			Name:      line,
			MaxPoints: pts,
			Assigned:  true,
		})
	}
	return specs
}

func containsKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range titleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// pointsAfterOutOf parses the integer that follows the last "out of" in a
// line such as "10 out of 10" or "out of 20".
func pointsAfterOutOf(line string) (float64, bool) {
	idx := strings.LastIndex(line, "out of")
	if idx < 0 {
		return 0, false
	}
	rest := strings.Fields(line[idx+len("out of"):])
	if len(rest) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil || n < 0 {
		return 0, false
	}
	return float64(n), true
}

// FormatColumn renders an assignment as the "<name> [<maxPoints>]" column
// header used in the intermediate CSV.
func FormatColumn(name string, maxPoints float64) string {
	return name + " [" + FormatPoints(maxPoints) + "]"
}

// SplitColumn recovers (name, maxPoints) from a "<name> [<maxPoints>]"
// column header. A header without the bracket suffix falls back to the whole
// string as the name with 10 points.
func SplitColumn(column string) (string, float64) {
	name, pts, ok := splitColumn(column)
	if !ok {
		return column, 10
	}
	return name, pts
}

func splitColumn(column string) (string, float64, bool) {
	if !strings.HasSuffix(column, "]") {
		return "", 0, false
	}
	i := strings.LastIndex(column, " [")
	if i < 0 {
		return "", 0, false
	}
	body := column[i+2 : len(column)-1]
	pts, err := strconv.ParseFloat(body, 64)
	if err != nil || pts < 0 {
		return "", 0, false
	}
	return column[:i], pts, true
}
