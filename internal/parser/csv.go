package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/marinara16/student-email-generator/internal/models"
)

// StudentNameColumn is the required identity column in CSV imports and the
// first column of the intermediate CSV export.
const StudentNameColumn = "Student Name"

// ParseCSV imports a free-form CSV export. The first row is the header and
// must contain a "Student Name" column; every other column becomes an
// assignment. Column headers in the "<name> [N]" format carry their own max
// points; for the rest the max is estimated from the column's graded values.
func ParseCSV(r io.Reader) (*models.Gradebook, []models.ParseWarning, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty csv input")
	}

	header := records[0]
	nameCol := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), StudentNameColumn) {
			nameCol = i
			break
		}
	}
	if nameCol < 0 {
		return nil, nil, fmt.Errorf("required column %q not found in csv header", StudentNameColumn)
	}

	// Assignment columns in header order, skipping the identity column.
	gradeCols := make([]int, 0, len(header)-1)
	specs := make([]models.AssignmentSpec, 0, len(header)-1)
	for i, h := range header {
		if i == nameCol {
			continue
		}
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		spec := models.AssignmentSpec{Assigned: true}
		if name, pts, ok := splitColumn(h); ok {
			spec.Name, spec.MaxPoints = name, pts
		} else {
			spec.Name = h
			spec.MaxPoints = EstimateMaxPoints(columnValues(records[1:], i))
		}
		gradeCols = append(gradeCols, i)
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, nil, fmt.Errorf("no assignment columns found in csv header")
	}

	book := models.NewGradebook(specs)
	warnings := make([]models.ParseWarning, 0)

	for ri, record := range records[1:] {
		if nameCol >= len(record) || strings.TrimSpace(record[nameCol]) == "" {
			warnings = append(warnings, models.ParseWarning{
				Line:   ri + 2,
				Reason: "row has no student name; skipped",
			})
			continue
		}

		cells := make([]string, len(gradeCols))
		for ci, col := range gradeCols {
			if col < len(record) {
				cells[ci] = strings.TrimSpace(record[col])
			}
		}
		book.Rows = append(book.Rows, models.StudentRow{
			Name:  strings.TrimSpace(record[nameCol]),
			Cells: cells,
		})
	}

	return book, warnings, nil
}

func columnValues(rows [][]string, col int) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if col < len(row) {
			values = append(values, row[col])
		}
	}
	return values
}

// EstimateMaxPoints guesses an assignment's max points from its graded
// values: the highest score seen, rounded up to a multiple of 5, never below
// 10. With no scores at all the default is 10.
func EstimateMaxPoints(cells []string) float64 {
	best := 0.0
	for _, c := range cells {
		g := Classify(c)
		if (g.Status == models.StatusGraded || g.Status == models.StatusDoneLate) && g.Scored && g.Points > best {
			best = g.Points
		}
	}
	if best == 0 {
		return 10
	}
	est := math.Ceil(best/5) * 5
	if est < 10 {
		est = 10
	}
	return est
}
