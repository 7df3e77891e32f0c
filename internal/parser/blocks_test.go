package parser

import (
	"strings"
	"testing"
)

const sampleExport = `Algebra 1
Quiz 1
10 out of 10
Essay
out of 20

Jane Doe
B+
8 out of 10
/20No grade

John Roe
C
AssignedNo grade
0 out of 20 Draft•Missing
`

func TestParseClassroomText(t *testing.T) {
	book, warnings, err := ParseClassroomText(sampleExport)
	if err != nil {
		t.Fatalf("ParseClassroomText failed: %v", err)
	}

	if len(book.Assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(book.Assignments))
	}
	if book.Assignments[0].Name != "Quiz 1" || book.Assignments[0].MaxPoints != 10 {
		t.Errorf("unexpected first assignment: %+v", book.Assignments[0])
	}

	if len(book.Rows) != 2 {
		t.Fatalf("expected 2 student rows, got %d", len(book.Rows))
	}

	jane := book.Rows[0]
	if jane.Name != "Jane Doe" {
		t.Errorf("expected Jane Doe, got %s", jane.Name)
	}
	if jane.Cells[0] != "8" {
		t.Errorf("expected graded cell 8, got %q", jane.Cells[0])
	}
	if jane.Cells[1] != "Submitted" {
		t.Errorf("expected Submitted cell, got %q", jane.Cells[1])
	}

	// John's zero-score draft line is skipped, so he only has one token and
	// his row is padded; that mismatch must surface as a warning.
	john := book.Rows[1]
	if john.Cells[0] != "Pending" {
		t.Errorf("expected Pending cell, got %q", john.Cells[0])
	}
	if john.Cells[1] != "" {
		t.Errorf("expected padded blank cell, got %q", john.Cells[1])
	}

	found := false
	for _, w := range warnings {
		if w.Student == "John Roe" && strings.Contains(w.Reason, "1 grade tokens for 2 assignments") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a count mismatch warning for John Roe, got %+v", warnings)
	}
}

func TestParseClassroomTextRoundTrip(t *testing.T) {
	raw := "Course\nQuiz 1\n10 out of 10\n\nJane Doe\nB+\n8 out of 10\n"
	book, warnings, err := ParseClassroomText(raw)
	if err != nil {
		t.Fatalf("ParseClassroomText failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", warnings)
	}
	if len(book.Assignments) != 1 || book.Assignments[0].Name != "Quiz 1" || book.Assignments[0].MaxPoints != 10 {
		t.Fatalf("unexpected assignments: %+v", book.Assignments)
	}
	if len(book.Rows) != 1 || book.Rows[0].Cells[0] != "8" {
		t.Fatalf("unexpected rows: %+v", book.Rows)
	}

	earned, available := ComputeTotals(book.Rows[0], book.Assignments)
	if earned != 8 || available != 10 {
		t.Errorf("ComputeTotals = (%v, %v), want (8, 10)", earned, available)
	}
}

func TestScanDoneLateLookahead(t *testing.T) {
	raw := "Course\nQuiz 1\n10 out of 10\nQuiz 2\n10 out of 10\n\n" +
		"Jane Doe\nB+\n/20No grade\nDone late\n9 out of 10\n"
	book, _, err := ParseClassroomText(raw)
	if err != nil {
		t.Fatalf("ParseClassroomText failed: %v", err)
	}

	row := book.Rows[0]
	if row.Cells[0] != "Late" {
		t.Errorf("expected Late for the first cell, got %q", row.Cells[0])
	}
	// The "Done late" line belongs to the first cell: the next token must
	// land in the second column, not be swallowed.
	if row.Cells[1] != "9" {
		t.Errorf("expected 9 for the second cell, got %q", row.Cells[1])
	}
}

func TestScanTokenRules(t *testing.T) {
	tests := []struct {
		line string
		want string // "" means no token emitted
	}{
		{"AssignedNo grade", "Pending"},
		{"Assigned", "Pending"},
		{"/20No grade", "Submitted"},
		{"8 out of 10", "8"},
		{"8 9 out of 10", "8"},
		{"0 out of 10", ""},
		{"0 out of 20 Draft•Missing", ""},
		{"Missing", "Missing"},
		{"Excused work", "Excused"},
		{"Turned in", "Turned in"},
		{"complete gibberish", ""},
	}

	for _, tt := range tests {
		lines := []string{"Name", "B+", tt.line}
		cells := scanGradeTokens(lines)
		if tt.want == "" {
			if len(cells) != 0 {
				t.Errorf("scan(%q) emitted %v, want nothing", tt.line, cells)
			}
			continue
		}
		if len(cells) != 1 || cells[0] != tt.want {
			t.Errorf("scan(%q) = %v, want [%q]", tt.line, cells, tt.want)
		}
	}
}

func TestParseClassroomTextDuplicateNames(t *testing.T) {
	raw := "Course\nQuiz 1\n10 out of 10\n\nJane Doe\nB+\n8 out of 10\n\nJane Doe\nA\n9 out of 10\n"
	book, _, err := ParseClassroomText(raw)
	if err != nil {
		t.Fatalf("ParseClassroomText failed: %v", err)
	}
	// Repeated names are appended, never merged.
	if len(book.Rows) != 2 {
		t.Fatalf("expected 2 rows for the duplicated name, got %d", len(book.Rows))
	}
}

func TestParseClassroomTextStructuralErrors(t *testing.T) {
	if _, _, err := ParseClassroomText(""); err == nil {
		t.Error("expected error for empty input")
	}
	if _, _, err := ParseClassroomText("   \n\nJane\nB\n8 out of 10\n"); err == nil {
		t.Error("expected error for blank header block")
	}
	if _, _, err := ParseClassroomText("just a course title"); err == nil {
		t.Error("expected error when the header holds no coursework")
	}
}

func TestParseClassroomTextExtraTokensTruncated(t *testing.T) {
	raw := "Course\nQuiz 1\n10 out of 10\n\nJane Doe\nB+\n8 out of 10\n9 out of 10\n"
	book, warnings, err := ParseClassroomText(raw)
	if err != nil {
		t.Fatalf("ParseClassroomText failed: %v", err)
	}
	row := book.Rows[0]
	if len(row.Cells) != 1 || row.Cells[0] != "8" {
		t.Errorf("expected truncation to [8], got %v", row.Cells)
	}
	if len(warnings) == 0 {
		t.Error("expected a count mismatch warning for the extra token")
	}
}
