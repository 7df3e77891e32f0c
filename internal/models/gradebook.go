package models

// AssignmentSpec describes one gradable unit of coursework.
// Omitted assignments contribute to no total; unassigned ("upcoming")
// assignments count toward available points but never toward earned points.
type AssignmentSpec struct {
	Name      string  `json:"name"`
	MaxPoints float64 `json:"maxPoints"`
	Assigned  bool    `json:"assigned"`
	Omitted   bool    `json:"omitted"`
}

// StudentRow holds one student's raw grade tokens. Cells are positional:
// Cells[i] belongs to Gradebook.Assignments[i]. Rows are immutable after
// parsing.
type StudentRow struct {
	Name  string   `json:"name"`
	Cells []string `json:"cells"`
}

// Gradebook is the tabular result of an import: an ordered assignment list
// plus one row per student, all sharing the same column order.
type Gradebook struct {
	Assignments []AssignmentSpec `json:"assignments"`
	Rows        []StudentRow     `json:"rows"`
}

// NewGradebook creates an empty gradebook with the given column order.
func NewGradebook(assignments []AssignmentSpec) *Gradebook {
	return &Gradebook{
		Assignments: assignments,
		Rows:        make([]StudentRow, 0),
	}
}

// Cell returns the raw token for (row, assignment index). Short rows read
// as blank cells.
func (g *Gradebook) Cell(row StudentRow, idx int) string {
	if idx < 0 || idx >= len(row.Cells) {
		return ""
	}
	return row.Cells[idx]
}

// ParseWarning records a non-fatal problem found while importing, attributed
// to a student block where possible.
type ParseWarning struct {
	Student string `json:"student,omitempty"`
	Block   int    `json:"block,omitempty"`
	Line    int    `json:"line,omitempty"`
	Content string `json:"content,omitempty"`
	Reason  string `json:"reason"`
}
