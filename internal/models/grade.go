// Package models contains domain types for the gradebook import service.
package models

// GradeStatus is the classified semantic category of a raw grade token.
type GradeStatus string

const (
	// StatusNotAssigned means the cell was blank (or "-"): nothing to grade.
	StatusNotAssigned GradeStatus = "not_assigned"
	// StatusGraded means a numeric score was recorded.
	StatusGraded GradeStatus = "graded"
	// StatusDoneLate means the work was turned in late, with or without a score.
	StatusDoneLate GradeStatus = "late"
	// StatusMissing means the work was never turned in; counts as zero.
	StatusMissing GradeStatus = "missing"
	// StatusSubmitted means turned in but not yet graded.
	StatusSubmitted GradeStatus = "submitted"
	// StatusPending means assigned but not yet turned in (pre-deadline).
	StatusPending GradeStatus = "pending"
	// StatusExcused means the student is exempt from this assignment.
	StatusExcused GradeStatus = "excused"
	// StatusUnknown means the token could not be interpreted.
	StatusUnknown GradeStatus = "unknown"
)

// Grade is the typed result of classifying one raw grade token.
// Scored reports whether Points carries a real value; a zero Points with
// Scored=false means "no numeric value", not "zero points".
type Grade struct {
	Status GradeStatus `json:"status"`
	Points float64     `json:"points"`
	Scored bool        `json:"scored"`
}
