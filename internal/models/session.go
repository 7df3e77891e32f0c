package models

// SessionStatus represents the status of an import session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusImporting SessionStatus = "importing"
	SessionStatusComplete  SessionStatus = "complete"
	SessionStatusError     SessionStatus = "error"
)

// ImportSession tracks one file import from upload through parsed gradebook.
type ImportSession struct {
	ID               string         `json:"id"`
	FileID           string         `json:"fileId"`
	Status           SessionStatus  `json:"status"`
	Progress         float64        `json:"progress"` // 0-100
	SourceFormat     string         `json:"sourceFormat,omitempty"`
	StudentCount     int            `json:"studentCount,omitempty"`
	AssignmentCount  int            `json:"assignmentCount,omitempty"`
	ProcessingTimeMs int64          `json:"processingTimeMs,omitempty"`
	Warnings         []ParseWarning `json:"warnings,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// NewImportSession creates a new ImportSession in pending status.
func NewImportSession(id, fileID string) *ImportSession {
	return &ImportSession{
		ID:       id,
		FileID:   fileID,
		Status:   SessionStatusPending,
		Progress: 0,
		Warnings: make([]ParseWarning, 0),
	}
}
