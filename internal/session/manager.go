// Package session tracks active gradebook import sessions and owns the
// mutable per-session assignment configuration.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marinara16/student-email-generator/internal/models"
	"github.com/marinara16/student-email-generator/internal/parser"
)

// ErrSessionNotFound is returned for operations on unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// MaxSessions limits concurrent sessions to bound memory.
const MaxSessions = 50

// SessionMaxAge is how long to keep completed sessions before cleanup.
const SessionMaxAge = 60 * time.Minute

// SessionKeepAliveWindow is how long to keep sessions that are actively being used.
const SessionKeepAliveWindow = 5 * time.Minute

// Manager handles active gradebook import sessions.
type Manager struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex
	registry *parser.Registry
}

// SessionState holds the session metadata and the imported gradebook. The
// Book's assignment list is the one mutable piece of a session: user edits
// replace it wholesale under the manager's lock, and every read hands out a
// snapshot so summary and export computation stays a pure function of
// (rows, specs).
type SessionState struct {
	Session      *models.ImportSession
	Book         *models.Gradebook
	LastAccessed time.Time
}

// NewManager creates a new session manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*SessionState),
		registry: parser.GetGlobalRegistry(),
	}
}

// StartSession begins importing a file in the background.
func (m *Manager) StartSession(fileID, filePath string) (*models.ImportSession, error) {
	m.cleanupOldSessionsIfNeeded()

	sessionID := uuid.New().String()

	session := models.NewImportSession(sessionID, fileID)
	session.Status = models.SessionStatusImporting

	state := &SessionState{
		Session:      session,
		LastAccessed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	m.mu.Unlock()

	// Hand back a copy: the import goroutine owns the stored session.
	snapshot := *session

	go m.runImport(sessionID, filePath)

	return &snapshot, nil
}

func (m *Manager) runImport(sessionID, filePath string) {
	// Recover from panics to prevent backend crash
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Import %s] PANIC recovered: %v\n", sessionID[:8], r)
			m.updateSessionError(sessionID, fmt.Sprintf("import panicked: %v", r))
		}
	}()

	start := time.Now()
	fmt.Printf("[Import %s] Starting import of %s\n", sessionID[:8], filePath)

	imp, err := m.registry.FindImporter(filePath)
	if err != nil {
		fmt.Printf("[Import %s] ERROR: %v\n", sessionID[:8], err)
		m.updateSessionError(sessionID, fmt.Sprintf("failed to detect file format: %v", err))
		return
	}

	m.mu.Lock()
	if state, ok := m.sessions[sessionID]; ok {
		state.Session.Progress = 10
		state.Session.SourceFormat = imp.Name()
	}
	m.mu.Unlock()

	book, warnings, err := imp.Import(filePath)
	if err != nil {
		fmt.Printf("[Import %s] ERROR: import failed: %v\n", sessionID[:8], err)
		m.updateSessionError(sessionID, err.Error())
		return
	}

	parser.RefineAssigned(book)

	elapsed := time.Since(start).Milliseconds()
	fmt.Printf("[Import %s] Import complete: %d students, %d assignments, %d warnings\n",
		sessionID[:8], len(book.Rows), len(book.Assignments), len(warnings))

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	state.Book = book
	state.Session.Status = models.SessionStatusComplete
	state.Session.Progress = 100
	state.Session.StudentCount = len(book.Rows)
	state.Session.AssignmentCount = len(book.Assignments)
	state.Session.ProcessingTimeMs = elapsed
	state.Session.Warnings = warnings
}

func (m *Manager) updateSessionError(sessionID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	state.Session.Status = models.SessionStatusError
	state.Session.Error = reason
}

// cleanupOldSessionsIfNeeded removes completed sessions when at capacity.
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	var toDelete []string
	for id, state := range m.sessions {
		if state.Session.Status == models.SessionStatusComplete ||
			state.Session.Status == models.SessionStatusError {
			toDelete = append(toDelete, id)
		}
	}

	toFree := len(m.sessions) - MaxSessions + 1
	deleted := 0
	for _, id := range toDelete {
		if deleted >= toFree {
			break
		}
		delete(m.sessions, id)
		deleted++
		fmt.Printf("[Manager] Cleaned up old session %s to free memory\n", id[:8])
	}
}

// CleanupOldSessions removes sessions older than maxAge, keeping sessions
// accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	for id, state := range m.sessions {
		if state.Session.Status != models.SessionStatusComplete &&
			state.Session.Status != models.SessionStatusError {
			continue
		}
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			delete(m.sessions, id)
			fmt.Printf("[Manager] Cleaned up aged session %s (last accessed: %s ago)\n",
				id[:8], time.Since(state.LastAccessed).Round(time.Second))
		}
	}
}

// GetSession returns a copy of a session by ID. The import goroutine keeps
// mutating the stored session under the lock, so the live pointer must not
// escape.
func (m *Manager) GetSession(id string) (*models.ImportSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	sess := *state.Session
	return &sess, true
}

// TouchSession updates the LastAccessed timestamp for a session so active
// sessions survive cleanup.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// Snapshot returns a copy of the session's gradebook: the assignment slice
// is duplicated so callers never observe a concurrent configuration edit.
// Rows are shared; they are immutable after import.
func (m *Manager) Snapshot(id string) (*models.Gradebook, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok || state.Book == nil {
		return nil, false
	}

	specs := make([]models.AssignmentSpec, len(state.Book.Assignments))
	copy(specs, state.Book.Assignments)
	return &models.Gradebook{
		Assignments: specs,
		Rows:        state.Book.Rows,
	}, true
}

// Assignments returns the session's current assignment configuration.
func (m *Manager) Assignments(id string) ([]models.AssignmentSpec, bool) {
	book, ok := m.Snapshot(id)
	if !ok {
		return nil, false
	}
	return book.Assignments, true
}

// UpdateAssignments applies user edits to the assignment configuration.
// Existing assignments are matched by position, so max points, assigned and
// omitted flags (and renames) apply in place; extra entries are appended as
// new columns and every row is padded with blank cells for them. Shrinking
// the list is rejected: use the omitted flag to exclude an assignment.
func (m *Manager) UpdateAssignments(id string, specs []models.AssignmentSpec) error {
	if err := validateSpecs(specs); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok || state.Book == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	book := state.Book
	if len(specs) < len(book.Assignments) {
		return fmt.Errorf("cannot remove assignments; mark them omitted instead")
	}

	added := len(specs) - len(book.Assignments)
	book.Assignments = specs
	if added > 0 {
		// Copy-on-write: snapshots handed out earlier share the old rows
		// slice, so pad fresh rows instead of mutating cells in place.
		rows := make([]models.StudentRow, len(book.Rows))
		copy(rows, book.Rows)
		for i := range rows {
			cells := make([]string, len(specs))
			copy(cells, rows[i].Cells)
			rows[i].Cells = cells
		}
		book.Rows = rows
	}

	state.LastAccessed = time.Now()
	return nil
}

func validateSpecs(specs []models.AssignmentSpec) error {
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return fmt.Errorf("assignment name must not be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate assignment name: %s", name)
		}
		seen[name] = true
		if spec.MaxPoints < 0 {
			return fmt.Errorf("assignment %s: max points must not be negative", name)
		}
	}
	return nil
}

// Summaries renders progress reports for every student in the session,
// in row order.
func (m *Manager) Summaries(id string) ([]models.StudentSummary, bool) {
	book, ok := m.Snapshot(id)
	if !ok {
		return nil, false
	}

	summaries := make([]models.StudentSummary, 0, len(book.Rows))
	for _, row := range book.Rows {
		summaries = append(summaries, parser.RenderSummary(row.Name, book.Assignments, row))
	}
	return summaries, true
}

// Summary renders the progress report for one student by name. The second
// result distinguishes "session missing" from "student missing".
func (m *Manager) Summary(id, student string) (*models.StudentSummary, bool, bool) {
	book, ok := m.Snapshot(id)
	if !ok {
		return nil, false, false
	}

	for _, row := range book.Rows {
		if row.Name == student {
			s := parser.RenderSummary(row.Name, book.Assignments, row)
			return &s, true, true
		}
	}
	return nil, true, false
}
