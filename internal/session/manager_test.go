package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marinara16/student-email-generator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = "Course\nQuiz 1\n10 out of 10\nEssay\nout of 20\n\n" +
	"Jane Doe\nB+\n8 out of 10\n15 out of 20\n\n" +
	"John Roe\nC\nAssignedNo grade\nAssignedNo grade\n"

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func waitComplete(t *testing.T, m *Manager, id string) *models.ImportSession {
	t.Helper()
	require.Eventually(t, func() bool {
		sess, ok := m.GetSession(id)
		return ok && (sess.Status == models.SessionStatusComplete || sess.Status == models.SessionStatusError)
	}, 5*time.Second, 10*time.Millisecond)
	sess, _ := m.GetSession(id)
	return sess
}

func TestStartSessionImportsClassroomText(t *testing.T) {
	m := NewManager()
	path := writeSample(t, sampleExport)

	sess, err := m.StartSession("file-1", path)
	require.NoError(t, err)

	done := waitComplete(t, m, sess.ID)
	require.Equal(t, models.SessionStatusComplete, done.Status)
	assert.Equal(t, "classroom_text", done.SourceFormat)
	assert.Equal(t, 2, done.StudentCount)
	assert.Equal(t, 2, done.AssignmentCount)
	assert.Equal(t, float64(100), done.Progress)

	book, ok := m.Snapshot(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", book.Rows[0].Name)
	assert.Equal(t, "8", book.Rows[0].Cells[0])
}

func TestStartSessionErrorOnGarbage(t *testing.T) {
	m := NewManager()
	path := writeSample(t, "nothing here at all\n")

	sess, err := m.StartSession("file-2", path)
	require.NoError(t, err)

	done := waitComplete(t, m, sess.ID)
	assert.Equal(t, models.SessionStatusError, done.Status)
	assert.NotEmpty(t, done.Error)

	_, ok := m.Snapshot(sess.ID)
	assert.False(t, ok, "failed sessions expose no gradebook")
}

func TestUpdateAssignments(t *testing.T) {
	m := NewManager()
	path := writeSample(t, sampleExport)

	sess, err := m.StartSession("file-3", path)
	require.NoError(t, err)
	waitComplete(t, m, sess.ID)

	specs, ok := m.Assignments(sess.ID)
	require.True(t, ok)
	require.Len(t, specs, 2)

	// Raise the quiz's max, omit the essay, append a new assignment.
	specs[0].MaxPoints = 15
	specs[1].Omitted = true
	specs = append(specs, models.AssignmentSpec{Name: "Final", MaxPoints: 50})
	require.NoError(t, m.UpdateAssignments(sess.ID, specs))

	book, ok := m.Snapshot(sess.ID)
	require.True(t, ok)
	require.Len(t, book.Assignments, 3)
	assert.Equal(t, float64(15), book.Assignments[0].MaxPoints)
	assert.True(t, book.Assignments[1].Omitted)
	// Rows gained a blank cell for the new column.
	for _, row := range book.Rows {
		assert.Len(t, row.Cells, 3)
	}
}

func TestUpdateAssignmentsValidation(t *testing.T) {
	m := NewManager()
	path := writeSample(t, sampleExport)

	sess, err := m.StartSession("file-4", path)
	require.NoError(t, err)
	waitComplete(t, m, sess.ID)

	assert.Error(t, m.UpdateAssignments(sess.ID, []models.AssignmentSpec{
		{Name: "", MaxPoints: 10},
		{Name: "B", MaxPoints: 10},
	}), "empty names are rejected")

	assert.Error(t, m.UpdateAssignments(sess.ID, []models.AssignmentSpec{
		{Name: "Dup", MaxPoints: 10},
		{Name: "Dup", MaxPoints: 10},
	}), "duplicate names are rejected")

	assert.Error(t, m.UpdateAssignments(sess.ID, []models.AssignmentSpec{
		{Name: "Only one", MaxPoints: 10},
	}), "shrinking the list is rejected")

	assert.ErrorIs(t, m.UpdateAssignments("missing", nil), ErrSessionNotFound)
}

func TestSummaries(t *testing.T) {
	m := NewManager()
	path := writeSample(t, sampleExport)

	sess, err := m.StartSession("file-5", path)
	require.NoError(t, err)
	waitComplete(t, m, sess.ID)

	summaries, ok := m.Summaries(sess.ID)
	require.True(t, ok)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Jane Doe", summaries[0].StudentName)
	assert.Equal(t, float64(23), summaries[0].TotalEarned)
	assert.Equal(t, float64(30), summaries[0].TotalAvailable)

	jane, sessionOK, studentOK := m.Summary(sess.ID, "Jane Doe")
	require.True(t, sessionOK)
	require.True(t, studentOK)
	assert.Contains(t, jane.Report, "Jane Doe has earned 23 out of 30 points so far.")

	_, sessionOK, studentOK = m.Summary(sess.ID, "Nobody")
	assert.True(t, sessionOK)
	assert.False(t, studentOK)
}

// Escaped snapshots must stay readable while assignment edits append
// columns; run with -race to catch in-place row mutation.
func TestSnapshotIsolatedFromAssignmentEdits(t *testing.T) {
	m := NewManager()
	path := writeSample(t, sampleExport)

	sess, err := m.StartSession("file-7", path)
	require.NoError(t, err)
	waitComplete(t, m, sess.ID)

	book, ok := m.Snapshot(sess.ID)
	require.True(t, ok)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := 0; n < 1000; n++ {
			for _, row := range book.Rows {
				for _, cell := range row.Cells {
					_ = cell
				}
			}
		}
	}()

	specs, ok := m.Assignments(sess.ID)
	require.True(t, ok)
	for n := 0; n < 20; n++ {
		specs = append(specs, models.AssignmentSpec{Name: fmt.Sprintf("Extra %d", n), MaxPoints: 10})
		require.NoError(t, m.UpdateAssignments(sess.ID, specs))
	}
	<-done

	// The old snapshot keeps the pre-edit column count.
	for _, row := range book.Rows {
		assert.Len(t, row.Cells, 2)
	}
	fresh, ok := m.Snapshot(sess.ID)
	require.True(t, ok)
	for _, row := range fresh.Rows {
		assert.Len(t, row.Cells, 22)
	}
}

func TestGetSessionReturnsCopy(t *testing.T) {
	m := NewManager()
	path := writeSample(t, sampleExport)

	sess, err := m.StartSession("file-8", path)
	require.NoError(t, err)
	waitComplete(t, m, sess.ID)

	got, ok := m.GetSession(sess.ID)
	require.True(t, ok)
	got.Status = models.SessionStatusError
	got.Error = "scribbled by caller"

	again, ok := m.GetSession(sess.ID)
	require.True(t, ok)
	assert.Equal(t, models.SessionStatusComplete, again.Status)
	assert.Empty(t, again.Error)
}

func TestTouchAndCleanup(t *testing.T) {
	m := NewManager()
	path := writeSample(t, sampleExport)

	sess, err := m.StartSession("file-6", path)
	require.NoError(t, err)
	waitComplete(t, m, sess.ID)

	// Aggressive cleanup removes untouched completed sessions.
	m.mu.Lock()
	m.sessions[sess.ID].LastAccessed = time.Now().Add(-2 * time.Hour)
	m.mu.Unlock()

	m.CleanupOldSessions(time.Hour)
	_, ok := m.GetSession(sess.ID)
	assert.False(t, ok)
}
