// Package api exposes the gradebook import pipeline over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/marinara16/student-email-generator/internal/models"
	"github.com/marinara16/student-email-generator/internal/parser"
	"github.com/marinara16/student-email-generator/internal/session"
	"github.com/marinara16/student-email-generator/internal/storage"
	"github.com/vmihailenco/msgpack/v5"
)

// Handler handles API requests.
type Handler struct {
	store      storage.Store
	session    *session.Manager
	allowedExt map[string]bool
}

// NewHandler creates a new API handler. allowedFileTypes is the configured
// comma-separated extension list; empty means any extension is accepted.
func NewHandler(store storage.Store, session *session.Manager, allowedFileTypes string) *Handler {
	h := &Handler{
		store:   store,
		session: session,
	}
	for _, ext := range strings.Split(allowedFileTypes, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if h.allowedExt == nil {
			h.allowedExt = make(map[string]bool)
		}
		h.allowedExt[ext] = true
	}
	return h
}

func (h *Handler) extAllowed(name string) bool {
	if h.allowedExt == nil {
		return true
	}
	return h.allowedExt[strings.ToLower(filepath.Ext(name))]
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HandleUploadFile accepts a multipart gradebook file and saves it to storage.
func (h *Handler) HandleUploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("file field is required", err)
	}
	if !h.extAllowed(fileHeader.Filename) {
		return NewBadRequestError(
			fmt.Sprintf("unsupported file type: %s", filepath.Ext(fileHeader.Filename)), nil)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return NewInternalError("failed to read upload", err)
	}
	defer src.Close()

	info, err := h.store.Save(fileHeader.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandlePasteText accepts gradebook text pasted straight out of the
// classroom tool and stores it like an uploaded file.
func (h *Handler) HandlePasteText(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return NewValidationError("text")
	}
	if req.Name == "" {
		req.Name = fmt.Sprintf("pasted-%s.txt", time.Now().Format("20060102-150405"))
	}
	if !h.extAllowed(req.Name) {
		return NewBadRequestError(
			fmt.Sprintf("unsupported file type: %s", filepath.Ext(req.Name)), nil)
	}

	info, err := h.store.SaveBytes(req.Name, []byte(req.Text))
	if err != nil {
		return NewInternalError("failed to save pasted text", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleRecentFiles returns a list of recently uploaded files.
func (h *Handler) HandleRecentFiles(c echo.Context) error {
	files, err := h.store.List(20)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file.
func (h *Handler) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile removes a file from storage.
func (h *Handler) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleRenameFile updates the display name of a file.
func (h *Handler) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Name == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleStartImport starts an import session for an uploaded file.
func (h *Handler) HandleStartImport(c echo.Context) error {
	var req struct {
		FileID string `json:"fileId"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.FileID == "" {
		return NewValidationError("fileId")
	}

	if _, err := h.store.Get(req.FileID); err != nil {
		return NewNotFoundError("file", req.FileID)
	}
	path, err := h.store.GetFilePath(req.FileID)
	if err != nil {
		return NewInternalError("failed to resolve file path", err)
	}

	sess, err := h.session.StartSession(req.FileID, path)
	if err != nil {
		return NewInternalError("failed to start import", err)
	}

	return c.JSON(http.StatusAccepted, sess)
}

// HandleImportStatus returns the status of an import session.
func (h *Handler) HandleImportStatus(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.session.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	// Touch session to prevent cleanup while being viewed
	h.session.TouchSession(id)
	return c.JSON(http.StatusOK, sess)
}

// HandleImportProgressStream streams import progress via SSE until the
// session completes or fails.
func (h *Handler) HandleImportProgressStream(c echo.Context) error {
	id := c.Param("sessionId")

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	lastProgress := -1.0
	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.C:
			sess, ok := h.session.GetSession(id)
			if !ok {
				data, _ := json.Marshal(map[string]string{"error": "session not found"})
				fmt.Fprintf(c.Response(), "data: %s\n\n", data)
				c.Response().Flush()
				return nil
			}

			if sess.Progress != lastProgress {
				lastProgress = sess.Progress

				data, err := json.Marshal(map[string]interface{}{
					"status":          sess.Status,
					"progress":        sess.Progress,
					"studentCount":    sess.StudentCount,
					"assignmentCount": sess.AssignmentCount,
					"sourceFormat":    sess.SourceFormat,
					"error":           sess.Error,
				})
				if err != nil {
					continue
				}

				fmt.Fprintf(c.Response(), "data: %s\n\n", data)
				c.Response().Flush()
			}

			if sess.Status == models.SessionStatusComplete || sess.Status == models.SessionStatusError {
				return nil
			}
		}
	}
}

// HandleGetTable returns the imported gradebook table.
func (h *Handler) HandleGetTable(c echo.Context) error {
	id := c.Param("sessionId")
	book, ok := h.session.Snapshot(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	h.session.TouchSession(id)
	return c.JSON(http.StatusOK, book)
}

// HandleGetAssignments returns the session's assignment configuration.
func (h *Handler) HandleGetAssignments(c echo.Context) error {
	id := c.Param("sessionId")
	specs, ok := h.session.Assignments(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, specs)
}

// HandleUpdateAssignments applies user edits to max points, assigned and
// omitted flags, and appends newly created assignments.
func (h *Handler) HandleUpdateAssignments(c echo.Context) error {
	id := c.Param("sessionId")
	var specs []models.AssignmentSpec
	if err := c.Bind(&specs); err != nil {
		return NewBadRequestError("invalid assignment list", err)
	}

	if err := h.session.UpdateAssignments(id, specs); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return NewNotFoundError("session", id)
		}
		return NewBadRequestError("invalid assignment configuration", err)
	}

	updated, _ := h.session.Assignments(id)
	return c.JSON(http.StatusOK, updated)
}

// HandleGetSummaries returns rendered progress reports for every student.
func (h *Handler) HandleGetSummaries(c echo.Context) error {
	id := c.Param("sessionId")
	summaries, ok := h.session.Summaries(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	h.session.TouchSession(id)
	return c.JSON(http.StatusOK, summaries)
}

// HandleGetSummary returns the rendered progress report for one student.
func (h *Handler) HandleGetSummary(c echo.Context) error {
	id := c.Param("sessionId")
	student := c.Param("student")

	summary, sessionOK, studentOK := h.session.Summary(id, student)
	if !sessionOK {
		return NewNotFoundError("session", id)
	}
	if !studentOK {
		return NewNotFoundError("student", student)
	}
	return c.JSON(http.StatusOK, summary)
}

// HandleExportCSV streams the intermediate CSV for a session.
func (h *Handler) HandleExportCSV(c echo.Context) error {
	book, name, apiErr := h.exportBook(c)
	if apiErr != nil {
		return apiErr
	}

	var buf bytes.Buffer
	if err := parser.WriteCSV(&buf, book); err != nil {
		return NewInternalError("failed to build csv export", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, name+".csv"))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// HandleExportXLSX streams the gradebook as an Excel workbook.
func (h *Handler) HandleExportXLSX(c echo.Context) error {
	book, name, apiErr := h.exportBook(c)
	if apiErr != nil {
		return apiErr
	}

	var buf bytes.Buffer
	if err := parser.WriteXLSX(&buf, book); err != nil {
		return NewInternalError("failed to build xlsx export", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, name+".xlsx"))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// HandleExportMsgpack returns the gradebook table in MessagePack format.
func (h *Handler) HandleExportMsgpack(c echo.Context) error {
	book, _, apiErr := h.exportBook(c)
	if apiErr != nil {
		return apiErr
	}

	data, err := msgpack.Marshal(book)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// exportBook resolves the session's gradebook and a base file name for
// download headers.
func (h *Handler) exportBook(c echo.Context) (*models.Gradebook, string, *APIError) {
	id := c.Param("sessionId")
	book, ok := h.session.Snapshot(id)
	if !ok {
		return nil, "", NewNotFoundError("session", id)
	}
	h.session.TouchSession(id)

	name := "gradebook"
	if sess, ok := h.session.GetSession(id); ok {
		if info, err := h.store.Get(sess.FileID); err == nil {
			base := strings.TrimSuffix(info.Name, filepath.Ext(info.Name))
			if base != "" {
				name = base
			}
		}
	}
	return book, name, nil
}
