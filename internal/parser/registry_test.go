package parser

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindImporterClassroomText(t *testing.T) {
	path := writeTemp(t, "export.txt", "Course\nQuiz 1\n10 out of 10\n\nJane\nB+\n8 out of 10\n")

	imp, err := GetGlobalRegistry().FindImporter(path)
	if err != nil {
		t.Fatalf("FindImporter failed: %v", err)
	}
	if imp.Name() != "classroom_text" {
		t.Errorf("expected classroom_text importer, got %s", imp.Name())
	}

	book, _, err := imp.Import(path)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(book.Rows) != 1 || book.Rows[0].Name != "Jane" {
		t.Errorf("unexpected rows: %+v", book.Rows)
	}
}

func TestFindImporterCSV(t *testing.T) {
	path := writeTemp(t, "grades.csv", "Student Name,Quiz 1 [10]\nJane,8\n")

	imp, err := GetGlobalRegistry().FindImporter(path)
	if err != nil {
		t.Fatalf("FindImporter failed: %v", err)
	}
	if imp.Name() != "csv" {
		t.Errorf("expected csv importer, got %s", imp.Name())
	}
}

func TestFindImporterUnknownFormat(t *testing.T) {
	path := writeTemp(t, "noise.txt", "nothing recognizable here\n")

	if _, err := GetGlobalRegistry().FindImporter(path); err == nil {
		t.Error("expected error for unrecognizable content")
	}
}

func TestGetImporterByName(t *testing.T) {
	if _, err := GetGlobalRegistry().GetImporterByName("csv"); err != nil {
		t.Errorf("csv importer should be registered: %v", err)
	}
	if _, err := GetGlobalRegistry().GetImporterByName("nope"); err == nil {
		t.Error("expected error for unknown importer name")
	}
}
