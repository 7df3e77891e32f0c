package parser

import (
	"bufio"
	"os"
	"strings"

	"github.com/marinara16/student-email-generator/internal/models"
)

// Importer defines the interface for gradebook file importers.
type Importer interface {
	// Name returns the unique name of the importer.
	Name() string
	// CanImport returns true if this importer can handle the given file.
	CanImport(filePath string) (bool, error)
	// Import parses the file into a gradebook, collecting warnings.
	Import(filePath string) (*models.Gradebook, []models.ParseWarning, error)
}

// ClassroomImporter handles the raw classroom copy-paste format: blank-line
// separated blocks with an "out of" header block first.
type ClassroomImporter struct{}

func NewClassroomImporter() *ClassroomImporter {
	return &ClassroomImporter{}
}

func (p *ClassroomImporter) Name() string {
	return "classroom_text"
}

func (p *ClassroomImporter) CanImport(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	checked := 0
	for scanner.Scan() && checked < 40 {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		checked++
		if strings.Contains(line, "out of") {
			return true, scanner.Err()
		}
	}
	return false, scanner.Err()
}

func (p *ClassroomImporter) Import(filePath string) (*models.Gradebook, []models.ParseWarning, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	return ParseClassroomText(string(data))
}

// CSVImporter handles CSV gradebook exports with a "Student Name" column.
type CSVImporter struct{}

func NewCSVImporter() *CSVImporter {
	return &CSVImporter{}
}

func (p *CSVImporter) Name() string {
	return "csv"
}

func (p *CSVImporter) CanImport(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// The header row must name the identity column.
		return strings.Contains(strings.ToLower(line), strings.ToLower(StudentNameColumn)) &&
			strings.Contains(line, ","), scanner.Err()
	}
	return false, scanner.Err()
}

func (p *CSVImporter) Import(filePath string) (*models.Gradebook, []models.ParseWarning, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	return ParseCSV(file)
}
