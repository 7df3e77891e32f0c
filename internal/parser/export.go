package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/marinara16/student-email-generator/internal/models"
	"github.com/xuri/excelize/v2"
)

// WriteCSV writes the intermediate CSV: "Student Name" plus one
// "<name> [N]" column per assignment, one row per student, blank-padded to
// header width.
func WriteCSV(w io.Writer, book *models.Gradebook) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(book.Assignments)+1)
	header = append(header, StudentNameColumn)
	for _, a := range book.Assignments {
		header = append(header, FormatColumn(a.Name, a.MaxPoints))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, row := range book.Rows {
		record := make([]string, len(header))
		record[0] = row.Name
		for i := range book.Assignments {
			record[i+1] = book.Cell(row, i)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", row.Name, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the gradebook as an Excel workbook with the same layout
// as the intermediate CSV plus earned/available totals per student.
func WriteXLSX(w io.Writer, book *models.Gradebook) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Grades"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	setCell := func(col, row int, value interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, value)
	}

	if err := setCell(1, 1, StudentNameColumn); err != nil {
		return err
	}
	for i, a := range book.Assignments {
		if err := setCell(i+2, 1, FormatColumn(a.Name, a.MaxPoints)); err != nil {
			return err
		}
	}
	totalCol := len(book.Assignments) + 2
	if err := setCell(totalCol, 1, "Total Earned"); err != nil {
		return err
	}
	if err := setCell(totalCol+1, 1, "Total Available"); err != nil {
		return err
	}

	for r, row := range book.Rows {
		if err := setCell(1, r+2, row.Name); err != nil {
			return err
		}
		for i := range book.Assignments {
			if err := setCell(i+2, r+2, book.Cell(row, i)); err != nil {
				return err
			}
		}
		earned, available := ComputeTotals(row, book.Assignments)
		if err := setCell(totalCol, r+2, earned); err != nil {
			return err
		}
		if err := setCell(totalCol+1, r+2, available); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
