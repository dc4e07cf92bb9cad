package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/domain"
	"github.com/xuri/excelize/v2"
)

const workflowSheet = "Workflows"

var workflowHeader = []string{"ID", "Title", "Description", "Status", "Priority", "Category", "Created By", "Created At", "Updated At"}

var userHeader = []string{"ID", "Username", "Email", "First Name", "Last Name", "Role", "Enabled", "Created"}

// WorkflowRow is a workflow flattened for export, CreatedBy is the creator's username.
type WorkflowRow struct {
	ID          int64
	Title       string
	Description string
	Status      string
	Priority    string
	Category    string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r WorkflowRow) strings() []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Title,
		r.Description,
		r.Status,
		r.Priority,
		r.Category,
		r.CreatedBy,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func WriteWorkflowsCSV(w io.Writer, rows []WorkflowRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(workflowHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteUsersCSV(w io.Writer, users []domain.User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(userHeader); err != nil {
		return err
	}
	for _, u := range users {
		created := ""
		if u.Created.Valid {
			created = u.Created.Time.UTC().Format(time.RFC3339)
		}
		record := []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.Email,
			u.FirstName,
			u.LastName,
			string(u.Role),
			strconv.FormatBool(u.IsEnabled()),
			created,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWorkflowsXLSX renders rows into a single sheet workbook with a bold header row.
func WriteWorkflowsXLSX(w io.Writer, rows []WorkflowRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", workflowSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(workflowHeader))
	for i, h := range workflowHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(workflowSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(workflowSheet, 1, 1, bold); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			row.ID,
			row.Title,
			row.Description,
			row.Status,
			row.Priority,
			row.Category,
			row.CreatedBy,
			row.CreatedAt.UTC().Format(time.RFC3339),
			row.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(workflowSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row.ID, err)
		}
	}
	if err := f.SetColWidth(workflowSheet, "B", "C", 40); err != nil {
		return err
	}
	return f.Write(w)
}
