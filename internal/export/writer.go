// Package export writes stored leads to an Excel workbook.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/domain"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/storage"
)

// SheetName is the worksheet holding the exported leads.
const SheetName = "Leads"

// Filename is the suggested download name.
const Filename = "leads_export.xlsx"

// Columns is the header row of an export.
var Columns = []string{
	"name", "role", "company", "linkedin_url", "location", "email", "phone",
	"skills", "experience_years", "notes", "match_score",
}

// LeadLister lists leads in store order.
type LeadLister interface {
	List(ctx context.Context) ([]*storage.Lead, error)
}

// Writer exports leads.
type Writer struct {
	leads  LeadLister
	logger *observability.Logger
}

// NewWriter creates an export writer.
func NewWriter(leads LeadLister, logger *observability.Logger) *Writer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Writer{leads: leads, logger: logger.WithComponent("export")}
}

// Export writes every stored lead to w as an xlsx workbook and returns the row count.
func (x *Writer) Export(ctx context.Context, w io.Writer) (int, error) {
	leads, err := x.leads.List(ctx)
	if err != nil {
		return 0, domain.StorageError("load leads", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	for i, l := range leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		row := []interface{}{
			l.Name, l.Role, l.Company, l.LinkedInURL, l.Location, l.Email, l.Phone,
			l.Skills, l.ExperienceYears, l.Notes, l.MatchScore,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}

	x.logger.WithContext(ctx).Info().Int("rows", len(leads)).Msg("Exported leads")
	return len(leads), nil
}
