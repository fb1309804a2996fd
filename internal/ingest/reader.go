package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/domain"
)

var (
	zipMagic  = []byte("PK\x03\x04")
	biffMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// readSheet returns the rows of the first worksheet, header row first, with cell values
// as the spreadsheet displays them.
func readSheet(data []byte) ([][]string, error) {
	switch {
	case bytes.HasPrefix(data, biffMagic):
		return nil, domain.ValidationError(
			"legacy .xls workbooks are not supported, re-save the file as .xlsx and upload again", nil)
	case !bytes.HasPrefix(data, zipMagic):
		return nil, domain.ValidationError("file is not an Excel workbook", nil)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ValidationError("could not open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.ValidationError("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.IngestionError(fmt.Sprintf("read sheet %q", sheets[0]), err)
	}
	return rows, nil
}
