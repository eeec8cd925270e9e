package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// WorkbookCollectionStore reads collections from an exported copy of the spreadsheet. Each
// collection lives in a sheet of the same name whose first row holds the field names.
// The workbook is reopened on every read so edits show up on the next fetch.
type WorkbookCollectionStore struct {
	open func() (*excelize.File, error)
}

// NewWorkbookCollectionStore constructs a store over the .xlsx file at path.
func NewWorkbookCollectionStore(path string) *WorkbookCollectionStore {
	return &WorkbookCollectionStore{open: func() (*excelize.File, error) {
		return excelize.OpenFile(path)
	}}
}

// NewWorkbookCollectionStoreFromOpener constructs a store over any workbook source.
func NewWorkbookCollectionStoreFromOpener(open func() (*excelize.File, error)) *WorkbookCollectionStore {
	return &WorkbookCollectionStore{open: open}
}

// Fetch reads one sheet. A missing sheet is reported as an unsuccessful result.
func (s *WorkbookCollectionStore) Fetch(ctx context.Context, collection models.Collection, _ models.FetchParams) (*models.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheet := ""
	for _, name := range file.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(name), string(collection)) {
			sheet = name
			break
		}
	}
	if sheet == "" {
		return &models.FetchResult{Success: false, Error: fmt.Sprintf("sheet %q not found", collection)}, nil
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return &models.FetchResult{Success: true, Rows: []models.Row{}}, nil
	}

	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = strings.TrimSpace(col)
	}
	out := make([]models.Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := models.Row{}
		blank := true
		for i, key := range header {
			if key == "" || i >= len(cells) {
				continue
			}
			value := strings.TrimSpace(cells[i])
			if value == "" {
				continue
			}
			row[key] = value
			blank = false
		}
		if !blank {
			out = append(out, row)
		}
	}
	return &models.FetchResult{Success: true, Rows: out}, nil
}
