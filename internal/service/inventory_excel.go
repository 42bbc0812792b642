package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Column order for the goods-receipt import sheet.
var batchImportHeader = []string{
	"Batch Number",
	"Medicine ID",
	"Storage Location ID",
	"Quantity",
	"Expiration Date",
}

// Column order for the stock export sheet.
var stockExportHeader = []string{
	"Batch Number",
	"Medicine ID",
	"Storage Location ID",
	"Initial Quantity",
	"Current Quantity",
	"Expiration Date",
	"Arrival Date",
}

const stockSheetName = "Stock"

// ImportBatches reads goods receipts from an Excel sheet, one batch per row.
// Rows are applied independently; failed rows are reported and skipped, good
// rows are committed.
func (s *inventoryService) ImportBatches(ctx context.Context, actor domain.Actor, file io.Reader) (*ImportReport, error) {
	if actor.Role == domain.RolePharmacist {
		return nil, fmt.Errorf("pharmacists cannot receive stock: %w", domain.ErrForbidden)
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", domain.ErrValidation)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook has no data rows: %w", domain.ErrValidation)
	}

	report := &ImportReport{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		input, err := parseBatchRow(row)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if _, err := s.CreateBatch(ctx, actor, *input); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		report.Imported++
	}
	return report, nil
}

func parseBatchRow(row []string) (*BatchInput, error) {
	if len(row) < len(batchImportHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(batchImportHeader), len(row))
	}

	quantity, err := strconv.Atoi(row[3])
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q", row[3])
	}
	expiration, err := time.Parse("2006-01-02", row[4])
	if err != nil {
		return nil, fmt.Errorf("invalid expiration date %q, want YYYY-MM-DD", row[4])
	}

	return &BatchInput{
		BatchNumber:       row[0],
		MedicineID:        row[1],
		StorageLocationID: row[2],
		Quantity:          quantity,
		ExpirationDate:    expiration,
	}, nil
}

// ExportStock renders the batches visible in the actor's scope as an Excel
// workbook.
func (s *inventoryService) ExportStock(ctx context.Context, actor domain.Actor, pharmacyFilter string) ([]byte, error) {
	batches, err := s.batchesRepo.List(ctx, domain.ScopeFor(actor, pharmacyFilter))
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(stockSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range stockExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(stockSheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(stockSheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for rowIdx, batch := range batches {
		row := rowIdx + 2
		values := []any{
			batch.BatchNumber,
			batch.MedicineID,
			batch.StorageLocationID,
			batch.InitialQuantity,
			batch.CurrentQuantity,
			batch.ExpirationDate.Format("2006-01-02"),
			batch.ArrivalDate.Format("2006-01-02"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(stockSheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
