package admin

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const scanSheet = "Scans"

var scanHeader = []interface{}{"UID", "Scan count", "First scan", "Last scan", "User agent"}

// ExportScans writes every scan row as an xlsx workbook.
func (s *adminService) ExportScans(ctx context.Context, w io.Writer) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	scans, err := s.store.ListScans(ctx)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scanSheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(scanSheet, "A1", &scanHeader); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	for i, scan := range scans {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}

		userAgent := ""
		if scan.UserAgent != nil {
			userAgent = *scan.UserAgent
		}
		row := []interface{}{
			scan.UID,
			scan.ScanCount,
			scan.FirstScanAt.UTC().Format(time.RFC3339),
			scan.LastScanAt.UTC().Format(time.RFC3339),
			userAgent,
		}
		if err := f.SetSheetRow(scanSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("failed to write scan row: %w", err)
		}
	}

	if err := f.SetColWidth(scanSheet, "E", "E", 60); err != nil {
		return 0, err
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}

	return len(scans), nil
}
