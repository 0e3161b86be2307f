package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"qrlink-backend/internal/domains/link"
)

const exportSheetName = "Links"

var exportHeaders = []string{
	"ID",
	"Slug",
	"Redirect URL",
	"Destination",
	"Scan Count",
	"Dots",
	"Corners",
	"Logo",
	"Created At",
	"Updated At",
}

// Export trả về file xlsx chứa toàn bộ link của owner
func (s *linkService) Export(ctx context.Context, owner uuid.UUID) ([]byte, error) {
	links, err := s.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	f, err := buildLinksExcelFile(links)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func buildLinksExcelFile(links []link.LinkResponse) (*excelize.File, error) {
	f := excelize.NewFile()

	// Rename default sheet
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	// Row 1: header
	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(exportSheetName, "A1", lastHeader, headerStyle)
	}

	// Data rows, bắt đầu từ row 2
	for i, l := range links {
		row := []interface{}{
			l.ID.String(),
			l.Slug,
			l.RedirectURL,
			l.Destination,
			l.ScanCount,
			string(l.Style.Dots),
			string(l.Style.Corners),
			l.Style.Logo,
			l.CreatedAt.Format(time.RFC3339),
			l.UpdatedAt.Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(exportSheetName, "C", "D", 40)
	return f, nil
}
