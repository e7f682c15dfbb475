package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/felixroth/cableplan/pkg/models"
)

var bomHeaders = []string{"#", "Name", "Brand", "Category", "Unit", "Qty", "Unit Price", "Margin %", "Total"}

// WriteXLSX renders the model as a workbook with a summary sheet and one
// sheet per item type.
func WriteXLSX(m Model, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, m); err != nil {
		return err
	}
	if err := writeItemSheet(f, "Products", m.Products); err != nil {
		return err
	}
	if err := writeItemSheet(f, "Services", m.Services); err != nil {
		return err
	}

	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, m Model) error {
	const sheet = "Summary"
	f.SetSheetName("Sheet1", sheet)

	rows := [][]any{
		{"Survey", m.SurveyName},
		{"Generated", m.GeneratedAt.Format("2006-01-02 15:04 UTC")},
		{},
		{"Buildings", m.Stats.TotalBuildings},
		{"Floors", m.Stats.TotalFloors},
		{"Rooms", m.Stats.TotalRooms},
		{"Outlets", m.Stats.TotalOutlets},
		{"Racks", m.Stats.TotalRacks},
		{"Devices", m.Stats.TotalDevices},
		{"Cable terminations", m.Stats.TotalCableTerminations},
		{"Fiber strands", m.Stats.TotalFiberStrands},
		{"Terminated fiber strands", m.Stats.TotalTerminatedFiberStrands},
		{},
		{"Products total", m.ProductTotals.Total.InexactFloat64()},
		{"Services total", m.ServiceTotals.Total.InexactFloat64()},
		{"Margin total", m.Overall.TotalMargin.InexactFloat64()},
		{"Grand total", m.Overall.Total.InexactFloat64()},
	}

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	// Per-building block below the totals.
	base := len(rows) + 2
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", base), "Building"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", base), "Rooms"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("C%d", base), "Outlets"); err != nil {
		return err
	}
	for i, b := range m.Buildings {
		row := base + 1 + i
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.Name); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.Stats.TotalRooms); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.Stats.TotalOutlets); err != nil {
			return err
		}
	}
	return nil
}

func writeItemSheet(f *excelize.File, sheet string, items []models.EquipmentItem) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for j, h := range bomHeaders {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, it := range items {
		values := []any{
			i + 1,
			it.Name,
			it.Brand,
			it.Category,
			it.Unit,
			it.Quantity,
			it.Price.InexactFloat64(),
			it.Margin.InexactFloat64(),
			it.TotalPrice.InexactFloat64(),
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if len(items) > 0 {
		end, err := excelize.CoordinatesToCellName(len(bomHeaders), len(items)+1)
		if err != nil {
			return err
		}
		if err := f.AutoFilter(sheet, "A1:"+end, nil); err != nil {
			return err
		}
	}
	return nil
}
