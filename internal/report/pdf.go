package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/felixroth/cableplan/pkg/models"
)

// WritePDF renders the model as an A4 portrait document: a summary page
// followed by the BOM tables.
func WritePDF(m Model, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(190, 10, "Bill of Materials")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(95, 6, fmt.Sprintf("Survey: %s", m.SurveyName))
	pdf.Cell(95, 6, fmt.Sprintf("Generated: %s", m.GeneratedAt.Format("02-Jan-2006 15:04")))
	pdf.Ln(12)

	writeStats(pdf, m)
	writeItemTable(pdf, "Products", m.Products)
	writeItemTable(pdf, "Services", m.Services)
	writeTotals(pdf, m)

	return pdf.Output(w)
}

func writeStats(pdf *gofpdf.Fpdf, m Model) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(190, 8, "Site summary")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	rows := [][2]string{
		{"Buildings", fmt.Sprintf("%d", m.Stats.TotalBuildings)},
		{"Floors", fmt.Sprintf("%d", m.Stats.TotalFloors)},
		{"Rooms", fmt.Sprintf("%d", m.Stats.TotalRooms)},
		{"Outlets", fmt.Sprintf("%d", m.Stats.TotalOutlets)},
		{"Racks", fmt.Sprintf("%d", m.Stats.TotalRacks)},
		{"Devices", fmt.Sprintf("%d", m.Stats.TotalDevices)},
		{"Fiber strands (terminated/total)", fmt.Sprintf("%d/%d", m.Stats.TotalTerminatedFiberStrands, m.Stats.TotalFiberStrands)},
	}
	for _, row := range rows {
		pdf.Cell(80, 6, row[0])
		pdf.Cell(110, 6, row[1])
		pdf.Ln(6)
	}
	pdf.Ln(6)
}

func writeItemTable(pdf *gofpdf.Fpdf, title string, items []models.EquipmentItem) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(190, 8, title)
	pdf.Ln(8)

	if len(items) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(190, 6, "none")
		pdf.Ln(10)
		return
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(70, 7, "Name", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Unit Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Margin %", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Total", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, it := range items {
		pdf.CellFormat(70, 7, it.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, it.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, it.Margin.StringFixed(1), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, it.TotalPrice.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

func writeTotals(pdf *gofpdf.Fpdf, m Model) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(150, 8, "Products total")
	pdf.CellFormat(40, 8, m.ProductTotals.Total.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.Cell(150, 8, "Services total")
	pdf.CellFormat(40, 8, m.ServiceTotals.Total.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.Cell(150, 8, "Margin total")
	pdf.CellFormat(40, 8, m.Overall.TotalMargin.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.Cell(150, 8, "Grand total")
	pdf.CellFormat(40, 8, m.Overall.Total.StringFixed(2), "1", 1, "R", false, 0, "")
}
