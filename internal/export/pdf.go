package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/meatshare/orderbook-backend/pkg/db/models"
	pkgerrors "github.com/meatshare/orderbook-backend/pkg/errors"
)

// Renderer produces the printable confirmed-orders sheet handed to the
// butcher on pickup day.
type Renderer interface {
	ConfirmedOrdersPDF(title string, orders []models.Order) ([]byte, error)
}

type renderer struct{}

// NewRenderer builds the PDF renderer.
func NewRenderer() Renderer {
	return renderer{}
}

const (
	colName  = 45.0
	colPhone = 35.0
	colItems = 80.0
	colTotal = 30.0
	rowLine  = 6.0
)

func (renderer) ConfirmedOrdersPDF(title string, orders []models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	writeHeader(pdf)

	pdf.SetFont("Helvetica", "", 10)
	grandTotal := decimal.Zero
	for _, order := range orders {
		writeRow(pdf, order)
		grandTotal = grandTotal.Add(order.TotalPrice)
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colName+colPhone+colItems, rowLine+2, "Grand Total", "T", 0, "R", false, 0, "")
	grandText, _ := grandTotal.Round(2).Float64()
	pdf.CellFormat(colTotal, rowLine+2, fmt.Sprintf("$%.2f", grandText), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render pdf")
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(colName, rowLine+2, "Name", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colPhone, rowLine+2, "Phone", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colItems, rowLine+2, "Items", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colTotal, rowLine+2, "Total", "1", 1, "R", true, 0, "")
}

// writeRow emits one order. Items are listed one per line inside the cell,
// so the row height follows the longest column.
func writeRow(pdf *gofpdf.Fpdf, order models.Order) {
	items := itemLines(order)
	rows := float64(len(items))
	if rows < 1 {
		rows = 1
	}
	height := rows * rowLine

	name, phone := "", ""
	if order.Party != nil {
		name = order.Party.DisplayName
		phone = order.Party.Phone
	}

	x, y := pdf.GetXY()
	pdf.CellFormat(colName, height, name, "1", 0, "L", false, 0, "")
	pdf.CellFormat(colPhone, height, phone, "1", 0, "L", false, 0, "")

	pdf.MultiCell(colItems, rowLine, strings.Join(items, "\n"), "1", "L", false)
	pdf.SetXY(x+colName+colPhone+colItems, y)

	total, _ := order.TotalPrice.Round(2).Float64()
	pdf.CellFormat(colTotal, height, fmt.Sprintf("$%.2f", total), "1", 1, "R", false, 0, "")
	pdf.SetY(y + height)
}

// itemLines renders each line as "Label: qty unit", falling back to the
// stored summary text for rows without structured lines.
func itemLines(order models.Order) []string {
	if len(order.Lines) == 0 {
		parts := strings.Split(order.ItemsSummary, ", ")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	lines := make([]string, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, fmt.Sprintf("%s: %s %s", line.Label, line.Quantity.String(), line.Unit))
	}
	return lines
}
