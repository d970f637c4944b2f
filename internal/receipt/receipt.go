// Package receipt renders order receipts and invoices as PDF.
package receipt

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/MikeMC777/cafeteria-api/internal/money"
	"github.com/MikeMC777/cafeteria-api/internal/order"
)

type Customer struct {
	Name  string
	Email string
}

type Document struct {
	Title    string
	Business string
	Order    *order.Order
	Items    []order.Item
	Customer Customer
	// Address is printed one entry per line.
	Address    []string
	ReceiptURL string
	IssuedAt   time.Time
}

func Filename(orderID string) string { return "factura-" + orderID + ".pdf" }

func TicketFilename(orderID string) string { return "ticket-orden-" + orderID + ".pdf" }

// Render draws the document. The QR encodes the order id and total so the
// counter can look the order up.
func Render(d Document) ([]byte, error) {
	if d.Order == nil {
		return nil, fmt.Errorf("receipt: order is required")
	}
	if d.Title == "" {
		d.Title = "Factura"
	}
	if d.IssuedAt.IsZero() {
		d.IssuedAt = time.Now()
	}
	o := d.Order
	cur := o.Currency

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(d.Title+" "+o.ID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(d.Business))
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(d.Title))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		"Pedido: " + o.ID,
		"Fecha: " + o.CreatedAt.Format("02/01/2006 15:04"),
		"Emitida: " + d.IssuedAt.Format("02/01/2006 15:04"),
		"Estado: " + string(o.Status),
		"Pago: " + o.PaymentMethod,
	} {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, tr("Cliente"))
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	for _, line := range append([]string{d.Customer.Name, d.Customer.Email}, d.Address...) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	qrPNG, err := qrcode.Encode(fmt.Sprintf("%s|%d|%s", o.ID, o.Total, cur), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("receipt qr: %w", err)
	}
	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 20, 35, 35, false, imageOpts, 0, "")

	// items table
	widths := []float64{90, 20, 35, 35}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 220, 205)
	for i, h := range []string{"Producto", "Cant.", "Precio", "Subtotal"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, it := range d.Items {
		name := it.ProductName
		if name == "" {
			name = it.ProductID
		}
		pdf.CellFormat(widths[0], 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money.Format(it.Price, ""), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money.Format(it.Subtotal(), ""), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, money.Format(o.Total, cur), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	if d.ReceiptURL != "" {
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, tr("Comprobante de pago"), "", 1, "L", false, 0, d.ReceiptURL)
	}
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 6, tr("Gracias por tu compra."))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}
