package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Church is the issuing organisation printed on receipts.
type Church struct {
	Name    string
	Address string
	Phone   string
	TaxID   string
}

// Receipt holds everything printed on a donation receipt.
type Receipt struct {
	Number      string
	Date        time.Time
	Amount      int64
	Method      string
	Description string
	DonorName   string
	DonorEmail  string
	DonorPhone  string
	Church      Church
}

// ReceiptRenderer draws donation receipts and annual giving statements with gofpdf.
type ReceiptRenderer struct{}

// NewReceiptRenderer constructs a receipt renderer.
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render produces the receipt PDF bytes.
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.Number == "" {
		return nil, fmt.Errorf("receipt number required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Recibo "+receipt.Number), false)
	pdf.AddPage()

	drawChurchHeader(pdf, tr, receipt.Church, 20)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(20, 80, tr("RECIBO DE DOAÇÃO"))

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 100, tr("Recibo Nº: "+receipt.Number))
	pdf.Text(120, 100, "Data: "+receipt.Date.Format("02/01/2006"))

	pdf.Rect(20, 110, 170, 30, "D")
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(25, 125, "Valor:")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(25, 135, FormatBRL(receipt.Amount))

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 160, "Recebemos de:")
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(20, 170, tr(receipt.DonorName))
	pdf.SetFont("Helvetica", "", 10)
	if receipt.DonorEmail != "" {
		pdf.Text(20, 180, tr("Email: "+receipt.DonorEmail))
	}
	if receipt.DonorPhone != "" {
		pdf.Text(20, 190, tr("Telefone: "+receipt.DonorPhone))
	}

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 210, "Referente a:")
	pdf.Text(20, 220, tr(receipt.Description))
	pdf.Text(20, 230, tr("Forma de pagamento: "+receipt.Method))

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(20, 250, tr("Este recibo serve como comprovante de doação para fins de"))
	pdf.Text(20, 260, tr("declaração de imposto de renda, conforme legislação vigente."))
	pdf.Line(120, 280, 190, 280)
	pdf.Text(120, 290, tr("Assinatura do Responsável"))

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// drawChurchHeader prints the issuing church and its contact lines at the top of the page.
func drawChurchHeader(pdf *gofpdf.Fpdf, tr func(string) string, church Church, titleSize float64) {
	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.Text(20, 30, tr(church.Name))

	pdf.SetFont("Helvetica", "", 12)
	y := 40.0
	for _, line := range []string{
		church.Address,
		prefixed("Tel: ", church.Phone),
		prefixed("CNPJ: ", church.TaxID),
	} {
		if line == "" {
			continue
		}
		pdf.Text(20, y, tr(line))
		y += 10
	}
}

func prefixed(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}
