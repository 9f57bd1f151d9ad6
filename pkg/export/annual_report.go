package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// AnnualReportLine is one donation listed on an annual report.
type AnnualReportLine struct {
	Date          time.Time
	Description   string
	Method        string
	Amount        int64
	ReceiptNumber string
}

// AnnualReport is a donor's giving statement for one calendar year.
type AnnualReport struct {
	Year        int
	DonorName   string
	DonorEmail  string
	DonorPhone  string
	Lines       []AnnualReportLine
	Church      Church
	GeneratedAt time.Time
}

// Total sums the listed donations in centavos.
func (r AnnualReport) Total() int64 {
	var total int64
	for _, line := range r.Lines {
		total += line.Amount
	}
	return total
}

const annualReportPageBottom = 270.0

// RenderAnnualReport draws the yearly giving statement, paging the donation table as needed.
func (r *ReceiptRenderer) RenderAnnualReport(report AnnualReport) ([]byte, error) {
	if report.Year <= 0 {
		return nil, fmt.Errorf("report year required")
	}
	if len(report.Lines) == 0 {
		return nil, fmt.Errorf("annual report without donations")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(fmt.Sprintf("Relatório anual %d - %s", report.Year, report.DonorName)), false)
	pdf.AddPage()

	drawChurchHeader(pdf, tr, report.Church, 18)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(20, 80, tr(fmt.Sprintf("RELATÓRIO ANUAL DE DOAÇÕES - %d", report.Year)))

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 100, "Doador:")
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(20, 110, tr(report.DonorName))
	pdf.SetFont("Helvetica", "", 10)
	contact := report.DonorEmail
	if report.DonorPhone != "" {
		if contact != "" {
			contact += " | "
		}
		contact += report.DonorPhone
	}
	if contact != "" {
		pdf.Text(20, 118, tr(contact))
	}

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(20, 140, "Resumo:")
	pdf.Text(20, 150, tr(fmt.Sprintf("Total de doações: %d", len(report.Lines))))
	pdf.Text(20, 160, "Valor total: "+FormatBRL(report.Total()))

	y := 180.0
	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(20, y, "Data")
		pdf.Text(45, y, tr("Descrição"))
		pdf.Text(110, y, tr("Método"))
		pdf.Text(135, y, "Recibo")
		pdf.Text(170, y, "Valor")
		pdf.Line(20, y+2, 190, y+2)
		y += 10
		pdf.SetFont("Helvetica", "", 10)
	}
	header()

	for _, line := range report.Lines {
		if y > annualReportPageBottom {
			pdf.AddPage()
			y = 30
			header()
		}
		pdf.Text(20, y, line.Date.Format("02/01/2006"))
		pdf.Text(45, y, tr(truncate(line.Description, 32)))
		pdf.Text(110, y, line.Method)
		pdf.Text(135, y, line.ReceiptNumber)
		pdf.Text(170, y, FormatBRL(line.Amount))
		y += 8
	}

	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(20, 280, tr("Este relatório foi gerado automaticamente pelo sistema de gestão da igreja."))
	pdf.Text(20, 290, "Gerado em: "+generated.Format("02/01/2006 15:04"))

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render annual report: %w", err)
	}
	return buf.Bytes(), nil
}
