package invoice

import (
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/clinic/clinic/pkg/format"
)

// WritePDF renders a printable A4 copy of inv to w.
func WritePDF(w io.Writer, inv *Row, money *format.Formatter, loc *time.Location) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	// Core fonts are cp1252; names and currency symbols such as € need mapping.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Clinic Invoice", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 7, "Invoice "+inv.ID.String(), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	phone := "-"
	if inv.Phone != nil && *inv.Phone != "" {
		phone = *inv.Phone
	}
	detail(pdf, "Patient", tr(inv.PatientName))
	detail(pdf, "Phone", tr(phone))
	detail(pdf, "Doctor", tr(inv.DoctorName))
	detail(pdf, "Date", format.Date(inv.Date, loc))
	detail(pdf, "Reason", tr(inv.Reason))
	detail(pdf, "Status", strings.ToUpper(inv.Status))

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 10, tr("Total: "+money.Currency(inv.Amount)), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetY(pdf.GetY() + 12)
	pdf.CellFormat(0, 10, "This is a computer generated invoice", "", 1, "R", false, 0, "")

	return pdf.Output(w)
}

func detail(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(45, 10, label, "1", 0, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 10, value, "1", 1, "", false, 0, "")
}
