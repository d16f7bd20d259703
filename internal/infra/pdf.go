package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bedouifedy-oss/dima-voyage/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateInvoicePDF renders an A4 balance summary for a booking. The
// paid / balance figures come from the booking's own derivation methods
// so the printed invoice always matches the system of record.
// Requires booking.Payments and booking.Client preloaded.
// Returns the absolute path to the generated file.
func GenerateInvoicePDF(booking *model.Booking, agencyName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("invoice_%s.pdf", booking.Ref)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 36

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, agencyName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Booking Invoice", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Booking block
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Reference: "+booking.Ref, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if booking.Client != nil {
		pdf.CellFormat(contentW, 6, "Client: "+booking.Client.Name, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 6, "Service: "+booking.BookingType, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, "Date: "+booking.CreatedAt.Format("02/01/2006"), "", 1, "L", false, 0, "")
	if booking.Description != "" {
		pdf.MultiCell(contentW, 6, "Details: "+booking.Description, "", "L", false)
	}
	pdf.Ln(4)

	pdf.Line(18, pdf.GetY(), pageW-18, pdf.GetY())
	pdf.Ln(4)

	// Payment history
	colDate := contentW * 0.25
	colType := contentW * 0.25
	colMethod := contentW * 0.25
	colAmount := contentW * 0.25

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colDate, 7, "Date", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colType, 7, "Type", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colMethod, 7, "Method", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, 7, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, p := range booking.Payments {
		amount := p.Amount.StringFixed(2)
		if p.TransactionType == model.TransactionRefund {
			amount = "-" + amount
		}
		pdf.CellFormat(colDate, 6, p.Date.Format("02/01/2006"), "", 0, "L", false, 0, "")
		pdf.CellFormat(colType, 6, p.TransactionType, "", 0, "L", false, 0, "")
		pdf.CellFormat(colMethod, 6, p.Method, "", 0, "L", false, 0, "")
		pdf.CellFormat(colAmount, 6, amount, "", 1, "R", false, 0, "")
	}
	if len(booking.Payments) == 0 {
		pdf.CellFormat(contentW, 6, "No payments recorded", "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.Line(18, pdf.GetY(), pageW-18, pdf.GetY())
	pdf.Ln(4)

	// Totals: paid = Σpayments − Σrefunds, balance = total − paid
	paid := booking.PaidAmount()
	balance := booking.Outstanding()

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW*0.75, 7, "Total amount:", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.25, 7, booking.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW*0.75, 7, "Paid:", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.25, 7, paid.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	label := "Balance due:"
	if balance.IsNegative() {
		label = "Credit balance:"
	}
	pdf.CellFormat(contentW*0.75, 8, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.25, 8, balance.Abs().StringFixed(2), "", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(contentW, 5, "Thank you for travelling with "+agencyName, "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// GenerateDocumentPDF renders a generated document (confirmation,
// attestation, dummy reservation) as a simple A4 label/value sheet.
func GenerateDocumentPDF(doc *model.GeneratedDocument, agencyName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	var data map[string]string
	if err := json.Unmarshal(doc.Data, &data); err != nil {
		return "", fmt.Errorf("pdf: decode document data: %w", err)
	}

	title := "Document"
	if doc.Template != nil {
		title = doc.Template.Name
	}

	fileName := fmt.Sprintf("doc_%s.pdf", doc.ID)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 36

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, agencyName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.Line(18, pdf.GetY(), pageW-18, pdf.GetY())
	pdf.Ln(4)

	// Ordered fields first (template order), then the auto references.
	keys := make([]string, 0, len(data))
	if doc.Template != nil && len(doc.Template.FieldsConfig) > 0 {
		var fields []struct {
			Key   string `json:"key"`
			Label string `json:"label"`
		}
		if err := json.Unmarshal(doc.Template.FieldsConfig, &fields); err == nil {
			for _, f := range fields {
				keys = append(keys, f.Key)
			}
		}
	}
	for _, k := range []string{"reservation_number", "company_reference", "confidential_code"} {
		if _, ok := data[k]; ok {
			keys = append(keys, k)
		}
	}

	pdf.SetFont("Helvetica", "", 11)
	for _, k := range keys {
		v, ok := data[k]
		if !ok {
			continue
		}
		label := strings.ReplaceAll(k, "_", " ")
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW*0.4, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(contentW*0.6, 8, v, "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(contentW, 5, "Issued on "+doc.CreatedAt.Format("02/01/2006"), "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
