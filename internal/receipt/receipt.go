// Package receipt renders booked appointments as customer receipts, either
// as plain text or as a small PDF ticket.
package receipt

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/example/salon-scheduler/internal/domain"
)

const generatedLayout = "2006-01-02 15:04:05"

// FileName is the receipt file name for appt without a directory.
func FileName(appt domain.Appointment, ext string) string {
	return fmt.Sprintf("receipt_%s_%s_%s.%s", safe(appt.FirstName), safe(appt.LastName), appt.Date, ext)
}

// safe keeps path separators out of user supplied names.
func safe(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
}

// Text renders the plain text receipt.
func Text(appt domain.Appointment, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("\n========================================\n")
	b.WriteString("          BEAUTY SALON RECEIPT\n")
	b.WriteString("========================================\n\n")
	b.WriteString("Customer Information:\n")
	fmt.Fprintf(&b, "  Name: %s %s\n", appt.FirstName, appt.LastName)
	fmt.Fprintf(&b, "  Phone: %s\n\n", appt.PhoneNumber)
	b.WriteString("Appointment Details:\n")
	fmt.Fprintf(&b, "  Date: %s\n", appt.Date)
	fmt.Fprintf(&b, "  Time: %s\n", appt.Time)
	fmt.Fprintf(&b, "  Service: %s\n\n", appt.ServiceName)
	b.WriteString("Payment Information:\n")
	fmt.Fprintf(&b, "  Service Price: %s€\n\n", appt.ServicePrice.StringFixed(2))
	b.WriteString("========================================\n\n")
	b.WriteString("Thank you for choosing our Beauty Salon!\n\n")
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.Format(generatedLayout))
	return b.String()
}

// PDF writes the receipt as a single page ticket.
func PDF(w io.Writer, appt domain.Appointment, generatedAt time.Time) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 120},
	})
	pdf.SetMargins(5, 5, 5)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 10

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "Beauty Salon", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Appointment receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.Line(5, pdf.GetY(), pageW-5, pdf.GetY())
	pdf.Ln(2)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW*0.35, 5, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(contentW*0.65, 5, tr(value), "", 1, "L", false, 0, "")
	}
	row("Name", appt.FirstName+" "+appt.LastName)
	row("Phone", appt.PhoneNumber)
	row("Date", appt.Date)
	row("Time", appt.Time)
	row("Service", appt.ServiceName)

	pdf.Ln(2)
	pdf.Line(5, pdf.GetY(), pageW-5, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW*0.5, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.5, 6, tr(appt.ServicePrice.StringFixed(2)+" €"), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for choosing our Beauty Salon!", "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 4, "Generated "+generatedAt.Format(generatedLayout), "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

// Writer stores a text receipt for every booking.
type Writer struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// NewWriter returns a Writer for dir. The directory is created on first use.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, now: time.Now, logger: logger}
}

// WithClock overrides the generation timestamp source.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Write renders appt and returns the receipt path. An existing receipt for
// the same customer and date is replaced.
func (w *Writer) Write(appt domain.Appointment) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("receipt: create dir: %w", err)
	}
	path := filepath.Join(w.dir, FileName(appt, "txt"))
	if err := os.WriteFile(path, []byte(Text(appt, w.now())), 0o644); err != nil {
		return "", fmt.Errorf("receipt: write %s: %w", path, err)
	}
	w.logger.Debug("receipt stored", "path", path, "appointment_id", appt.ID)
	return path, nil
}
