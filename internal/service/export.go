package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/iliyamo/raffle-reservation/internal/model"
)

// ExportPDF renders the entries selected by f as an A4 table: slot, name,
// contact, status and reservation time.  The header line carries title and
// the paid / total count.
func (s *AdminService) ExportPDF(ctx context.Context, w io.Writer, title string, f EntryFilter) error {
	entries, err := s.Search(ctx, f)
	if err != nil {
		return err
	}
	return writeEntriesPDF(w, title, entries, s.clock.Now())
}

var pdfColumns = []struct {
	title string
	width float64
	align string
}{
	{"Slot", 18, "C"},
	{"Name", 70, "L"},
	{"Contact", 40, "L"},
	{"Status", 22, "C"},
	{"Reserved at", 40, "L"},
}

func writeEntriesPDF(w io.Writer, title string, entries []model.Entry, at time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	paid := 0
	for _, e := range entries {
		if e.Paid {
			paid++
		}
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d entries, %d paid. Generated %s UTC", len(entries), paid, at.UTC().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
	}
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, e := range entries {
		if pdf.GetY()+7 > pageH-bottom-10 {
			pdf.AddPage()
			header()
		}
		row := []string{
			strconv.Itoa(e.SlotNumber),
			tr(e.Name),
			e.ContactNumber,
			e.StatusLabel(),
			e.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, row[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
