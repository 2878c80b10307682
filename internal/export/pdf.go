// Package export renders participant lists for organisers.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/go-pdf/fpdf"
)

const timeLayout = "02 Jan 2006 15:04 MST"

type column struct {
	title string
	width float64
	value func(r *model.Registration) string
}

var columns = []column{
	{"Token", 18, func(r *model.Registration) string { return strconv.Itoa(r.Token) }},
	{"Name", 50, func(r *model.Registration) string { return r.Name }},
	{"Team", 40, func(r *model.Registration) string { return r.TeamName }},
	{"Description", 82, func(r *model.Registration) string { return r.Description }},
}

// ParticipantsPDF writes an A4 participant sheet for event to w. regs are
// printed in the order given.
func ParticipantsPDF(w io.Writer, event *model.Event, regs []model.Registration, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(event.Title+" participants", true)
	pdf.SetCreator("event-portal", false)
	pdf.SetCreationDate(generatedAt)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated %s", generatedAt.Format(timeLayout)), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(event.Title), "", "L", false)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Scheduled: "+event.ScheduledAt.Format(timeLayout), "", 1, "L", false, 0, "")
	if event.Description != "" {
		pdf.MultiCell(0, 5, tr(event.Description), "", "L", false)
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Total registrations: %d", len(regs)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range columns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for i := range regs {
		r := &regs[i]
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for _, c := range columns {
			pdf.CellFormat(c.width, 7, tr(fit(pdf, tr, c.value(r), c.width-2)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render participants pdf: %w", err)
	}
	return pdf.Output(w)
}

// fit truncates the UTF-8 string s by runes until its translated form fits
// in width at the current font. The result is still UTF-8.
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if pdf.GetStringWidth(tr(s)) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
