package services

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"dashboard/internal/domain"
	"dashboard/internal/liststate"
	"dashboard/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ExportService renders the current page of a view as a PDF table.
type ExportService struct {
	RequestID string
	Now       func() time.Time
}

// exportData is everything the PDF shows, detached from the live view.
type exportData struct {
	Entity  string
	Title   string
	Status  liststate.Status
	Records []liststate.Record
}

func (s ExportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ExportPage renders the rows the view currently shows. It does not fetch.
func (s ExportService) ExportPage(v *View) ([]byte, string, error) {
	d := exportData{
		Entity:  v.Entity(),
		Title:   v.Definition.Title,
		Status:  v.Status(),
		Records: v.Records(),
	}
	utils.LogEvent(s.RequestID, "export", "export_page",
		fmt.Sprintf("entity=%s page=%d rows=%d", d.Entity, d.Status.Meta.CurrentPage, len(d.Records)))
	return buildPagePDF(d, s.now())
}

func buildPagePDF(d exportData, now time.Time) ([]byte, string, error) {
	title := safe(d.Title, strings.ToUpper(d.Entity))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, strings.ToUpper(title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	meta := d.Status.Meta
	lines := []string{
		fmt.Sprintf("Page       : %d of %d", meta.CurrentPage, meta.TotalPages),
		fmt.Sprintf("Total rows : %s", utils.FormatCount(int64(meta.TotalItems))),
		fmt.Sprintf("Sorted by  : %s %s", safe(d.Status.Filters.SortBy, "-"), d.Status.Filters.SortOrder),
		fmt.Sprintf("Filters    : %s", safe(describeFilters(d.Status.Filters), "none")),
		fmt.Sprintf("Generated  : %s", utils.FormatDateTime(now)),
	}
	for _, s := range lines {
		pdf.Cell(0, 6, s)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(12, 7, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 7, "ID", "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Name", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	offset := (meta.CurrentPage - 1) * meta.ItemsPerPage
	for i, r := range d.Records {
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", offset+i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 7, utils.Truncate(safe(r.RecordID(), "-"), 22), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, utils.Truncate(safe(utils.NormalizeSpace(r.RecordLabel()), "-"), 70), "1", 1, "L", false, 0, "")
	}
	if len(d.Records) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 7, "No rows on this page.", "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "failed to render pdf", Err: err}
	}

	filename := fmt.Sprintf("%s_page%d_%s.pdf", safeFilenamePart(d.Entity), meta.CurrentPage, now.Format("20060102"))
	return buf.Bytes(), filename, nil
}

// describeFilters lists the filters that narrow the page, skipping "" and all.
func describeFilters(fs liststate.FilterState) string {
	keys := make([]string, 0, len(fs.Filters))
	for k := range fs.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := []string{}
	for _, k := range keys {
		v := strings.TrimSpace(fmt.Sprint(fs.Filters[k]))
		if v == "" || v == liststate.All {
			continue
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ", ")
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
