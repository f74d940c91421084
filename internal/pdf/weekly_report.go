package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/yukikurage/team-task-api/internal/reporting"
)

// Generator renders reports as PDF documents.
type Generator interface {
	WeeklyReport(w io.Writer, data WeeklyReportData) error
}

// WeeklyReportData is the content of one weekly report document.
type WeeklyReportData struct {
	UserName string
	Username string
	Report   reporting.Weekly
}

// WeeklyReportGenerator draws weekly reports with the built-in Helvetica font.
type WeeklyReportGenerator struct {
	fontName string
}

func NewWeeklyReportGenerator() *WeeklyReportGenerator {
	return &WeeklyReportGenerator{fontName: "Helvetica"}
}

var columnWidths = []float64{80, 30, 40, 20}

// WeeklyReport writes the report to w.
func (g *WeeklyReportGenerator) WeeklyReport(w io.Writer, data WeeklyReportData) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetTitle(fmt.Sprintf("Weekly report %s", data.Report.Week), true)
	doc.SetAuthor("Team Task API", false)
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont(g.fontName, "B", 18)
	doc.CellFormat(0, 10, "Weekly Report", "", 1, "C", false, 0, "")

	doc.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("%s  (%s - %s)",
		data.Report.Week,
		data.Report.Start.Format("2006-01-02"),
		data.Report.End.Format("2006-01-02"),
	)
	doc.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(doc)

	g.kvLine(doc, "User", tr(fmt.Sprintf("%s (@%s)", data.UserName, data.Username)))
	g.kvLine(doc, "Tasks", fmt.Sprintf("%d", len(data.Report.Tasks)))
	doc.Ln(2)
	g.hr(doc)

	g.tableHeader(doc, "Title", "Status", "Completed", "Progress")
	doc.SetFont(g.fontName, "", 10)
	if len(data.Report.Tasks) == 0 {
		doc.CellFormat(0, 7, "No tasks were created this week.", "", 1, "L", false, 0, "")
	}
	for _, task := range data.Report.Tasks {
		doc.CellFormat(columnWidths[0], 7, tr(truncate(task.Title, 45)), "1", 0, "L", false, 0, "")
		doc.CellFormat(columnWidths[1], 7, string(task.Status), "1", 0, "L", false, 0, "")
		doc.CellFormat(columnWidths[2], 7, formatDate(task.CompletionDate), "1", 0, "L", false, 0, "")
		doc.CellFormat(columnWidths[3], 7, fmt.Sprintf("%d%%", task.Progress), "1", 1, "R", false, 0, "")
	}

	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(g.fontName, "", 9)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", doc.PageNo()), "", 0, "C", false, 0, "")
	})

	return doc.Output(w)
}

func (g *WeeklyReportGenerator) tableHeader(doc *gofpdf.Fpdf, titles ...string) {
	doc.SetFont(g.fontName, "B", 10)
	doc.SetFillColor(230, 230, 230)
	for i, title := range titles {
		ln := 0
		if i == len(titles)-1 {
			ln = 1
		}
		doc.CellFormat(columnWidths[i], 7, title, "1", ln, "L", true, 0, "")
	}
}

func (g *WeeklyReportGenerator) kvLine(doc *gofpdf.Fpdf, key, val string) {
	doc.SetFont(g.fontName, "B", 11)
	doc.CellFormat(30, 6, key+":", "", 0, "L", false, 0, "")
	doc.SetFont(g.fontName, "", 11)
	doc.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *WeeklyReportGenerator) hr(doc *gofpdf.Fpdf) {
	y := doc.GetY() + 1.5
	doc.SetLineWidth(0.2)
	doc.Line(20, y, 190, y)
	doc.SetY(y + 2)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
