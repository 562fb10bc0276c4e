package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator — interface so handlers can be tested with a stub.
type Generator interface {
	GenerateAnswerSheet(data AnswerData) (string, error)
	GenerateSummaryReport(data SummaryData) (string, error)
}

type ReportGenerator struct {
	RootDir  string // storage root, e.g. "./files"
	FontPath string // path to a TTF, e.g. "assets/fonts/DejaVuSans.ttf"
	fontName string
}

type AnswerData struct {
	QuestionID int
	Title      string
	Category   string
	AskedAt    time.Time
	Answer     string
	ReviewedBy string // empty when the AI draft was quick-approved by an admin
	ReviewedAt time.Time
	Filename   string // base name only; generated when empty
}

type SummaryData struct {
	GeneratedAt         time.Time
	TotalUsers          int
	UsersByRole         map[string]int
	QuestionsByStatus   map[string]int
	QuestionsByCategory map[string]int
	FeedbackCount       int
	Filename            string
}

func NewReportGenerator(rootDir, fontPath string) *ReportGenerator {
	return &ReportGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "DejaVu",
	}
}

// GenerateAnswerSheet renders a printable copy of an answered question
// for the asker to take to an in-person consultation.
func (g *ReportGenerator) GenerateAnswerSheet(data AnswerData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("answer_question_%d.pdf", data.QuestionID)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Question #%d", data.QuestionID), false)
	pdf.SetAuthor("Medical Q&A", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	g.addUTF8Font(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "ANSWER SHEET", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("Question #%06d  ·  asked %s", data.QuestionID, data.AskedAt.Format("02.01.2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Question")
	g.kvLine(pdf, "Title", data.Title)
	g.kvLine(pdf, "Category", data.Category)
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Answer")
	pdf.SetFont(g.fontName, "", 11)
	pdf.MultiCell(0, 6, data.Answer, "", "L", false)
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Review")
	if data.ReviewedBy != "" {
		g.kvLine(pdf, "Reviewed by", data.ReviewedBy)
		g.kvLine(pdf, "Reviewed at", data.ReviewedAt.Format("02.01.2006 15:04"))
	} else {
		pdf.SetFont(g.fontName, "", 11)
		pdf.MultiCell(0, 6, "Approved via the editorial quick-review queue.", "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5,
		"This answer is informational and is not a substitute for an in-person examination by a licensed physician.",
		"", "L", false)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// GenerateSummaryReport renders the admin analytics snapshot.
func (g *ReportGenerator) GenerateSummaryReport(data SummaryData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("summary_%s.pdf", data.GeneratedAt.Format("20060102_1504"))
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addUTF8Font(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "PLATFORM SUMMARY", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 7, "Generated "+data.GeneratedAt.Format("02.01.2006 15:04"), "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.sectionTitle(pdf, "Users")
	g.kvLine(pdf, "Total", fmt.Sprintf("%d", data.TotalUsers))
	for _, k := range sortedKeys(data.UsersByRole) {
		g.kvLine(pdf, k, fmt.Sprintf("%d", data.UsersByRole[k]))
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Questions by status")
	for _, k := range sortedKeys(data.QuestionsByStatus) {
		g.kvLine(pdf, k, fmt.Sprintf("%d", data.QuestionsByStatus[k]))
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Questions by category")
	for _, k := range sortedKeys(data.QuestionsByCategory) {
		g.kvLine(pdf, k, fmt.Sprintf("%d", data.QuestionsByCategory[k]))
	}
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Feedback")
	g.kvLine(pdf, "Entries", fmt.Sprintf("%d", data.FeedbackCount))

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ===== helpers =====

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *ReportGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename) // safety
	return filepath.Join(g.RootDir, filename), nil
}

func (g *ReportGenerator) addUTF8Font(pdf *gofpdf.Fpdf) {
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}
