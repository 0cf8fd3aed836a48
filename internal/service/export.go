package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"CampusResponseAPI/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// BuildFeedPDF renders a point-in-time snapshot of the feed as a printable
// roster for handoff between staff shifts.
func BuildFeedPDF(snap FeedSnapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Campus Response - Alert Feed", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Campus Response - Alert Feed")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Filter: %s    Generated: %s",
		snap.Filter, snap.LoadedAt.Format(time.RFC1123)))
	pdf.Ln(10)

	writeSection(pdf, "Pending Alerts", snap.Pending)
	pdf.Ln(6)
	writeSection(pdf, "Completed Alerts", snap.Completed)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render feed PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func writeSection(pdf *gofpdf.Fpdf, title string, alerts []models.Alert) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("%s (%d)", title, len(alerts)))
	pdf.Ln(8)

	if len(alerts) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(0, 6, "None")
		pdf.Ln(6)
		return
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(22, 7, "Type", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Student", "1", 0, "L", false, 0, "")
	pdf.CellFormat(48, 7, "Location", "1", 0, "L", false, 0, "")
	pdf.CellFormat(36, 7, "Submitted", "1", 0, "L", false, 0, "")
	pdf.CellFormat(34, 7, "Description", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, a := range alerts {
		pdf.CellFormat(22, 7, strings.ToUpper(a.AlertType), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, studentLabel(a), "1", 0, "L", false, 0, "")
		pdf.CellFormat(48, 7, locationLabel(a), "1", 0, "L", false, 0, "")
		pdf.CellFormat(36, 7, a.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(34, 7, descriptionLabel(a), "1", 1, "L", false, 0, "")
	}
}

func studentLabel(a models.Alert) string {
	if a.Student == nil {
		return a.StudentID
	}
	return fmt.Sprintf("%s (%s)", a.Student.FullName, a.Student.StudentID)
}

func locationLabel(a models.Alert) string {
	if a.LocationLat == nil || a.LocationLng == nil {
		return "-"
	}
	return fmt.Sprintf("%.6f, %.6f", *a.LocationLat, *a.LocationLng)
}

func descriptionLabel(a models.Alert) string {
	if a.Description == nil {
		return "-"
	}
	return *a.Description
}
