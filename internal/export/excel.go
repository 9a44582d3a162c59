package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"lumiere/internal/domain"
	"lumiere/internal/models"
)

const sheetName = "Reservations"

// Exporter writes reservation listings to Excel files for staff who want
// something they can print or mail.
type Exporter struct {
	store  domain.Store
	dir    string
	logger *zerolog.Logger
}

func NewExporter(store domain.Store, dir string, logger *zerolog.Logger) *Exporter {
	return &Exporter{store: store, dir: dir, logger: logger}
}

// Reservations exports reservations matching the optional status and date
// filters and returns the file path.
func (e *Exporter) Reservations(ctx context.Context, status, date string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	reservations, err := e.store.ListReservations(ctx, status, date)
	if err != nil {
		return "", fmt.Errorf("error listing reservations: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Guest", "Phone", "Date", "Time", "Duration (min)", "Guests",
		"Table", "Status", "Special requests", "Booked by", "Created", "Confirmed",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range reservations {
		row := i + 2
		confirmed := ""
		if r.ConfirmedAt != nil {
			confirmed = r.ConfirmedAt.Format("02.01.2006 15:04")
		}
		tableLabel := ""
		if r.TableNumber > 0 {
			tableLabel = fmt.Sprintf("№%d (%d seats)", r.TableNumber, r.TableCapacity)
		}

		values := []interface{}{
			r.ID, r.HolderName, r.Contact(), r.Date, r.Time, r.DurationMinutes,
			r.Guests, tableLabel, r.Status, r.SpecialRequests, r.BookedByRole,
			r.CreatedAt.Format("02.01.2006 15:04"), confirmed,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		if styleID, err := statusStyle(f, r.Status); err == nil {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(values), row)
			_ = f.SetCellStyle(sheetName, first, last, styleID)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "C", 20)
	_ = f.SetColWidth(sheetName, "D", "I", 14)
	_ = f.SetColWidth(sheetName, "J", "M", 22)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("reservations_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("rows", len(reservations)).Msg("Excel file created")
	return filePath, nil
}

func statusStyle(f *excelize.File, status string) (int, error) {
	var color string
	switch status {
	case models.StatusConfirmed:
		color = "#C6EFCE"
	case models.StatusHeld, models.StatusPending:
		color = "#FFEB9C"
	case models.StatusCancelled, models.StatusExpired:
		color = "#FFC7CE"
	default:
		color = "#FFFFFF"
	}
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
}
