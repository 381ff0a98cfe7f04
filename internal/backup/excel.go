package backup

import (
	"fmt"
	"io"

	"rezervator/internal/models"

	"github.com/xuri/excelize/v2"
)

// WriteExcel создает XLSX с одной страницей резерваций. Порядок строк —
// порядок на входе.
func WriteExcel(w io.Writer, reservations []models.Reservation) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Rezervacije"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for col, title := range csvHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range reservations {
		row := i + 2

		table := ""
		if r.TableNumber != 0 {
			table = fmt.Sprintf("%d", r.TableNumber)
		}

		values := []interface{}{
			r.Name,
			models.FormatPhone(r.Phone),
			models.FormatDisplayDate(r.Date),
			r.Time,
			r.Guests,
			table,
			r.Type,
			r.Notes,
			r.CreatedBy,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 20)
	_ = f.SetColWidth(sheetName, "C", "G", 12)
	_ = f.SetColWidth(sheetName, "H", "I", 25)

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing xlsx: %w", err)
	}
	return nil
}

// ExcelFilename — имя XLSX-файла с ISO-датой.
func ExcelFilename(date string) string {
	return "rezervacije_" + date + ".xlsx"
}
