package backup

import (
	"encoding/csv"
	"io"
	"strconv"

	"rezervator/internal/models"
)

// csvHeader — фиксированная шапка CSV-экспорта.
var csvHeader = []string{"Ime", "Telefon", "Datum", "Vreme", "Gosti", "Sto", "Tip", "Napomene", "Kreirao"}

// WriteCSV пишет коллекцию в CSV. Порядок строк — порядок на входе;
// вызывающий сортирует по (date, time) заранее.
func WriteCSV(w io.Writer, reservations []models.Reservation) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range reservations {
		table := ""
		if r.TableNumber != 0 {
			table = strconv.Itoa(r.TableNumber)
		}

		record := []string{
			r.Name,
			r.Phone,
			r.Date,
			r.Time,
			strconv.Itoa(r.Guests),
			table,
			r.Type,
			r.Notes,
			r.CreatedBy,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CSVFilename — имя CSV-файла с ISO-датой.
func CSVFilename(date string) string {
	return "rezervacije_" + date + ".csv"
}
