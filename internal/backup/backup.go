// Package backup сериализует коллекцию в переносимый JSON-документ и
// восстанавливает из него. Принимаются две формы: конверт с метаданными
// и старый bare list.
package backup

import (
	"bytes"
	"encoding/json"
	"time"

	"rezervator/internal/domain"
	"rezervator/internal/models"
)

// Envelope — форма backup-документа с метаданными экспорта.
type Envelope struct {
	Reservations      []models.Reservation `json:"reservations"`
	ExportDate        time.Time            `json:"exportDate"`
	Version           string               `json:"version"`
	TotalReservations int                  `json:"totalReservations"`
}

// Metadata — сведения о распознанном документе.
type Metadata struct {
	ExportDate        *time.Time `json:"exportDate"`
	Version           string     `json:"version"`
	TotalReservations int        `json:"totalReservations"`
}

// Serialize упаковывает коллекцию в конверт текущей версии.
func Serialize(reservations []models.Reservation, now time.Time) ([]byte, error) {
	if reservations == nil {
		reservations = []models.Reservation{}
	}

	envelope := Envelope{
		Reservations:      reservations,
		ExportDate:        now,
		Version:           models.BackupVersion,
		TotalReservations: len(reservations),
	}

	return json.MarshalIndent(envelope, "", "  ")
}

// envelopeProbe позволяет отличить конверт без списка от конверта с
// пустым списком: reservations обязано присутствовать.
type envelopeProbe struct {
	Reservations      json.RawMessage `json:"reservations"`
	ExportDate        *time.Time      `json:"exportDate"`
	Version           string          `json:"version"`
	TotalReservations int             `json:"totalReservations"`
}

// Parse распознает документ. Любая нераспознанная форма или битый
// синтаксис — ImportFormatError; частичный результат не возвращается.
func Parse(doc []byte) ([]models.Reservation, Metadata, error) {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 {
		return nil, Metadata{}, &domain.ImportFormatError{Cause: "prazan dokument"}
	}

	switch trimmed[0] {
	case '[':
		// Старый формат: bare list без метаданных
		var reservations []models.Reservation
		if err := json.Unmarshal(trimmed, &reservations); err != nil {
			return nil, Metadata{}, &domain.ImportFormatError{Cause: "neispravan JSON: " + err.Error()}
		}
		meta := Metadata{
			Version:           models.BackupVersionLegacy,
			TotalReservations: len(reservations),
		}
		return reservations, meta, nil

	case '{':
		var probe envelopeProbe
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, Metadata{}, &domain.ImportFormatError{Cause: "neispravan JSON: " + err.Error()}
		}
		if probe.Reservations == nil {
			return nil, Metadata{}, &domain.ImportFormatError{Cause: "nepoznat format backup fajla"}
		}

		var reservations []models.Reservation
		if err := json.Unmarshal(probe.Reservations, &reservations); err != nil {
			return nil, Metadata{}, &domain.ImportFormatError{Cause: "neispravna lista rezervacija: " + err.Error()}
		}

		version := probe.Version
		if version == "" {
			version = models.BackupVersion
		}
		total := probe.TotalReservations
		if total == 0 {
			total = len(reservations)
		}

		return reservations, Metadata{
			ExportDate:        probe.ExportDate,
			Version:           version,
			TotalReservations: total,
		}, nil
	}

	return nil, Metadata{}, &domain.ImportFormatError{Cause: "nepoznat format backup fajla"}
}

// Filename — имя backup-файла с ISO-датой, по соглашению экспорта.
func Filename(now time.Time) string {
	return "rezervacije_" + now.Format("2006-01-02_150405") + ".json"
}
