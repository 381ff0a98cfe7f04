package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rezervator/internal/backup"
	"rezervator/internal/domain"
	"rezervator/internal/metrics"
	"rezervator/internal/models"
)

const maxBodyBytes = 4 << 20

// handleReservations serves GET (list, optionally filtered by date) and
// POST (create) on the collection.
func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservations")

	switch r.Method {
	case http.MethodGet:
		date := strings.TrimSpace(r.URL.Query().Get("date"))
		var reservations []models.Reservation
		if date != "" {
			if _, err := time.Parse(models.DateLayout, date); err != nil {
				writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
				return
			}
			reservations = s.svc.ForDate(date)
		} else {
			reservations = s.svc.List()
		}
		if reservations == nil {
			reservations = []models.Reservation{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})

	case http.MethodPost:
		var reservation models.Reservation
		if err := decodeBody(r, &reservation); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if err := s.svc.Add(r.Context(), &reservation); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, reservation)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleReservationByID serves PUT (partial update) and DELETE on a
// single record addressed by id.
func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservation")

	const prefix = "/api/v1/reservations/"
	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var patch models.ReservationPatch
		if err := decodeBody(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		updated, err := s.svc.Update(r.Context(), id, patch)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.svc.Remove(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("stats")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *HTTPServer) handleTables(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("tables")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tables := s.tables
	if tables == nil {
		tables = []models.Table{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

// handleBackup serves GET (export the full backup document) and POST
// (restore from an uploaded document).
func (s *HTTPServer) handleBackup(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("backup")

	switch r.Method {
	case http.MethodGet:
		doc, err := s.svc.Export()
		if err != nil {
			s.writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", backup.Filename(time.Now())))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)

	case http.MethodPost:
		doc, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}

		meta, err := s.svc.Import(r.Context(), doc)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, meta)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleReset(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reset")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Сброс необратим; требуем явного подтверждения в теле запроса.
	var body struct {
		Confirm bool `json:"confirm"`
	}
	if err := decodeBody(r, &body); err != nil || !body.Confirm {
		writeError(w, http.StatusBadRequest, "reset requires {\"confirm\": true}")
		return
	}

	if err := s.svc.Reset(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *HTTPServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_csv")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reservations, date, ok := s.exportSelection(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", backup.CSVFilename(date)))
	if err := backup.WriteCSV(w, reservations); err != nil {
		s.logger.Error().Err(err).Msg("csv export failed")
	}
}

func (s *HTTPServer) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_xlsx")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reservations, date, ok := s.exportSelection(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", backup.ExcelFilename(date)))
	if err := backup.WriteExcel(w, reservations); err != nil {
		s.logger.Error().Err(err).Msg("xlsx export failed")
	}
}

// exportSelection resolves the optional ?date filter for export
// endpoints. Reports false after writing an error response.
func (s *HTTPServer) exportSelection(w http.ResponseWriter, r *http.Request) ([]models.Reservation, string, bool) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		return s.svc.List(), time.Now().Format(models.DateLayout), true
	}

	if _, err := time.Parse(models.DateLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return nil, "", false
	}
	return s.svc.ForDate(date), date, true
}

// handleHealth пингует хранилище: мертвый backend — 503, не "ok".
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("health check: storage ping failed")
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return decoder.Decode(dst)
}

// writeServiceError maps domain errors onto HTTP status codes.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"errors": validationErr.Rules,
		})
		return
	}

	var importErr *domain.ImportFormatError
	if errors.As(err, &importErr) {
		writeError(w, http.StatusBadRequest, importErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "reservation not found")
	case errors.Is(err, domain.ErrStorageFull):
		writeError(w, http.StatusInsufficientStorage, "storage full")
	case errors.Is(err, domain.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
