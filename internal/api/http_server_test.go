package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rezervator/internal/config"
	"rezervator/internal/events"
	"rezervator/internal/models"
	"rezervator/internal/repository"
	"rezervator/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*HTTPServer, *service.ReservationService) {
	t.Helper()
	logger := zerolog.Nop()
	svc := service.NewReservationService(repository.NewMemoryStore(), events.NewEventBus(), nil, &logger)
	require.NoError(t, svc.Refetch(context.Background()))

	tables := []models.Table{
		{Number: 1, Seats: 2, Zone: "sala"},
		{Number: 2, Seats: 4, Zone: "terasa"},
	}

	srv := NewHTTPServer(config.ServerConfig{Port: 0}, svc, tables, &logger)
	return srv, svc
}

func doRequest(t *testing.T, srv *HTTPServer, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format(models.DateLayout)
}

func reservationBody(name, date, timeStr string) []byte {
	doc := fmt.Sprintf(`{"name":%q,"phone":"0641234567","date":%q,"time":%q,"guests":4}`, name, date, timeStr)
	return []byte(doc)
}

func TestCreateAndListReservations(t *testing.T) {
	srv, _ := newTestServer(t)
	date := futureDate(5)

	t.Run("Create", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reservations", reservationBody("Marko", date, "19:30"))
		require.Equal(t, http.StatusCreated, rec.Code)

		var created models.Reservation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Marko", created.Name)
	})

	t.Run("ListAll", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/reservations", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Reservations []models.Reservation `json:"reservations"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Reservations, 1)
	})

	t.Run("FilterByDate", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/reservations?date="+date, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Reservations []models.Reservation `json:"reservations"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Reservations, 1)

		rec = doRequest(t, srv, http.MethodGet, "/api/v1/reservations?date="+futureDate(30), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Reservations)
	})

	t.Run("BadDateFilter", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/reservations?date=01.07.2025", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reservations", []byte("{broken"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateValidationErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	body := []byte(`{"name":"A","phone":"0641234567","date":"` + futureDate(1) + `","time":"19:00","guests":0}`)
	rec := doRequest(t, srv, http.MethodPost, "/api/v1/reservations", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Errors, 2)
	assert.Contains(t, resp.Errors, "Ime mora imati najmanje 2 karaktera")
	assert.Contains(t, resp.Errors, "Broj gostiju mora biti između 1 i 50")
}

func TestUpdateAndDeleteReservation(t *testing.T) {
	srv, svc := newTestServer(t)
	ctx := context.Background()

	draft := models.Reservation{Name: "Marko", Phone: "0641234567", Date: futureDate(5), Time: "19:00", Guests: 4}
	require.NoError(t, svc.Add(ctx, &draft))

	t.Run("Update", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPut, "/api/v1/reservations/"+draft.ID, []byte(`{"guests":6}`))
		require.Equal(t, http.StatusOK, rec.Code)

		var updated models.Reservation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, 6, updated.Guests)
		assert.Equal(t, "Marko", updated.Name)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPut, "/api/v1/reservations/no-such-id", []byte(`{"guests":2}`))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/api/v1/reservations/"+draft.ID, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())

		rec = doRequest(t, srv, http.MethodDelete, "/api/v1/reservations/"+draft.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("EmptyID", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodDelete, "/api/v1/reservations/", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestStatsEndpoint(t *testing.T) {
	srv, svc := newTestServer(t)
	ctx := context.Background()

	draft := models.Reservation{Name: "Marko", Phone: "0641234567", Date: futureDate(5), Time: "19:00", Guests: 4}
	require.NoError(t, svc.Add(ctx, &draft))

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Upcoming)
	assert.Equal(t, 4.0, stats.AvgGuestsPerReservation)
}

func TestTablesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Tables []models.Table `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Tables, 2)
	assert.Equal(t, "sala", resp.Tables[0].Zone)
}

func TestBackupEndpoints(t *testing.T) {
	srv, svc := newTestServer(t)
	ctx := context.Background()

	draft := models.Reservation{Name: "Marko", Phone: "0641234567", Date: futureDate(5), Time: "19:00", Guests: 4}
	require.NoError(t, svc.Add(ctx, &draft))

	var exported []byte

	t.Run("Export", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/backup", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "rezervacije_")

		exported = rec.Body.Bytes()
		assert.Contains(t, string(exported), `"version": "1.0"`)
	})

	t.Run("RestoreReplacesCollection", func(t *testing.T) {
		second := models.Reservation{Name: "Ana", Phone: "0651112233", Date: futureDate(6), Time: "12:00", Guests: 2}
		require.NoError(t, svc.Add(ctx, &second))
		require.Len(t, svc.List(), 2)

		rec := doRequest(t, srv, http.MethodPost, "/api/v1/backup", exported)
		require.Equal(t, http.StatusOK, rec.Code)

		restored := svc.List()
		require.Len(t, restored, 1)
		assert.Equal(t, draft.ID, restored[0].ID)
	})

	t.Run("MalformedDocument", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/backup", []byte("not json"))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		// Прежнее состояние нетронуто
		assert.Len(t, svc.List(), 1)
	})
}

func TestResetEndpoint(t *testing.T) {
	srv, svc := newTestServer(t)
	ctx := context.Background()

	draft := models.Reservation{Name: "Marko", Phone: "0641234567", Date: futureDate(5), Time: "19:00", Guests: 4}
	require.NoError(t, svc.Add(ctx, &draft))

	t.Run("RequiresConfirmation", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reset", []byte(`{}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Len(t, svc.List(), 1)
	})

	t.Run("Confirmed", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/reset", []byte(`{"confirm":true}`))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, svc.List())
	})
}

func TestExportEndpoints(t *testing.T) {
	srv, svc := newTestServer(t)
	ctx := context.Background()
	date := futureDate(5)

	draft := models.Reservation{Name: "Marko", Phone: "0641234567", Date: date, Time: "19:00", Guests: 4}
	require.NoError(t, svc.Add(ctx, &draft))

	t.Run("CSV", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/export/csv?date="+date, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "Ime,Telefon,Datum,Vreme,Gosti,Sto,Tip,Napomene,Kreirao", lines[0])
		assert.Contains(t, lines[1], "Marko")
	})

	t.Run("CSVBadDate", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/export/csv?date=nope", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Excel", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/export/xlsx", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
		assert.Equal(t, []byte{'P', 'K'}, rec.Body.Bytes()[:2])
	})
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthzDeadStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := zerolog.Nop()
	store := repository.NewRedisStore(client, &logger)

	svc := service.NewReservationService(store, events.NewEventBus(), nil, &logger)
	require.NoError(t, svc.Refetch(context.Background()))
	srv := NewHTTPServer(config.ServerConfig{Port: 0}, svc, nil, &logger)

	rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Недоступное хранилище не маскируется статическим "ok"
	mr.Close()
	rec = doRequest(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/api/v1/reservations"},
		{http.MethodPost, "/api/v1/stats"},
		{http.MethodPut, "/api/v1/tables"},
		{http.MethodGet, "/api/v1/reset"},
		{http.MethodPost, "/api/v1/export/csv"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := doRequest(t, srv, tc.method, tc.path, nil)
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}

func TestRateLimiting(t *testing.T) {
	logger := zerolog.Nop()
	svc := service.NewReservationService(repository.NewMemoryStore(), nil, nil, &logger)
	require.NoError(t, svc.Refetch(context.Background()))

	srv := NewHTTPServer(config.ServerConfig{
		Port:      0,
		RateLimit: config.RateLimitConfig{RPS: 1, Burst: 2},
	}, svc, nil, &logger)

	statuses := make(map[int]int)
	for i := 0; i < 5; i++ {
		rec := doRequest(t, srv, http.MethodGet, "/healthz", nil)
		statuses[rec.Code]++
	}

	assert.Equal(t, 2, statuses[http.StatusOK])
	assert.Equal(t, 3, statuses[http.StatusTooManyRequests])
}
