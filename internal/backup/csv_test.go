package backup

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"rezervator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	reservations := []models.Reservation{
		sample("a", "2025-07-01", "19:00"),
	}
	reservations[0].TableNumber = 5
	reservations[0].Notes = `kaže "pored prozora"`

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, reservations))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"Ime", "Telefon", "Datum", "Vreme", "Gosti", "Sto", "Tip", "Napomene", "Kreirao"}, records[0])
	assert.Equal(t, []string{"Marko", "0641234567", "2025-07-01", "19:00", "4", "5", "standard", `kaže "pored prozora"`, "Ana"}, records[1])
}

func TestWriteCSVEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	// Только шапка
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 1)
}

func TestWriteCSVUnassignedTableIsEmpty(t *testing.T) {
	reservations := []models.Reservation{sample("a", "2025-07-01", "19:00")}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, reservations))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "", records[1][5])
}

func TestWriteExcelProducesWorkbook(t *testing.T) {
	reservations := []models.Reservation{
		sample("a", "2025-07-01", "19:00"),
		sample("b", "2025-07-02", "12:00"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, reservations))

	// XLSX — это zip-архив; проверяем сигнатуру
	require.Greater(t, buf.Len(), 4)
	assert.Equal(t, []byte{'P', 'K'}, buf.Bytes()[:2])
}
