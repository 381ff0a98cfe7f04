package google

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"rezervator/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const reservationsSheetName = "Rezervacije"

// SheetsService зеркалирует коллекцию резерваций в Google-таблицу.
// Таблица — read-only витрина для менеджера; источником истины всегда
// остается хранилище.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsService, error) {
	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %v", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %v", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %v", err)
	}

	return &SheetsService{service: srv, spreadsheetID: spreadsheetID}, nil
}

// TestConnection проверяет доступ к таблице.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, reservationsSheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %v", err)
	}
	return nil
}

// GetServiceAccountEmail возвращает email сервисного аккаунта
func (s *SheetsService) GetServiceAccountEmail(credentialsFile string) (string, error) {
	file, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", err
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal(file, &creds); err != nil {
		return "", err
	}

	return creds.ClientEmail, nil
}

// ReplaceReservationsSheet полностью перезаписывает лист резерваций:
// очистка, затем запись заголовка и строк в порядке (date, time).
func (s *SheetsService) ReplaceReservationsSheet(ctx context.Context, reservations []models.Reservation) error {
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, reservationsSheetName+"!A:I", &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear sheet: %v", err)
	}

	values := [][]interface{}{
		{"Ime", "Telefon", "Datum", "Vreme", "Gosti", "Sto", "Tip", "Napomene", "Kreirao"},
	}

	for _, r := range models.SortByDateTime(reservations) {
		table := ""
		if r.TableNumber != 0 {
			table = fmt.Sprintf("%d", r.TableNumber)
		}
		values = append(values, []interface{}{
			r.Name,
			models.FormatPhone(r.Phone),
			models.FormatDisplayDate(r.Date),
			r.Time,
			r.Guests,
			table,
			r.Type,
			r.Notes,
			r.CreatedBy,
		})
	}

	rangeData := fmt.Sprintf("%s!A1:I%d", reservationsSheetName, len(values))
	valueRange := &sheets.ValueRange{Values: values}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()

	return err
}
