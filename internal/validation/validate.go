// Package validation содержит чистые проверки черновика резервации.
// Никакого доступа к сети или хранилищу; все правила независимы и
// проверяются целиком, чтобы вызывающий получил полный список нарушений.
package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"rezervator/internal/models"
)

type Result struct {
	Valid  bool
	Errors []string
}

// Validate проверяет черновик при создании: включает правило
// "дата не в прошлом", которое действует только в момент создания.
func Validate(r *models.Reservation, now time.Time) Result {
	errs := checkFields(r)

	if r.Date != "" {
		if d, err := time.Parse(models.DateLayout, r.Date); err == nil {
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			if d.Before(today) {
				errs = append(errs, "Datum ne može biti u prošlosti")
			}
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidateUpdate проверяет результат слияния patch с существующей
// записью. Правило о прошедшей дате здесь не применяется: редактирование
// старых резерваций допустимо.
func ValidateUpdate(r *models.Reservation) Result {
	errs := checkFields(r)
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func checkFields(r *models.Reservation) []string {
	var errs []string

	// Правила определены над trimmed-значениями; Normalize обычно уже
	// обрезал пробелы, но функция не должна зависеть от этого.
	if utf8.RuneCountInString(strings.TrimSpace(r.Name)) < models.MinNameLength {
		errs = append(errs, "Ime mora imati najmanje 2 karaktera")
	}

	if len(strings.TrimSpace(r.Phone)) < models.MinPhoneLength {
		errs = append(errs, "Telefon mora imati najmanje 6 cifara")
	}

	if r.Date == "" {
		errs = append(errs, "Datum je obavezan")
	} else if _, err := time.Parse(models.DateLayout, r.Date); err != nil {
		errs = append(errs, "Datum mora biti u formatu YYYY-MM-DD")
	}

	if r.Time == "" {
		errs = append(errs, "Vreme je obavezno")
	} else if _, err := time.Parse(models.TimeLayout, r.Time); err != nil {
		errs = append(errs, "Vreme mora biti u formatu HH:MM")
	}

	if r.Guests < models.MinGuests || r.Guests > models.MaxGuests {
		errs = append(errs, "Broj gostiju mora biti između 1 i 50")
	}

	if r.TableNumber != 0 && (r.TableNumber < models.MinTableNumber || r.TableNumber > models.MaxTableNumber) {
		errs = append(errs, "Broj stola mora biti između 1 i 100")
	}

	if r.Type == models.TypeBirthday {
		if r.Birthday == nil {
			errs = append(errs, "Broj odraslih i dece je obavezan za rođendane")
		} else if r.Birthday.Menu != models.BirthdayMenuBasic && r.Birthday.Menu != models.BirthdayMenuPremium {
			errs = append(errs, "Rođendanski meni nije važeća opcija")
		}
	}

	return errs
}
