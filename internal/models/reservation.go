package models

import (
	"encoding/json"
	"strings"
	"time"
)

// BirthdayDetails несет поля, осмысленные только для дней рождения.
// Для стандартных резерваций указатель в Reservation равен nil.
type BirthdayDetails struct {
	AdultsCount   int
	ChildrenCount int
	Menu          string
}

// Reservation — единственная сущность системы. Дата и время всегда
// хранятся в канонической форме (YYYY-MM-DD / HH:MM); форматы для
// отображения выводятся на лету и никогда не сохраняются.
type Reservation struct {
	ID          string
	Name        string
	Phone       string
	Date        string
	Time        string
	Guests      int
	TableNumber int // 0 — стол не назначен
	Type        string
	Birthday    *BirthdayDetails
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// reservationWire — плоская форма документа, совместимая со старыми
// backup-файлами: для стандартных резерваций поля рождения дня равны null.
type reservationWire struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Guests        int       `json:"guests"`
	AdultsCount   *int      `json:"adultsCount"`
	ChildrenCount *int      `json:"childrenCount"`
	BirthdayMenu  *string   `json:"birthdayMenu"`
	TableNumber   *int      `json:"tableNumber"`
	Type          string    `json:"type"`
	Notes         *string   `json:"notes"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (r Reservation) MarshalJSON() ([]byte, error) {
	w := reservationWire{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     r.Phone,
		Date:      r.Date,
		Time:      r.Time,
		Guests:    r.Guests,
		Type:      r.Type,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	if r.Birthday != nil {
		adults := r.Birthday.AdultsCount
		children := r.Birthday.ChildrenCount
		menu := r.Birthday.Menu
		w.AdultsCount = &adults
		w.ChildrenCount = &children
		w.BirthdayMenu = &menu
	}
	if r.TableNumber != 0 {
		table := r.TableNumber
		w.TableNumber = &table
	}
	if r.Notes != "" {
		notes := r.Notes
		w.Notes = &notes
	}

	return json.Marshal(w)
}

func (r *Reservation) UnmarshalJSON(data []byte) error {
	var w reservationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	r.ID = w.ID
	r.Name = w.Name
	r.Phone = w.Phone
	r.Date = w.Date
	r.Time = w.Time
	r.Guests = w.Guests
	r.Type = w.Type
	r.CreatedBy = w.CreatedBy
	r.CreatedAt = w.CreatedAt
	r.UpdatedAt = w.UpdatedAt

	r.TableNumber = 0
	if w.TableNumber != nil {
		r.TableNumber = *w.TableNumber
	}
	r.Notes = ""
	if w.Notes != nil {
		r.Notes = *w.Notes
	}

	if r.Type == "" {
		r.Type = TypeStandard
	}

	r.Birthday = nil
	if r.Type == TypeBirthday {
		details := &BirthdayDetails{}
		if w.AdultsCount != nil {
			details.AdultsCount = *w.AdultsCount
		}
		if w.ChildrenCount != nil {
			details.ChildrenCount = *w.ChildrenCount
		}
		if w.BirthdayMenu != nil {
			details.Menu = *w.BirthdayMenu
		}
		r.Birthday = details
		r.Guests = details.AdultsCount + details.ChildrenCount
	}

	return nil
}

// Normalize приводит запись к канонической форме: trim строк,
// усечение секунд во времени, выведение guests для дней рождения.
func (r *Reservation) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = NormalizeTime(r.Time)
	r.Notes = strings.TrimSpace(r.Notes)
	r.CreatedBy = strings.TrimSpace(r.CreatedBy)

	if r.Type == "" {
		r.Type = TypeStandard
	}
	if r.Type != TypeBirthday {
		r.Birthday = nil
	}
	if r.Type == TypeBirthday && r.Birthday != nil {
		// guests всегда производное для дней рождения
		r.Guests = r.Birthday.AdultsCount + r.Birthday.ChildrenCount
	}
	if r.CreatedBy == "" {
		r.CreatedBy = DefaultCreatedBy
	}
}

// ReservationPatch — частичное обновление; nil-поле означает "не трогать".
// Форма полей совпадает с плоской wire-формой записи.
type ReservationPatch struct {
	Name          *string `json:"name"`
	Phone         *string `json:"phone"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	Guests        *int    `json:"guests"`
	AdultsCount   *int    `json:"adultsCount"`
	ChildrenCount *int    `json:"childrenCount"`
	BirthdayMenu  *string `json:"birthdayMenu"`
	TableNumber   *int    `json:"tableNumber"` // 0 снимает назначение стола
	Type          *string `json:"type"`
	Notes         *string `json:"notes"`
	CreatedBy     *string `json:"createdBy"`
}

// Apply накладывает patch на запись (shallow overwrite). ID, CreatedAt
// и UpdatedAt patch никогда не трогает.
func (p ReservationPatch) Apply(r *Reservation) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.Guests != nil {
		r.Guests = *p.Guests
	}
	if p.TableNumber != nil {
		r.TableNumber = *p.TableNumber
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	if p.CreatedBy != nil {
		r.CreatedBy = *p.CreatedBy
	}
	if p.Type != nil {
		r.Type = *p.Type
	}

	if r.Type == TypeBirthday {
		if r.Birthday == nil {
			r.Birthday = &BirthdayDetails{}
		}
		if p.AdultsCount != nil {
			r.Birthday.AdultsCount = *p.AdultsCount
		}
		if p.ChildrenCount != nil {
			r.Birthday.ChildrenCount = *p.ChildrenCount
		}
		if p.BirthdayMenu != nil {
			r.Birthday.Menu = *p.BirthdayMenu
		}
	} else {
		r.Birthday = nil
	}
}
