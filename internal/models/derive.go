package models

import (
	"math"
	"sort"
	"time"
)

// Stats — агрегированные счетчики по коллекции. "Сегодня" и "этот месяц"
// считаются от локальной календарной даты вызывающего в момент вызова.
type Stats struct {
	Total                   int     `json:"total"`
	Today                   int     `json:"today"`
	ThisMonth               int     `json:"thisMonth"`
	Upcoming                int     `json:"upcoming"`
	Past                    int     `json:"past"`
	Birthdays               int     `json:"birthdays"`
	Standard                int     `json:"standard"`
	AvgGuestsPerReservation float64 `json:"avgGuestsPerReservation"`
}

// SortByTime возвращает копию, отсортированную по времени по возрастанию.
// Лексикографическое сравнение корректно: каноническая форма HH:MM
// фиксированной ширины с ведущими нулями.
func SortByTime(reservations []Reservation) []Reservation {
	out := append([]Reservation(nil), reservations...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time < out[j].Time
	})
	return out
}

// SortByDateTime возвращает копию, отсортированную по (date, time).
func SortByDateTime(reservations []Reservation) []Reservation {
	out := append([]Reservation(nil), reservations...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

// FilterByDate возвращает резервации на указанную календарную дату.
func FilterByDate(reservations []Reservation, date string) []Reservation {
	var out []Reservation
	for _, r := range reservations {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

// GroupByDate группирует коллекцию по дням; внутри дня сортировка по времени.
func GroupByDate(reservations []Reservation) map[string][]Reservation {
	grouped := make(map[string][]Reservation)
	for _, r := range reservations {
		grouped[r.Date] = append(grouped[r.Date], r)
	}
	for date, day := range grouped {
		grouped[date] = SortByTime(day)
	}
	return grouped
}

// CalculateStats считает агрегаты относительно переданного момента времени.
func CalculateStats(reservations []Reservation, now time.Time) Stats {
	today := now.Format(DateLayout)
	thisMonth := today[:7] // YYYY-MM

	stats := Stats{Total: len(reservations)}
	guestsSum := 0

	for _, r := range reservations {
		guestsSum += r.Guests

		if r.Date == today {
			stats.Today++
		}
		if len(r.Date) >= 7 && r.Date[:7] == thisMonth {
			stats.ThisMonth++
		}
		if r.Date > today {
			stats.Upcoming++
		}
		if r.Date < today {
			stats.Past++
		}

		switch r.Type {
		case TypeBirthday:
			stats.Birthdays++
		default:
			stats.Standard++
		}
	}

	if len(reservations) > 0 {
		avg := float64(guestsSum) / float64(len(reservations))
		stats.AvgGuestsPerReservation = math.Round(avg*10) / 10
	}

	return stats
}
