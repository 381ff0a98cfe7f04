package models

import (
	"strings"
	"time"
)

// NormalizeTime приводит время к канонической форме HH:MM.
// Форма HH:MM:SS принимается и усекается до минут.
func NormalizeTime(raw string) string {
	t := strings.TrimSpace(raw)
	if len(t) == 8 {
		if _, err := time.Parse("15:04:05", t); err == nil {
			return t[:5]
		}
	}
	return t
}

// FormatDisplayDate переводит каноническую дату в формат отображения
// (DD.MM.YYYY). Это presentation transform: результат не сохраняется.
func FormatDisplayDate(date string) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format(DisplayDateLayout)
}

// FormatPhone форматирует сербские мобильные номера для отображения.
// Каноническим остается введенная строка, форматирование — производное.
func FormatPhone(phone string) string {
	if phone == "" {
		return ""
	}

	var cleaned strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			cleaned.WriteRune(c)
		}
	}
	digits := cleaned.String()

	switch {
	case len(digits) == 9 && strings.HasPrefix(digits, "6"):
		return "0" + digits[:2] + "/" + digits[2:5] + "-" + digits[5:]
	case len(digits) == 10 && strings.HasPrefix(digits, "06"):
		return digits[:3] + "/" + digits[3:6] + "-" + digits[6:]
	}

	// Номер в незнакомом формате возвращаем как есть
	return phone
}
