package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"AlreadyCanonical", "19:30", "19:30"},
		{"WithSeconds", "19:30:00", "19:30"},
		{"Trimmed", "  09:15 ", "09:15"},
		{"Garbage", "abc", "abc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeTime(tc.input))
		})
	}
}

func TestFormatDisplayDate(t *testing.T) {
	assert.Equal(t, "01.07.2025", FormatDisplayDate("2025-07-01"))
	// Неразобранная дата возвращается как есть
	assert.Equal(t, "not-a-date", FormatDisplayDate("not-a-date"))
}

func TestFormatPhone(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"NineDigitsMobile", "641234567", "064/123-4567"},
		{"TenDigitsMobile", "0641234567", "064/123-4567"},
		{"WithSeparators", "064 123-45-67", "064/123-4567"},
		{"Landline", "0113456789", "0113456789"},
		{"Empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatPhone(tc.input))
		})
	}
}
