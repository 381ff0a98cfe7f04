package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound — запись с таким id отсутствует (stale id у вызывающего).
	ErrNotFound = errors.New("reservation not found")

	// ErrStorageUnavailable — сбой сети или БД; операция не применена.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStorageFull — запись не поместилась (quota); данные не потеряны,
	// вызывающему следует предложить backup и чистку.
	ErrStorageFull = errors.New("storage full")
)

// ValidationError несет полный список нарушенных правил: проверки не
// останавливаются на первом нарушении.
type ValidationError struct {
	Rules []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Rules, "; ")
}

// ImportFormatError — нераспознанный или поврежденный backup-документ.
// Импорт прерван, прежнее состояние не тронуто.
type ImportFormatError struct {
	Cause string
}

func (e *ImportFormatError) Error() string {
	return fmt.Sprintf("unrecognized backup document: %s", e.Cause)
}
