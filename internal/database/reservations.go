package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rezervator/internal/domain"
	"rezervator/internal/models"

	"github.com/google/uuid"
)

const reservationColumns = `id, name, phone, date, time, guests, adults_count,
       children_count, birthday_menu, table_number, type, notes, created_by,
       created_at, updated_at`

// storageErr оборачивает сбой драйвера так, чтобы вызывающий видел
// ErrStorageUnavailable через errors.Is.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}

// List возвращает всю коллекцию, отсортированную по (date ASC, time ASC).
func (db *DB) List(ctx context.Context) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY date ASC, time ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("list reservations", err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, storageErr("scan reservation", err)
		}
		reservations = append(reservations, r)
	}

	if err = rows.Err(); err != nil {
		return nil, storageErr("list reservations", err)
	}

	return reservations, nil
}

// Create назначает id и timestamps и вставляет запись.
func (db *DB) Create(ctx context.Context, r *models.Reservation) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	query := `INSERT INTO reservations (` + reservationColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.ExecContext(ctx, query, insertArgs(r)...)
	if err != nil {
		return storageErr("create reservation", err)
	}

	return nil
}

// Update перезаписывает все поля записи, кроме id и created_at,
// и обновляет updated_at. Отсутствующий id — ErrNotFound.
func (db *DB) Update(ctx context.Context, r *models.Reservation) error {
	r.UpdatedAt = time.Now()

	query := `UPDATE reservations
              SET name = ?, phone = ?, date = ?, time = ?, guests = ?,
                  adults_count = ?, children_count = ?, birthday_menu = ?,
                  table_number = ?, type = ?, notes = ?, created_by = ?,
                  updated_at = ?
              WHERE id = ?`

	adults, children, menu := birthdayColumns(r)
	result, err := db.ExecContext(ctx, query,
		r.Name,
		r.Phone,
		r.Date,
		r.Time,
		r.Guests,
		adults,
		children,
		menu,
		tableColumn(r),
		r.Type,
		nullableString(r.Notes),
		r.CreatedBy,
		r.UpdatedAt,
		r.ID,
	)
	if err != nil {
		return storageErr("update reservation", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("update reservation", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Get возвращает запись по id.
func (db *DB) Get(ctx context.Context, id string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`

	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get reservation", err)
	}

	return &r, nil
}

func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return storageErr("delete reservation", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("delete reservation", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// ReplaceAll заменяет всю коллекцию в одной транзакции: либо применяется
// целиком, либо прежнее состояние остается нетронутым.
func (db *DB) ReplaceAll(ctx context.Context, reservations []models.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin replace transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations`); err != nil {
		return storageErr("clear reservations in tx", err)
	}

	query := `INSERT INTO reservations (` + reservationColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()

	for i := range reservations {
		r := &reservations[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = r.CreatedAt
		}

		if _, err := tx.ExecContext(ctx, query, insertArgs(r)...); err != nil {
			return storageErr("insert reservation in tx", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit replace transaction", err)
	}

	return nil
}

// Reset — явная необратимая очистка коллекции.
func (db *DB) Reset(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM reservations`); err != nil {
		return storageErr("reset reservations", err)
	}
	return nil
}

func insertArgs(r *models.Reservation) []interface{} {
	adults, children, menu := birthdayColumns(r)
	return []interface{}{
		r.ID,
		r.Name,
		r.Phone,
		r.Date,
		r.Time,
		r.Guests,
		adults,
		children,
		menu,
		tableColumn(r),
		r.Type,
		nullableString(r.Notes),
		r.CreatedBy,
		r.CreatedAt,
		r.UpdatedAt,
	}
}

func birthdayColumns(r *models.Reservation) (adults, children sql.NullInt64, menu sql.NullString) {
	if r.Birthday == nil {
		return
	}
	adults = sql.NullInt64{Int64: int64(r.Birthday.AdultsCount), Valid: true}
	children = sql.NullInt64{Int64: int64(r.Birthday.ChildrenCount), Valid: true}
	menu = sql.NullString{String: r.Birthday.Menu, Valid: true}
	return
}

func tableColumn(r *models.Reservation) sql.NullInt64 {
	if r.TableNumber == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(r.TableNumber), Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (models.Reservation, error) {
	var (
		r        models.Reservation
		adults   sql.NullInt64
		children sql.NullInt64
		menu     sql.NullString
		table    sql.NullInt64
		notes    sql.NullString
	)

	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Phone,
		&r.Date,
		&r.Time,
		&r.Guests,
		&adults,
		&children,
		&menu,
		&table,
		&r.Type,
		&notes,
		&r.CreatedBy,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return models.Reservation{}, err
	}

	if table.Valid {
		r.TableNumber = int(table.Int64)
	}
	if notes.Valid {
		r.Notes = notes.String
	}
	if r.Type == models.TypeBirthday {
		r.Birthday = &models.BirthdayDetails{
			AdultsCount:   int(adults.Int64),
			ChildrenCount: int(children.Int64),
			Menu:          menu.String,
		}
	}

	return r, nil
}
