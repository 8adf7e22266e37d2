// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "github.com/Priyanshu525/trading-alert/internal/errors"
	"github.com/Priyanshu525/trading-alert/internal/models"
)

// SQLiteStore implements AlertStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based alert store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		instrument TEXT NOT NULL,
		direction TEXT NOT NULL,
		target REAL NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		created_ts INTEGER NOT NULL,
		triggered_ts INTEGER,
		triggered_price REAL
	);

	CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);
	CREATE INDEX IF NOT EXISTS idx_alerts_instrument ON alerts(instrument);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create validates input and inserts a new active alert.
func (s *SQLiteStore) Create(ctx context.Context, symbol string, direction models.Direction, target float64, note string) (int64, error) {
	if _, err := models.ParseDirection(string(direction)); err != nil {
		return 0, apperrors.NewValidationError("direction", direction, "must be above, below or touch")
	}
	if !models.ValidTarget(target) {
		return 0, apperrors.NewValidationError("target", target, "must be a finite number")
	}
	instrument := models.ResolveInstrument(symbol)
	if instrument == "" {
		return 0, apperrors.NewValidationError("symbol", symbol, "must not be empty")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (symbol, instrument, direction, target, note, status, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, models.NormalizeSymbol(symbol), instrument, direction, target, note, models.StatusActive, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read alert id: %w", err)
	}
	return id, nil
}

const alertColumns = `id, symbol, instrument, direction, target, note, status, created_ts, triggered_ts, triggered_price`

func scanAlert(row interface{ Scan(...interface{}) error }) (models.Alert, error) {
	var a models.Alert
	var triggeredTS sql.NullInt64
	var triggeredPrice sql.NullFloat64

	if err := row.Scan(&a.ID, &a.Symbol, &a.Instrument, &a.Direction, &a.Target, &a.Note, &a.Status, &a.CreatedAt, &triggeredTS, &triggeredPrice); err != nil {
		return models.Alert{}, err
	}
	if triggeredTS.Valid {
		a.TriggeredAt = &triggeredTS.Int64
	}
	if triggeredPrice.Valid {
		a.TriggeredPrice = &triggeredPrice.Float64
	}
	return a, nil
}

// Get returns a single alert by id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*models.Alert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+alertColumns+` FROM alerts WHERE id = ?
	`, id)

	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &a, nil
}

// ListActive returns all active alerts ordered by id.
func (s *SQLiteStore) ListActive(ctx context.Context) ([]models.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+alertColumns+` FROM alerts WHERE status = ? ORDER BY id ASC
	`, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// ListHistory returns non-active alerts, most recent first.
func (s *SQLiteStore) ListHistory(ctx context.Context, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+alertColumns+` FROM alerts WHERE status != ? ORDER BY id DESC LIMIT ?
	`, models.StatusActive, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert history: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// MarkTriggered transitions an alert to triggered only if it is still active.
// The status guard makes re-triggering an already-terminal row a no-op, which
// is what keeps duplicate evaluation passes and concurrent cancellations from
// producing a second notification.
func (s *SQLiteStore) MarkTriggered(ctx context.Context, id int64, price float64, when time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE alerts SET status = ?, triggered_ts = ?, triggered_price = ?
		WHERE id = ? AND status = ?
	`, models.StatusTriggered, when.Unix(), price, id, models.StatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to trigger alert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}

// Cancel transitions an alert to cancelled only if it is still active.
func (s *SQLiteStore) Cancel(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE alerts SET status = ? WHERE id = ? AND status = ?
	`, models.StatusCancelled, id, models.StatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to cancel alert: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}
