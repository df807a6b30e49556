package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	// timeLayout keeps recorded_at fixed width so text order is time order.
	timeLayout = "2006-01-02T15:04:05.000Z"
)

// Origin tells where a reading came from.
type Origin string

// Reading origins.
const (
	OriginSensor     Origin = "sensor"
	OriginRequest    Origin = "request"
	OriginController Origin = "controller"
)

// Valid reports whether o is one of the known origins.
func (o Origin) Valid() bool {
	switch o {
	case OriginSensor, OriginRequest, OriginController:
		return true
	}
	return false
}

// ErrInvalidEntry is returned by Record for entries that cannot be stored.
var ErrInvalidEntry = errors.New("history: invalid entry")

// Entry is one recorded reading.
type Entry struct {
	ID         int64     `json:"id"`
	Node       int       `json:"node"`
	Child      int       `json:"child"`
	SensorType string    `json:"sensor_type"`
	DeviceID   int       `json:"device_id,omitempty"`
	Reading    string    `json:"reading"`
	Origin     Origin    `json:"origin"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Repository stores entries in the reading_history table.
//
// Thread Safety:
//   - Safe for concurrent use; the gateway loop writes while the API reads.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository on an open, migrated database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record appends one entry. RecordedAt defaults to now and is stored in UTC
// with millisecond precision.
//
// Returns:
//   - error: ErrInvalidEntry for a bad node or origin, otherwise the
//     database error
func (r *Repository) Record(ctx context.Context, e Entry) error {
	if e.Node < 1 || e.Node > 254 { //nolint:mnd // node id range
		return fmt.Errorf("%w: node %d", ErrInvalidEntry, e.Node)
	}
	if !e.Origin.Valid() {
		return fmt.Errorf("%w: origin %q", ErrInvalidEntry, e.Origin)
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reading_history
		 (node, child, sensor_type, device_id, reading, origin, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Node, e.Child, e.SensorType, e.DeviceID, e.Reading, string(e.Origin),
		e.RecordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting reading history: %w", err)
	}
	return nil
}

// Query returns the newest entries of one channel, newest first.
//
// Parameters:
//   - ctx: Context for cancellation
//   - node, child: Channel key
//   - limit: Maximum entries (default 50, clamped to 500)
//
// Returns:
//   - []Entry: Entries, empty when the channel has none
//   - error: Query or decode failure
func (r *Repository) Query(ctx context.Context, node, child, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, node, child, sensor_type, device_id, reading, origin, recorded_at
		 FROM reading_history
		 WHERE node = ? AND child = ?
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT ?`,
		node, child, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reading history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var origin, recordedAt string
		if err := rows.Scan(&e.ID, &e.Node, &e.Child, &e.SensorType, &e.DeviceID,
			&e.Reading, &origin, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning reading history: %w", err)
		}
		e.Origin = Origin(origin)
		e.RecordedAt, err = time.Parse(timeLayout, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing recorded_at %q: %w", recordedAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reading history: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than the given age.
//
// Returns:
//   - int64: Rows deleted
//   - error: For a non-positive age or a database failure
func (r *Repository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(timeLayout)
	res, err := r.db.ExecContext(ctx, "DELETE FROM reading_history WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting reading history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
