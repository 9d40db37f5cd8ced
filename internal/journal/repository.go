package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	Record(ctx context.Context, entry *Entry) error
	Tail(ctx context.Context, stationID string, limit int) ([]Entry, error)
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	if cfg.DBPath == "" {
		return nil, errors.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing publish journal at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errors.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL")
	if err != nil {
		return nil, errors.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func (r *sqliteRepository) Record(ctx context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO publishes (
            timestamp, station_id,
            temperature, humidity, co2,
            transport, outcome, fell_back
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `,
		entry.Timestamp.Unix(),
		entry.StationID,
		entry.Temperature,
		entry.Humidity,
		entry.CO2,
		entry.Transport,
		entry.Outcome,
		boolToInt(entry.FellBack),
	)
	if err != nil {
		return errors.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Tail(ctx context.Context, stationID string, limit int) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.QueryContext(ctx, `
        SELECT timestamp, station_id, temperature, humidity, co2, transport, outcome, fell_back
        FROM publishes
        WHERE station_id = ?
        ORDER BY timestamp DESC
        LIMIT ?
    `, stationID, limit)
	if err != nil {
		return nil, errors.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var ts int64
		var fellBack int
		if err := rows.Scan(
			&ts,
			&entry.StationID,
			&entry.Temperature,
			&entry.Humidity,
			&entry.CO2,
			&entry.Transport,
			&entry.Outcome,
			&fellBack,
		); err != nil {
			return nil, errors.Wrap(ErrStorageAccess, err)
		}
		entry.Timestamp = time.Unix(ts, 0)
		entry.FellBack = fellBack != 0
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(ErrStorageAccess, err)
	}

	return entries, nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.Wrap(ErrStorageClose, err)
	}
	return nil
}
