package journal

import (
	"database/sql"

	"codeberg.org/mutker/envstation/internal/errors"
)

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS publishes (
            timestamp INTEGER NOT NULL,
            station_id TEXT NOT NULL,
            temperature REAL,
            humidity REAL,
            co2 REAL,
            transport TEXT,
            outcome TEXT NOT NULL,
            fell_back INTEGER NOT NULL DEFAULT 0
        )
    `)
	if err != nil {
		return errors.Wrap(ErrStorageInit, err)
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_publishes_station_time
        ON publishes (station_id, timestamp)
    `)
	if err != nil {
		return errors.Wrap(ErrStorageInit, err)
	}

	return nil
}
