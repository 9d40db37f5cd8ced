package journal

import (
	"context"
	"time"

	"codeberg.org/mutker/envstation/internal/telemetry"
)

// Recorder defines the core domain interface
type Recorder interface {
	Record(ctx context.Context, entry *Entry) error
	Tail(ctx context.Context, stationID string, limit int) ([]Entry, error)
	Close() error
}

// Entry is one journaled publish attempt
type Entry struct {
	Timestamp   time.Time
	StationID   string
	Temperature float64
	Humidity    float64
	CO2         float64
	Transport   string
	Outcome     string
	FellBack    bool
}

// NewEntry builds an entry from a record and its publish result
func NewEntry(rec *telemetry.Record, transport, outcome string, fellBack bool) *Entry {
	entry := &Entry{
		Timestamp: rec.Timestamp,
		StationID: rec.Station.ID,
		Transport: transport,
		Outcome:   outcome,
		FellBack:  fellBack,
	}

	for _, reading := range rec.Readings {
		switch reading.Channel.Key {
		case telemetry.Temperature.Key:
			entry.Temperature = reading.Value
		case telemetry.Humidity.Key:
			entry.Humidity = reading.Value
		case telemetry.CO2.Key:
			entry.CO2 = reading.Value
		}
	}

	return entry
}
