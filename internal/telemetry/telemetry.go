package telemetry

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

const statusPrefix = "station_id:"

// StationIdentity identifies one simulated station. Immutable after creation.
type StationIdentity struct {
	ID string
}

// NewStationIdentity builds an identity, generating a random ID when none is given
func NewStationIdentity(id string) StationIdentity {
	if id == "" {
		u := uuid.New()
		id = "station_" + hex.EncodeToString(u[:4])
	}

	return StationIdentity{ID: id}
}

// StatusField encodes the identity as the backend status string
func (s StationIdentity) StatusField() string {
	return statusPrefix + s.ID
}

// ParseStatusField extracts a station ID from a backend status string
func ParseStatusField(status string) (string, bool) {
	if !strings.HasPrefix(status, statusPrefix) {
		return "", false
	}

	return strings.TrimPrefix(status, statusPrefix), true
}

// Reading is a single observed value on one channel
type Reading struct {
	Channel   Channel
	Value     float64
	Timestamp time.Time
}

// Record is one tick's worth of readings, ordered by backend field
type Record struct {
	Station   StationIdentity
	Readings  []Reading
	Timestamp time.Time
}

// Values returns the reading values in backend field order
func (r *Record) Values() []float64 {
	values := make([]float64, len(r.Readings))
	for i, reading := range r.Readings {
		values[i] = reading.Value
	}

	return values
}
