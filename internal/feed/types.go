package feed

import (
	"strconv"
	"time"

	"codeberg.org/mutker/envstation/internal/telemetry"
)

// Entry is one stored channel update as the backend returns it. Field
// values arrive as strings and may be empty when a field was not written.
type Entry struct {
	CreatedAt time.Time `json:"created_at"`
	EntryID   int       `json:"entry_id"`
	Field1    string    `json:"field1"`
	Field2    string    `json:"field2"`
	Field3    string    `json:"field3"`
	Status    string    `json:"status,omitempty"`
}

// Value returns the entry's reading on a channel, when present and numeric
func (e Entry) Value(ch telemetry.Channel) (float64, bool) {
	var raw string
	switch ch.Field {
	case 1:
		raw = e.Field1
	case 2:
		raw = e.Field2
	case 3:
		raw = e.Field3
	}
	if raw == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}

// StationID extracts the publishing station from the status field
func (e Entry) StationID() string {
	id, _ := telemetry.ParseStatusField(e.Status)
	return id
}

// ChannelInfo is the backend's channel metadata
type ChannelInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Feed is a window of channel history
type Feed struct {
	Channel ChannelInfo `json:"channel"`
	Entries []Entry     `json:"feeds"`
}

// Point is one plottable observation
type Point struct {
	Time  time.Time
	Value float64
}

// Points projects the feed onto one channel, skipping entries without a
// usable value
func (f Feed) Points(ch telemetry.Channel) []Point {
	points := make([]Point, 0, len(f.Entries))
	for _, entry := range f.Entries {
		if value, ok := entry.Value(ch); ok {
			points = append(points, Point{Time: entry.CreatedAt, Value: value})
		}
	}

	return points
}
