package telemetry

import "codeberg.org/mutker/envstation/internal/errors"

// Channel describes one measured quantity and its valid physical range.
// Field is the 1-based index of the backend field the channel maps to.
type Channel struct {
	Key   string
	Unit  string
	Min   float64
	Max   float64
	Field int
}

var (
	Temperature = Channel{Key: "temperature", Unit: "°C", Min: -50, Max: 50, Field: 1}
	Humidity    = Channel{Key: "humidity", Unit: "%", Min: 0, Max: 100, Field: 2}
	CO2         = Channel{Key: "co2", Unit: "ppm", Min: 300, Max: 2000, Field: 3}
)

// Channels returns all channels in backend field order
func Channels() []Channel {
	return []Channel{Temperature, Humidity, CO2}
}

// ChannelByKey resolves a channel from its key
func ChannelByKey(key string) (Channel, error) {
	for _, ch := range Channels() {
		if ch.Key == key {
			return ch, nil
		}
	}

	return Channel{}, errors.WithData(errors.ErrInvalidChannel, key)
}
