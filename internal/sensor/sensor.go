package sensor

import (
	"math"
	"math/rand"
	"time"

	"codeberg.org/mutker/envstation/internal/telemetry"
)

// Maximum per-tick movement of the random walk, per channel
var defaultSteps = map[string]float64{
	telemetry.Temperature.Key: 1.0,
	telemetry.Humidity.Key:    3.0,
	telemetry.CO2.Key:         20.0,
}

// Model simulates station sensors as a bounded random walk. Consecutive
// readings on a channel differ by at most the channel step, clamped to the
// channel range. Not safe for concurrent use; each station owns one.
type Model struct {
	rng     *rand.Rand
	steps   map[string]float64
	current map[string]float64
	now     func() time.Time
}

type Option func(*Model)

// WithStart pins the starting value of a channel
func WithStart(ch telemetry.Channel, value float64) Option {
	return func(m *Model) {
		m.current[ch.Key] = clamp(value, ch.Min, ch.Max)
	}
}

// WithStep overrides the maximum per-tick movement of a channel
func WithStep(ch telemetry.Channel, step float64) Option {
	return func(m *Model) {
		m.steps[ch.Key] = step
	}
}

// New creates a model. The same seed reproduces the same reading sequence.
func New(seed int64, opts ...Option) *Model {
	m := &Model{
		rng:     rand.New(rand.NewSource(seed)),
		steps:   make(map[string]float64, len(defaultSteps)),
		current: make(map[string]float64),
		now:     time.Now,
	}
	for key, step := range defaultSteps {
		m.steps[key] = step
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Next advances the walk on one channel and returns the reading
func (m *Model) Next(ch telemetry.Channel) telemetry.Reading {
	value, seeded := m.current[ch.Key]
	if seeded {
		value += (m.rng.Float64()*2 - 1) * m.steps[ch.Key]
	} else {
		value = ch.Min + m.rng.Float64()*(ch.Max-ch.Min)
	}

	value = clamp(round2(value), ch.Min, ch.Max)
	m.current[ch.Key] = value

	return telemetry.Reading{
		Channel:   ch,
		Value:     value,
		Timestamp: m.now(),
	}
}

// All advances every channel once, in backend field order
func (m *Model) All() []telemetry.Reading {
	channels := telemetry.Channels()
	readings := make([]telemetry.Reading, 0, len(channels))
	for _, ch := range channels {
		readings = append(readings, m.Next(ch))
	}

	return readings
}

func clamp(value, minValue, maxValue float64) float64 {
	return math.Min(math.Max(value, minValue), maxValue)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
