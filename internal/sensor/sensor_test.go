package sensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/envstation/internal/sensor"
	"codeberg.org/mutker/envstation/internal/telemetry"
)

func TestModelDeterministic(t *testing.T) {
	first := sensor.New(42)
	second := sensor.New(42)

	for i := 0; i < 100; i++ {
		for _, ch := range telemetry.Channels() {
			a := first.Next(ch)
			b := second.Next(ch)
			require.Equal(t, a.Value, b.Value, "tick %d on %s should match for equal seeds", i, ch.Key)
		}
	}
}

func TestModelSeedsDiverge(t *testing.T) {
	first := sensor.New(1)
	second := sensor.New(2)

	diverged := false
	for i := 0; i < 50; i++ {
		if first.Next(telemetry.Temperature).Value != second.Next(telemetry.Temperature).Value {
			diverged = true
			break
		}
	}

	assert.True(t, diverged, "different seeds should produce different walks")
}

func TestTemperatureWalkStaysWithinRange(t *testing.T) {
	model := sensor.New(7,
		sensor.WithStart(telemetry.Temperature, 20.0),
		sensor.WithStep(telemetry.Temperature, 1.0),
	)

	previous := 20.0
	for i := 0; i < 10000; i++ {
		reading := model.Next(telemetry.Temperature)
		require.GreaterOrEqual(t, reading.Value, telemetry.Temperature.Min)
		require.LessOrEqual(t, reading.Value, telemetry.Temperature.Max)
		require.InDelta(t, previous, reading.Value, 1.01, "per-tick movement exceeds step at tick %d", i)
		previous = reading.Value
	}
}

func TestAllChannelsStayWithinRange(t *testing.T) {
	model := sensor.New(99)

	for i := 0; i < 2000; i++ {
		for _, reading := range model.All() {
			ch := reading.Channel
			require.GreaterOrEqual(t, reading.Value, ch.Min, "channel %s below range", ch.Key)
			require.LessOrEqual(t, reading.Value, ch.Max, "channel %s above range", ch.Key)
		}
	}
}

func TestWalkClampsAtBounds(t *testing.T) {
	// A step wider than the whole range forces the walk against the bounds.
	model := sensor.New(3,
		sensor.WithStart(telemetry.Humidity, 50.0),
		sensor.WithStep(telemetry.Humidity, 1000.0),
	)

	for i := 0; i < 500; i++ {
		reading := model.Next(telemetry.Humidity)
		require.GreaterOrEqual(t, reading.Value, telemetry.Humidity.Min)
		require.LessOrEqual(t, reading.Value, telemetry.Humidity.Max)
	}
}

func TestAllReturnsChannelsInFieldOrder(t *testing.T) {
	model := sensor.New(11)

	readings := model.All()
	require.Len(t, readings, 3)
	assert.Equal(t, telemetry.Temperature.Key, readings[0].Channel.Key)
	assert.Equal(t, telemetry.Humidity.Key, readings[1].Channel.Key)
	assert.Equal(t, telemetry.CO2.Key, readings[2].Channel.Key)
	for i, reading := range readings {
		assert.Equal(t, i+1, reading.Channel.Field)
		assert.False(t, reading.Timestamp.IsZero())
	}
}
