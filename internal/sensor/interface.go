package sensor

import "codeberg.org/mutker/envstation/internal/telemetry"

// Generator produces readings for the simulated station
type Generator interface {
	Next(ch telemetry.Channel) telemetry.Reading
	All() []telemetry.Reading
}
