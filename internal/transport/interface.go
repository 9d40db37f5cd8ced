package transport

import (
	"context"

	"codeberg.org/mutker/envstation/internal/telemetry"
)

// Transport kind identifiers, also used as config values and log labels
const (
	KindMQTT = "mqtt"
	KindHTTP = "http"
)

// Client delivers telemetry records to the backend. Connect must be
// idempotent; a persistent client keeps its session until Close, a
// request client treats Connect as a no-op.
type Client interface {
	Name() string
	Connect(ctx context.Context) error
	Publish(ctx context.Context, rec *telemetry.Record) error
	Close() error
}
