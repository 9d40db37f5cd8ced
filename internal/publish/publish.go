package publish

import (
	"context"
	"time"

	"codeberg.org/mutker/envstation/internal/logger"
	"codeberg.org/mutker/envstation/internal/telemetry"
	"codeberg.org/mutker/envstation/internal/transport"
)

const defaultFloor = 15 * time.Second

// Mode is the active transport of a publisher
type Mode int

const (
	ModePrimary Mode = iota
	ModeSecondary
)

func (m Mode) String() string {
	if m == ModeSecondary {
		return "secondary"
	}
	return "primary"
}

// Status classifies one publish call
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRateLimited
)

func (s Status) String() string {
	switch s {
	case StatusFailure:
		return "failure"
	case StatusRateLimited:
		return "rate_limited"
	default:
		return "success"
	}
}

// Outcome is the result of one publish call. Transport names the client
// that produced the result and is empty for rate-limited calls.
type Outcome struct {
	Status    Status
	Transport string
	FellBack  bool
	Err       error
}

func (o Outcome) Success() bool {
	return o.Status == StatusSuccess
}

// Publisher drives records through a primary transport and demotes to the
// secondary on the first failure. Demotion is permanent for the process
// lifetime. A per-station floor spaces out attempted publishes; calls
// inside the floor return a rate-limited outcome without touching any
// transport. Not safe for concurrent use; each station owns one.
type Publisher struct {
	primary   transport.Client
	secondary transport.Client
	floor     time.Duration
	mode      Mode
	last      time.Time
	now       func() time.Time
}

type Option func(*Publisher)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// New builds a publisher over a transport pair. A nil secondary leaves
// failures on the primary with nothing to fall back to.
func New(primary, secondary transport.Client, floor time.Duration, opts ...Option) *Publisher {
	if floor <= 0 {
		floor = defaultFloor
	}

	p := &Publisher{
		primary:   primary,
		secondary: secondary,
		floor:     floor,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Publish attempts delivery of one record and reports the outcome. The
// rate-limit window advances on attempted publishes only, so rate-limited
// calls never push the next permitted slot further out.
func (p *Publisher) Publish(ctx context.Context, rec *telemetry.Record) Outcome {
	now := p.now()
	if !p.last.IsZero() && now.Sub(p.last) < p.floor {
		return Outcome{Status: StatusRateLimited}
	}
	p.last = now

	if p.mode == ModePrimary {
		err := attempt(ctx, p.primary, rec)
		if err == nil {
			return Outcome{Status: StatusSuccess, Transport: p.primary.Name()}
		}
		if p.secondary == nil {
			return Outcome{Status: StatusFailure, Transport: p.primary.Name(), Err: err}
		}

		p.mode = ModeSecondary
		logger.Warn().
			Str("station", rec.Station.ID).
			Str("from", p.primary.Name()).
			Str("to", p.secondary.Name()).
			Err(err).
			Msg("Transport failed, falling back")

		if retryErr := attempt(ctx, p.secondary, rec); retryErr != nil {
			return Outcome{Status: StatusFailure, Transport: p.secondary.Name(), FellBack: true, Err: retryErr}
		}

		return Outcome{Status: StatusSuccess, Transport: p.secondary.Name(), FellBack: true}
	}

	if err := attempt(ctx, p.secondary, rec); err != nil {
		return Outcome{Status: StatusFailure, Transport: p.secondary.Name(), Err: err}
	}

	return Outcome{Status: StatusSuccess, Transport: p.secondary.Name()}
}

// Mode returns the active transport selection
func (p *Publisher) Mode() Mode {
	return p.mode
}

// Close releases both transports
func (p *Publisher) Close() error {
	errPrimary := p.primary.Close()
	if p.secondary == nil {
		return errPrimary
	}

	errSecondary := p.secondary.Close()
	if errPrimary != nil {
		return errPrimary
	}

	return errSecondary
}

func attempt(ctx context.Context, client transport.Client, rec *telemetry.Record) error {
	if err := client.Connect(ctx); err != nil {
		return err
	}

	return client.Publish(ctx, rec)
}
