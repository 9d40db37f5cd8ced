package station

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/journal"
	"codeberg.org/mutker/envstation/internal/logger"
	"codeberg.org/mutker/envstation/internal/observability/metrics"
	"codeberg.org/mutker/envstation/internal/publish"
	"codeberg.org/mutker/envstation/internal/sensor"
	"codeberg.org/mutker/envstation/internal/telemetry"
)

const defaultPublishTimeout = 10 * time.Second

type Config struct {
	Interval time.Duration
	Count    int           // stop after this many ticks when positive
	Timeout  time.Duration // bound on a single publish call
}

// Status is a point-in-time view of one station
type Status struct {
	ID            string             `json:"id"`
	Mode          string             `json:"mode"`
	LastOutcome   string             `json:"last_outcome,omitempty"`
	LastTransport string             `json:"last_transport,omitempty"`
	LastPublish   time.Time          `json:"last_publish,omitempty"`
	Published     int                `json:"published"`
	Failed        int                `json:"failed"`
	RateLimited   int                `json:"rate_limited"`
	FellBack      bool               `json:"fell_back"`
	Readings      map[string]float64 `json:"readings,omitempty"`
}

// Runner drives one station: generate readings, publish, log, wait. The
// loop observes cancellation between ticks and closes its transports on
// exit. Each runner owns its model and publisher; only the status view is
// shared.
type Runner struct {
	station telemetry.StationIdentity
	model   sensor.Generator
	pub     *publish.Publisher
	rec     journal.Recorder
	cfg     Config

	mu     sync.Mutex
	status Status
}

func NewRunner(
	station telemetry.StationIdentity,
	model sensor.Generator,
	pub *publish.Publisher,
	rec journal.Recorder,
	cfg Config,
) (*Runner, error) {
	if cfg.Interval <= 0 {
		return nil, errors.WithData(errors.ErrInvalidInterval, cfg.Interval)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPublishTimeout
	}

	return &Runner{
		station: station,
		model:   model,
		pub:     pub,
		rec:     rec,
		cfg:     cfg,
		status: Status{
			ID:   station.ID,
			Mode: publish.ModePrimary.String(),
		},
	}, nil
}

// Run executes the station loop until ctx is cancelled or the tick count
// is reached
func (r *Runner) Run(ctx context.Context) error {
	logger.Info().
		Str("station", r.station.ID).
		Dur("interval", r.cfg.Interval).
		Msg("Station started")
	defer r.cleanup()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		r.tick(ctx)
		ticks++
		if r.cfg.Count > 0 && ticks >= r.cfg.Count {
			logger.Info().
				Str("station", r.station.ID).
				Int("count", ticks).
				Msg("Tick count reached, stopping")
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Status returns a copy of the current station view. Safe for concurrent
// use.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	view := r.status
	view.Readings = make(map[string]float64, len(r.status.Readings))
	for key, value := range r.status.Readings {
		view.Readings[key] = value
	}

	return view
}

func (r *Runner) tick(ctx context.Context) {
	now := time.Now()
	rec := &telemetry.Record{
		Station:   r.station,
		Readings:  r.model.All(),
		Timestamp: now,
	}

	pubCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	outcome := r.pub.Publish(pubCtx, rec)
	elapsed := time.Since(start)

	r.observe(ctx, rec, outcome, elapsed)
}

func (r *Runner) observe(ctx context.Context, rec *telemetry.Record, outcome publish.Outcome, elapsed time.Duration) {
	entry := journal.NewEntry(rec, outcome.Transport, outcome.Status.String(), outcome.FellBack)

	switch outcome.Status {
	case publish.StatusSuccess:
		logger.Info().
			Str("station", r.station.ID).
			Str("transport", outcome.Transport).
			Float64("temperature", entry.Temperature).
			Float64("humidity", entry.Humidity).
			Float64("co2", entry.CO2).
			Msg("Record published")
	case publish.StatusRateLimited:
		logger.Debug().
			Str("station", r.station.ID).
			Msg("Publish skipped, rate limit floor not reached")
	case publish.StatusFailure:
		logger.Error().
			Str("station", r.station.ID).
			Str("transport", outcome.Transport).
			Err(outcome.Err).
			Msg("Publish failed")
	}

	if err := r.rec.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("station", r.station.ID).Msg("Journal write failed")
	}

	metrics.ObservePublish(r.station.ID, outcome.Transport, outcome.Status.String(), elapsed)
	if outcome.FellBack {
		metrics.IncFallback(r.station.ID)
	}
	for _, reading := range rec.Readings {
		metrics.SetReading(r.station.ID, reading.Channel.Key, reading.Value)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Mode = r.pub.Mode().String()
	r.status.LastOutcome = outcome.Status.String()
	r.status.LastTransport = outcome.Transport
	r.status.LastPublish = rec.Timestamp
	r.status.FellBack = r.status.FellBack || outcome.FellBack
	switch outcome.Status {
	case publish.StatusSuccess:
		r.status.Published++
	case publish.StatusFailure:
		r.status.Failed++
	case publish.StatusRateLimited:
		r.status.RateLimited++
	}
	if r.status.Readings == nil {
		r.status.Readings = make(map[string]float64, len(rec.Readings))
	}
	for _, reading := range rec.Readings {
		r.status.Readings[reading.Channel.Key] = reading.Value
	}
}

func (r *Runner) cleanup() {
	if err := r.pub.Close(); err != nil {
		logger.Error().
			Err(err).
			Str("station", r.station.ID).
			Msg("Failed to close transports")
	}
	logger.Info().Str("station", r.station.ID).Msg("Station stopped")
}
