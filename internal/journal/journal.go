package journal

import (
	"context"

	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/logger"
)

type service struct {
	repo Repository
	cfg  Config
}

// No-op implementation
type noopRecorder struct{}

func NewService(cfg Config) (Recorder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err)
	}

	// If the journal is disabled, return a no-op recorder
	if !cfg.Enabled {
		logger.Debug().Msg("Publish journal disabled, using no-op recorder")
		return &noopRecorder{}, nil
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("db_path", cfg.DBPath).
		Msg("Publish journal initialized")

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New(ErrInvalidEntry)
	}

	select {
	case <-ctx.Done():
		return errors.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Record(ctx, entry); err != nil {
			return errors.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Tail(ctx context.Context, stationID string, limit int) ([]Entry, error) {
	return s.repo.Tail(ctx, stationID, limit)
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.Wrap(ErrServiceShutdown, err)
	}
	return nil
}

// No-op implementation
func (*noopRecorder) Record(_ context.Context, _ *Entry) error {
	return nil
}

func (*noopRecorder) Tail(_ context.Context, _ string, _ int) ([]Entry, error) {
	return nil, nil
}

func (*noopRecorder) Close() error {
	return nil
}
