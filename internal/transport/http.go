package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/logger"
	"codeberg.org/mutker/envstation/internal/telemetry"
)

// HTTP is the stateless request transport against the channel update
// endpoint. Connect is a no-op; every publish is a single POST whose
// response body is the assigned entry ID, or 0 when rejected.
type HTTP struct {
	cfg    Config
	client *http.Client
}

var _ Client = (*HTTP)(nil)

func NewHTTP(cfg Config) (*HTTP, error) {
	if err := cfg.validateHTTP(); err != nil {
		return nil, err
	}

	return &HTTP{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.timeout(),
		},
	}, nil
}

func (t *HTTP) Name() string {
	return KindHTTP
}

func (t *HTTP) Connect(_ context.Context) error {
	return nil
}

func (t *HTTP) Publish(ctx context.Context, rec *telemetry.Record) error {
	form := url.Values{}
	form.Set("api_key", t.cfg.WriteAPIKey)
	for _, reading := range rec.Readings {
		field := "field" + strconv.Itoa(reading.Channel.Field)
		form.Set(field, strconv.FormatFloat(reading.Value, 'f', 2, 64))
	}
	form.Set("status", rec.Station.StatusField())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.cfg.BaseURL+"/update", strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(ErrPublishFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrap(ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return errors.Wrap(ErrPublishFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.WithData(ErrAuthFailed, resp.Status)
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.WithData(ErrPublishRejected, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return errors.WithData(ErrPublishFailed, resp.Status)
	}

	entryID, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return errors.Wrap(ErrPublishRejected, err)
	}
	if entryID <= 0 {
		// The backend answers 0 when it does not accept the update
		return errors.WithData(ErrPublishRejected, "entry id 0")
	}

	logger.Debug().
		Str("station", rec.Station.ID).
		Int("entry_id", entryID).
		Msg("Record accepted by update endpoint")

	return nil
}

func (t *HTTP) Close() error {
	return nil
}
