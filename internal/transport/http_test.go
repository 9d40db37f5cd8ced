package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/telemetry"
	"codeberg.org/mutker/envstation/internal/transport"
)

func testRecord() *telemetry.Record {
	now := time.Now()
	return &telemetry.Record{
		Station:   telemetry.NewStationIdentity("station_test01"),
		Timestamp: now,
		Readings: []telemetry.Reading{
			{Channel: telemetry.Temperature, Value: 21.37, Timestamp: now},
			{Channel: telemetry.Humidity, Value: 40.0, Timestamp: now},
			{Channel: telemetry.CO2, Value: 612.5, Timestamp: now},
		},
	}
}

func httpConfig(baseURL string) transport.Config {
	cfg := transport.DefaultConfig()
	cfg.ChannelID = "2467912"
	cfg.WriteAPIKey = "WRITEKEY"
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestHTTPPublishSendsUpdateForm(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/update", r.URL.Path)
		require.NoError(t, r.ParseForm())
		got = map[string]string{
			"api_key": r.PostForm.Get("api_key"),
			"field1":  r.PostForm.Get("field1"),
			"field2":  r.PostForm.Get("field2"),
			"field3":  r.PostForm.Get("field3"),
			"status":  r.PostForm.Get("status"),
		}
		w.Write([]byte("4471"))
	}))
	defer srv.Close()

	client, err := transport.NewHTTP(httpConfig(srv.URL))
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Connect(context.Background()), "connect should be a no-op")
	require.NoError(t, client.Publish(context.Background(), testRecord()))

	assert.Equal(t, "WRITEKEY", got["api_key"])
	assert.Equal(t, "21.37", got["field1"])
	assert.Equal(t, "40.00", got["field2"])
	assert.Equal(t, "612.50", got["field3"])
	assert.Equal(t, "station_id:station_test01", got["status"])
}

func TestHTTPPublishEntryIDZeroIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("0"))
	}))
	defer srv.Close()

	client, err := transport.NewHTTP(httpConfig(srv.URL))
	require.NoError(t, err)

	err = client.Publish(context.Background(), testRecord())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, transport.ErrPublishRejected))
}

func TestHTTPPublishServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := transport.NewHTTP(httpConfig(srv.URL))
	require.NoError(t, err)

	err = client.Publish(context.Background(), testRecord())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, transport.ErrPublishFailed))
}

func TestHTTPPublishUnauthorizedFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := transport.NewHTTP(httpConfig(srv.URL))
	require.NoError(t, err)

	err = client.Publish(context.Background(), testRecord())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, transport.ErrAuthFailed))
}

func TestHTTPPublishMalformedBodyIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not-a-number"))
	}))
	defer srv.Close()

	client, err := transport.NewHTTP(httpConfig(srv.URL))
	require.NoError(t, err)

	err = client.Publish(context.Background(), testRecord())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, transport.ErrPublishRejected))
}

func TestHTTPPublishRespectsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte("1"))
	}))
	defer srv.Close()

	cfg := httpConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	client, err := transport.NewHTTP(cfg)
	require.NoError(t, err)

	err = client.Publish(context.Background(), testRecord())
	require.Error(t, err, "slow endpoint should fail within the configured bound")
}

func TestNewHTTPRequiresCredentials(t *testing.T) {
	cfg := transport.DefaultConfig()
	cfg.ChannelID = "2467912"

	_, err := transport.NewHTTP(cfg)
	require.Error(t, err, "write key is required")
	assert.True(t, errors.IsCode(err, transport.ErrInvalidConfig))
}
