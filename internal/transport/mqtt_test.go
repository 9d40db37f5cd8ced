package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/transport"
)

func TestPublishTopic(t *testing.T) {
	topic := transport.PublishTopic("2467912", "WRITEKEY")
	assert.Equal(t, "channels/2467912/publish/WRITEKEY", topic)
}

func TestEncodeCSVFieldOrderAndStatus(t *testing.T) {
	payload := transport.EncodeCSV(testRecord())
	assert.Equal(t, "21.37,40.00,612.50,station_id:station_test01", payload)
}

func TestNewMQTTRequiresBrokerCredentials(t *testing.T) {
	cfg := transport.DefaultConfig()
	cfg.ChannelID = "2467912"
	cfg.WriteAPIKey = "WRITEKEY"

	_, err := transport.NewMQTT(cfg)
	require.Error(t, err, "broker credentials are required")
	assert.True(t, errors.IsCode(err, transport.ErrInvalidConfig))
}

func TestNewMQTTAcceptsFullConfig(t *testing.T) {
	cfg := transport.DefaultConfig()
	cfg.ChannelID = "2467912"
	cfg.WriteAPIKey = "WRITEKEY"
	cfg.Username = "someuser"
	cfg.MQTTAPIKey = "MQTTKEY"

	client, err := transport.NewMQTT(cfg)
	require.NoError(t, err)
	assert.Equal(t, transport.KindMQTT, client.Name())
	assert.False(t, client.IsConnected())
	require.NoError(t, client.Close())
}
