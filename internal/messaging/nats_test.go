package messaging

import (
	"net"
	"testing"

	"github.com/nats-io/stan.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewNATSClient(Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Publish("booking.confirmed", map[string]string{"id": "1"}))
	assert.NoError(t, client.Close())

	_, err = client.SubscribeQueue("booking.confirmed", "q", func(*stan.Msg) {}, SubscribeOptions{})
	assert.Error(t, err)
}

func TestNilClientIsDisabled(t *testing.T) {
	var client *NATSClient
	assert.False(t, client.Enabled())
}

// unreachableURL returns a nats url on a port nothing listens on
func unreachableURL(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return "nats://" + addr
}

func TestNewNATSClientFailsWhenBrokerIsDown(t *testing.T) {
	_, err := NewNATSClient(Config{Enabled: true, URL: unreachableURL(t), ClusterID: "boxoffice", ClientID: "test"})
	assert.Error(t, err)
}

func TestConnectOptionalDegradesWhenBrokerIsDown(t *testing.T) {
	client := ConnectOptional(Config{Enabled: true, URL: unreachableURL(t), ClusterID: "boxoffice", ClientID: "test"})
	require.NotNil(t, client)

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Publish("payment.failed", map[string]string{"id": "MUID-1"}))
	assert.NoError(t, client.Close())
}
