package services

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/collab-market/config"
	"github.com/amirphl/collab-market/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNotification() *models.Notification {
	campaignID := uint(4)
	return &models.Notification{
		ID:            1,
		UUID:          uuid.New(),
		Type:          models.NotificationTypeAllInvitationsRejected,
		RecipientType: models.RecipientTypeBrand,
		RecipientID:   9,
		CampaignID:    &campaignID,
		Payload:       json.RawMessage(`{"type":"ALL_INVITATIONS_REJECTED","rejectedCount":3}`),
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewNotificationEvent(t *testing.T) {
	n := testNotification()
	event := NewNotificationEvent(n)

	assert.Equal(t, n.UUID.String(), event.ID)
	assert.Equal(t, "brand:9", partitionKey(n))

	encoded, err := json.Marshal(event)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, "ALL_INVITATIONS_REJECTED", decoded["type"])
	assert.EqualValues(t, 4, decoded["campaign_id"])
	payload, ok := decoded["payload"].(map[string]any)
	require.True(t, ok, "payload is embedded as an object")
	assert.EqualValues(t, 3, payload["rejectedCount"])
}

func TestLogNotificationPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogNotificationPublisher(&buf)

	require.NoError(t, p.Publish(context.Background(), testNotification()))
	require.NoError(t, p.Close())

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "notification "))
	assert.Contains(t, line, "key=brand:9")
	assert.Contains(t, line, `"type":"ALL_INVITATIONS_REJECTED"`)
}

func TestNewKafkaNotificationPublisher(t *testing.T) {
	_, err := NewKafkaNotificationPublisher(nil, "notifications", time.Second)
	assert.Error(t, err)

	_, err = NewKafkaNotificationPublisher([]string{"localhost:9092"}, "", time.Second)
	assert.Error(t, err)

	p, err := NewKafkaNotificationPublisher([]string{"localhost:9092"}, "notifications", time.Second)
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNewLogWriter(t *testing.T) {
	w, closer := NewLogWriter(config.LoggingConfig{})
	assert.NotNil(t, w)
	assert.NoError(t, closer.Close())

	path := filepath.Join(t.TempDir(), "relay.log")
	w, closer = NewLogWriter(config.LoggingConfig{FilePath: path, MaxSize: 1})
	_, err := w.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	assert.FileExists(t, path)
}
