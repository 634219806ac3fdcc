package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
	testingutil "github.com/amirphl/collab-market/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	seen   []uint
	failOn uint
}

func (p *recordingPublisher) Publish(ctx context.Context, n *models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n.ID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.seen = append(p.seen, n.ID)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) ids() []uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint(nil), p.seen...)
}

func seedNotifications(t *testing.T, testDB *testingutil.TestDB, n int) []*models.Notification {
	t.Helper()
	rows := make([]*models.Notification, 0, n)
	for i := 0; i < n; i++ {
		row := &models.Notification{
			Type:          models.NotificationTypeInvitationReceived,
			RecipientType: models.RecipientTypeCreator,
			RecipientID:   uint(i + 1),
			Payload:       json.RawMessage(`{"type":"INVITATION_RECEIVED"}`),
		}
		require.NoError(t, testDB.DB.Create(row).Error)
		rows = append(rows, row)
	}
	return rows
}

func TestNotificationRelay_RunOnce(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewNotificationRepository(testDB.DB)
		rows := seedNotifications(t, testDB, 3)
		ctx := context.Background()

		publisher := &recordingPublisher{failOn: rows[1].ID}
		var logs bytes.Buffer
		relay := NewNotificationRelay(repo, publisher, &logs, time.Hour, 10)

		t.Run("StopsAtFirstFailure", func(t *testing.T) {
			assert.Equal(t, 1, relay.runOnce(ctx))
			assert.Equal(t, []uint{rows[0].ID}, publisher.ids())
			assert.Contains(t, logs.String(), "broker unavailable")

			pending, err := repo.ListUnpublished(ctx, 10)
			require.NoError(t, err)
			require.Len(t, pending, 2)
			assert.Equal(t, rows[1].ID, pending[0].ID)
		})

		t.Run("RetriesOnNextTick", func(t *testing.T) {
			publisher.mu.Lock()
			publisher.failOn = 0
			publisher.mu.Unlock()

			assert.Equal(t, 2, relay.runOnce(ctx))
			assert.Equal(t, []uint{rows[0].ID, rows[1].ID, rows[2].ID}, publisher.ids())

			pending, err := repo.ListUnpublished(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, pending)
			assert.Zero(t, relay.runOnce(ctx))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestNotificationRelay_StartStop(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewNotificationRepository(testDB.DB)
		rows := seedNotifications(t, testDB, 2)

		publisher := &recordingPublisher{}
		relay := NewNotificationRelay(repo, publisher, nil, 10*time.Millisecond, 1)

		stop := relay.Start(context.Background())
		assert.Eventually(t, func() bool {
			return len(publisher.ids()) == len(rows)
		}, 2*time.Second, 10*time.Millisecond)
		stop()

		assert.Equal(t, []uint{rows[0].ID, rows[1].ID}, publisher.ids())
		return nil
	})
	require.NoError(t, err)
}
