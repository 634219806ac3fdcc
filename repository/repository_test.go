package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/amirphl/collab-market/models"
	testingutil "github.com/amirphl/collab-market/testing"
	"github.com/amirphl/collab-market/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatorRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewCreatorRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		first, err := fixtures.CreateTestCreator(testingutil.WithPlatforms("YouTube", "Instagram"))
		require.NoError(t, err)
		_, err = fixtures.CreateTestCreator(testingutil.Inactive())
		require.NoError(t, err)
		third, err := fixtures.CreateTestCreator(testingutil.WithCategory("Food"))
		require.NoError(t, err)

		t.Run("ByUUID", func(t *testing.T) {
			creator, err := repo.ByUUID(ctx, first.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, creator)
			assert.Equal(t, first.ID, creator.ID)
			assert.Equal(t, []string{"YouTube", "Instagram"}, []string(creator.Platforms))
		})

		t.Run("ByUUIDInvalid", func(t *testing.T) {
			_, err := repo.ByUUID(ctx, "not-a-uuid")
			assert.Error(t, err)
		})

		t.Run("ListActive", func(t *testing.T) {
			creators, err := repo.ListActive(ctx)
			require.NoError(t, err)
			require.Len(t, creators, 2)
			assert.Equal(t, first.ID, creators[0].ID)
			assert.Equal(t, third.ID, creators[1].ID)
		})

		t.Run("CategoryFilterIgnoresCase", func(t *testing.T) {
			category := "food"
			count, err := repo.Count(ctx, models.CreatorFilter{Category: &category})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("ByIDs", func(t *testing.T) {
			creators, err := repo.ByIDs(ctx, []uint{third.ID, first.ID})
			require.NoError(t, err)
			assert.Len(t, creators, 2)

			empty, err := repo.ByIDs(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCampaignRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewCampaignRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignRequirements{
			Category:  utils.ToPtr("Tech"),
			Platforms: []string{"YouTube"},
		})
		require.NoError(t, err)

		t.Run("ByUUIDLoadsJSONDocuments", func(t *testing.T) {
			loaded, err := repo.ByUUID(ctx, campaign.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, "Tech", *loaded.Requirements.Category)
			assert.Equal(t, models.StageInvitations, loaded.Progress.CurrentStage())
			assert.Equal(t, models.StageInvitations, loaded.CurrentStage)
			assert.Equal(t, uint(1), loaded.Version)
		})

		t.Run("UpdateProgressBumpsVersion", func(t *testing.T) {
			loaded, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)

			loaded.Progress, err = loaded.Progress.RecordInvitationOutcome(models.InvitationOutcomeSent)
			require.NoError(t, err)
			require.NoError(t, repo.UpdateProgress(ctx, loaded, 1))
			assert.Equal(t, uint(2), loaded.Version)

			reloaded, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, reloaded.Progress.Statistics.PendingInvitations)
			assert.Equal(t, uint(2), reloaded.Version)
		})

		t.Run("UpdateProgressStaleVersion", func(t *testing.T) {
			loaded, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)

			err = repo.UpdateProgress(ctx, loaded, 1)
			assert.True(t, errors.Is(err, ErrVersionConflict))
		})

		t.Run("ByFilterCurrentStage", func(t *testing.T) {
			stage := models.StageInvitations
			rows, err := repo.ByFilter(ctx, models.CampaignFilter{BrandID: &brand.ID, CurrentStage: &stage}, "", 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 1)
		})

		t.Run("TransactionRollback", func(t *testing.T) {
			loaded, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			version := loaded.Version

			rollback := errors.New("rollback")
			err = WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				loaded.Progress, _ = loaded.Progress.Advance(models.StageInvitations)
				if err := repo.UpdateProgress(txCtx, loaded, version); err != nil {
					return err
				}
				return rollback
			})
			assert.ErrorIs(t, err, rollback)

			reloaded, err := repo.ByID(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, version, reloaded.Version)
			assert.Equal(t, models.StageInvitations, reloaded.Progress.CurrentStage())
		})

		t.Run("SoftDelete", func(t *testing.T) {
			require.NoError(t, repo.SoftDelete(ctx, campaign.ID))

			gone, err := repo.ByUUID(ctx, campaign.UUID.String())
			require.NoError(t, err)
			assert.Nil(t, gone)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestInvitationRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewInvitationRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		brand, err := fixtures.CreateTestBrand()
		require.NoError(t, err)
		campaign, err := fixtures.CreateTestCampaign(brand, models.CampaignRequirements{})
		require.NoError(t, err)
		creator, err := fixtures.CreateTestCreator()
		require.NoError(t, err)
		inv, err := fixtures.CreateTestInvitation(campaign, creator)
		require.NoError(t, err)

		t.Run("ByCampaignAndCreator", func(t *testing.T) {
			found, err := repo.ByCampaignAndCreator(ctx, campaign.ID, creator.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, models.InvitationStatusPending, found.Status)
		})

		t.Run("DuplicatePairRejected", func(t *testing.T) {
			_, err := fixtures.CreateTestInvitation(campaign, creator)
			assert.Error(t, err)
		})

		t.Run("InvitedCreatorIDs", func(t *testing.T) {
			ids, err := repo.InvitedCreatorIDs(ctx, campaign.ID)
			require.NoError(t, err)
			assert.Equal(t, []uint{creator.ID}, ids)
		})

		t.Run("UpdateStatusOnlyFromExpected", func(t *testing.T) {
			now := utils.UTCNow()
			require.NoError(t, repo.UpdateStatus(ctx, inv.ID, models.InvitationStatusPending, models.InvitationStatusAccepted, now))

			err := repo.UpdateStatus(ctx, inv.ID, models.InvitationStatusPending, models.InvitationStatusRejected, now)
			assert.ErrorIs(t, err, ErrVersionConflict)

			found, err := repo.ByUUID(ctx, inv.UUID.String())
			require.NoError(t, err)
			assert.Equal(t, models.InvitationStatusAccepted, found.Status)
			assert.NotNil(t, found.RespondedAt)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestNotificationRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewNotificationRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		payload, err := json.Marshal(map[string]any{"type": "ALL_INVITATIONS_REJECTED"})
		require.NoError(t, err)

		n := &models.Notification{
			Type:          models.NotificationTypeAllInvitationsRejected,
			RecipientType: models.RecipientTypeBrand,
			RecipientID:   7,
			Payload:       payload,
		}
		require.NoError(t, repo.Save(ctx, n))

		t.Run("ListUnpublished", func(t *testing.T) {
			rows, err := repo.ListUnpublished(ctx, 10)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.JSONEq(t, string(payload), string(rows[0].Payload))
		})

		t.Run("MarkPublished", func(t *testing.T) {
			require.NoError(t, repo.MarkPublished(ctx, []uint{n.ID}, utils.UTCNow()))
			rows, err := repo.ListUnpublished(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		t.Run("MarkRead", func(t *testing.T) {
			require.NoError(t, repo.MarkRead(ctx, n.ID))
			unread := false
			count, err := repo.Count(ctx, models.NotificationFilter{RecipientID: utils.ToPtr(uint(7)), IsRead: &unread})
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAuditLogRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewAuditLogRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		brand := models.RecipientTypeBrand
		creator := models.RecipientTypeCreator
		logs := []*models.AuditLog{
			{ActorType: &brand, ActorID: utils.ToPtr(uint(1)), Action: models.AuditActionCampaignCreated, Success: utils.ToPtr(true)},
			{ActorType: &brand, ActorID: utils.ToPtr(uint(1)), Action: models.AuditActionCampaignStageAdvanceFailed, Success: utils.ToPtr(false)},
			{ActorType: &creator, ActorID: utils.ToPtr(uint(1)), Action: models.AuditActionInvitationResponded, Success: utils.ToPtr(true)},
		}
		require.NoError(t, repo.SaveBatch(ctx, logs))
		for _, l := range logs {
			require.NotZero(t, l.ID)
		}

		t.Run("ListByActorSeparatesRoles", func(t *testing.T) {
			rows, err := repo.ListByActor(ctx, models.RecipientTypeBrand, 1, 10, 0)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, logs[1].ID, rows[0].ID)
		})

		t.Run("ExistsFailed", func(t *testing.T) {
			failed := false
			ok, err := repo.Exists(ctx, models.AuditLogFilter{ActorType: &creator, Success: &failed})
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = repo.Exists(ctx, models.AuditLogFilter{ActorType: &brand, Success: &failed})
			require.NoError(t, err)
			assert.True(t, ok)
		})

		t.Run("SaveBatchEmpty", func(t *testing.T) {
			require.NoError(t, repo.SaveBatch(ctx, nil))
		})

		return nil
	})
	require.NoError(t, err)
}
