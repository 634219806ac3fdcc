package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func progressWith(statuses ...StageStatus) CampaignProgress {
	p := NewCampaignProgress()
	for i, s := range statuses {
		p.Stages[i].Status = s
	}
	return p
}

func TestCampaignProgress_CurrentStage(t *testing.T) {
	tests := []struct {
		name     string
		progress CampaignProgress
		expected StageName
	}{
		{"fresh", NewCampaignProgress(), StageCreation},
		{"started", StartedCampaignProgress(), StageInvitations},
		{"invitations done", progressWith(StageStatusCompleted, StageStatusCompleted, StageStatusActive), StageContent},
		{"all done", progressWith(StageStatusCompleted, StageStatusCompleted, StageStatusCompleted, StageStatusCompleted), StageCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.progress.CurrentStage())
		})
	}
}

func TestCampaignProgress_DerivedActivation(t *testing.T) {
	// invitations stored as pending but creation is completed
	p := progressWith(StageStatusCompleted)

	assert.Equal(t, StageStatusActive, p.StageStatus(StageInvitations))
	assert.Equal(t, StageStatusPending, p.StageStatus(StageContent))
	assert.Equal(t, StageStatusCompleted, p.StageStatus(StageCreation))
	assert.Equal(t, StageStatus(""), p.StageStatus("unknown"))

	next, err := p.Advance(StageInvitations)
	require.NoError(t, err)
	assert.Equal(t, StageContent, next.CurrentStage())
}

func TestCampaignProgress_Advance(t *testing.T) {
	p := StartedCampaignProgress()

	p, err := p.Advance(StageInvitations)
	require.NoError(t, err)
	assert.Equal(t, StageStatusCompleted, p.Stages[1].Status)
	assert.Equal(t, StageStatusActive, p.Stages[2].Status)

	p, err = p.Advance(StageContent)
	require.NoError(t, err)
	assert.Equal(t, StageStatusActive, p.Stages[3].Status)

	p, err = p.Advance(StageCompletion)
	require.NoError(t, err)
	assert.True(t, p.IsComplete())
	assert.Equal(t, StageCompleted, p.CurrentStage())
}

func TestCampaignProgress_AdvanceRejected(t *testing.T) {
	tests := []struct {
		name     string
		progress CampaignProgress
		stage    StageName
		reason   string
	}{
		{
			name:     "content while invitations pending",
			progress: progressWith(StageStatusCompleted, StageStatusPending),
			stage:    StageContent,
			reason:   "complete the invitations stage before content",
		},
		{
			name:     "completion while content not completed",
			progress: progressWith(StageStatusCompleted, StageStatusCompleted, StageStatusActive),
			stage:    StageCompletion,
			reason:   "complete content review before marking the campaign complete",
		},
		{
			name:     "already completed stage",
			progress: StartedCampaignProgress(),
			stage:    StageCreation,
			reason:   "stage creation is already completed",
		},
		{
			name:     "unknown stage",
			progress: StartedCampaignProgress(),
			stage:    "launch",
			reason:   `unknown stage "launch"`,
		},
		{
			name:     "campaign already complete",
			progress: progressWith(StageStatusCompleted, StageStatusCompleted, StageStatusCompleted, StageStatusCompleted),
			stage:    StageCompletion,
			reason:   "campaign is already complete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.progress
			next, err := tt.progress.Advance(tt.stage)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
			assert.EqualError(t, err, tt.reason)
			assert.Equal(t, before, next)
			assert.Equal(t, before, tt.progress)
		})
	}
}

func TestCampaignProgress_AdvanceNeverRegresses(t *testing.T) {
	p := NewCampaignProgress()
	for _, stage := range StageOrder {
		next, err := p.Advance(stage)
		require.NoError(t, err)
		for i := range p.Stages {
			if p.Stages[i].Status == StageStatusCompleted {
				assert.Equal(t, StageStatusCompleted, next.Stages[i].Status)
			}
		}
		require.NoError(t, next.Validate())
		p = next
	}
}

func TestCampaignProgress_RecordInvitationOutcome_AllRejected(t *testing.T) {
	p := StartedCampaignProgress()
	var err error

	for range 3 {
		p, err = p.RecordInvitationOutcome(InvitationOutcomeSent)
		require.NoError(t, err)
	}
	assert.False(t, p.AllInvitationsRejected())

	for range 3 {
		p, err = p.RecordInvitationOutcome(InvitationOutcomeRejected)
		require.NoError(t, err)
	}

	assert.Equal(t, InvitationStatistics{TotalInvitations: 3, RejectedInvitations: 3}, p.Statistics)
	assert.True(t, p.AllInvitationsRejected())
}

func TestCampaignProgress_RecordInvitationOutcome(t *testing.T) {
	p := StartedCampaignProgress()
	p, err := p.RecordInvitationOutcome(InvitationOutcomeSent)
	require.NoError(t, err)
	p, err = p.RecordInvitationOutcome(InvitationOutcomeSent)
	require.NoError(t, err)

	accepted, err := p.RecordInvitationOutcome(InvitationOutcomeAccepted)
	require.NoError(t, err)
	assert.Equal(t, InvitationStatistics{TotalInvitations: 2, AcceptedInvitations: 1, PendingInvitations: 1}, accepted.Statistics)
	assert.Equal(t, 2, p.Statistics.PendingInvitations, "receiver must be untouched")

	done, err := accepted.RecordInvitationOutcome(InvitationOutcomeRejected)
	require.NoError(t, err)
	assert.True(t, done.Statistics.Reconciles())
	assert.False(t, done.AllInvitationsRejected())

	t.Run("no pending invitation", func(t *testing.T) {
		_, err := done.RecordInvitationOutcome(InvitationOutcomeAccepted)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown outcome", func(t *testing.T) {
		_, err := done.RecordInvitationOutcome("ignored")
		assert.ErrorIs(t, err, ErrInvalidOutcome)
	})
}

func TestCampaignProgress_StatisticsCorruption(t *testing.T) {
	p := StartedCampaignProgress()
	p.Statistics = InvitationStatistics{TotalInvitations: 5, PendingInvitations: 2}

	next, err := p.RecordInvitationOutcome(InvitationOutcomeRejected)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatisticsCorruption)
	assert.NotErrorIs(t, err, ErrInvalidTransition)

	var corruption *StatisticsCorruptionError
	require.ErrorAs(t, err, &corruption)
	assert.Equal(t, InvitationOutcomeRejected, corruption.Outcome)
	assert.Equal(t, p.Statistics, corruption.Before)
	assert.Equal(t, p, next, "numbers are never repaired")
}

func TestCampaignProgress_Validate(t *testing.T) {
	assert.NoError(t, StartedCampaignProgress().Validate())

	gap := progressWith(StageStatusCompleted, StageStatusPending, StageStatusCompleted)
	assert.ErrorIs(t, gap.Validate(), ErrMalformedProgress)

	swapped := NewCampaignProgress()
	swapped.Stages[0].Name, swapped.Stages[1].Name = swapped.Stages[1].Name, swapped.Stages[0].Name
	assert.ErrorIs(t, swapped.Validate(), ErrMalformedProgress)

	bad := StartedCampaignProgress()
	bad.Statistics.TotalInvitations = 1
	assert.ErrorIs(t, bad.Validate(), ErrStatisticsCorruption)
}

func TestCampaignProgress_MutationsRejectStoredCorruption(t *testing.T) {
	t.Run("statistics that do not reconcile", func(t *testing.T) {
		var p CampaignProgress
		require.NoError(t, p.Scan([]byte(`{"stages":[
			{"name":"creation","status":"completed"},
			{"name":"invitations","status":"active"},
			{"name":"content","status":"pending"},
			{"name":"completion","status":"pending"}
		],"statistics":{"totalInvitations":5}}`)))

		next, err := p.Advance(StageInvitations)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStatisticsCorruption)
		assert.NotErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, p, next)

		next, err = p.RecordInvitationOutcome(InvitationOutcomeSent)
		require.Error(t, err)
		var corruption *StatisticsCorruptionError
		require.ErrorAs(t, err, &corruption)
		assert.Equal(t, InvitationOutcomeSent, corruption.Outcome)
		assert.Equal(t, 5, corruption.Before.TotalInvitations)
		assert.Equal(t, p, next)
	})

	t.Run("truncated stage list", func(t *testing.T) {
		var p CampaignProgress
		require.NoError(t, p.Scan([]byte(`{"stages":[{"name":"creation","status":"completed"}],"statistics":{}}`)))

		assert.Equal(t, StageName(""), p.CurrentStage())

		_, err := p.Advance(StageInvitations)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedProgress)
		assert.NotErrorIs(t, err, ErrInvalidTransition)

		_, err = p.RecordInvitationOutcome(InvitationOutcomeSent)
		assert.ErrorIs(t, err, ErrMalformedProgress)
	})
}

func TestCampaignProgress_ValueScan(t *testing.T) {
	p, err := StartedCampaignProgress().RecordInvitationOutcome(InvitationOutcomeSent)
	require.NoError(t, err)

	raw, err := p.Value()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw.([]byte), &doc))
	assert.Contains(t, doc["statistics"], "pendingInvitations")

	var scanned CampaignProgress
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, p, scanned)

	var empty CampaignProgress
	require.NoError(t, empty.Scan(nil))
	assert.Equal(t, NewCampaignProgress(), empty)
}
