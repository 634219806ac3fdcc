package businessflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
	"github.com/stretchr/testify/assert"
)

func TestBusinessErrorClassification(t *testing.T) {
	_, transitionErr := models.NewCampaignProgress().Advance(models.StageContent)

	tests := []struct {
		name       string
		err        error
		transition bool
		conflict   bool
		validation bool
		notFound   bool
	}{
		{name: "transition", err: NewBusinessError("STAGE_ADVANCE_FAILED", "x", transitionErr), transition: true, conflict: true},
		{name: "version conflict", err: NewBusinessError("X", "x", fmt.Errorf("save: %w", repository.ErrVersionConflict)), conflict: true},
		{name: "duplicate", err: NewBusinessError("X", "x", ErrAlreadyInvited), conflict: true},
		{name: "bad requirements", err: NewBusinessError("X", "x", fmt.Errorf("%w: negative", ErrInvalidRequirements)), validation: true},
		{name: "bad outcome", err: fmt.Errorf("%w: %q", models.ErrInvalidOutcome, "maybe"), validation: true},
		{name: "missing campaign", err: NewBusinessError("X", "x", ErrCampaignNotFound), notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transition, IsInvalidTransition(tt.err))
			assert.Equal(t, tt.conflict, IsConflict(tt.err))
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
		})
	}
}

func TestTransitionReason(t *testing.T) {
	_, err := models.StartedCampaignProgress().Advance(models.StageCompletion)
	wrapped := NewBusinessError("STAGE_ADVANCE_FAILED", "Failed to advance stage", err)

	assert.Equal(t, "complete content review before marking the campaign complete", TransitionReason(wrapped))
	assert.Empty(t, TransitionReason(errors.New("boom")))
	assert.Contains(t, wrapped.Error(), "Failed to advance stage: ")
}
