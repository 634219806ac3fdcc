// Package businessflow contains the core business logic and use cases of the marketplace
package businessflow

import (
	"errors"
	"fmt"

	"github.com/amirphl/collab-market/models"
	"github.com/amirphl/collab-market/repository"
)

// Business flow error constants
var (
	// Actor errors
	ErrBrandNotFound    = errors.New("brand not found")
	ErrBrandInactive    = errors.New("brand is inactive")
	ErrCreatorNotFound  = errors.New("creator not found")
	ErrCreatorInactive  = errors.New("creator is inactive")
	ErrInvalidActorRole = errors.New("invalid actor role")

	// Campaign errors
	ErrCampaignNotFound           = errors.New("campaign not found")
	ErrCampaignAccessDenied       = errors.New("campaign access denied")
	ErrCampaignUUIDRequired       = errors.New("campaign UUID is required")
	ErrCampaignTitleRequired      = errors.New("campaign title is required")
	ErrInvalidRequirements        = errors.New("invalid campaign requirements")
	ErrRequirementsLocked         = errors.New("requirements can no longer change")
	ErrInvalidStage               = errors.New("invalid stage")
	ErrNoAcceptedInvitations      = errors.New("no accepted invitations")
	ErrContentReviewPending       = errors.New("content review pending")
	ErrConcurrentModification     = errors.New("campaign was modified concurrently")
	ErrCampaignLocked             = errors.New("campaign is locked by another operation")
	ErrCampaignNotInvitationStage = errors.New("campaign is not accepting invitations")
	ErrCampaignNotContentStage    = errors.New("campaign is not accepting content")

	// Invitation errors
	ErrInvitationNotFound     = errors.New("invitation not found")
	ErrInvitationAccessDenied = errors.New("invitation access denied")
	ErrAlreadyInvited         = errors.New("creator already invited")
	ErrInvitationNotPending   = errors.New("invitation is not pending")
	ErrInvalidDecision        = errors.New("invalid decision")
	ErrInvitationMessageEmpty = errors.New("invitation message is required")

	// Submission errors
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrSubmissionAccessDenied = errors.New("submission access denied")
	ErrInvitationNotAccepted  = errors.New("invitation not accepted")
	ErrSubmissionNotPending   = errors.New("submission is not awaiting review")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
	ErrInvalidStatus   = errors.New("invalid status filter")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}


// IsInvalidTransition reports a stage or invitation event applied out of order
func IsInvalidTransition(err error) bool {
	return errors.Is(err, models.ErrInvalidTransition)
}

// IsStatisticsCorruption reports an internal consistency fault
func IsStatisticsCorruption(err error) bool {
	return errors.Is(err, models.ErrStatisticsCorruption)
}

// IsMalformedProgress reports a stored stage list that fails validation
func IsMalformedProgress(err error) bool {
	return errors.Is(err, models.ErrMalformedProgress)
}

// TransitionReason extracts the actionable message of a stage transition error
func TransitionReason(err error) string {
	var te *models.TransitionError
	if errors.As(err, &te) {
		return te.Reason
	}
	return ""
}

func IsConcurrentModification(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, repository.ErrVersionConflict) || errors.Is(err, ErrCampaignLocked)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrBrandNotFound) ||
		errors.Is(err, ErrCreatorNotFound) ||
		errors.Is(err, ErrCampaignNotFound) ||
		errors.Is(err, ErrInvitationNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrNotificationNotFound)
}

func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied) ||
		errors.Is(err, ErrInvitationAccessDenied) ||
		errors.Is(err, ErrSubmissionAccessDenied) ||
		errors.Is(err, ErrInvalidActorRole)
}

func IsInactive(err error) bool {
	return errors.Is(err, ErrBrandInactive) || errors.Is(err, ErrCreatorInactive)
}

// IsConflict groups errors where the request is valid but the current state forbids it
func IsConflict(err error) bool {
	return IsInvalidTransition(err) ||
		IsConcurrentModification(err) ||
		errors.Is(err, ErrAlreadyInvited) ||
		errors.Is(err, ErrInvitationNotPending) ||
		errors.Is(err, ErrSubmissionNotPending) ||
		errors.Is(err, ErrRequirementsLocked) ||
		errors.Is(err, ErrNoAcceptedInvitations) ||
		errors.Is(err, ErrContentReviewPending) ||
		errors.Is(err, ErrCampaignNotInvitationStage) ||
		errors.Is(err, ErrCampaignNotContentStage) ||
		errors.Is(err, ErrInvitationNotAccepted)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrCampaignUUIDRequired) ||
		errors.Is(err, ErrCampaignTitleRequired) ||
		errors.Is(err, ErrInvalidRequirements) ||
		errors.Is(err, ErrInvalidStage) ||
		errors.Is(err, ErrInvalidDecision) ||
		errors.Is(err, ErrInvitationMessageEmpty) ||
		errors.Is(err, ErrInvalidPage) ||
		errors.Is(err, ErrInvalidPageSize) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, models.ErrInvalidOutcome)
}
