package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition    = errors.New("invalid stage transition")
	ErrStatisticsCorruption = errors.New("invitation statistics corrupted")
	ErrInvalidOutcome       = errors.New("invalid invitation outcome")
	ErrMalformedProgress    = errors.New("malformed campaign progress")
)

// StageName identifies one step of the campaign pipeline
type StageName string

const (
	StageCreation    StageName = "creation"
	StageInvitations StageName = "invitations"
	StageContent     StageName = "content"
	StageCompletion  StageName = "completion"

	// StageCompleted is reported by CurrentStage once every stage is done.
	StageCompleted StageName = "completed"
)

// StageOrder is the fixed pipeline order
var StageOrder = [4]StageName{StageCreation, StageInvitations, StageContent, StageCompletion}

// String returns the string representation of the stage name
func (s StageName) String() string {
	return string(s)
}

// Valid checks if the stage name is one of the four pipeline stages
func (s StageName) Valid() bool {
	return stageIndex(s) >= 0
}

func stageIndex(s StageName) int {
	for i, name := range StageOrder {
		if name == s {
			return i
		}
	}
	return -1
}

// StageStatus is the status of a single stage
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
)

// Valid checks if the status is valid
func (s StageStatus) Valid() bool {
	switch s {
	case StageStatusPending, StageStatusActive, StageStatusCompleted:
		return true
	default:
		return false
	}
}

// StageState is the stored status of one stage
type StageState struct {
	Name   StageName   `json:"name"`
	Status StageStatus `json:"status"`
}

// InvitationOutcome is an event recorded against the invitation statistics
type InvitationOutcome string

const (
	InvitationOutcomeSent     InvitationOutcome = "sent"
	InvitationOutcomeAccepted InvitationOutcome = "accepted"
	InvitationOutcomeRejected InvitationOutcome = "rejected"
)

// InvitationStatistics aggregates invitation counts for a campaign
type InvitationStatistics struct {
	TotalInvitations    int `json:"totalInvitations"`
	AcceptedInvitations int `json:"acceptedInvitations"`
	PendingInvitations  int `json:"pendingInvitations"`
	RejectedInvitations int `json:"rejectedInvitations"`
}

// Reconciles reports whether the counts are non-negative and total equals
// accepted + pending + rejected.
func (s InvitationStatistics) Reconciles() bool {
	if s.TotalInvitations < 0 || s.AcceptedInvitations < 0 || s.PendingInvitations < 0 || s.RejectedInvitations < 0 {
		return false
	}
	return s.TotalInvitations == s.AcceptedInvitations+s.PendingInvitations+s.RejectedInvitations
}

// TransitionError is returned when a stage or invitation outcome is applied out of order.
type TransitionError struct {
	Stage   StageName
	Current StageName
	Reason  string
}

func (e *TransitionError) Error() string {
	return e.Reason
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// StatisticsCorruptionError carries the counts that failed to reconcile.
// It must never be shown to end users.
type StatisticsCorruptionError struct {
	Outcome InvitationOutcome
	Before  InvitationStatistics
	After   InvitationStatistics
}

func (e *StatisticsCorruptionError) Error() string {
	return fmt.Sprintf("invitation statistics do not reconcile after %q: before=%+v after=%+v", e.Outcome, e.Before, e.After)
}

func (e *StatisticsCorruptionError) Unwrap() error {
	return ErrStatisticsCorruption
}

// CampaignProgress is the per-campaign pipeline state. It is a value type:
// every operation returns a new value and leaves the receiver untouched.
type CampaignProgress struct {
	Stages     [4]StageState        `json:"stages"`
	Statistics InvitationStatistics `json:"statistics"`
}

// NewCampaignProgress returns a progress with all stages pending
func NewCampaignProgress() CampaignProgress {
	var p CampaignProgress
	for i, name := range StageOrder {
		p.Stages[i] = StageState{Name: name, Status: StageStatusPending}
	}
	return p
}

// StartedCampaignProgress returns the progress of a freshly created campaign:
// creation completed and invitations active.
func StartedCampaignProgress() CampaignProgress {
	p := NewCampaignProgress()
	p.Stages[0].Status = StageStatusCompleted
	p.Stages[1].Status = StageStatusActive
	return p
}

// Value implements the driver.Valuer interface for CampaignProgress
func (p CampaignProgress) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface for CampaignProgress
func (p *CampaignProgress) Scan(value any) error {
	if value == nil {
		*p = NewCampaignProgress()
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CampaignProgress", value)
	}

	return json.Unmarshal(bytes, p)
}

// CurrentStage returns the first stage whose status is not completed,
// or StageCompleted when every stage is done.
func (p CampaignProgress) CurrentStage() StageName {
	for _, st := range p.Stages {
		if st.Status != StageStatusCompleted {
			return st.Name
		}
	}
	return StageCompleted
}

// IsComplete reports whether every stage is completed
func (p CampaignProgress) IsComplete() bool {
	return p.CurrentStage() == StageCompleted
}

// StageStatus returns the effective status of a stage. Activation is derived:
// the current stage is active as soon as every earlier stage is completed.
func (p CampaignProgress) StageStatus(name StageName) StageStatus {
	idx := stageIndex(name)
	if idx < 0 {
		return ""
	}
	if p.Stages[idx].Status == StageStatusCompleted {
		return StageStatusCompleted
	}
	if p.CurrentStage() == name {
		return StageStatusActive
	}
	return StageStatusPending
}

// EffectiveStages returns every stage with its derived status
func (p CampaignProgress) EffectiveStages() []StageState {
	out := make([]StageState, 0, len(StageOrder))
	for _, name := range StageOrder {
		out = append(out, StageState{Name: name, Status: p.StageStatus(name)})
	}
	return out
}

// Advance completes the given stage and activates the next one.
// Only the current stage may be advanced.
func (p CampaignProgress) Advance(name StageName) (CampaignProgress, error) {
	if err := p.Validate(); err != nil {
		return p, err
	}

	idx := stageIndex(name)
	if idx < 0 {
		return p, &TransitionError{Stage: name, Current: p.CurrentStage(), Reason: fmt.Sprintf("unknown stage %q", name)}
	}

	current := p.CurrentStage()
	switch {
	case current == StageCompleted:
		return p, &TransitionError{Stage: name, Current: current, Reason: "campaign is already complete"}
	case p.Stages[idx].Status == StageStatusCompleted:
		return p, &TransitionError{Stage: name, Current: current, Reason: fmt.Sprintf("stage %s is already completed", name)}
	case name == StageCompletion && p.Stages[stageIndex(StageContent)].Status != StageStatusCompleted:
		return p, &TransitionError{Stage: name, Current: current, Reason: "complete content review before marking the campaign complete"}
	case name != current:
		return p, &TransitionError{Stage: name, Current: current, Reason: fmt.Sprintf("complete the %s stage before %s", current, name)}
	}

	next := p
	next.Stages[idx].Status = StageStatusCompleted
	if idx+1 < len(next.Stages) && next.Stages[idx+1].Status != StageStatusCompleted {
		next.Stages[idx+1].Status = StageStatusActive
	}
	return next, nil
}

// RecordInvitationOutcome applies an invitation event to the statistics.
// Accepted and rejected require a pending invitation. Counts that fail to
// reconcile afterwards yield a StatisticsCorruptionError and are never repaired.
func (p CampaignProgress) RecordInvitationOutcome(outcome InvitationOutcome) (CampaignProgress, error) {
	if err := p.Validate(); err != nil {
		var corruption *StatisticsCorruptionError
		if errors.As(err, &corruption) {
			corruption.Outcome = outcome
		}
		return p, err
	}

	next := p
	st := &next.Statistics

	switch outcome {
	case InvitationOutcomeSent:
		st.TotalInvitations++
		st.PendingInvitations++
	case InvitationOutcomeAccepted, InvitationOutcomeRejected:
		if st.PendingInvitations <= 0 {
			return p, &TransitionError{
				Stage:   StageInvitations,
				Current: p.CurrentStage(),
				Reason:  fmt.Sprintf("no pending invitation to mark as %s", outcome),
			}
		}
		st.PendingInvitations--
		if outcome == InvitationOutcomeAccepted {
			st.AcceptedInvitations++
		} else {
			st.RejectedInvitations++
		}
	default:
		return p, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	if !st.Reconciles() {
		return p, &StatisticsCorruptionError{Outcome: outcome, Before: p.Statistics, After: *st}
	}
	return next, nil
}

// AllInvitationsRejected reports whether every invitation sent so far was rejected
func (p CampaignProgress) AllInvitationsRejected() bool {
	s := p.Statistics
	return s.PendingInvitations == 0 && s.TotalInvitations > 0 && s.AcceptedInvitations == 0
}

// Validate checks a loaded document for structural consistency
func (p CampaignProgress) Validate() error {
	seenOpen := false
	for i, st := range p.Stages {
		if st.Name != StageOrder[i] {
			return fmt.Errorf("%w: stage %d is %q, expected %q", ErrMalformedProgress, i, st.Name, StageOrder[i])
		}
		if !st.Status.Valid() {
			return fmt.Errorf("%w: stage %s has status %q", ErrMalformedProgress, st.Name, st.Status)
		}
		if st.Status != StageStatusCompleted {
			seenOpen = true
		} else if seenOpen {
			return fmt.Errorf("%w: stage %s completed before an earlier stage", ErrMalformedProgress, st.Name)
		}
	}
	if !p.Statistics.Reconciles() {
		return &StatisticsCorruptionError{Before: p.Statistics, After: p.Statistics}
	}
	return nil
}
