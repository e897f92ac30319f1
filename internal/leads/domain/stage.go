// Package domain holds the pure lead lifecycle rules: the pipeline stage
// enum, the call outcome enum, and the stage transition engine that maps a
// logged call to its lead-state effects. Nothing in here touches storage.
package domain

import "time"

// Stage is a lead's position in the dialing pipeline.
type Stage string

const (
	StageNew                Stage = "new"
	StageAttempting         Stage = "attempting"
	StageDMEngaged          Stage = "dm_engaged"
	StageEmailSent          Stage = "email_sent"
	StageStatementRequested Stage = "statement_requested"
	StageStatementReceived  Stage = "statement_received"
	StageQuoted             Stage = "quoted"
	StageNegotiation        Stage = "negotiation"
	StageClosedWon          Stage = "closed_won"
	StageClosedLost         Stage = "closed_lost"
	StageParked             Stage = "parked"
)

// Stages lists every pipeline stage in pipeline order.
var Stages = []Stage{
	StageNew,
	StageAttempting,
	StageDMEngaged,
	StageEmailSent,
	StageStatementRequested,
	StageStatementReceived,
	StageQuoted,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
	StageParked,
}

// StageLabels maps stages to their display names.
var StageLabels = map[Stage]string{
	StageNew:                "Lead (Not Contacted)",
	StageAttempting:         "Attempting",
	StageDMEngaged:          "DM Engaged",
	StageEmailSent:          "Email Sent",
	StageStatementRequested: "Statement Requested",
	StageStatementReceived:  "Statement Received",
	StageQuoted:             "Quoted",
	StageNegotiation:        "Negotiation",
	StageClosedWon:          "Closed Won",
	StageClosedLost:         "Closed Lost",
	StageParked:             "Parked (5 Attempts No Contact)",
}

// IsKnownStage reports whether the stage is one of the defined pipeline stages.
func IsKnownStage(stage Stage) bool {
	_, ok := StageLabels[stage]
	return ok
}

// IsClosed reports whether the stage terminates the pipeline.
func (s Stage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Outcome is the result of a single dial, as recorded by the agent.
type Outcome string

const (
	OutcomeNoAnswer          Outcome = "No Answer"
	OutcomeGatekeeper        Outcome = "Gatekeeper"
	OutcomeDMReached         Outcome = "DM Reached"
	OutcomeCallbackRequested Outcome = "Callback Requested"
	OutcomeEmailRequested    Outcome = "Email Requested"
	OutcomeStatementAgreed   Outcome = "Statement Agreed"
	OutcomeNotInterested     Outcome = "Not Interested"
	OutcomeBadData           Outcome = "Bad Data"
)

// Outcomes lists every call outcome.
var Outcomes = []Outcome{
	OutcomeNoAnswer,
	OutcomeGatekeeper,
	OutcomeDMReached,
	OutcomeCallbackRequested,
	OutcomeEmailRequested,
	OutcomeStatementAgreed,
	OutcomeNotInterested,
	OutcomeBadData,
}

// IsKnownOutcome reports whether the outcome is one of the defined values.
func IsKnownOutcome(outcome Outcome) bool {
	_, ok := outcomeToStage[outcome]
	return ok
}

// outcomeToStage is the fixed outcome → candidate stage table. An outcome
// missing from this table leaves the stage unchanged; the dial count still
// increments.
var outcomeToStage = map[Outcome]Stage{
	OutcomeNoAnswer:          StageAttempting,
	OutcomeGatekeeper:        StageAttempting,
	OutcomeDMReached:         StageDMEngaged,
	OutcomeCallbackRequested: StageDMEngaged,
	OutcomeEmailRequested:    StageEmailSent,
	OutcomeStatementAgreed:   StageStatementRequested,
	OutcomeNotInterested:     StageClosedLost,
	OutcomeBadData:           StageClosedLost,
}

// autoParkThreshold is the dial count at which repeated no-contact calls park
// a lead that never got past the early stages.
const autoParkThreshold = 5

// noContact reports whether the outcome failed to reach a person.
func noContact(outcome Outcome) bool {
	return outcome == OutcomeNoAnswer || outcome == OutcomeGatekeeper
}

// earlyStage reports whether the lead has not yet progressed past dialing.
func earlyStage(stage Stage) bool {
	return stage == StageNew || stage == StageAttempting
}

// CallEffect is the computed result of applying one call outcome to a lead.
type CallEffect struct {
	// Stage is the lead's resulting pipeline stage.
	Stage Stage
	// DialAttempts is the resulting dial counter.
	DialAttempts int
	// ClosedAt is set when the call closed the lead.
	ClosedAt *time.Time
	// LossReason is set when the call closed the lead as lost.
	LossReason string
	// Parked reports whether the auto-park rule fired on this call.
	Parked bool
}

// ApplyOutcome runs the stage transition engine: given the lead's state before
// the call and the logged outcome, it computes the new stage, the incremented
// dial counter, and the closed-lost side effects. The engine never regresses a
// stage on its own and never parks a lead that has reached a person.
func ApplyOutcome(current Stage, dialAttempts int, outcome Outcome, now time.Time) CallEffect {
	effect := CallEffect{
		Stage:        current,
		DialAttempts: dialAttempts + 1,
	}

	target, mapped := outcomeToStage[outcome]
	if !mapped {
		return effect
	}

	effect.Stage = target

	if target == StageClosedLost {
		closedAt := now
		effect.ClosedAt = &closedAt
		switch outcome {
		case OutcomeNotInterested:
			effect.LossReason = string(OutcomeNotInterested)
		case OutcomeBadData:
			effect.LossReason = string(OutcomeBadData)
		}
	}

	// Auto-park: five no-contact dials with no progress past the early
	// stages parks the lead instead of leaving it in attempting.
	if target == StageAttempting && noContact(outcome) &&
		effect.DialAttempts >= autoParkThreshold && earlyStage(current) {
		effect.Stage = StageParked
		effect.Parked = true
	}

	return effect
}
