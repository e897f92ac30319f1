package domain

import (
	"testing"
	"time"
)

func TestApplyOutcomeMapsOutcomesToStages(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		current Stage
		dials   int
		outcome Outcome
		want    Stage
	}{
		{"no answer moves new to attempting", StageNew, 0, OutcomeNoAnswer, StageAttempting},
		{"gatekeeper moves new to attempting", StageNew, 1, OutcomeGatekeeper, StageAttempting},
		{"dm reached moves to dm_engaged", StageAttempting, 2, OutcomeDMReached, StageDMEngaged},
		{"callback requested moves to dm_engaged", StageAttempting, 2, OutcomeCallbackRequested, StageDMEngaged},
		{"email requested moves to email_sent", StageDMEngaged, 3, OutcomeEmailRequested, StageEmailSent},
		{"statement agreed moves to statement_requested", StageDMEngaged, 3, OutcomeStatementAgreed, StageStatementRequested},
		{"not interested closes lost", StageDMEngaged, 4, OutcomeNotInterested, StageClosedLost},
		{"bad data closes lost", StageNew, 0, OutcomeBadData, StageClosedLost},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyOutcome(tc.current, tc.dials, tc.outcome, now)
			if got.Stage != tc.want {
				t.Fatalf("ApplyOutcome(%s, %d, %s) stage = %s, want %s",
					tc.current, tc.dials, tc.outcome, got.Stage, tc.want)
			}
			if got.DialAttempts != tc.dials+1 {
				t.Fatalf("dial attempts = %d, want %d", got.DialAttempts, tc.dials+1)
			}
		})
	}
}

func TestApplyOutcomeAlwaysIncrementsDials(t *testing.T) {
	now := time.Now().UTC()
	for _, outcome := range Outcomes {
		got := ApplyOutcome(StageDMEngaged, 7, outcome, now)
		if got.DialAttempts != 8 {
			t.Fatalf("outcome %s: dial attempts = %d, want 8", outcome, got.DialAttempts)
		}
	}
}

func TestApplyOutcomeUnknownOutcomeKeepsStage(t *testing.T) {
	now := time.Now().UTC()
	got := ApplyOutcome(StageQuoted, 3, Outcome("Wrong Number"), now)
	if got.Stage != StageQuoted {
		t.Fatalf("stage = %s, want %s", got.Stage, StageQuoted)
	}
	if got.DialAttempts != 4 {
		t.Fatalf("dial attempts = %d, want 4", got.DialAttempts)
	}
	if got.ClosedAt != nil || got.LossReason != "" || got.Parked {
		t.Fatalf("unexpected side effects: %+v", got)
	}
}

func TestApplyOutcomeClosedLostSideEffects(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	got := ApplyOutcome(StageDMEngaged, 2, OutcomeNotInterested, now)
	if got.Stage != StageClosedLost {
		t.Fatalf("stage = %s, want %s", got.Stage, StageClosedLost)
	}
	if got.ClosedAt == nil || !got.ClosedAt.Equal(now) {
		t.Fatalf("closedAt = %v, want %v", got.ClosedAt, now)
	}
	if got.LossReason != "Not Interested" {
		t.Fatalf("loss reason = %q, want %q", got.LossReason, "Not Interested")
	}

	got = ApplyOutcome(StageNew, 0, OutcomeBadData, now)
	if got.LossReason != "Bad Data" {
		t.Fatalf("loss reason = %q, want %q", got.LossReason, "Bad Data")
	}
}

func TestApplyOutcomeAutoPark(t *testing.T) {
	now := time.Now().UTC()

	// Fifth no-contact dial from an early stage parks the lead.
	got := ApplyOutcome(StageAttempting, 4, OutcomeNoAnswer, now)
	if got.Stage != StageParked || !got.Parked {
		t.Fatalf("stage = %s parked = %v, want parked", got.Stage, got.Parked)
	}

	// Gatekeeper counts as no contact too.
	got = ApplyOutcome(StageAttempting, 4, OutcomeGatekeeper, now)
	if got.Stage != StageParked {
		t.Fatalf("stage = %s, want %s", got.Stage, StageParked)
	}

	// Fourth dial is not enough.
	got = ApplyOutcome(StageAttempting, 3, OutcomeNoAnswer, now)
	if got.Stage != StageAttempting || got.Parked {
		t.Fatalf("stage = %s parked = %v, want attempting, not parked", got.Stage, got.Parked)
	}

	// A lead that reached a person never parks, however many dials.
	got = ApplyOutcome(StageDMEngaged, 9, OutcomeNoAnswer, now)
	if got.Stage != StageAttempting || got.Parked {
		t.Fatalf("stage = %s parked = %v, want attempting, not parked", got.Stage, got.Parked)
	}
}

func TestStageAndOutcomeLookups(t *testing.T) {
	for _, s := range Stages {
		if !IsKnownStage(s) {
			t.Fatalf("stage %s not known", s)
		}
		if StageLabels[s] == "" {
			t.Fatalf("stage %s has no label", s)
		}
	}
	if IsKnownStage(Stage("archived")) {
		t.Fatal("archived should not be a known stage")
	}
	for _, o := range Outcomes {
		if !IsKnownOutcome(o) {
			t.Fatalf("outcome %s not known", o)
		}
	}
	if IsKnownOutcome(Outcome("Voicemail Left")) {
		t.Fatal("unknown outcome reported as known")
	}
	if !StageClosedWon.IsClosed() || !StageClosedLost.IsClosed() || StageQuoted.IsClosed() {
		t.Fatal("IsClosed misclassifies stages")
	}
}
