package reports

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestBuildDailyReportRollsCallsByDay(t *testing.T) {
	leadID := uuid.New()
	calls := []CallActivity{
		{LeadID: &leadID, CompanyName: "Acme", Outcome: "DM Reached", CallbackScheduled: "No", CreatedAt: day("2026-08-03").Add(9 * time.Hour)},
		{LeadID: &leadID, CompanyName: "Acme", Outcome: "No Answer", CallbackScheduled: "Yes", CreatedAt: day("2026-08-03").Add(14 * time.Hour)},
		{LeadID: &leadID, CompanyName: "Globex", Outcome: "Gatekeeper", CallbackScheduled: "No", CreatedAt: day("2026-08-04")},
	}

	daily := BuildDailyReport(calls, nil)
	if len(daily) != 2 {
		t.Fatalf("expected 2 days, got %d", len(daily))
	}
	if daily[0].Date != "2026-08-03" || daily[1].Date != "2026-08-04" {
		t.Fatalf("days not sorted: %q, %q", daily[0].Date, daily[1].Date)
	}

	d := daily[0]
	if d.TotalCalls != 2 || d.DMReached != 1 || d.Callbacks != 1 {
		t.Fatalf("day rollup = %+v", d)
	}
	// Two calls to the same business count once.
	if d.BusinessCount != 1 || len(d.Businesses) != 1 || d.Businesses[0] != "Acme" {
		t.Fatalf("businesses = %v (count %d)", d.Businesses, d.BusinessCount)
	}
}

func TestBuildDailyReportSplitsOppCreationAndClose(t *testing.T) {
	opps := []OppActivity{
		{
			ID:              uuid.New(),
			Stage:           "closed_won",
			DealValue:       strPtr("$3,000"),
			CreatedAt:       day("2026-08-01"),
			ActualCloseDate: timePtr(day("2026-08-05")),
		},
		{
			ID:              uuid.New(),
			Stage:           "closed_lost",
			DealValue:       strPtr("1200"),
			LossReason:      strPtr("Price"),
			CreatedAt:       day("2026-08-05"),
			ActualCloseDate: timePtr(day("2026-08-05")),
		},
	}

	daily := BuildDailyReport(nil, opps)
	byDate := make(map[string]DailyActivity)
	for _, d := range daily {
		byDate[d.Date] = d
	}

	created := byDate["2026-08-01"]
	if created.OpportunitiesCreated != 1 || created.OpportunitiesWon != 0 {
		t.Fatalf("creation day = %+v", created)
	}

	closed := byDate["2026-08-05"]
	if closed.OpportunitiesCreated != 1 || closed.OpportunitiesWon != 1 || closed.OpportunitiesLost != 1 {
		t.Fatalf("close day = %+v", closed)
	}
	if closed.WonValue != 3000 || closed.LostValue != 1200 {
		t.Fatalf("close day values = won %v lost %v", closed.WonValue, closed.LostValue)
	}
	if len(closed.LostReasons) != 1 || closed.LostReasons[0] != "Price" {
		t.Fatalf("lostReasons = %v", closed.LostReasons)
	}
}

func TestBuildWeeklyReportGroupsBySunday(t *testing.T) {
	// 2026-08-03 is a Monday, 2026-08-09 the following Sunday.
	daily := []DailyActivity{
		{Date: "2026-08-03", TotalCalls: 4, DMReached: 1, WonValue: 100},
		{Date: "2026-08-05", TotalCalls: 6, DMReached: 2, WonValue: 50},
		{Date: "2026-08-09", TotalCalls: 3},
	}

	weekly := BuildWeeklyReport(daily)
	if len(weekly) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weekly))
	}

	first := weekly[0]
	if first.WeekStart != "2026-08-02" {
		t.Fatalf("weekStart = %q, want 2026-08-02", first.WeekStart)
	}
	if first.TotalCalls != 10 || first.DMReached != 3 || first.WonValue != 150 {
		t.Fatalf("first week = %+v", first)
	}

	if weekly[1].WeekStart != "2026-08-09" || weekly[1].TotalCalls != 3 {
		t.Fatalf("second week = %+v", weekly[1])
	}
}

func TestWeekStartOfSundayIsItself(t *testing.T) {
	if got := weekStart("2026-08-09"); got != "2026-08-09" {
		t.Fatalf("weekStart(sunday) = %q", got)
	}
}

func TestParseValueStripsCurrencyNoise(t *testing.T) {
	if got := parseValue(strPtr("$2,500/mo")); got != 2500 {
		t.Fatalf("parseValue = %v, want 2500", got)
	}
	if got := parseValue(nil); got != 0 {
		t.Fatalf("parseValue(nil) = %v, want 0", got)
	}
}
