package analytics

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func strPtr(s string) *string { return &s }

func TestComputeMetricsEmptySnapshot(t *testing.T) {
	m := ComputeMetrics(nil, nil, nil)
	if m.TotalLeads != 0 || m.TotalDials != 0 || m.TotalOpportunities != 0 {
		t.Fatalf("expected zero totals, got %+v", m)
	}
	if m.ConnectRate != 0 || m.CloseRate != 0 || m.AvgDealSize != 0 {
		t.Fatalf("expected zero rates on empty snapshot, got %+v", m)
	}
}

func TestComputeMetricscallRates(t *testing.T) {
	leadA := uuid.New()
	leadB := uuid.New()
	leads := []LeadRow{
		{ID: leadA, Stage: "dm_engaged", PhoneValid: "Yes", EmailValid: "Yes", ConvertedToOpp: "No"},
		{ID: leadB, Stage: "attempting", PhoneValid: "Yes", EmailValid: "Yes", ConvertedToOpp: "No"},
	}
	calls := []CallRow{
		{LeadID: &leadA, Outcome: "No Answer"},
		{LeadID: &leadA, Outcome: "DM Reached"},
		{LeadID: &leadA, Outcome: "DM Reached"},
		{LeadID: &leadB, Outcome: "Gatekeeper"},
	}

	m := ComputeMetrics(leads, calls, nil)
	if m.TotalDials != 4 {
		t.Fatalf("totalDials = %d, want 4", m.TotalDials)
	}
	// 2 DM Reached calls of 4 dials.
	if !almostEqual(m.ConnectRate, 50) {
		t.Fatalf("connectRate = %v, want 50", m.ConnectRate)
	}
	// 1 of 2 leads ever reached a DM.
	if !almostEqual(m.DMRate, 50) {
		t.Fatalf("dmRate = %v, want 50", m.DMRate)
	}
	// 2 DM Reached calls over 1 lead with a DM.
	if !almostEqual(m.AvgCallsToReachDM, 2) {
		t.Fatalf("avgCallsToReachDM = %v, want 2", m.AvgCallsToReachDM)
	}
}

func TestComputeMetricsRevenue(t *testing.T) {
	wonLead := uuid.New()
	leads := []LeadRow{
		{ID: wonLead, Stage: "closed_won", PhoneValid: "Yes", EmailValid: "Yes", ConvertedToOpp: "Yes", ActualResidual: strPtr("$1,200.50")},
		{ID: uuid.New(), Stage: "closed_won", PhoneValid: "Yes", EmailValid: "Yes", ConvertedToOpp: "Yes", ActualResidual: strPtr("800")},
		{ID: uuid.New(), Stage: "new", PhoneValid: "No", EmailValid: "Yes", ConvertedToOpp: "No"},
		{ID: uuid.New(), Stage: "quoted", PhoneValid: "Yes", EmailValid: "No", ConvertedToOpp: "No"},
	}
	m := ComputeMetrics(leads, nil, nil)

	if !almostEqual(m.TotalMRR, 2000.50) {
		t.Fatalf("totalMRR = %v, want 2000.50", m.TotalMRR)
	}
	if !almostEqual(m.AvgResidual, 1000.25) {
		t.Fatalf("avgResidual = %v, want 1000.25", m.AvgResidual)
	}
	// 2 of 4 leads have an invalid phone or email.
	if !almostEqual(m.BadDataPercent, 50) {
		t.Fatalf("badDataPercent = %v, want 50", m.BadDataPercent)
	}
	// quoted + both closed_won count toward quoteRate.
	if !almostEqual(m.QuoteRate, 75) {
		t.Fatalf("quoteRate = %v, want 75", m.QuoteRate)
	}
	if !almostEqual(m.LeadToOpportunityRate, 50) {
		t.Fatalf("leadToOpportunityRate = %v, want 50", m.LeadToOpportunityRate)
	}
}

func TestComputeMetricsPipeline(t *testing.T) {
	wonLead := uuid.New()
	leads := []LeadRow{
		{ID: wonLead, Stage: "closed_won", PhoneValid: "Yes", EmailValid: "Yes", ConvertedToOpp: "Yes"},
		{ID: uuid.New(), Stage: "new", PhoneValid: "Yes", EmailValid: "Yes", ConvertedToOpp: "No"},
	}
	calls := []CallRow{
		{LeadID: &wonLead, Outcome: "DM Reached"},
		{LeadID: &wonLead, Outcome: "Statement Agreed"},
		{LeadID: &wonLead, Outcome: "DM Reached"},
	}
	opps := []OppRow{
		{ID: uuid.New(), LeadID: &wonLead, Stage: "closed_won", DealValue: strPtr("$5,000")},
		{ID: uuid.New(), Stage: "proposal", DealValue: strPtr("2000"), Probability: 50},
		{ID: uuid.New(), Stage: "closed_lost", DealValue: strPtr("9999")},
	}

	m := ComputeMetrics(leads, calls, opps)
	if m.TotalOpportunities != 3 {
		t.Fatalf("totalOpportunities = %d, want 3", m.TotalOpportunities)
	}
	// Won lead logged 3 calls before closing.
	if !almostEqual(m.AvgCallsToClosedWon, 3) {
		t.Fatalf("avgCallsToClosedWon = %v, want 3", m.AvgCallsToClosedWon)
	}
	// 1 of 3 opportunities won.
	if !almostEqual(m.OpportunityWinRate, 100.0/3.0) {
		t.Fatalf("opportunityWinRate = %v", m.OpportunityWinRate)
	}
	// Only the open proposal counts toward the pipeline.
	if !almostEqual(m.TotalPipelineValue, 2000) {
		t.Fatalf("totalPipelineValue = %v, want 2000", m.TotalPipelineValue)
	}
	if !almostEqual(m.ForecastedRevenue, 1000) {
		t.Fatalf("forecastedRevenue = %v, want 1000", m.ForecastedRevenue)
	}
	if !almostEqual(m.AvgDealSize, (5000+2000+9999)/3.0) {
		t.Fatalf("avgDealSize = %v", m.AvgDealSize)
	}
	// 1 statement over 2 leads; 1 win over 2 leads end to end.
	if !almostEqual(m.StatementRate, 50) {
		t.Fatalf("statementRate = %v, want 50", m.StatementRate)
	}
	if !almostEqual(m.EndToEndConversion, 50) {
		t.Fatalf("endToEndConversion = %v, want 50", m.EndToEndConversion)
	}
}

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   *string
		want float64
	}{
		{nil, 0},
		{strPtr(""), 0},
		{strPtr("$1,200.50"), 1200.50},
		{strPtr("1500/mo"), 1500},
		{strPtr("n/a"), 0},
	}
	for _, tc := range cases {
		if got := parseMoney(tc.in); !almostEqual(got, tc.want) {
			t.Errorf("parseMoney(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestComputeAgentMetrics(t *testing.T) {
	alice := Agent{ID: uuid.New(), Name: "Alice"}
	bob := Agent{ID: uuid.New(), Name: "Bob"}

	leadA := uuid.New()
	leadB := uuid.New()
	leads := []LeadRow{
		{ID: leadA, OwnerID: alice.ID, Stage: "closed_won"},
		{ID: leadB, OwnerID: alice.ID, Stage: "quoted"},
		{ID: uuid.New(), OwnerID: bob.ID, Stage: "new"},
	}
	calls := []CallRow{
		{LeadID: &leadA, Outcome: "DM Reached"},
		{LeadID: &leadA, Outcome: "Statement Agreed"},
		{LeadID: &leadB, Outcome: "No Answer"},
	}

	rows := ComputeAgentMetrics([]Agent{alice, bob}, leads, calls)
	if len(rows) != 2 {
		t.Fatalf("expected 2 agent rows, got %d", len(rows))
	}

	a := rows[0]
	if a.AgentName != "Alice" || a.TotalLeads != 2 || a.TotalDials != 3 {
		t.Fatalf("alice row = %+v", a)
	}
	if !almostEqual(a.ConnectPercent, 100.0/3.0) {
		t.Fatalf("alice connectPercent = %v", a.ConnectPercent)
	}
	if !almostEqual(a.QuotePercent, 100) {
		t.Fatalf("alice quotePercent = %v, want 100", a.QuotePercent)
	}
	if a.Wins != 1 || !almostEqual(a.ClosePercent, 50) {
		t.Fatalf("alice wins = %d closePercent = %v", a.Wins, a.ClosePercent)
	}

	b := rows[1]
	if b.TotalLeads != 1 || b.TotalDials != 0 || b.Wins != 0 {
		t.Fatalf("bob row = %+v", b)
	}
}

func TestStageDistributions(t *testing.T) {
	leads := []LeadRow{
		{ID: uuid.New(), Stage: "new"},
		{ID: uuid.New(), Stage: "new"},
		{ID: uuid.New(), Stage: "parked"},
	}
	dist := DistributionFromLeads(leads)
	counts := make(map[string]int)
	for _, d := range dist {
		counts[d.Stage] = d.Count
	}
	if counts["new"] != 2 || counts["parked"] != 1 {
		t.Fatalf("lead distribution = %v", dist)
	}

	opps := []OppRow{{ID: uuid.New(), Stage: "proposal"}}
	odist := DistributionFromOpps(opps)
	if len(odist) != 1 || odist[0].Stage != "proposal" || odist[0].Count != 1 {
		t.Fatalf("opportunity distribution = %v", odist)
	}
}
