// Package analytics computes the pipeline metrics, agent scoreboards and
// stage distributions. All queries are read-only snapshots; no consistency
// guarantee holds across the individual reads.
package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LeadRow is the lead projection the metric computations need.
type LeadRow struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	CompanyName    string
	Stage          string
	PhoneValid     string
	EmailValid     string
	ConvertedToOpp string
	ActualResidual *string
	CreatedAt      time.Time
}

// CallRow is the call projection the metric computations need.
type CallRow struct {
	LeadID            *uuid.UUID
	Outcome           string
	CallbackScheduled string
	CreatedAt         time.Time
}

// OppRow is the opportunity projection the metric computations need.
type OppRow struct {
	ID              uuid.UUID
	LeadID          *uuid.UUID
	Stage           string
	DealValue       *string
	Probability     int
	LossReason      *string
	CreatedAt       time.Time
	ActualCloseDate *time.Time
}

// Metrics is the full pipeline scoreboard.
type Metrics struct {
	TotalLeads            int     `json:"totalLeads"`
	TotalDials            int     `json:"totalDials"`
	ConnectRate           float64 `json:"connectRate"`
	DMRate                float64 `json:"dmRate"`
	AvgCallsToReachDM     float64 `json:"avgCallsToReachDM"`
	AvgCallsToClosedWon   float64 `json:"avgCallsToClosedWon"`
	StatementRate         float64 `json:"statementRate"`
	QuoteRate             float64 `json:"quoteRate"`
	CloseRate             float64 `json:"closeRate"`
	EndToEndConversion    float64 `json:"endToEndConversion"`
	TotalMRR              float64 `json:"totalMRR"`
	AvgResidual           float64 `json:"avgResidual"`
	BadDataPercent        float64 `json:"badDataPercent"`
	TotalOpportunities    int     `json:"totalOpportunities"`
	LeadToOpportunityRate float64 `json:"leadToOpportunityRate"`
	OpportunityWinRate    float64 `json:"opportunityWinRate"`
	TotalPipelineValue    float64 `json:"totalPipelineValue"`
	AvgDealSize           float64 `json:"avgDealSize"`
	ForecastedRevenue     float64 `json:"forecastedRevenue"`
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// parseMoney reads a money-ish string ("$1,200.50") as a float, ignoring
// currency symbols and separators. Unparseable values count as zero.
func parseMoney(s *string) float64 {
	if s == nil {
		return 0
	}
	var b strings.Builder
	for _, r := range *s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// ComputeMetrics derives the scoreboard from a snapshot of leads, their calls
// and the opportunities in scope.
func ComputeMetrics(leads []LeadRow, calls []CallRow, opps []OppRow) Metrics {
	m := Metrics{
		TotalLeads:         len(leads),
		TotalDials:         len(calls),
		TotalOpportunities: len(opps),
	}

	dmReachedCalls := 0
	statementsAgreed := 0
	leadsWithDM := make(map[uuid.UUID]struct{})
	callsByLead := make(map[uuid.UUID]int)
	for _, c := range calls {
		if c.LeadID != nil {
			callsByLead[*c.LeadID]++
		}
		switch c.Outcome {
		case "DM Reached":
			dmReachedCalls++
			if c.LeadID != nil {
				leadsWithDM[*c.LeadID] = struct{}{}
			}
		case "Statement Agreed":
			statementsAgreed++
		}
	}

	m.ConnectRate = pct(dmReachedCalls, m.TotalDials)
	m.DMRate = pct(len(leadsWithDM), m.TotalLeads)
	if len(leadsWithDM) > 0 {
		m.AvgCallsToReachDM = float64(dmReachedCalls) / float64(len(leadsWithDM))
	}
	m.StatementRate = pct(statementsAgreed, m.TotalLeads)

	quoted := 0
	converted := 0
	badData := 0
	wonLeads := 0
	for _, l := range leads {
		switch l.Stage {
		case "quoted", "negotiation", "closed_won":
			quoted++
		}
		if l.ConvertedToOpp == "Yes" {
			converted++
		}
		if l.PhoneValid == "No" || l.EmailValid == "No" {
			badData++
		}
		if l.Stage == "closed_won" {
			wonLeads++
			m.TotalMRR += parseMoney(l.ActualResidual)
		}
	}
	m.QuoteRate = pct(quoted, m.TotalLeads)
	m.BadDataPercent = pct(badData, m.TotalLeads)
	m.LeadToOpportunityRate = pct(converted, m.TotalLeads)
	if wonLeads > 0 {
		m.AvgResidual = m.TotalMRR / float64(wonLeads)
	}

	wonOpps := 0
	totalCallsToWon := 0
	var totalDealValue float64
	for _, o := range opps {
		value := parseMoney(o.DealValue)
		totalDealValue += value
		switch o.Stage {
		case "closed_won":
			wonOpps++
			if o.LeadID != nil {
				totalCallsToWon += callsByLead[*o.LeadID]
			}
		case "closed_lost":
		default:
			m.TotalPipelineValue += value
			m.ForecastedRevenue += value * float64(o.Probability) / 100
		}
	}
	if wonOpps > 0 {
		m.AvgCallsToClosedWon = float64(totalCallsToWon) / float64(wonOpps)
	}
	m.CloseRate = pct(wonOpps, m.TotalOpportunities)
	m.EndToEndConversion = pct(wonOpps, m.TotalLeads)
	m.OpportunityWinRate = pct(wonOpps, m.TotalOpportunities)
	if m.TotalOpportunities > 0 {
		m.AvgDealSize = totalDealValue / float64(m.TotalOpportunities)
	}

	return m
}

// StageCount is one bucket of a stage distribution.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// DistributionFromLeads buckets leads by stage.
func DistributionFromLeads(leads []LeadRow) []StageCount {
	counts := make(map[string]int)
	for _, l := range leads {
		counts[l.Stage]++
	}
	return toStageCounts(counts)
}

// DistributionFromOpps buckets opportunities by stage.
func DistributionFromOpps(opps []OppRow) []StageCount {
	counts := make(map[string]int)
	for _, o := range opps {
		counts[o.Stage]++
	}
	return toStageCounts(counts)
}

func toStageCounts(counts map[string]int) []StageCount {
	out := make([]StageCount, 0, len(counts))
	for stage, count := range counts {
		out = append(out, StageCount{Stage: stage, Count: count})
	}
	return out
}

// AgentMetrics is one row of the admin scoreboard.
type AgentMetrics struct {
	AgentID          uuid.UUID `json:"agentId"`
	AgentName        string    `json:"agentName"`
	TotalLeads       int       `json:"totalLeads"`
	TotalDials       int       `json:"totalDials"`
	ConnectPercent   float64   `json:"connectPercent"`
	StatementPercent float64   `json:"statementPercent"`
	QuotePercent     float64   `json:"quotePercent"`
	ClosePercent     float64   `json:"closePercent"`
	Wins             int       `json:"wins"`
}

// ComputeAgentMetrics derives per-agent totals from one snapshot of all leads
// and all calls, grouped by the leads' owners.
func ComputeAgentMetrics(agents []Agent, leads []LeadRow, calls []CallRow) []AgentMetrics {
	leadOwner := make(map[uuid.UUID]uuid.UUID, len(leads))
	for _, l := range leads {
		leadOwner[l.ID] = l.OwnerID
	}

	type tally struct {
		leads, dials, dmReached, statements, quoted, won int
	}
	tallies := make(map[uuid.UUID]*tally)
	for _, a := range agents {
		tallies[a.ID] = &tally{}
	}

	for _, l := range leads {
		t, ok := tallies[l.OwnerID]
		if !ok {
			continue
		}
		t.leads++
		switch l.Stage {
		case "quoted", "negotiation":
			t.quoted++
		case "closed_won":
			t.quoted++
			t.won++
		}
	}
	for _, c := range calls {
		if c.LeadID == nil {
			continue
		}
		owner, ok := leadOwner[*c.LeadID]
		if !ok {
			continue
		}
		t, ok := tallies[owner]
		if !ok {
			continue
		}
		t.dials++
		switch c.Outcome {
		case "DM Reached":
			t.dmReached++
		case "Statement Agreed":
			t.statements++
		}
	}

	out := make([]AgentMetrics, 0, len(agents))
	for _, a := range agents {
		t := tallies[a.ID]
		out = append(out, AgentMetrics{
			AgentID:          a.ID,
			AgentName:        a.Name,
			TotalLeads:       t.leads,
			TotalDials:       t.dials,
			ConnectPercent:   pct(t.dmReached, t.dials),
			StatementPercent: pct(t.statements, t.leads),
			QuotePercent:     pct(t.quoted, t.leads),
			ClosePercent:     pct(t.won, t.leads),
			Wins:             t.won,
		})
	}
	return out
}
