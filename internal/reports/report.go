// Package reports builds the daily and weekly activity rollups and the loss
// reason breakdown.
package reports

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const dayFormat = "2006-01-02"

// CallActivity is the call projection the rollups consume.
type CallActivity struct {
	LeadID            *uuid.UUID
	CompanyName       string
	Outcome           string
	CallbackScheduled string
	CreatedAt         time.Time
}

// OppActivity is the opportunity projection the rollups consume.
type OppActivity struct {
	ID              uuid.UUID
	Stage           string
	DealValue       *string
	LossReason      *string
	CreatedAt       time.Time
	ActualCloseDate *time.Time
}

// DailyActivity is one day of the activity report.
type DailyActivity struct {
	Date                 string   `json:"date"`
	TotalCalls           int      `json:"totalCalls"`
	DMReached            int      `json:"dmReached"`
	Callbacks            int      `json:"callbacks"`
	Businesses           []string `json:"businesses"`
	BusinessCount        int      `json:"businessCount"`
	OpportunitiesCreated int      `json:"opportunitiesCreated"`
	OpportunitiesWon     int      `json:"opportunitiesWon"`
	OpportunitiesLost    int      `json:"opportunitiesLost"`
	WonValue             float64  `json:"wonValue"`
	LostValue            float64  `json:"lostValue"`
	LostReasons          []string `json:"lostReasons"`
}

func parseValue(s *string) float64 {
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

// BuildDailyReport rolls calls and opportunities up by calendar day.
// Opportunity creation counts on the creation date; wins and losses count on
// the actual close date.
func BuildDailyReport(calls []CallActivity, opps []OppActivity) []DailyActivity {
	days := make(map[string]*DailyActivity)
	businesses := make(map[string]map[string]struct{})

	day := func(key string) *DailyActivity {
		d, ok := days[key]
		if !ok {
			d = &DailyActivity{Date: key}
			days[key] = d
			businesses[key] = make(map[string]struct{})
		}
		return d
	}

	for _, c := range calls {
		key := c.CreatedAt.Format(dayFormat)
		d := day(key)
		d.TotalCalls++
		if c.Outcome == "DM Reached" {
			d.DMReached++
		}
		if c.CallbackScheduled == "Yes" {
			d.Callbacks++
		}
		if c.CompanyName != "" {
			businesses[key][c.CompanyName] = struct{}{}
		}
	}

	for _, o := range opps {
		day(o.CreatedAt.Format(dayFormat)).OpportunitiesCreated++

		if o.ActualCloseDate == nil {
			continue
		}
		d := day(o.ActualCloseDate.Format(dayFormat))
		switch o.Stage {
		case "closed_won":
			d.OpportunitiesWon++
			d.WonValue += parseValue(o.DealValue)
		case "closed_lost":
			d.OpportunitiesLost++
			d.LostValue += parseValue(o.DealValue)
			if o.LossReason != nil && *o.LossReason != "" {
				d.LostReasons = append(d.LostReasons, *o.LossReason)
			}
		}
	}

	out := make([]DailyActivity, 0, len(days))
	for key, d := range days {
		names := make([]string, 0, len(businesses[key]))
		for name := range businesses[key] {
			names = append(names, name)
		}
		sort.Strings(names)
		d.Businesses = names
		d.BusinessCount = len(names)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// WeeklyActivity is one week of the activity report, keyed by the Sunday that
// starts the week.
type WeeklyActivity struct {
	WeekStart            string  `json:"weekStart"`
	TotalCalls           int     `json:"totalCalls"`
	DMReached            int     `json:"dmReached"`
	Callbacks            int     `json:"callbacks"`
	BusinessCount        int     `json:"businessCount"`
	OpportunitiesCreated int     `json:"opportunitiesCreated"`
	OpportunitiesWon     int     `json:"opportunitiesWon"`
	OpportunitiesLost    int     `json:"opportunitiesLost"`
	WonValue             float64 `json:"wonValue"`
	LostValue            float64 `json:"lostValue"`
}

func weekStart(day string) string {
	t, err := time.Parse(dayFormat, day)
	if err != nil {
		return day
	}
	return t.AddDate(0, 0, -int(t.Weekday())).Format(dayFormat)
}

// BuildWeeklyReport aggregates a daily report into weeks starting on Sunday.
func BuildWeeklyReport(daily []DailyActivity) []WeeklyActivity {
	weeks := make(map[string]*WeeklyActivity)
	for _, d := range daily {
		key := weekStart(d.Date)
		w, ok := weeks[key]
		if !ok {
			w = &WeeklyActivity{WeekStart: key}
			weeks[key] = w
		}
		w.TotalCalls += d.TotalCalls
		w.DMReached += d.DMReached
		w.Callbacks += d.Callbacks
		w.BusinessCount += d.BusinessCount
		w.OpportunitiesCreated += d.OpportunitiesCreated
		w.OpportunitiesWon += d.OpportunitiesWon
		w.OpportunitiesLost += d.OpportunitiesLost
		w.WonValue += d.WonValue
		w.LostValue += d.LostValue
	}

	out := make([]WeeklyActivity, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart < out[j].WeekStart })
	return out
}

// LossReasonCount is one bucket of the loss reason breakdown.
type LossReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}
