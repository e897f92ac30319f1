package email

import (
	"strings"
	"testing"
)

func TestRenderCallbackReminderTemplate(t *testing.T) {
	html, err := renderEmailTemplate("callback_reminder.html", callbackReminderData{
		baseEmailData: baseEmailData{Title: "Callback reminder", Heading: "Callback reminder"},
		AgentName:     "Alice",
		CompanyName:   "Acme Corp",
		DueAt:         "2026-08-10 14:00",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Alice", "Acme Corp", "2026-08-10 14:00"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered email missing %q", want)
		}
	}
}

func TestRenderFollowUpDigestTemplate(t *testing.T) {
	html, err := renderEmailTemplate("followup_digest.html", followUpDigestData{
		baseEmailData: baseEmailData{Title: "Follow-up digest", Heading: "Your follow-ups for today"},
		AgentName:     "Bob",
		Leads: []DigestLead{
			{CompanyName: "Globex", Stage: "attempting", DueDate: "2026-08-09"},
			{CompanyName: "Initech", Stage: "dm_engaged", DueDate: "2026-08-10"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Globex") || !strings.Contains(html, "Initech") {
		t.Error("digest missing lead rows")
	}
}
