// Package email delivers transactional mail to agents. Delivery is best
// effort; callers treat failures as non-fatal.
package email

import (
	"context"

	"salesdesk_backend/platform/logger"
)

const (
	subjectCallbackReminderFmt = "Callback reminder: %s"
	subjectFollowUpDigest      = "Your follow-ups for today"
)

// DigestLead is one line of the follow-up digest email.
type DigestLead struct {
	CompanyName string
	Stage       string
	DueDate     string
}

// Sender delivers transactional email.
type Sender interface {
	// SendCallbackReminderEmail reminds an agent about a scheduled callback.
	SendCallbackReminderEmail(ctx context.Context, toEmail, agentName, companyName, dueAt string) error
	// SendFollowUpDigestEmail sends an agent their due and overdue leads.
	SendFollowUpDigestEmail(ctx context.Context, toEmail, agentName string, leads []DigestLead) error
	// SendCustomEmail sends an arbitrary HTML email, used for template sends.
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender drops all mail. Used when SMTP is not configured.
type NoopSender struct {
	log *logger.Logger
}

func NewNoopSender(log *logger.Logger) *NoopSender {
	return &NoopSender{log: log}
}

func (n *NoopSender) SendCallbackReminderEmail(_ context.Context, toEmail, _, companyName, _ string) error {
	n.log.Debug("email disabled, dropping callback reminder", "to", toEmail, "company", companyName)
	return nil
}

func (n *NoopSender) SendFollowUpDigestEmail(_ context.Context, toEmail, _ string, leads []DigestLead) error {
	n.log.Debug("email disabled, dropping follow-up digest", "to", toEmail, "leads", len(leads))
	return nil
}

func (n *NoopSender) SendCustomEmail(_ context.Context, toEmail, subject, _ string) error {
	n.log.Debug("email disabled, dropping custom email", "to", toEmail, "subject", subject)
	return nil
}

var _ Sender = (*NoopSender)(nil)
