// Package transport defines the request and response DTOs for the leads API.
package transport

import (
	"time"

	"github.com/google/uuid"

	"salesdesk_backend/internal/leads/domain"
)

// YesNo is the stored tri-state flag value, kept bit-exact with the data model.
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

// Request DTOs

type CreateLeadRequest struct {
	CompanyName      string     `json:"companyName" validate:"required,min=1,max=255"`
	ContactName      string     `json:"contactName" validate:"required,min=1,max=255"`
	Phone            string     `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email            string     `json:"email,omitempty" validate:"omitempty,email,max=320"`
	Provider         string     `json:"provider,omitempty" validate:"omitempty,max=255"`
	ProcessingVolume string     `json:"processingVolume,omitempty" validate:"omitempty,max=100"`
	EffectiveRate    string     `json:"effectiveRate,omitempty" validate:"omitempty,max=100"`
	DataSource       string     `json:"dataSource,omitempty" validate:"omitempty,max=255"`
	DataCohort       string     `json:"dataCohort,omitempty" validate:"omitempty,max=100"`
	OwnerID          *uuid.UUID `json:"ownerId,omitempty"`
	NextFollowUpDate *time.Time `json:"nextFollowUpDate,omitempty"`
	FollowUpTime     string     `json:"followUpTime,omitempty" validate:"omitempty,max=20"`
}

type UpdateLeadRequest struct {
	CompanyName           *string       `json:"companyName,omitempty" validate:"omitempty,min=1,max=255"`
	ContactName           *string       `json:"contactName,omitempty" validate:"omitempty,min=1,max=255"`
	Phone                 *string       `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email                 *string       `json:"email,omitempty" validate:"omitempty,email,max=320"`
	Provider              *string       `json:"provider,omitempty" validate:"omitempty,max=255"`
	ProcessingVolume      *string       `json:"processingVolume,omitempty" validate:"omitempty,max=100"`
	EffectiveRate         *string       `json:"effectiveRate,omitempty" validate:"omitempty,max=100"`
	DataSource            *string       `json:"dataSource,omitempty" validate:"omitempty,max=255"`
	DataCohort            *string       `json:"dataCohort,omitempty" validate:"omitempty,max=100"`
	OwnerID               *uuid.UUID    `json:"ownerId,omitempty"`
	Stage                 *domain.Stage `json:"stage,omitempty" validate:"omitempty,oneof=new attempting dm_engaged email_sent statement_requested statement_received quoted negotiation closed_won closed_lost parked"`
	DataVerified          *YesNo        `json:"dataVerified,omitempty" validate:"omitempty,oneof=Yes No"`
	PhoneValid            *YesNo        `json:"phoneValid,omitempty" validate:"omitempty,oneof=Yes No"`
	EmailValid            *YesNo        `json:"emailValid,omitempty" validate:"omitempty,oneof=Yes No"`
	CorrectDecisionMaker  *YesNo        `json:"correctDecisionMaker,omitempty" validate:"omitempty,oneof=Yes No"`
	LastContactDate       *time.Time    `json:"lastContactDate,omitempty"`
	NextFollowUpDate      *time.Time    `json:"nextFollowUpDate,omitempty"`
	FollowUpTime          *string       `json:"followUpTime,omitempty" validate:"omitempty,max=20"`
	QuoteDate             *time.Time    `json:"quoteDate,omitempty"`
	QuotedRate            *string       `json:"quotedRate,omitempty" validate:"omitempty,max=100"`
	ExpectedResidual      *string       `json:"expectedResidual,omitempty" validate:"omitempty,max=100"`
	SignedDate            *time.Time    `json:"signedDate,omitempty"`
	ActualResidual        *string       `json:"actualResidual,omitempty" validate:"omitempty,max=100"`
	OnboardingStatus      *string       `json:"onboardingStatus,omitempty" validate:"omitempty,max=100"`
	LossReason            *string       `json:"lossReason,omitempty" validate:"omitempty,max=255"`
	EmailSent             *YesNo        `json:"emailSent,omitempty" validate:"omitempty,oneof=Yes No"`
	EmailSentDate         *time.Time    `json:"emailSentDate,omitempty"`
	QuoteEmailTemplateRef *string       `json:"quoteEmailTemplate,omitempty"`
}

type LogCallRequest struct {
	Outcome           domain.Outcome `json:"callOutcome" validate:"required,oneof='No Answer' Gatekeeper 'DM Reached' 'Callback Requested' 'Email Requested' 'Statement Agreed' 'Not Interested' 'Bad Data'"`
	CallDate          *time.Time     `json:"callDate,omitempty"`
	CallDuration      *int           `json:"callDuration,omitempty" validate:"omitempty,min=0"`
	Notes             string         `json:"notes,omitempty"`
	CallbackScheduled bool           `json:"callbackScheduled,omitempty"`
	CallbackDate      *time.Time     `json:"callbackDate,omitempty"`
}

type BulkImportRequest struct {
	Leads []CreateLeadRequest `json:"leads" validate:"required,min=1,max=1000"`
}

type BulkAssignRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1"`
	OwnerID uuid.UUID   `json:"ownerId" validate:"required"`
}

type BulkDeleteRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1"`
}

// Response DTOs

type LeadResponse struct {
	ID                    uuid.UUID    `json:"id"`
	CompanyName           string       `json:"companyName"`
	ContactName           string       `json:"contactName"`
	Phone                 *string      `json:"phone,omitempty"`
	Email                 *string      `json:"email,omitempty"`
	Provider              *string      `json:"provider,omitempty"`
	ProcessingVolume      *string      `json:"processingVolume,omitempty"`
	EffectiveRate         *string      `json:"effectiveRate,omitempty"`
	DataSource            *string      `json:"dataSource,omitempty"`
	DataCohort            *string      `json:"dataCohort,omitempty"`
	OwnerID               uuid.UUID    `json:"ownerId"`
	DataVerified          YesNo        `json:"dataVerified"`
	PhoneValid            YesNo        `json:"phoneValid"`
	EmailValid            YesNo        `json:"emailValid"`
	CorrectDecisionMaker  YesNo        `json:"correctDecisionMaker"`
	Stage                 domain.Stage `json:"stage"`
	StageLabel            string       `json:"stageLabel"`
	LastContactDate       *time.Time   `json:"lastContactDate,omitempty"`
	NextFollowUpDate      *time.Time   `json:"nextFollowUpDate,omitempty"`
	FollowUpTime          *string      `json:"followUpTime,omitempty"`
	QuoteDate             *time.Time   `json:"quoteDate,omitempty"`
	QuotedRate            *string      `json:"quotedRate,omitempty"`
	ExpectedResidual      *string      `json:"expectedResidual,omitempty"`
	SignedDate            *time.Time   `json:"signedDate,omitempty"`
	ActualResidual        *string      `json:"actualResidual,omitempty"`
	OnboardingStatus      *string      `json:"onboardingStatus,omitempty"`
	LossReason            *string      `json:"lossReason,omitempty"`
	ClosedDate            *time.Time   `json:"closedDate,omitempty"`
	EmailSent             YesNo        `json:"emailSent"`
	EmailSentDate         *time.Time   `json:"emailSentDate,omitempty"`
	QuoteEmailTemplateRef *string      `json:"quoteEmailTemplate,omitempty"`
	DialAttempts          int          `json:"dialAttempts"`
	ConvertedToOpp        YesNo        `json:"convertedToOpportunity"`
	OpportunityID         *uuid.UUID   `json:"opportunityId,omitempty"`
	ConversionDate        *time.Time   `json:"conversionDate,omitempty"`
	CreatedAt             time.Time    `json:"createdAt"`
	UpdatedAt             time.Time    `json:"updatedAt"`
}

type CallLogResponse struct {
	ID                uuid.UUID      `json:"id"`
	LeadID            *uuid.UUID     `json:"leadId,omitempty"`
	OpportunityID     *uuid.UUID     `json:"opportunityId,omitempty"`
	CallDate          time.Time      `json:"callDate"`
	Outcome           domain.Outcome `json:"callOutcome"`
	CallDuration      *int           `json:"callDuration,omitempty"`
	Notes             *string        `json:"notes,omitempty"`
	AgentID           uuid.UUID      `json:"agentId"`
	CallbackScheduled YesNo          `json:"callbackScheduled"`
	CallbackDate      *time.Time     `json:"callbackDate,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// LogCallResponse reports the state transition a logged call produced.
type LogCallResponse struct {
	Call    CallLogResponse `json:"call"`
	Lead    LeadResponse    `json:"lead"`
	Parked  bool            `json:"parked"`
	TodoID  *uuid.UUID      `json:"todoId,omitempty"`
}

// BulkResult is the per-item try/continue aggregate for batch operations.
type BulkResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
	Total   int      `json:"total"`
}

// FollowUpsResponse carries the two halves of a follow-up query: leads with a
// scheduled follow-up date and late-stage opportunities needing a nudge.
type FollowUpsResponse struct {
	Leads         []LeadResponse        `json:"leads"`
	Opportunities []FollowUpOpportunity `json:"opportunities"`
}

// FollowUpOpportunity is the slim opportunity projection used by the follow-up
// queries.
type FollowUpOpportunity struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	CompanyName    string     `json:"companyName"`
	ContactName    string     `json:"contactName"`
	Stage          string     `json:"stage"`
	OwnerID        uuid.UUID  `json:"ownerId"`
	StageEnteredAt *time.Time `json:"stageEnteredAt,omitempty"`
}
