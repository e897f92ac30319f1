// Package transport defines the request and response DTOs for the
// opportunities API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// OpportunityStage is the deal pipeline stage enum.
type OpportunityStage string

const (
	StageQualified   OpportunityStage = "qualified"
	StageProposal    OpportunityStage = "proposal"
	StageNegotiation OpportunityStage = "negotiation"
	StageClosedWon   OpportunityStage = "closed_won"
	StageClosedLost  OpportunityStage = "closed_lost"
)

// ConvertLeadRequest creates an opportunity from a lead. Identity fields
// default to the lead's own values when omitted.
type ConvertLeadRequest struct {
	Name              string     `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	DealValue         string     `json:"dealValue,omitempty" validate:"omitempty,max=100"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

type UpdateOpportunityRequest struct {
	Name              *string           `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Stage             *OpportunityStage `json:"stage,omitempty" validate:"omitempty,oneof=qualified proposal negotiation closed_won closed_lost"`
	DealValue         *string           `json:"dealValue,omitempty" validate:"omitempty,max=100"`
	Probability       *int              `json:"probability,omitempty" validate:"omitempty,min=0,max=100"`
	ExpectedCloseDate *time.Time        `json:"expectedCloseDate,omitempty"`
	ActualCloseDate   *time.Time        `json:"actualCloseDate,omitempty"`
	Notes             *string           `json:"notes,omitempty"`
	LossReason        *string           `json:"lossReason,omitempty" validate:"omitempty,max=255"`
}

// LogOpportunityCallRequest records a call directly against an opportunity.
type LogOpportunityCallRequest struct {
	Outcome      string     `json:"callOutcome" validate:"required,oneof='No Answer' Gatekeeper 'DM Reached' 'Callback Requested' 'Email Requested' 'Statement Agreed' 'Not Interested' 'Bad Data'"`
	CallDate     *time.Time `json:"callDate,omitempty"`
	CallDuration *int       `json:"callDuration,omitempty" validate:"omitempty,min=0"`
	Notes        string     `json:"notes,omitempty"`
	CallbackDate *time.Time `json:"callbackDate,omitempty"`
}

type OpportunityResponse struct {
	ID                uuid.UUID        `json:"id"`
	LeadID            *uuid.UUID       `json:"leadId,omitempty"`
	Name              string           `json:"name"`
	CompanyName       string           `json:"companyName"`
	ContactName       string           `json:"contactName"`
	Phone             *string          `json:"phone,omitempty"`
	Email             *string          `json:"email,omitempty"`
	Stage             OpportunityStage `json:"stage"`
	DealValue         *string          `json:"dealValue,omitempty"`
	Probability       int              `json:"probability"`
	ExpectedCloseDate *time.Time       `json:"expectedCloseDate,omitempty"`
	ActualCloseDate   *time.Time       `json:"actualCloseDate,omitempty"`
	StageEnteredAt    *time.Time       `json:"stageEnteredAt,omitempty"`
	OwnerID           uuid.UUID        `json:"ownerId"`
	Notes             *string          `json:"notes,omitempty"`
	LossReason        *string          `json:"lossReason,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// ConvertLeadResponse reports the new opportunity and the flagged lead.
type ConvertLeadResponse struct {
	Opportunity OpportunityResponse `json:"opportunity"`
}
