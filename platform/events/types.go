package events

import "github.com/google/uuid"

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead enters the pipeline.
type LeadCreated struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	CompanyName string    `json:"companyName"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Source      string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadDeleted is published synchronously when a lead is deleted so the audit
// trail records exactly one row per deletion.
type LeadDeleted struct {
	BaseEvent
	LeadID        uuid.UUID      `json:"leadId"`
	CompanyName   string         `json:"companyName"`
	DeletedByID uuid.UUID      `json:"deletedById"`
	Details     map[string]any `json:"details,omitempty"`
}

func (e LeadDeleted) EventName() string { return "leads.deleted" }

// LeadConverted is published when a lead is converted to an opportunity.
type LeadConverted struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	OpportunityID uuid.UUID `json:"opportunityId"`
	ConvertedByID uuid.UUID `json:"convertedById"`
}

func (e LeadConverted) EventName() string { return "leads.converted" }

// CallbackScheduled is published after a call log requests a callback and the
// todo has been committed.
type CallbackScheduled struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	TodoID       uuid.UUID `json:"todoId"`
	AgentID      uuid.UUID `json:"agentId"`
	CallbackDate string    `json:"callbackDate"`
}

func (e CallbackScheduled) EventName() string { return "leads.callback.scheduled" }

// =============================================================================
// Opportunities Domain Events
// =============================================================================

// OpportunityDeleted is published synchronously when an opportunity is deleted.
type OpportunityDeleted struct {
	BaseEvent
	OpportunityID uuid.UUID      `json:"opportunityId"`
	Name          string         `json:"name"`
	DeletedByID   uuid.UUID      `json:"deletedById"`
	Details       map[string]any `json:"details,omitempty"`
}

func (e OpportunityDeleted) EventName() string { return "opportunities.deleted" }
