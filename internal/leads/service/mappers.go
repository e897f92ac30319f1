package service

import (
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/leads/transport"
)

func toLeadResponse(l repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:                    l.ID,
		CompanyName:           l.CompanyName,
		ContactName:           l.ContactName,
		Phone:                 l.Phone,
		Email:                 l.Email,
		Provider:              l.Provider,
		ProcessingVolume:      l.ProcessingVolume,
		EffectiveRate:         l.EffectiveRate,
		DataSource:            l.DataSource,
		DataCohort:            l.DataCohort,
		OwnerID:               l.OwnerID,
		DataVerified:          transport.YesNo(l.DataVerified),
		PhoneValid:            transport.YesNo(l.PhoneValid),
		EmailValid:            transport.YesNo(l.EmailValid),
		CorrectDecisionMaker:  transport.YesNo(l.CorrectDecisionMaker),
		Stage:                 l.Stage,
		StageLabel:            domain.StageLabels[l.Stage],
		LastContactDate:       l.LastContactDate,
		NextFollowUpDate:      l.NextFollowUpDate,
		FollowUpTime:          l.FollowUpTime,
		QuoteDate:             l.QuoteDate,
		QuotedRate:            l.QuotedRate,
		ExpectedResidual:      l.ExpectedResidual,
		SignedDate:            l.SignedDate,
		ActualResidual:        l.ActualResidual,
		OnboardingStatus:      l.OnboardingStatus,
		LossReason:            l.LossReason,
		ClosedDate:            l.ClosedDate,
		EmailSent:             transport.YesNo(l.EmailSent),
		EmailSentDate:         l.EmailSentDate,
		QuoteEmailTemplateRef: l.QuoteEmailTemplateRef,
		DialAttempts:          l.DialAttempts,
		ConvertedToOpp:        transport.YesNo(l.ConvertedToOpp),
		OpportunityID:         l.OpportunityID,
		ConversionDate:        l.ConversionDate,
		CreatedAt:             l.CreatedAt,
		UpdatedAt:             l.UpdatedAt,
	}
}

func toLeadResponses(leads []repository.Lead) []transport.LeadResponse {
	out := make([]transport.LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, toLeadResponse(l))
	}
	return out
}

func toCallResponse(c repository.CallLog) transport.CallLogResponse {
	return transport.CallLogResponse{
		ID:                c.ID,
		LeadID:            c.LeadID,
		OpportunityID:     c.OpportunityID,
		CallDate:          c.CallDate,
		Outcome:           c.Outcome,
		CallDuration:      c.CallDuration,
		Notes:             c.Notes,
		AgentID:           c.AgentID,
		CallbackScheduled: transport.YesNo(c.CallbackScheduled),
		CallbackDate:      c.CallbackDate,
		CreatedAt:         c.CreatedAt,
	}
}

func toFollowUpOpportunities(opps []repository.FollowUpOpportunity) []transport.FollowUpOpportunity {
	out := make([]transport.FollowUpOpportunity, 0, len(opps))
	for _, o := range opps {
		out = append(out, transport.FollowUpOpportunity{
			ID:             o.ID,
			Name:           o.Name,
			CompanyName:    o.CompanyName,
			ContactName:    o.ContactName,
			Stage:          o.Stage,
			OwnerID:        o.OwnerID,
			StageEnteredAt: o.StageEnteredAt,
		})
	}
	return out
}
