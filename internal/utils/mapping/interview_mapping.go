package mapping

import (
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/models"
)

// ToModelTurns converts domain turns to their JSONB shape
func ToModelTurns(ds []domain.Turn) []models.Turn {
	ms := make([]models.Turn, len(ds))
	for i, d := range ds {
		ms[i] = models.Turn{Role: string(d.Role), Content: d.Content}
	}
	return ms
}

// ToDomainTurns converts stored turns to domain turns
func ToDomainTurns(ms []models.Turn) []domain.Turn {
	ds := make([]domain.Turn, len(ms))
	for i, m := range ms {
		ds[i] = domain.Turn{Role: domain.Role(m.Role), Content: m.Content}
	}
	return ds
}

// ToModelFeedback converts a domain Feedback to its JSONB shape
func ToModelFeedback(d domain.Feedback) models.Feedback {
	return models.Feedback{
		OverallScore:       d.OverallScore,
		TechnicalScore:     d.TechnicalScore,
		CommunicationScore: d.CommunicationScore,
		Rating:             d.Rating,
		Comments:           d.Comments,
		Strengths:          nonNilStrings(d.Strengths),
		Improvements:       nonNilStrings(d.Improvements),
		Actions:            nonNilStrings(d.Actions),
	}
}

// ToDomainFeedback converts stored feedback to a domain Feedback
func ToDomainFeedback(m models.Feedback) domain.Feedback {
	return domain.Feedback{
		OverallScore:       m.OverallScore,
		TechnicalScore:     m.TechnicalScore,
		CommunicationScore: m.CommunicationScore,
		Rating:             m.Rating,
		Comments:           m.Comments,
		Strengths:          nonNilStrings(m.Strengths),
		Improvements:       nonNilStrings(m.Improvements),
		Actions:            nonNilStrings(m.Actions),
	}
}

// ToModelInterview converts a domain Interview to a model Interview
func ToModelInterview(d domain.Interview) models.Interview {
	return models.Interview{
		InterviewID:  d.InterviewID,
		UserID:       d.UserID,
		JobRole:      d.JobRole,
		TechStack:    nonNilStrings(d.TechStack),
		Difficulty:   d.Difficulty,
		Status:       string(d.Status),
		Conversation: ToModelTurns(d.Conversation),
		Feedback:     ToModelFeedback(d.Feedback),
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInterview converts a model Interview to a domain Interview
func ToDomainInterview(m models.Interview) domain.Interview {
	return domain.Interview{
		InterviewID:  m.InterviewID,
		UserID:       m.UserID,
		JobRole:      m.JobRole,
		TechStack:    nonNilStrings(m.TechStack),
		Difficulty:   m.Difficulty,
		Status:       domain.InterviewStatus(m.Status),
		Conversation: ToDomainTurns(m.Conversation),
		Feedback:     ToDomainFeedback(m.Feedback),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainInterviewSlice converts a slice of model Interviews to a slice of domain Interviews
func ToDomainInterviewSlice(ms []models.Interview) []domain.Interview {
	ds := make([]domain.Interview, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInterview(m)
	}
	return ds
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
