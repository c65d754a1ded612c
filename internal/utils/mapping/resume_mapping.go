package mapping

import (
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/models"
)

// ToModelResume converts a domain Resume to a model Resume
func ToModelResume(d domain.Resume) models.Resume {
	return models.Resume{
		ResumeID:     d.ResumeID,
		UserID:       d.UserID,
		OriginalName: d.OriginalName,
		StoredName:   d.StoredName,
		ATSScore:     d.ATSScore,
		Feedback: models.ResumeFeedback{
			Status:  d.Feedback.Status,
			Message: d.Feedback.Message,
			Issues:  nonNilStrings(d.Feedback.Issues),
		},
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainResume converts a model Resume to a domain Resume
func ToDomainResume(m models.Resume) domain.Resume {
	return domain.Resume{
		ResumeID:     m.ResumeID,
		UserID:       m.UserID,
		OriginalName: m.OriginalName,
		StoredName:   m.StoredName,
		ATSScore:     m.ATSScore,
		Feedback: domain.ResumeFeedback{
			Status:  m.Feedback.Status,
			Message: m.Feedback.Message,
			Issues:  nonNilStrings(m.Feedback.Issues),
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainResumeSlice converts a slice of model Resumes to a slice of domain Resumes
func ToDomainResumeSlice(ms []models.Resume) []domain.Resume {
	ds := make([]domain.Resume, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainResume(m)
	}
	return ds
}
