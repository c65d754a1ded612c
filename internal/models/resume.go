package models

// ResumeFeedback is the JSONB shape of a resume's ATS feedback.
type ResumeFeedback struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Issues  []string `json:"issues"`
}

// Resume is a row of the resumes table.
type Resume struct {
	ResumeID     string         `db:"resume_id"`
	UserID       string         `db:"user_id"`
	OriginalName string         `db:"original_name"`
	StoredName   string         `db:"stored_name"`
	ATSScore     int            `db:"ats_score"`
	Feedback     ResumeFeedback `db:"feedback"`
	AuditFields
}
