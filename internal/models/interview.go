package models

// Turn is the JSONB shape of one conversation entry.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Feedback is the JSONB shape of the grading sub-record.
type Feedback struct {
	OverallScore       int      `json:"overallScore"`
	TechnicalScore     int      `json:"technicalScore"`
	CommunicationScore int      `json:"communicationScore"`
	Rating             int      `json:"rating"`
	Comments           string   `json:"comments"`
	Strengths          []string `json:"strengths"`
	Improvements       []string `json:"improvements"`
	Actions            []string `json:"actions"`
}

// Interview is a row of the interviews table. TechStack, Conversation and Feedback are JSONB columns.
type Interview struct {
	InterviewID  string   `db:"interview_id"`
	UserID       string   `db:"user_id"`
	JobRole      string   `db:"job_role"`
	TechStack    []string `db:"tech_stack"`
	Difficulty   string   `db:"difficulty"`
	Status       string   `db:"status"`
	Conversation []Turn   `db:"conversation"`
	Feedback     Feedback `db:"feedback"`
	AuditFields
}
