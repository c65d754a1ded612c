package domain

import "errors"

// ATS status labels the grader may return.
const (
	ATSExcellent        = "Excellent"
	ATSGood             = "Good"
	ATSNeedsImprovement = "Needs Improvement"
	ATSCritical         = "Critical"
)

var errMissingATSScore = errors.New("score is missing or not numeric")

// ATSReport is the ATS grading returned to the client.
type ATSReport struct {
	Score   Score    `json:"score"`
	Status  string   `json:"status" validate:"required,oneof=Excellent Good 'Needs Improvement' Critical"`
	Message string   `json:"message" validate:"required"`
	Issues  []string `json:"issues" validate:"required,min=1,dive,required"`
}

// Validate checks the constraints the struct tags cannot express.
func (r ATSReport) Validate() error {
	if !r.Score.Present() {
		return errMissingATSScore
	}
	return nil
}

// FallbackATSReport is returned whenever extraction or grading fails.
func FallbackATSReport() ATSReport {
	return ATSReport{
		Score:   NewScore(65),
		Status:  ATSNeedsImprovement,
		Message: "We analyzed your resume and found several formatting and keyword gaps.",
		Issues: []string{
			"Missing 'Skills' section header: ATS parsers look for standard headers.",
			"Quantifiable metrics missing: Add numbers to your achievements (e.g., 'Improved performance by 20%').",
			"File formatting: Ensure you use a standard, single-column layout for best parsing.",
			"Missing Keywords: 'CI/CD', 'System Design', 'Testing' are missing for this role.",
			"Contact Info: Ensure your LinkedIn URL is clickable and email is professional.",
			"Action Verbs: Start bullet points with strong verbs like 'Architected', 'Deployed', 'Optimized'.",
		},
	}
}

// ResumeFeedback is the persisted ATS feedback sub-record.
type ResumeFeedback struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Issues  []string `json:"issues"`
}

// Resume is a successfully graded resume. It is immutable once created.
type Resume struct {
	ResumeID     string         `json:"id"`
	UserID       string         `json:"user"`
	OriginalName string         `json:"originalName"`
	StoredName   string         `json:"storedName"`
	ATSScore     int            `json:"atsScore"`
	Feedback     ResumeFeedback `json:"feedback"`
	AuditFields
}
