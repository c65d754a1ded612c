package domain

const (
	// PendingSummary is the summary of the seeded default judgement.
	PendingSummary = "Analysis pending."
	// UnavailableSummary marks a judgement that fell back because the AI call failed.
	UnavailableSummary = "AI Service Unavailable (Check Server Logs)"
	noSummary          = "No summary generated"
)

// Judgement is the AI collaborator's interview grading.
type Judgement struct {
	OverallScore       Score    `json:"overallScore"`
	TechnicalScore     Score    `json:"technicalScore"`
	CommunicationScore Score    `json:"communicationScore"`
	Summary            string   `json:"summary"`
	Strengths          []string `json:"strengths"`
	Improvements       []string `json:"improvements"`
	Actions            []string `json:"actions"`
}

// DefaultJudgement is the well-formed judgement used until the AI answers.
func DefaultJudgement() Judgement {
	return Judgement{
		Summary:      PendingSummary,
		Strengths:    []string{},
		Improvements: []string{},
		Actions:      []string{},
	}
}

// UnavailableJudgement is the default judgement marked as an AI outage.
func UnavailableJudgement() Judgement {
	j := DefaultJudgement()
	j.Summary = UnavailableSummary
	return j
}

// Normalized replaces nil lists with empty ones so the judgement always renders.
func (j Judgement) Normalized() Judgement {
	j.Strengths = nonNil(j.Strengths)
	j.Improvements = nonNil(j.Improvements)
	j.Actions = nonNil(j.Actions)
	return j
}

// ToFeedback coerces the judgement into the persisted feedback shape.
func (j Judgement) ToFeedback() Feedback {
	overall := j.OverallScore.Int()
	comments := j.Summary
	if comments == "" {
		comments = noSummary
	}
	return Feedback{
		OverallScore:       overall,
		TechnicalScore:     j.TechnicalScore.Int(),
		CommunicationScore: j.CommunicationScore.Int(),
		Rating:             RatingFromScore(overall),
		Comments:           comments,
		Strengths:          nonNil(j.Strengths),
		Improvements:       nonNil(j.Improvements),
		Actions:            nonNil(j.Actions),
	}
}

// JudgementFromFeedback rebuilds the client-facing judgement from a stored record.
func JudgementFromFeedback(f Feedback) Judgement {
	return Judgement{
		OverallScore:       NewScore(f.OverallScore),
		TechnicalScore:     NewScore(f.TechnicalScore),
		CommunicationScore: NewScore(f.CommunicationScore),
		Summary:            f.Comments,
		Strengths:          nonNil(f.Strengths),
		Improvements:       nonNil(f.Improvements),
		Actions:            nonNil(f.Actions),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
