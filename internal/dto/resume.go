package dto

// ResumeTextResponse is returned by POST /resume/upload.
type ResumeTextResponse struct {
	ResumeText string `json:"resumeText"`
}
