package services

import (
	"context"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
)

// UploadedFile is an in-memory multipart upload.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ResumeSvcFacade defines resume parsing and ATS grading.
type ResumeSvcFacade interface {
	// ExtractText returns the plain text of an uploaded PDF.
	ExtractText(ctx context.Context, file UploadedFile) (string, error)

	// CheckATSScore grades a resume. Any extraction or AI failure yields the fixed fallback report
	// and no stored record.
	CheckATSScore(ctx context.Context, userID string, file UploadedFile) (domain.ATSReport, error)
}
