package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/dto"
	"github.com/echoprep/echoprep_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

const resumeFormField = "resume"

// resumeHandler handles resume parsing and ATS grading uploads.
type resumeHandler struct {
	resumeService  portssvc.ResumeSvcFacade
	maxUploadBytes int64
}

func newResumeHandler(rs portssvc.ResumeSvcFacade, maxUploadBytes int64) *resumeHandler {
	return &resumeHandler{
		resumeService:  rs,
		maxUploadBytes: maxUploadBytes,
	}
}

func registerResumeRoutes(rg *gin.RouterGroup, h *resumeHandler) {
	rg.POST("/upload", h.upload)
	rg.POST("/ats-check", h.atsCheck)
}

// upload godoc
// @Summary Extract resume text
// @Description Returns the plain text of an uploaded PDF. Nothing is stored.
// @Tags resume
// @Accept multipart/form-data
// @Produce json
// @Param resume formData file true "PDF resume"
// @Success 200 {object} dto.APIResponse{data=dto.ResumeTextResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /resume/upload [post]
func (h *resumeHandler) upload(c *gin.Context) {
	file, err := h.readUpload(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	text, err := h.resumeService.ExtractText(c.Request.Context(), file)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, dto.ResumeTextResponse{ResumeText: text}, "Resume parsed successfully"))
}

// atsCheck godoc
// @Summary ATS score
// @Description Grades an uploaded PDF. Extraction or AI failures return a generic report with HTTP 200.
// @Tags resume
// @Accept multipart/form-data
// @Produce json
// @Param resume formData file true "PDF resume"
// @Success 200 {object} dto.APIResponse{data=domain.ATSReport}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /resume/ats-check [post]
func (h *resumeHandler) atsCheck(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	file, err := h.readUpload(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	report, err := h.resumeService.CheckATSScore(c.Request.Context(), userID, file)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, report, "ATS score calculated"))
}

// readUpload loads the "resume" form file into memory. A missing file yields an empty upload,
// which the service rejects with its own message.
func (h *resumeHandler) readUpload(c *gin.Context) (portssvc.UploadedFile, error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fh, err := c.FormFile(resumeFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return portssvc.UploadedFile{}, apperrors.NewAppError(http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File exceeds the %d byte limit", h.maxUploadBytes), err)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return portssvc.UploadedFile{}, nil
		default:
			logger.Warn("Failed to read multipart upload", slog.String("error", err.Error()))
			return portssvc.UploadedFile{}, nil
		}
	}

	f, err := fh.Open()
	if err != nil {
		return portssvc.UploadedFile{}, apperrors.NewBadRequestError("Failed to read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return portssvc.UploadedFile{}, apperrors.NewBadRequestError("Failed to read uploaded file")
	}

	return portssvc.UploadedFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
