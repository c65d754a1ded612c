package handlers

import (
	"log/slog"
	"net/http"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/dto"
	"github.com/echoprep/echoprep_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

const (
	feedbackSavedMessage   = "Feedback generated and saved"
	feedbackUnsavedMessage = "Feedback generated (Save Failed)"

	// NextTokenHeader carries the history paging token. The body stays a plain array.
	NextTokenHeader = "X-Next-Token"
)

// interviewHandler handles HTTP requests for the interview pipeline.
type interviewHandler struct {
	interviewService portssvc.InterviewSvcFacade
	analytics        middleware.AnalyticsClient
}

func newInterviewHandler(is portssvc.InterviewSvcFacade, analytics middleware.AnalyticsClient) *interviewHandler {
	return &interviewHandler{
		interviewService: is,
		analytics:        analytics,
	}
}

// registerInterviewRoutes registers all interview routes. Static paths come before :interviewId.
func registerInterviewRoutes(rg *gin.RouterGroup, h *interviewHandler) {
	rg.POST("/start", h.startInterview)
	rg.POST("/end", h.endInterview)
	rg.GET("/history", h.listInterviews)
	rg.GET("/:interviewId", h.getInterview)
	rg.POST("/:interviewId/message", h.appendMessage)
}

// startInterview godoc
// @Summary Start an interview
// @Description Creates a session seeded with the interviewer framing and greeting.
// @Tags interview
// @Accept json
// @Produce json
// @Param interview body dto.StartInterviewRequest true "Interview setup"
// @Success 201 {object} dto.APIResponse{data=domain.Interview}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /interview/start [post]
func (h *interviewHandler) startInterview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.StartInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewBadRequestError("Invalid request payload", err.Error()))
		return
	}

	interview, err := h.interviewService.StartInterview(c.Request.Context(), userID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAPIResponse(http.StatusCreated, interview, "Interview started successfully"))
}

// appendMessage godoc
// @Summary Append a turn
// @Description Appends a turn; user turns also receive the interviewer's reply.
// @Tags interview
// @Accept json
// @Produce json
// @Param interviewId path string true "Interview ID"
// @Param message body dto.AppendMessageRequest true "Turn"
// @Success 200 {object} dto.APIResponse{data=domain.Interview}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /interview/{interviewId}/message [post]
func (h *interviewHandler) appendMessage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewBadRequestError("Invalid request payload", err.Error()))
		return
	}

	interview, err := h.interviewService.AppendMessage(c.Request.Context(), userID, c.Param("interviewId"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, interview, "Message added"))
}

// endInterview godoc
// @Summary End and grade an interview
// @Description Grades the final transcript and stores the result. AI and store failures degrade to defaults.
// @Tags interview
// @Accept json
// @Produce json
// @Param interview body dto.EndInterviewRequest true "Final transcript"
// @Success 200 {object} dto.APIResponse{data=dto.EndInterviewResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /interview/end [post]
func (h *interviewHandler) endInterview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req dto.EndInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewBadRequestError("Invalid request payload", err.Error()))
		return
	}

	result, err := h.interviewService.EndInterview(c.Request.Context(), userID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	message := feedbackSavedMessage
	if !result.Saved {
		message = feedbackUnsavedMessage
		logger.Warn("Returning unsaved interview feedback")
	}
	middleware.PosthogEvent(c, h.analytics, "interview_graded", map[string]any{
		"saved":         result.Saved,
		"overall_score": result.Feedback.OverallScore.Int(),
	})

	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, dto.EndInterviewResponse{
		Feedback:    result.Feedback,
		InterviewID: result.InterviewID,
		Saved:       result.Saved,
	}, message))
}

// getInterview godoc
// @Summary Get an interview
// @Tags interview
// @Produce json
// @Param interviewId path string true "Interview ID"
// @Success 200 {object} dto.APIResponse{data=domain.Interview}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /interview/{interviewId} [get]
func (h *interviewHandler) getInterview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	interview, err := h.interviewService.GetInterview(c.Request.Context(), userID, c.Param("interviewId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, interview, "Interview fetched successfully"))
}

// listInterviews godoc
// @Summary Interview history
// @Description Lists the caller's interviews, newest first. Pass limit to page; when more remain,
// @Description the X-Next-Token header holds the nextToken for the following page.
// @Tags interview
// @Produce json
// @Param limit query int false "Page size (1-100)"
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.APIResponse{data=[]domain.Interview}
// @Header 200 {string} X-Next-Token "Token for the next page"
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /interview/history [get]
func (h *interviewHandler) listInterviews(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var params dto.ListInterviewsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		_ = c.Error(apperrors.NewBadRequestError("Invalid query parameters", err.Error()))
		return
	}

	resp, err := h.interviewService.ListInterviews(c.Request.Context(), userID, params)
	if err != nil {
		_ = c.Error(err)
		return
	}
	logger.Debug("Listed interviews", slog.Int("count", len(resp.Interviews)), slog.Bool("has_more", resp.NextToken != nil))

	if resp.NextToken != nil {
		c.Header(NextTokenHeader, *resp.NextToken)
	}
	c.JSON(http.StatusOK, dto.NewAPIResponse(http.StatusOK, resp.Interviews, "Interview history fetched successfully"))
}

// requireUserID reads the caller set by the auth gate and records an error when it is absent.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthorizedError("Unauthorized request"))
		return "", false
	}
	return userID, true
}
