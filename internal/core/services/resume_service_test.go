package services_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/core/ports/external"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const gradedATS = "```json\n" +
	`{"score":78,"status":"Good","message":"Clear layout.","issues":["a","b","c","d","e"]}` +
	"\n```"

type ResumeServiceTestSuite struct {
	suite.Suite
	repo      *MockResumeRepository
	ai        *MockAIClient
	extractor *MockTextExtractor
	archive   *MockObjectStore
	service   portssvc.ResumeSvcFacade
}

func (suite *ResumeServiceTestSuite) SetupTest() {
	suite.repo = new(MockResumeRepository)
	suite.ai = new(MockAIClient)
	suite.extractor = new(MockTextExtractor)
	suite.archive = new(MockObjectStore)
	suite.service = services.NewResumeService(suite.repo, suite.ai, suite.extractor, services.WithObjectArchive(suite.archive))
}

func pdfUpload(data string) portssvc.UploadedFile {
	return portssvc.UploadedFile{Name: "cv.pdf", ContentType: "application/pdf", Data: []byte(data)}
}

func (suite *ResumeServiceTestSuite) TestExtractText_NoFile() {
	_, err := suite.service.ExtractText(context.Background(), portssvc.UploadedFile{})

	suite.Equal(http.StatusBadRequest, apperrors.StatusFromError(err))
	suite.Equal("No file uploaded. Make sure the key is 'resume'", apperrors.MessageFromError(err))
}

func (suite *ResumeServiceTestSuite) TestExtractText_ParseFailureIsBadRequest() {
	ctx := context.Background()
	suite.extractor.On("ExtractText", ctx, []byte("junk")).Return("", external.ErrNoText).Once()

	_, err := suite.service.ExtractText(ctx, pdfUpload("junk"))

	suite.Equal(http.StatusBadRequest, apperrors.StatusFromError(err))
}

func (suite *ResumeServiceTestSuite) TestCheckATSScore_SuccessIsRecordedAndArchived() {
	ctx := context.Background()
	suite.extractor.On("ExtractText", ctx, mock.Anything).Return("Go developer, 5 years", nil).Once()
	suite.ai.On("GenerateJudgement", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Go developer") && strings.Contains(p, "Software Engineer")
	})).Return(gradedATS, nil).Once()

	var stored domain.Resume
	suite.repo.On("SaveResume", ctx, mock.AnythingOfType("domain.Resume")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(domain.Resume)
	}).Return(nil).Once()
	suite.archive.On("Put", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "resumes/user-1/") && strings.HasSuffix(key, "-cv.pdf")
	}), []byte("%PDF-1.4"), "application/pdf").Return(nil).Once()

	report, err := suite.service.CheckATSScore(ctx, "user-1", pdfUpload("%PDF-1.4"))

	suite.Require().NoError(err)
	suite.Equal(78, report.Score.Int())
	suite.Equal(domain.ATSGood, report.Status)
	suite.Equal(78, stored.ATSScore)
	suite.Equal("cv.pdf", stored.OriginalName)
	suite.Equal("user-1", stored.UserID)
	suite.archive.AssertExpectations(suite.T())
}

func (suite *ResumeServiceTestSuite) TestCheckATSScore_CorruptPDFReturnsSameFallbackTwice() {
	ctx := context.Background()
	suite.extractor.On("ExtractText", ctx, mock.Anything).Return("", errors.New("malformed PDF")).Twice()

	first, err := suite.service.CheckATSScore(ctx, "user-1", pdfUpload("not a pdf"))
	suite.Require().NoError(err)
	second, err := suite.service.CheckATSScore(ctx, "user-1", pdfUpload("not a pdf"))
	suite.Require().NoError(err)

	suite.Equal(first, second)
	suite.Equal(domain.FallbackATSReport(), first)
	suite.Equal(65, first.Score.Int())
	suite.repo.AssertNotCalled(suite.T(), "SaveResume", mock.Anything, mock.Anything)
	suite.ai.AssertNotCalled(suite.T(), "GenerateJudgement", mock.Anything, mock.Anything)
}

func (suite *ResumeServiceTestSuite) TestCheckATSScore_InvalidReportFallsBack() {
	ctx := context.Background()
	suite.extractor.On("ExtractText", ctx, mock.Anything).Return("text", nil).Once()
	suite.ai.On("GenerateJudgement", mock.Anything, mock.Anything).Return(`{"score":90,"status":"Amazing","message":"x","issues":["a"]}`, nil).Once()

	report, err := suite.service.CheckATSScore(ctx, "user-1", pdfUpload("%PDF"))

	suite.Require().NoError(err)
	suite.Equal(domain.FallbackATSReport(), report)
	suite.repo.AssertNotCalled(suite.T(), "SaveResume", mock.Anything, mock.Anything)
}

func (suite *ResumeServiceTestSuite) TestCheckATSScore_AIErrorFallsBack() {
	ctx := context.Background()
	suite.extractor.On("ExtractText", ctx, mock.Anything).Return("text", nil).Once()
	suite.ai.On("GenerateJudgement", mock.Anything, mock.Anything).Return("", external.ErrAIDisabled).Once()

	report, err := suite.service.CheckATSScore(ctx, "user-1", pdfUpload("%PDF"))

	suite.Require().NoError(err)
	suite.Equal(domain.ATSNeedsImprovement, report.Status)
	suite.Len(report.Issues, 6)
}

func (suite *ResumeServiceTestSuite) TestCheckATSScore_StoreFailureStillReturnsReport() {
	ctx := context.Background()
	suite.extractor.On("ExtractText", ctx, mock.Anything).Return("text", nil).Once()
	suite.ai.On("GenerateJudgement", mock.Anything, mock.Anything).Return(gradedATS, nil).Once()
	suite.repo.On("SaveResume", ctx, mock.Anything).Return(assert.AnError).Once()

	report, err := suite.service.CheckATSScore(ctx, "user-1", pdfUpload("%PDF"))

	suite.Require().NoError(err)
	suite.Equal(78, report.Score.Int())
	suite.archive.AssertNotCalled(suite.T(), "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ResumeServiceTestSuite) TestCheckATSScore_NoFile() {
	_, err := suite.service.CheckATSScore(context.Background(), "user-1", portssvc.UploadedFile{})
	suite.Equal(http.StatusBadRequest, apperrors.StatusFromError(err))
}

func TestResumeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ResumeServiceTestSuite))
}
