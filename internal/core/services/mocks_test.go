package services_test

import (
	"context"
	"time"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/core/ports/external"
	"github.com/stretchr/testify/mock"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
	FindUserByIDFn       func(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	FindUserByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	SaveUserFn           func(ctx context.Context, user domain.User) error
	UpdateRefreshTokenFn func(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if m.SaveUserFn != nil {
		return m.SaveUserFn(ctx, user)
	}
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindUserByIDFn != nil {
		return m.FindUserByIDFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindUserByEmailFn != nil {
		return m.FindUserByEmailFn(ctx, email)
	}
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindUserByUsernameFn != nil {
		return m.FindUserByUsernameFn(ctx, username)
	}
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	if m.UpdateRefreshTokenFn != nil {
		return m.UpdateRefreshTokenFn(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	}
	args := m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUserCascade(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock InterviewRepository ---
type MockInterviewRepository struct {
	mock.Mock
}

func (m *MockInterviewRepository) FindInterviewByID(ctx context.Context, interviewID string) (*domain.Interview, error) {
	args := m.Called(ctx, interviewID)
	var interview *domain.Interview
	if args.Get(0) != nil {
		interview = args.Get(0).(*domain.Interview)
	}
	return interview, args.Error(1)
}

func (m *MockInterviewRepository) ListInterviewsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Interview, *string, error) {
	args := m.Called(ctx, userID, limit, nextToken)
	var interviews []domain.Interview
	if args.Get(0) != nil {
		interviews = args.Get(0).([]domain.Interview)
	}
	var returnedNextToken *string
	if tokenVal, ok := args.Get(1).(string); ok && tokenVal != "" {
		returnedNextToken = &tokenVal
	}
	return interviews, returnedNextToken, args.Error(2)
}

func (m *MockInterviewRepository) SaveInterview(ctx context.Context, interview domain.Interview) error {
	args := m.Called(ctx, interview)
	return args.Error(0)
}

func (m *MockInterviewRepository) AppendTurns(ctx context.Context, interviewID string, turns []domain.Turn, updatedAt time.Time) (*domain.Interview, error) {
	args := m.Called(ctx, interviewID, turns, updatedAt)
	var interview *domain.Interview
	if args.Get(0) != nil {
		interview = args.Get(0).(*domain.Interview)
	}
	return interview, args.Error(1)
}

func (m *MockInterviewRepository) FinalizeInterview(ctx context.Context, interviewID string, conversation []domain.Turn, feedback domain.Feedback, updatedAt time.Time) (*domain.Interview, error) {
	args := m.Called(ctx, interviewID, conversation, feedback, updatedAt)
	var interview *domain.Interview
	if args.Get(0) != nil {
		interview = args.Get(0).(*domain.Interview)
	}
	return interview, args.Error(1)
}

// --- Mock ResumeRepository ---
type MockResumeRepository struct {
	mock.Mock
}

func (m *MockResumeRepository) SaveResume(ctx context.Context, resume domain.Resume) error {
	args := m.Called(ctx, resume)
	return args.Error(0)
}

func (m *MockResumeRepository) ListResumesByUser(ctx context.Context, userID string) ([]domain.Resume, error) {
	args := m.Called(ctx, userID)
	var resumes []domain.Resume
	if args.Get(0) != nil {
		resumes = args.Get(0).([]domain.Resume)
	}
	return resumes, args.Error(1)
}

// --- Mock collaborators ---
type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) GenerateJudgement(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockAIClient) GenerateReply(ctx context.Context, history []domain.Turn, rc external.ReplyContext) (string, error) {
	args := m.Called(ctx, history, rc)
	return args.String(0), args.Error(1)
}

type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}
