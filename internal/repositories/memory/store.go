// Package memory is an in-process record store implementing the repository ports.
// Used with STORE_DRIVER=memory and by tests. Every operation is serialized under one lock.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	portsrepo "github.com/echoprep/echoprep_backend/internal/core/ports/repositories"
	"github.com/echoprep/echoprep_backend/internal/utils/pagination"
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	interviews map[string]domain.Interview
	resumes    map[string]domain.Resume
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		interviews: make(map[string]domain.Interview),
		resumes:    make(map[string]domain.Resume),
	}
}

var (
	_ portsrepo.UserRepositoryFacade      = (*Store)(nil)
	_ portsrepo.InterviewRepositoryFacade = (*Store)(nil)
	_ portsrepo.ResumeRepositoryFacade    = (*Store)(nil)
)

// NewRepositoryProvider backs every repository with a single fresh Store.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	s := NewStore()
	return portsrepo.RepositoryProvider{
		UserRepo:      s,
		InterviewRepo: s,
		ResumeRepo:    s,
	}
}

// --- users ---

func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserID == user.UserID || u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return apperrors.ErrDuplicate
		}
	}
	s.users[user.UserID] = cloneUser(user)
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := cloneUser(u)
	return &c, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.Username == username })
}

func (s *Store) findUser(match func(domain.User) bool) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.RefreshTokenHash = &refreshTokenHash
	u.RefreshTokenExpiryTime = &refreshTokenExpiryTime
	u.UpdatedAt = time.Now()
	s.users[userID] = u
	return nil
}

func (s *Store) ClearRefreshToken(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.RefreshTokenHash = nil
	u.RefreshTokenExpiryTime = nil
	u.UpdatedAt = time.Now()
	s.users[userID] = u
	return nil
}

func (s *Store) DeleteUserCascade(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return apperrors.ErrNotFound
	}
	for id, iv := range s.interviews {
		if iv.UserID == userID {
			delete(s.interviews, id)
		}
	}
	for id, r := range s.resumes {
		if r.UserID == userID {
			delete(s.resumes, id)
		}
	}
	delete(s.users, userID)
	return nil
}

// --- interviews ---

func (s *Store) SaveInterview(ctx context.Context, interview domain.Interview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interviews[interview.InterviewID]; ok {
		return apperrors.ErrDuplicate
	}
	s.interviews[interview.InterviewID] = cloneInterview(interview)
	return nil
}

func (s *Store) FindInterviewByID(ctx context.Context, interviewID string) (*domain.Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	iv, ok := s.interviews[interviewID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	c := cloneInterview(iv)
	return &c, nil
}

func (s *Store) ListInterviewsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Interview, *string, error) {
	var cursorCreatedAt time.Time
	var cursorID string
	hasCursor := nextToken != nil && *nextToken != ""
	if hasCursor {
		var err error
		if cursorCreatedAt, cursorID, err = pagination.DecodeToken(*nextToken); err != nil {
			return nil, nil, apperrors.NewBadRequestError("invalid nextToken")
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Interview{}
	for _, iv := range s.interviews {
		if iv.UserID != userID {
			continue
		}
		if hasCursor && !pagination.Before(iv.CreatedAt, iv.InterviewID, cursorCreatedAt, cursorID) {
			continue
		}
		out = append(out, cloneInterview(iv))
	}
	sort.Slice(out, func(i, j int) bool {
		return pagination.Before(out[j].CreatedAt, out[j].InterviewID, out[i].CreatedAt, out[i].InterviewID)
	})

	if limit <= 0 || len(out) <= limit {
		return out, nil, nil
	}
	last := out[limit-1]
	token := pagination.EncodeToken(last.CreatedAt, last.InterviewID)
	return out[:limit], &token, nil
}

func (s *Store) AppendTurns(ctx context.Context, interviewID string, turns []domain.Turn, updatedAt time.Time) (*domain.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[interviewID]
	if !ok || iv.Ended() {
		return nil, apperrors.ErrNotFound
	}
	iv.Conversation = append(cloneTurns(iv.Conversation), turns...)
	iv.Status = domain.InterviewInProgress
	iv.UpdatedAt = updatedAt
	s.interviews[interviewID] = iv
	c := cloneInterview(iv)
	return &c, nil
}

func (s *Store) FinalizeInterview(ctx context.Context, interviewID string, conversation []domain.Turn, feedback domain.Feedback, updatedAt time.Time) (*domain.Interview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iv, ok := s.interviews[interviewID]
	if !ok || iv.Ended() {
		return nil, apperrors.ErrNotFound
	}
	iv.Conversation = cloneTurns(conversation)
	iv.Feedback = cloneFeedback(feedback)
	iv.Status = domain.InterviewEnded
	iv.UpdatedAt = updatedAt
	s.interviews[interviewID] = iv
	c := cloneInterview(iv)
	return &c, nil
}

// --- resumes ---

func (s *Store) SaveResume(ctx context.Context, resume domain.Resume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resumes[resume.ResumeID]; ok {
		return apperrors.ErrDuplicate
	}
	resume.Feedback.Issues = append([]string{}, resume.Feedback.Issues...)
	s.resumes[resume.ResumeID] = resume
	return nil
}

func (s *Store) ListResumesByUser(ctx context.Context, userID string) ([]domain.Resume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Resume{}
	for _, r := range s.resumes {
		if r.UserID == userID {
			r.Feedback.Issues = append([]string{}, r.Feedback.Issues...)
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func cloneUser(u domain.User) domain.User {
	u.PasswordHash = clonePtr(u.PasswordHash)
	u.ProviderUserID = clonePtr(u.ProviderUserID)
	u.RefreshTokenHash = clonePtr(u.RefreshTokenHash)
	u.RefreshTokenExpiryTime = clonePtr(u.RefreshTokenExpiryTime)
	return u
}

func cloneInterview(iv domain.Interview) domain.Interview {
	iv.TechStack = append([]string{}, iv.TechStack...)
	iv.Conversation = cloneTurns(iv.Conversation)
	iv.Feedback = cloneFeedback(iv.Feedback)
	return iv
}

func cloneTurns(t []domain.Turn) []domain.Turn {
	return append([]domain.Turn{}, t...)
}

func cloneFeedback(f domain.Feedback) domain.Feedback {
	f.Strengths = append([]string{}, f.Strengths...)
	f.Improvements = append([]string{}, f.Improvements...)
	f.Actions = append([]string{}, f.Actions...)
	return f
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
