package services

import (
	"github.com/echoprep/echoprep_backend/internal/core/ports/external"
	portsrepo "github.com/echoprep/echoprep_backend/internal/core/ports/repositories"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/platform/config"
)

// Collaborators groups the external capabilities the services depend on.
// Archive is optional; a nil Archive disables resume archiving.
type Collaborators struct {
	AI        external.AIClient
	Extractor external.TextExtractor
	Archive   external.ObjectStore
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, collab Collaborators) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Token service first since user sign-in depends on it
	container.TokenService = NewTokenService(cfg)

	userOpts := []UserServiceOption{}
	resumeOpts := []ResumeServiceOption{WithATSTimeout(cfg.AITimeout)}
	if collab.Archive != nil {
		userOpts = append(userOpts, WithResumeArchive(repos.ResumeRepo, collab.Archive))
		resumeOpts = append(resumeOpts, WithObjectArchive(collab.Archive))
	}

	container.User = NewUserService(repos.UserRepo, container.TokenService, userOpts...)
	container.Interview = NewInterviewService(repos.InterviewRepo, collab.AI, WithAITimeout(cfg.AITimeout))
	container.Resume = NewResumeService(repos.ResumeRepo, collab.AI, collab.Extractor, resumeOpts...)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
