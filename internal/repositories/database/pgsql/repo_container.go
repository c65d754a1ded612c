package pgsql

import (
	portsrepo "github.com/echoprep/echoprep_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:      newPgxUserRepository(dbPool),
		InterviewRepo: newPgxInterviewRepository(dbPool),
		ResumeRepo:    newPgxResumeRepository(dbPool),
	}
}
