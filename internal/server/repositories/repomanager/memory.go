package repomanager

import (
	"context"
	"database/sql"

	"github.com/jobfind/jobfind/internal/dbx"
	"github.com/jobfind/jobfind/internal/server/repositories/companies"
	"github.com/jobfind/jobfind/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out the same in-memory repositories
// regardless of the DBTX passed in. Transactions are not isolated.
type MemoryRepositoryManager struct {
	users     *users.MemoryRepository
	companies *companies.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:     users.NewMemoryRepository(),
		companies: companies.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Companies(dbx.DBTX) companies.Repository { return m.companies }
