// Package repomanager vends repository implementations bound to a
// database handle and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/jobfind/jobfind/internal/dbx"
	"github.com/jobfind/jobfind/internal/server/repositories/companies"
	"github.com/jobfind/jobfind/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Companies(db dbx.DBTX) companies.Repository
}
