// Package users declares the credential store contract and its PostgreSQL
// and in-memory implementations.
package users

import (
	"context"

	"github.com/jobfind/jobfind/internal/server/models"
)

// Repository is the credential store. Lookups that find nothing return
// common.ErrorNotFound; Save on a taken email returns common.ErrDuplicateEmail.
type Repository interface {
	// FindByEmail returns the user with exactly this email (case-sensitive).
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// ExistsByEmail reports whether any user owns email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindByRefreshTokenAndEmail returns the user whose stored refresh token
	// equals token and whose email equals email.
	FindByRefreshTokenAndEmail(ctx context.Context, token, email string) (*models.User, error)

	// Save inserts user when user.ID is zero and updates it otherwise,
	// including the refresh token field. The stored row is returned.
	Save(ctx context.Context, user *models.User) (*models.User, error)

	// SetRefreshToken stores token (nil clears it) on user id and touches
	// nothing else on the row.
	SetRefreshToken(ctx context.Context, id int64, token *string) error

	GetByID(ctx context.Context, id int64) (*models.User, error)

	// List returns one page of the users matching filter ordered by id, plus
	// the matching total.
	List(ctx context.Context, filter models.UserFilter, page models.PageRequest) ([]*models.User, int64, error)

	Delete(ctx context.Context, id int64) error
}
