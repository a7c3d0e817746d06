// Package companies stores employer profiles.
package companies

import (
	"context"

	"github.com/jobfind/jobfind/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, company *models.Company) (*models.Company, error)
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) (*models.Company, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page models.PageRequest) ([]*models.Company, int64, error)
}
