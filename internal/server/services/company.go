package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/logging"
	"github.com/jobfind/jobfind/internal/server/models"
	"github.com/jobfind/jobfind/internal/server/repositories/companies"
	"github.com/jobfind/jobfind/internal/server/repositories/repomanager"
)

// CompanyInput is the writable part of a company.
type CompanyInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Logo        string `json:"logo"`
}

func (in CompanyInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: company name is required", common.ErrorValidation)
	}
	return nil
}

type CompanyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCompanyService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CompanyService {
	return &CompanyService{db: db, repomanager: m, log: log.With("module", "companies")}
}

func (s *CompanyService) companies() companies.Repository {
	return s.repomanager.Companies(s.db)
}

func (s *CompanyService) Create(ctx context.Context, in CompanyInput) (*models.Company, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.companies().Create(ctx, &models.Company{
		Name: in.Name, Description: in.Description, Address: in.Address, Logo: in.Logo,
	})
	if err != nil {
		return nil, storeError(err)
	}
	return c, nil
}

func (s *CompanyService) Get(ctx context.Context, id int64) (*models.Company, error) {
	c, err := s.companies().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return c, nil
}

func (s *CompanyService) Update(ctx context.Context, id int64, in CompanyInput) (*models.Company, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.companies().Update(ctx, &models.Company{
		ID: id, Name: in.Name, Description: in.Description, Address: in.Address, Logo: in.Logo,
	})
	if err != nil {
		return nil, storeError(err)
	}
	return c, nil
}

func (s *CompanyService) Delete(ctx context.Context, id int64) error {
	if err := s.companies().Delete(ctx, id); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *CompanyService) List(ctx context.Context, page models.PageRequest) (models.Page[*models.Company], error) {
	page = page.Normalize()

	list, total, err := s.companies().List(ctx, page)
	if err != nil {
		return models.Page[*models.Company]{}, storeError(err)
	}
	if list == nil {
		list = []*models.Company{}
	}
	return models.Page[*models.Company]{Meta: models.NewMeta(page, total), Result: list}, nil
}
