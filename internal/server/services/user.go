package services

import (
	"context"
	"database/sql"

	"github.com/jobfind/jobfind/internal/dbx"
	"github.com/jobfind/jobfind/internal/logging"
	"github.com/jobfind/jobfind/internal/server/auth"
	"github.com/jobfind/jobfind/internal/server/models"
	"github.com/jobfind/jobfind/internal/server/repositories/repomanager"
	"github.com/jobfind/jobfind/internal/server/repositories/users"
)

// UpdateUserRequest lists the mutable user fields. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	Name      *string
	Password  *string
	Age       *int
	Gender    *string
	Address   *string
	CompanyID *int64
}

// UserService is account CRUD for administrators.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, log logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, hasher: hasher, log: log.With("module", "users")}
}

func (s *UserService) users() users.Repository {
	return s.repomanager.Users(s.db)
}

func (s *UserService) Create(ctx context.Context, req RegisterRequest) (models.UserDetails, error) {
	user, err := createUser(ctx, s.db, s.repomanager, s.hasher, req)
	if err != nil {
		return models.UserDetails{}, err
	}
	return user.Details(), nil
}

func (s *UserService) Get(ctx context.Context, id int64) (models.UserDetails, error) {
	user, err := s.users().GetByID(ctx, id)
	if err != nil {
		return models.UserDetails{}, storeError(err)
	}
	return user.Details(), nil
}

// Update applies req to the user. Changing the password also drops the
// stored refresh token, which ends every session of that user.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest) (models.UserDetails, error) {
	var hash string
	if req.Password != nil {
		h, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return models.UserDetails{}, err
		}
		hash = h
	}

	var saved *models.User
	err := inTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return storeError(err)
		}

		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Age != nil {
			user.Profile.Age = *req.Age
		}
		if req.Gender != nil {
			user.Profile.Gender = *req.Gender
		}
		if req.Address != nil {
			user.Profile.Address = *req.Address
		}
		if req.CompanyID != nil {
			user.CompanyID = req.CompanyID
		}
		if req.Password != nil {
			user.PasswordHash = hash
			user.RefreshToken = nil
		}

		saved, err = repo.Save(ctx, user)
		if err != nil {
			return storeError(err)
		}
		return nil
	})
	if err != nil {
		return models.UserDetails{}, err
	}

	if req.Password != nil {
		s.log.Info(ctx, "password changed, sessions revoked", "id", id)
	}
	return saved.Details(), nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users().Delete(ctx, id); err != nil {
		return storeError(err)
	}
	return nil
}

// List returns one page of the users matching filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter, page models.PageRequest) (models.Page[models.UserDetails], error) {
	page = page.Normalize()

	list, total, err := s.users().List(ctx, filter, page)
	if err != nil {
		return models.Page[models.UserDetails]{}, storeError(err)
	}

	result := make([]models.UserDetails, 0, len(list))
	for _, u := range list {
		result = append(result, u.Details())
	}
	return models.Page[models.UserDetails]{Meta: models.NewMeta(page, total), Result: result}, nil
}
