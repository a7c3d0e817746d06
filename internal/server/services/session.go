// Package services contains server-side business logic. SessionService runs
// the token lifecycle; UserService and CompanyService cover account and
// employer CRUD.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/dbx"
	"github.com/jobfind/jobfind/internal/logging"
	"github.com/jobfind/jobfind/internal/server/auth"
	"github.com/jobfind/jobfind/internal/server/config"
	"github.com/jobfind/jobfind/internal/server/models"
	"github.com/jobfind/jobfind/internal/server/repositories/repomanager"
	"github.com/jobfind/jobfind/internal/server/repositories/users"
)

// Session is what a successful login or refresh hands back: a fresh token
// pair and the snapshot both tokens embed.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         models.UserSnapshot
}

// RegisterRequest carries the fields accepted when creating an account.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	// Role defaults to common.RoleUser when empty.
	Role      string
	Profile   models.Profile
	CompanyID *int64
}

// SessionService implements login, refresh, logout and register.
//
// It keeps no state of its own: the refresh token stored on the user
// record is the only thing that decides whether a refresh token is live.
// Two concurrent refreshes presenting the same current token can both pass
// the lookup before either write lands; both callers get a valid pair but
// only the last write survives in the store. That race is accepted.
//
// Sessions write only the refresh token column, so a login or refresh never
// rolls back other fields. A refresh that lands just after a password change
// can still store a fresh token for the old session.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.TokenCodec
	hasher      auth.PasswordHasher
	accessTTL   time.Duration
	refreshTTL  time.Duration
	log         logging.Logger
}

// NewSessionService wires the session core. db may be nil when m is an
// in-memory manager.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.TokenCodec,
	hasher auth.PasswordHasher, cfg *config.Config, log logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		codec:       codec,
		hasher:      hasher,
		accessTTL:   cfg.AccessTokenTTL,
		refreshTTL:  cfg.RefreshTokenTTL,
		log:         log.With("module", "session"),
	}
}

func (s *SessionService) users() users.Repository {
	return s.repomanager.Users(s.db)
}

// Login checks email and password and starts a new session, replacing any
// refresh token stored for the user. An unknown email and a wrong password
// both return common.ErrAuthenticationFailed.
func (s *SessionService) Login(ctx context.Context, email, password string) (_ *Session, err error) {
	defer func() { record(OpLogin, err) }()

	if email == "" || password == "" {
		return nil, common.ErrAuthenticationFailed
	}

	user, err := s.users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyMissing(password)
			return nil, common.ErrAuthenticationFailed
		}
		return nil, storeError(err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrAuthenticationFailed
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "login succeeded", "email", user.Email)
	return session, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token
// must verify as a refresh token and must equal the one currently stored
// for its subject; on success it is replaced and can never be used again.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (_ *Session, err error) {
	defer func() { record(OpRefresh, err) }()

	if refreshToken == "" {
		return nil, common.ErrMissingToken
	}

	claims, err := s.codec.Verify(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil, err
	}
	email := claims.Subject

	user, err := s.users().FindByRefreshTokenAndEmail(ctx, refreshToken, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "refresh with stale token", "email", email)
			return nil, common.ErrRevokedToken
		}
		return nil, storeError(err)
	}

	return s.startSession(ctx, user)
}

// Logout revokes the stored refresh token of the authenticated principal.
// Logging out without a live session is not an error. Access tokens
// already issued stay valid until they expire.
func (s *SessionService) Logout(ctx context.Context, email string) (err error) {
	defer func() { record(OpLogout, err) }()

	if email == "" {
		return common.ErrUnauthenticated
	}

	repo := s.users()
	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUnauthenticated
		}
		return storeError(err)
	}
	if !user.HasSession() {
		return nil
	}

	if err := repo.SetRefreshToken(ctx, user.ID, nil); err != nil {
		return storeError(err)
	}
	s.log.Info(ctx, "logout", "email", email)
	return nil
}

// Register creates a user. The password is hashed before it reaches the
// store. An email that is already taken returns common.ErrDuplicateEmail
// and leaves the existing record alone.
func (s *SessionService) Register(ctx context.Context, req RegisterRequest) (_ models.UserSnapshot, err error) {
	defer func() { record(OpRegister, err) }()

	user, err := createUser(ctx, s.db, s.repomanager, s.hasher, req)
	if err != nil {
		return models.UserSnapshot{}, err
	}
	s.log.Info(ctx, "user registered", "id", user.ID)
	return user.Snapshot(), nil
}

// Account returns the snapshot of the authenticated principal.
func (s *SessionService) Account(ctx context.Context, email string) (models.UserSnapshot, error) {
	if email == "" {
		return models.UserSnapshot{}, common.ErrUnauthenticated
	}
	user, err := s.users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.UserSnapshot{}, common.ErrUnauthenticated
		}
		return models.UserSnapshot{}, storeError(err)
	}
	return user.Snapshot(), nil
}

// startSession mints a token pair for user and stores the refresh token,
// overwriting whatever was there.
func (s *SessionService) startSession(ctx context.Context, user *models.User) (*Session, error) {
	snapshot := user.Snapshot()

	access, err := s.codec.Issue(auth.KindAccess, user.Email, snapshot, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	refresh, err := s.codec.Issue(auth.KindRefresh, user.Email, snapshot, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if err := s.users().SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, storeError(err)
	}

	return &Session{AccessToken: access, RefreshToken: refresh, User: snapshot}, nil
}

// createUser validates req, hashes the password and inserts the user. The
// duplicate check and the insert share one transaction.
func createUser(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, req RegisterRequest) (*models.User, error) {
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	role := req.Role
	if role == "" {
		role = common.RoleUser
	}
	if role != common.RoleUser && role != common.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrorValidation, role)
	}

	hash, err := hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = inTx(ctx, db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := m.Users(tx)

		exists, err := repo.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return storeError(err)
		}
		if exists {
			return common.ErrDuplicateEmail
		}

		user, err = repo.Save(ctx, &models.User{
			Email:        req.Email,
			PasswordHash: hash,
			Name:         req.Name,
			Role:         role,
			Profile:      req.Profile,
			CompanyID:    req.CompanyID,
		})
		if err != nil {
			return storeError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
