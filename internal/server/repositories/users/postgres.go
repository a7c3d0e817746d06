package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jobfind/jobfind/internal/common"
	"github.com/jobfind/jobfind/internal/dbx"
	"github.com/jobfind/jobfind/internal/server/models"
)

const userColumns = `id, email, password_hash, name, role, age, gender, address, company_id, refresh_token, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user         models.User
		companyID    sql.NullInt64
		refreshToken sql.NullString
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role,
		&user.Profile.Age, &user.Profile.Gender, &user.Profile.Address,
		&companyID, &refreshToken, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if companyID.Valid {
		user.CompanyID = &companyID.Int64
	}
	if refreshToken.Valid {
		user.RefreshToken = &refreshToken.String
	}
	return &user, nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, query, email)
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) FindByRefreshTokenAndEmail(ctx context.Context, token, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1 AND email = $2`
	return r.findOne(ctx, query, token, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == 0 {
		return r.insert(ctx, user)
	}
	return r.update(ctx, user)
}

func (r *PostgresRepository) insert(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, role, age, gender, address, company_id, refresh_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	saved := *user
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.Role,
		user.Profile.Age, user.Profile.Gender, user.Profile.Address,
		user.CompanyID, user.RefreshToken,
	).Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return &saved, nil
}

func (r *PostgresRepository) update(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, role = $4, age = $5, gender = $6,
		    address = $7, company_id = $8, refresh_token = $9, updated_at = now()
		WHERE id = $10
		RETURNING updated_at
	`
	saved := *user
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.Role,
		user.Profile.Age, user.Profile.Gender, user.Profile.Address,
		user.CompanyID, user.RefreshToken, user.ID,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, mapWriteError(err)
	}
	saved.UpdatedAt = updatedAt
	return &saved, nil
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id int64, token *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2`, token, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// userFilterClause binds the email pattern to $1 and the name pattern to $2.
const userFilterClause = ` WHERE ($1::text = '' OR email ILIKE '%' || $1 || '%') AND ($2::text = '' OR name ILIKE '%' || $2 || '%')`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *PostgresRepository) List(ctx context.Context, filter models.UserFilter, page models.PageRequest) ([]*models.User, int64, error) {
	page = page.Normalize()
	email, name := likeEscaper.Replace(filter.Email), likeEscaper.Replace(filter.Name)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`+userFilterClause, email, name).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + userFilterClause + ` ORDER BY id LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, query, email, name, page.PageSize, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.User, 0, page.PageSize)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return result, total, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return common.ErrDuplicateEmail
	}
	return fmt.Errorf("db error: %w", err)
}
