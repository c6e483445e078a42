package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-admin/internal/domain"
)

// AdminProfilePatch carries the profile fields an admin may change about
// themselves. Password hash and role are not representable here; they move
// only through their dedicated operations.
type AdminProfilePatch struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// Empty reports whether the patch changes nothing.
func (p AdminProfilePatch) Empty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil
}

// AdminRepository defines persistence access for administrator records.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	UpdateProfile(ctx context.Context, id int64, patch AdminProfilePatch) (*domain.Admin, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	TouchLastLogin(ctx context.Context, id int64) error
	SetRole(ctx context.Context, id int64, roleID *int64) error
	ListByRoleID(ctx context.Context, roleID int64) ([]domain.Admin, error)
}

const adminColumns = `id, email, password_hash, first_name, last_name, role, role_id, is_active, last_login, created_at, updated_at`

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	const query = `
        INSERT INTO admins (email, password_hash, first_name, last_name, role, role_id, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	if admin.Role == "" {
		admin.Role = domain.AdminRoleOther
	}
	return r.pool.QueryRow(ctx, query,
		admin.Email,
		admin.PasswordHash,
		admin.FirstName,
		admin.LastName,
		admin.Role,
		admin.RoleID,
		admin.Active,
	).Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
}

func (r *adminRepository) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE LOWER(email)=LOWER($1)`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *adminRepository) UpdateProfile(ctx context.Context, id int64, patch AdminProfilePatch) (*domain.Admin, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	args := []any{}
	clauses := []string{}
	if patch.Email != nil {
		args = append(args, *patch.Email)
		clauses = append(clauses, fmt.Sprintf("email=$%d", len(args)))
	}
	if patch.FirstName != nil {
		args = append(args, *patch.FirstName)
		clauses = append(clauses, fmt.Sprintf("first_name=$%d", len(args)))
	}
	if patch.LastName != nil {
		args = append(args, *patch.LastName)
		clauses = append(clauses, fmt.Sprintf("last_name=$%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE admins SET %s, updated_at=NOW() WHERE id=$%d RETURNING `+adminColumns,
		strings.Join(clauses, ", "), len(args))

	return r.scanOne(r.pool.QueryRow(ctx, query, args...))
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE admins SET password_hash=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *adminRepository) TouchLastLogin(ctx context.Context, id int64) error {
	const query = `UPDATE admins SET last_login=NOW(), updated_at=NOW() WHERE id=$1`

	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *adminRepository) SetRole(ctx context.Context, id int64, roleID *int64) error {
	const query = `UPDATE admins SET role_id=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, roleID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *adminRepository) ListByRoleID(ctx context.Context, roleID int64) ([]domain.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE role_id=$1 AND is_active=TRUE ORDER BY email`

	rows, err := r.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Admin
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *admin)
	}
	return result, rows.Err()
}

func (r *adminRepository) scanOne(row pgx.Row) (*domain.Admin, error) {
	return scanAdmin(row)
}

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	var admin domain.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.FirstName,
		&admin.LastName,
		&admin.Role,
		&admin.RoleID,
		&admin.Active,
		&admin.LastLogin,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &admin, nil
}
