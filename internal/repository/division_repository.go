package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fms-support/internal/domain"
)

// DivisionRepository manages divisions inside a company.
type DivisionRepository interface {
	Create(ctx context.Context, division *domain.Division) error
	Update(ctx context.Context, division *domain.Division) error
	GetByID(ctx context.Context, id string) (*domain.Division, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.Division, error)
}

type divisionRepository struct {
	pool *pgxpool.Pool
}

// NewDivisionRepository builds the repository.
func NewDivisionRepository(pool *pgxpool.Pool) DivisionRepository {
	return &divisionRepository{pool: pool}
}

func (r *divisionRepository) Create(ctx context.Context, division *domain.Division) error {
	const query = `
        INSERT INTO divisions (company_id, name, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		division.CompanyID,
		division.Name,
		division.IsActive,
	).Scan(&division.ID, &division.CreatedAt, &division.UpdatedAt)
}

func (r *divisionRepository) Update(ctx context.Context, division *domain.Division) error {
	const query = `
        UPDATE divisions SET name=$1, is_active=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query,
		division.Name,
		division.IsActive,
		division.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *divisionRepository) GetByID(ctx context.Context, id string) (*domain.Division, error) {
	const query = `
        SELECT id, company_id, name, is_active, created_at, updated_at
        FROM divisions WHERE id=$1`
	var division domain.Division
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&division.ID,
		&division.CompanyID,
		&division.Name,
		&division.IsActive,
		&division.CreatedAt,
		&division.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &division, nil
}

func (r *divisionRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.Division, error) {
	const query = `
        SELECT id, company_id, name, is_active, created_at, updated_at
        FROM divisions WHERE company_id=$1 AND is_active = TRUE ORDER BY name`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Division
	for rows.Next() {
		var division domain.Division
		if err := rows.Scan(&division.ID, &division.CompanyID, &division.Name, &division.IsActive, &division.CreatedAt, &division.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, division)
	}
	return result, rows.Err()
}
