package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Level3EditRepository tracks the one-time stage edit spent by level-3
// users. One row per (ticket, user) pair; inserting is idempotent.
type Level3EditRepository interface {
	HasUsed(ctx context.Context, ticketID, userID string) (bool, error)
	MarkUsed(ctx context.Context, ticketID, userID string) error
}

type level3EditRepository struct {
	pool *pgxpool.Pool
}

// NewLevel3EditRepository builds repository.
func NewLevel3EditRepository(pool *pgxpool.Pool) Level3EditRepository {
	return &level3EditRepository{pool: pool}
}

func (r *level3EditRepository) HasUsed(ctx context.Context, ticketID, userID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM level3_edits WHERE ticket_id=$1 AND user_id=$2
        )`
	var used bool
	if err := r.pool.QueryRow(ctx, query, ticketID, userID).Scan(&used); err != nil {
		return false, err
	}
	return used, nil
}

func (r *level3EditRepository) MarkUsed(ctx context.Context, ticketID, userID string) error {
	const query = `
        INSERT INTO level3_edits (ticket_id, user_id)
        VALUES ($1,$2)
        ON CONFLICT (ticket_id, user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, ticketID, userID)
	return err
}
