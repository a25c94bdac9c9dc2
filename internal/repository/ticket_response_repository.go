package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fms-support/internal/domain"
)

// TicketResponseRepository manages follow-up responses on a ticket.
type TicketResponseRepository interface {
	Create(ctx context.Context, resp *domain.TicketResponse) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketResponse, error)
}

type ticketResponseRepository struct {
	pool *pgxpool.Pool
}

// NewTicketResponseRepository builds repository.
func NewTicketResponseRepository(pool *pgxpool.Pool) TicketResponseRepository {
	return &ticketResponseRepository{pool: pool}
}

func (r *ticketResponseRepository) Create(ctx context.Context, resp *domain.TicketResponse) error {
	const query = `
        INSERT INTO ticket_responses (ticket_id, author_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		resp.TicketID,
		resp.AuthorID,
		resp.Body,
	).Scan(&resp.ID, &resp.CreatedAt)
}

func (r *ticketResponseRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketResponse, error) {
	const query = `
        SELECT id, ticket_id, author_id, body, created_at
        FROM ticket_responses WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketResponse
	for rows.Next() {
		var resp domain.TicketResponse
		if err := rows.Scan(
			&resp.ID,
			&resp.TicketID,
			&resp.AuthorID,
			&resp.Body,
			&resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, rows.Err()
}
