package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fms-support/internal/domain"
)

// ApprovalLogRepository stores the append-only approval audit trail.
type ApprovalLogRepository interface {
	Create(ctx context.Context, entry *domain.ApprovalLog) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.ApprovalLog, error)
}

type approvalLogRepository struct {
	pool *pgxpool.Pool
}

// NewApprovalLogRepository builds repository.
func NewApprovalLogRepository(pool *pgxpool.Pool) ApprovalLogRepository {
	return &approvalLogRepository{pool: pool}
}

func (r *approvalLogRepository) Create(ctx context.Context, entry *domain.ApprovalLog) error {
	const query = `
        INSERT INTO approval_logs (ticket_id, approved_by, decision, source, remarks)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, approved_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.ApprovedBy,
		entry.Decision,
		entry.Source,
		entry.Remarks,
	).Scan(&entry.ID, &entry.ApprovedAt)
}

func (r *approvalLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.ApprovalLog, error) {
	const query = `
        SELECT id, ticket_id, approved_by, approved_at, decision, source, remarks
        FROM approval_logs WHERE ticket_id=$1 ORDER BY approved_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ApprovalLog
	for rows.Next() {
		var entry domain.ApprovalLog
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ApprovedBy,
			&entry.ApprovedAt,
			&entry.Decision,
			&entry.Source,
			&entry.Remarks,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
