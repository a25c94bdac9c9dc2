package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fms-support/internal/domain"
)

// ApprovalFilter narrows feature listings by their approval gate state.
type ApprovalFilter string

const (
	ApprovalFilterPending    ApprovalFilter = "pending"
	ApprovalFilterApproved   ApprovalFilter = "approved"
	ApprovalFilterUnapproved ApprovalFilter = "unapproved"
)

// TicketFilter captures list search parameters.
type TicketFilter struct {
	Types       []domain.TicketType
	CompanyID   *string
	DivisionID  *string
	SubmittedBy *string
	AssigneeID  *string
	Statuses    []string
	Priorities  []domain.TicketPriority
	Approval    *ApprovalFilter
	InStaging   *bool
	Resolved    *bool
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence. Stage timestamps and
// statuses are mutated only through ApplyWrites so a transition's write-set
// lands in a single statement.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByReference(ctx context.Context, ref string) (*domain.Ticket, error)
	ApplyWrites(ctx context.Context, id string, writes map[string]any) error
	UpdateDetails(ctx context.Context, ticket *domain.Ticket) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountWithFilter(ctx context.Context, filter TicketFilter) (int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// writableColumns is the whitelist of columns a workflow write-set may
// touch. ApplyWrites rejects anything outside it.
var writableColumns = map[string]struct{}{
	"status_1": {}, "actual_1": {},
	"planned_2": {}, "status_2": {}, "actual_2": {},
	"planned_3": {}, "status_3": {}, "actual_3": {},
	"planned_4": {}, "status_4": {}, "actual_4": {},
	"approval_status": {}, "approval_actual_at": {}, "unapproval_actual_at": {},
	"approved_by": {}, "approval_source": {}, "remarks": {},
	"staging_planned": {}, "staging_review_status": {}, "staging_review_actual": {},
	"live_planned": {}, "live_status": {}, "live_actual": {},
	"live_review_planned": {}, "live_review_status": {}, "live_review_actual": {},
	"quality_solution": {}, "quality_solution_submitted_by": {}, "quality_solution_submitted_at": {},
	"stage1_locked": {}, "stage3_locked": {}, "stage4_locked": {},
	"feature_stage2_edit_used": {},
	"status":                   {}, "resolved_at": {},
}

const ticketColumns = `id, reference_no, type, title, description, priority,
	company_id, company_name, division_id, division_name, division_other,
	page_name, user_name, communicated_through, submitted_by, assignee_id,
	query_arrival_at, query_response_at, quality_of_response, customer_questions,
	why_feature, remarks,
	status_1, actual_1, planned_2, status_2, actual_2,
	planned_3, status_3, actual_3, planned_4, status_4, actual_4,
	approval_status, approval_actual_at, unapproval_actual_at, approved_by, approval_source,
	staging_planned, staging_review_status, staging_review_actual,
	live_planned, live_status, live_actual,
	live_review_planned, live_review_status, live_review_actual,
	quality_solution, quality_solution_submitted_by, quality_solution_submitted_at,
	stage1_locked, stage3_locked, stage4_locked, feature_stage2_edit_used,
	status, resolved_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (reference_no, type, title, description, priority,
            company_id, company_name, division_id, division_name, division_other,
            page_name, user_name, communicated_through, submitted_by, assignee_id,
            query_arrival_at, query_response_at, quality_of_response, customer_questions,
            why_feature, remarks, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ReferenceNo,
		ticket.Type,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.CompanyID,
		ticket.CompanyName,
		ticket.DivisionID,
		ticket.DivisionName,
		ticket.DivisionOther,
		ticket.PageName,
		ticket.UserName,
		ticket.CommunicatedThrough,
		ticket.SubmittedBy,
		ticket.AssigneeID,
		ticket.QueryArrivalAt,
		ticket.QueryResponseAt,
		ticket.QualityOfResponse,
		ticket.CustomerQuestions,
		ticket.WhyFeature,
		ticket.Remarks,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// ApplyWrites applies a workflow write-set as one UPDATE. A nil value clears
// the column. Columns are ordered deterministically so query plans stay
// stable across calls with the same shape.
func (r *ticketRepository) ApplyWrites(ctx context.Context, id string, writes map[string]any) error {
	if len(writes) == 0 {
		return nil
	}
	cols := make([]string, 0, len(writes))
	for col := range writes {
		if _, ok := writableColumns[col]; !ok {
			return fmt.Errorf("column %q is not writable", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		args = append(args, writes[col])
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	sets = append(sets, "updated_at=NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateDetails rewrites the descriptive fields only. Stage state is out of
// scope here and never touched.
func (r *ticketRepository) UpdateDetails(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, priority=$3,
            company_id=$4, company_name=$5, division_id=$6, division_name=$7, division_other=$8,
            page_name=$9, user_name=$10, communicated_through=$11, assignee_id=$12,
            query_arrival_at=$13, query_response_at=$14, quality_of_response=$15,
            customer_questions=$16, why_feature=$17, remarks=$18, updated_at=NOW()
        WHERE id=$19`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.CompanyID,
		ticket.CompanyName,
		ticket.DivisionID,
		ticket.DivisionName,
		ticket.DivisionOther,
		ticket.PageName,
		ticket.UserName,
		ticket.CommunicatedThrough,
		ticket.AssigneeID,
		ticket.QueryArrivalAt,
		ticket.QueryResponseAt,
		ticket.QualityOfResponse,
		ticket.CustomerQuestions,
		ticket.WhyFeature,
		ticket.Remarks,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByReference(ctx context.Context, ref string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE reference_no=$1`
	return r.fetchSingle(ctx, query, ref)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := buildClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountWithFilter(ctx context.Context, filter TicketFilter) (int, error) {
	clauses, args := buildClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, strings.Join(clauses, " AND "))
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func buildClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			args = append(args, t)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("type IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("company_id=$%d", len(args)))
	}
	if filter.DivisionID != nil {
		args = append(args, *filter.DivisionID)
		clauses = append(clauses, fmt.Sprintf("division_id=$%d", len(args)))
	}
	if filter.SubmittedBy != nil {
		args = append(args, *filter.SubmittedBy)
		clauses = append(clauses, fmt.Sprintf("submitted_by=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Approval != nil {
		switch *filter.Approval {
		case ApprovalFilterPending:
			clauses = append(clauses, "approval_status IS NULL")
		case ApprovalFilterApproved:
			clauses = append(clauses, "approval_status='approved'")
		case ApprovalFilterUnapproved:
			clauses = append(clauses, "approval_status='unapproved'")
		}
	}
	if filter.InStaging != nil {
		if *filter.InStaging {
			clauses = append(clauses, "staging_planned IS NOT NULL")
		} else {
			clauses = append(clauses, "staging_planned IS NULL")
		}
	}
	if filter.Resolved != nil {
		if *filter.Resolved {
			clauses = append(clauses, "resolved_at IS NOT NULL")
		} else {
			clauses = append(clauses, "resolved_at IS NULL")
		}
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(reference_no) LIKE %s)",
			placeholder, placeholder, placeholder))
	}
	return clauses, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.ReferenceNo,
		&ticket.Type,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.CompanyID,
		&ticket.CompanyName,
		&ticket.DivisionID,
		&ticket.DivisionName,
		&ticket.DivisionOther,
		&ticket.PageName,
		&ticket.UserName,
		&ticket.CommunicatedThrough,
		&ticket.SubmittedBy,
		&ticket.AssigneeID,
		&ticket.QueryArrivalAt,
		&ticket.QueryResponseAt,
		&ticket.QualityOfResponse,
		&ticket.CustomerQuestions,
		&ticket.WhyFeature,
		&ticket.Remarks,
		&ticket.Status1,
		&ticket.Actual1,
		&ticket.Planned2,
		&ticket.Status2,
		&ticket.Actual2,
		&ticket.Planned3,
		&ticket.Status3,
		&ticket.Actual3,
		&ticket.Planned4,
		&ticket.Status4,
		&ticket.Actual4,
		&ticket.ApprovalStatus,
		&ticket.ApprovalActualAt,
		&ticket.UnapprovalActualAt,
		&ticket.ApprovedBy,
		&ticket.ApprovalSource,
		&ticket.StagingPlanned,
		&ticket.StagingReviewStatus,
		&ticket.StagingReviewActual,
		&ticket.LivePlanned,
		&ticket.LiveStatus,
		&ticket.LiveActual,
		&ticket.LiveReviewPlanned,
		&ticket.LiveReviewStatus,
		&ticket.LiveReviewActual,
		&ticket.QualitySolution,
		&ticket.QualitySolutionSubmittedBy,
		&ticket.QualitySolutionSubmittedAt,
		&ticket.Stage1Locked,
		&ticket.Stage3Locked,
		&ticket.Stage4Locked,
		&ticket.FeatureStage2EditUsed,
		&ticket.Status,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
