package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/fms-support/internal/config"
	"github.com/spec-kit/fms-support/internal/repository"
	"github.com/spec-kit/fms-support/internal/workflow"
)

// ReminderService sweeps unresolved tickets and reminds on overdue stages.
// Redis deduplicates reminders so a stage that stays overdue across sweeps
// is reported once per TTL window.
type ReminderService struct {
	tickets repository.TicketRepository
	redis   *redis.Client
	logger  *zap.Logger
	cfg     config.ReminderConfig
	clock   workflow.Clock
}

// ReminderDigest summarizes one sweep.
type ReminderDigest struct {
	Scanned    int
	Overdue    int
	Reminded   int
	Suppressed int
}

// NewReminderService builds the service.
func NewReminderService(tickets repository.TicketRepository, rdb *redis.Client, logger *zap.Logger, cfg config.ReminderConfig, clock workflow.Clock) *ReminderService {
	if clock == nil {
		clock = workflow.SystemClock()
	}
	return &ReminderService{
		tickets: tickets,
		redis:   rdb,
		logger:  logger,
		cfg:     cfg,
		clock:   clock,
	}
}

// Sweep walks unresolved tickets, resolves each one's current stage, and
// emits a reminder for every stage running past its budget.
func (s *ReminderService) Sweep(ctx context.Context) (*ReminderDigest, error) {
	resolved := false
	batch := s.cfg.BatchSize
	if batch <= 0 {
		batch = 200
	}

	digest := &ReminderDigest{}
	now := s.clock.Now()
	offset := 0
	for {
		tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
			Resolved: &resolved,
			Limit:    batch,
			Offset:   offset,
		})
		if err != nil {
			return nil, err
		}
		if len(tickets) == 0 {
			break
		}
		for i := range tickets {
			ticket := &tickets[i]
			digest.Scanned++

			kind := workflow.KindForTicket(ticket)
			if kind == workflow.KindFeature && ticket.ApprovalStatus == nil {
				// Nothing to chase before the gate decides.
				continue
			}
			summary := workflow.Resolve(ticket, kind, now)
			if summary.DelaySeconds <= 0 {
				continue
			}
			digest.Overdue++

			sent, err := s.remindOnce(ctx, ticket.ID, string(summary.Tag))
			if err != nil {
				s.logger.Warn("reminder dedupe check failed",
					zap.String("ticket_id", ticket.ID), zap.Error(err))
				continue
			}
			if !sent {
				digest.Suppressed++
				continue
			}
			digest.Reminded++
			s.logger.Info("stage overdue",
				zap.String("ticket_id", ticket.ID),
				zap.String("reference_no", ticket.ReferenceNo),
				zap.String("workflow", string(kind)),
				zap.String("stage", summary.Label),
				zap.Int64("delay_seconds", summary.DelaySeconds),
				zap.String("delay", summary.Delay),
			)
		}
		if len(tickets) < batch {
			break
		}
		offset += batch
	}

	s.logger.Info("reminder sweep finished",
		zap.Int("scanned", digest.Scanned),
		zap.Int("overdue", digest.Overdue),
		zap.Int("reminded", digest.Reminded),
		zap.Int("suppressed", digest.Suppressed),
	)
	return digest, nil
}

// remindOnce claims the dedupe key; false means a reminder for this ticket
// and stage already went out within the TTL window.
func (s *ReminderService) remindOnce(ctx context.Context, ticketID, stageTag string) (bool, error) {
	if s.redis == nil {
		return true, nil
	}
	key := fmt.Sprintf("reminder:%s:%s", ticketID, stageTag)
	return s.redis.SetNX(ctx, key, 1, s.cfg.DedupeTTL()).Result()
}
