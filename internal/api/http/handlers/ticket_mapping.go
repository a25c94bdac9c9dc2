package handlers

import (
	"github.com/spec-kit/fms-support/internal/api/dto"
	"github.com/spec-kit/fms-support/internal/domain"
	"github.com/spec-kit/fms-support/internal/service"
)

func ticketSummary(view *service.TicketView) dto.TicketSummary {
	t := &view.Ticket
	permissions := make([]dto.StagePermissionResponse, 0, len(view.Permissions))
	for _, p := range view.Permissions {
		permissions = append(permissions, dto.StagePermissionResponse{
			Stage:    p.Stage,
			Editable: p.Editable,
		})
	}
	return dto.TicketSummary{
		ID:           t.ID,
		ReferenceNo:  t.ReferenceNo,
		Type:         t.Type,
		Title:        t.Title,
		Priority:     t.Priority,
		CompanyName:  t.CompanyName,
		DivisionName: t.DivisionName,
		Workflow:     string(view.Workflow),
		Stage: dto.StageSummaryResponse{
			Tag:          string(view.Summary.Tag),
			Number:       view.Summary.Number,
			Label:        view.Summary.Label,
			Planned:      view.Summary.Planned,
			Actual:       view.Summary.Actual,
			Status:       view.Summary.Status,
			DelaySeconds: view.Summary.DelaySeconds,
			Delay:        view.Summary.Delay,
		},
		ReplyStatus: string(view.ReplyStatus),
		ReplyText:   view.ReplyText,
		Pending:     view.Pending,
		Status:      t.Status,
		Permissions: permissions,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ticketDetail(view *service.TicketView, responses []domain.TicketResponse, approvals []domain.ApprovalLog) dto.TicketDetailResponse {
	t := &view.Ticket
	detail := dto.TicketDetailResponse{
		TicketSummary:              ticketSummary(view),
		Description:                t.Description,
		DivisionOther:              t.DivisionOther,
		PageName:                   t.PageName,
		UserName:                   t.UserName,
		CommunicatedThrough:        t.CommunicatedThrough,
		SubmittedBy:                t.SubmittedBy,
		QueryArrivalAt:             t.QueryArrivalAt,
		QueryResponseAt:            t.QueryResponseAt,
		QualityOfResponse:          t.QualityOfResponse,
		CustomerQuestions:          t.CustomerQuestions,
		WhyFeature:                 t.WhyFeature,
		Remarks:                    t.Remarks,
		ApprovalStatus:             t.ApprovalStatus,
		ApprovalActualAt:           t.ApprovalActualAt,
		ApprovedBy:                 t.ApprovedBy,
		QualitySolution:            t.QualitySolution,
		QualitySolutionSubmittedAt: t.QualitySolutionSubmittedAt,
		ResolvedAt:                 t.ResolvedAt,
		Responses:                  make([]dto.TicketResponseResponse, 0, len(responses)),
		Approvals:                  make([]dto.ApprovalLogResponse, 0, len(approvals)),
	}
	for i := range responses {
		detail.Responses = append(detail.Responses, ticketResponse(&responses[i]))
	}
	for _, entry := range approvals {
		detail.Approvals = append(detail.Approvals, dto.ApprovalLogResponse{
			ID:         entry.ID,
			ApprovedBy: entry.ApprovedBy,
			ApprovedAt: entry.ApprovedAt,
			Decision:   string(entry.Decision),
			Source:     entry.Source,
			Remarks:    entry.Remarks,
		})
	}
	return detail
}

func ticketResponse(resp *domain.TicketResponse) dto.TicketResponseResponse {
	return dto.TicketResponseResponse{
		ID:        resp.ID,
		AuthorID:  resp.AuthorID,
		Body:      resp.Body,
		CreatedAt: resp.CreatedAt,
	}
}
