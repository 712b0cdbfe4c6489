package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codekarmatech/healthyphysio-sub004/internal/validate"
)

var (
	ErrReasonRequired = errors.New("a reason is required to reject")
	ErrNotAttempted   = errors.New("not attempted")
	ErrInvalidStatus  = errors.New("invalid attendance status")
)

// Service drives the admin approval queues and the therapist submission
// flows. After every successful mutation the affected pending collection is
// re-fetched from the API and returned; the server stays the source of truth
// and the caller never trusts an optimistic local edit.
type Service struct {
	gw  Gateway
	log *slog.Logger
}

func NewService(gw Gateway, log *slog.Logger) *Service {
	return &Service{gw: gw, log: log.With("component", "attendance")}
}

func (s *Service) PendingRecords(ctx context.Context) ([]AttendanceRecord, error) {
	records, err := s.gw.PendingRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending attendance: %w", err)
	}
	return records, nil
}

// Approve approves one record and returns the re-fetched pending list.
func (s *Service) Approve(ctx context.Context, id string) ([]AttendanceRecord, error) {
	if err := s.gw.ApproveRecord(ctx, id); err != nil {
		return nil, fmt.Errorf("approve attendance %s: %w", id, err)
	}
	return s.PendingRecords(ctx)
}

// BulkApprove approves the selected records one request at a time and
// reports a per-item outcome. A cancelled context stops the loop; the
// remainder comes back as not attempted. The refreshed pending list follows
// the outcomes so callers can render server truth directly.
func (s *Service) BulkApprove(ctx context.Context, ids []string) ([]Outcome, []AttendanceRecord, error) {
	outcomes := s.bulk(ctx, ids, s.gw.ApproveRecord)

	records, err := s.PendingRecords(ctx)
	if err != nil {
		return outcomes, nil, err
	}
	return outcomes, records, nil
}

// BulkDelete removes the selected records one request at a time.
func (s *Service) BulkDelete(ctx context.Context, ids []string) ([]Outcome, []AttendanceRecord, error) {
	outcomes := s.bulk(ctx, ids, s.gw.DeleteRecord)

	records, err := s.PendingRecords(ctx)
	if err != nil {
		return outcomes, nil, err
	}
	return outcomes, records, nil
}

func (s *Service) bulk(ctx context.Context, ids []string, op func(context.Context, string) error) []Outcome {
	outcomes := make([]Outcome, 0, len(ids))
	for i, id := range ids {
		if ctx.Err() != nil {
			for _, rest := range ids[i:] {
				outcomes = append(outcomes, Outcome{ID: rest, Err: fmt.Errorf("%w: %v", ErrNotAttempted, ctx.Err())})
			}
			break
		}
		outcomes = append(outcomes, Outcome{ID: id, Err: op(ctx, id)})
	}

	success, failed := Counts(outcomes)
	if failed > 0 {
		s.log.WarnContext(ctx, "bulk operation partially failed",
			"total", len(ids), "success", success, "failed", failed)
	}
	return outcomes
}

func (s *Service) ChangeRequests(ctx context.Context) ([]ChangeRequest, error) {
	requests, err := s.gw.ChangeRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return requests, nil
}

func (s *Service) ApproveChangeRequest(ctx context.Context, id string) ([]ChangeRequest, error) {
	if err := s.gw.ApproveChangeRequest(ctx, id); err != nil {
		return nil, fmt.Errorf("approve change request %s: %w", id, err)
	}
	return s.ChangeRequests(ctx)
}

func (s *Service) RejectChangeRequest(ctx context.Context, id, reason string) ([]ChangeRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	if err := s.gw.RejectChangeRequest(ctx, id, reason); err != nil {
		return nil, fmt.Errorf("reject change request %s: %w", id, err)
	}
	return s.ChangeRequests(ctx)
}

func (s *Service) LeaveApplications(ctx context.Context) ([]LeaveApplication, error) {
	leaves, err := s.gw.LeaveApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leave applications: %w", err)
	}
	return leaves, nil
}

func (s *Service) ApproveLeave(ctx context.Context, id string) ([]LeaveApplication, error) {
	if err := s.gw.ApproveLeave(ctx, id); err != nil {
		return nil, fmt.Errorf("approve leave %s: %w", id, err)
	}
	return s.LeaveApplications(ctx)
}

// RejectLeave requires a non-empty reason. The check happens before any
// network call; an empty or cancelled prompt upstream never reaches the API.
func (s *Service) RejectLeave(ctx context.Context, id, reason string) ([]LeaveApplication, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	if err := s.gw.RejectLeave(ctx, id, reason); err != nil {
		return nil, fmt.Errorf("reject leave %s: %w", id, err)
	}
	return s.LeaveApplications(ctx)
}

func (s *Service) Discrepancies(ctx context.Context) ([]SessionTimeDiscrepancy, error) {
	discrepancies, err := s.gw.Discrepancies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list discrepancies: %w", err)
	}
	return discrepancies, nil
}

// ResolveDiscrepancy marks a discrepancy resolved; notes are optional and
// resolution is one-way.
func (s *Service) ResolveDiscrepancy(ctx context.Context, id, notes string) ([]SessionTimeDiscrepancy, error) {
	if err := s.gw.ResolveDiscrepancy(ctx, id, notes); err != nil {
		return nil, fmt.Errorf("resolve discrepancy %s: %w", id, err)
	}
	return s.Discrepancies(ctx)
}

// SubmitRecord files one therapist-day.
func (s *Service) SubmitRecord(ctx context.Context, input SubmitInput) (AttendanceRecord, error) {
	if err := validate.Struct(input); err != nil {
		return AttendanceRecord{}, fmt.Errorf("validate attendance submission: %w", err)
	}
	if !input.Status.Valid() {
		return AttendanceRecord{}, fmt.Errorf("%w: %q", ErrInvalidStatus, input.Status)
	}

	record, err := s.gw.SubmitRecord(ctx, input)
	if err != nil {
		return AttendanceRecord{}, fmt.Errorf("submit attendance: %w", err)
	}
	return record, nil
}

func (s *Service) RequestChange(ctx context.Context, input ChangeInput) (ChangeRequest, error) {
	if err := validate.Struct(input); err != nil {
		return ChangeRequest{}, fmt.Errorf("validate change request: %w", err)
	}
	if !input.RequestedStatus.Valid() {
		return ChangeRequest{}, fmt.Errorf("%w: %q", ErrInvalidStatus, input.RequestedStatus)
	}

	request, err := s.gw.RequestChange(ctx, input)
	if err != nil {
		return ChangeRequest{}, fmt.Errorf("request attendance change: %w", err)
	}
	return request, nil
}

func (s *Service) ApplyForLeave(ctx context.Context, input LeaveInput) (LeaveApplication, error) {
	if err := validate.Struct(input); err != nil {
		return LeaveApplication{}, fmt.Errorf("validate leave application: %w", err)
	}
	if input.EndDate < input.StartDate {
		return LeaveApplication{}, fmt.Errorf("leave end date %s is before start date %s", input.EndDate, input.StartDate)
	}

	leave, err := s.gw.ApplyForLeave(ctx, input)
	if err != nil {
		return LeaveApplication{}, fmt.Errorf("apply for leave: %w", err)
	}
	return leave, nil
}

func (s *Service) MonthlySummary(ctx context.Context, therapistID, month string) (MonthlySummary, error) {
	summary, err := s.gw.MonthlySummary(ctx, therapistID, month)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("load monthly summary: %w", err)
	}
	return summary, nil
}
