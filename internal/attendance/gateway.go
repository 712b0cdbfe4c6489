package attendance

import (
	"context"
	"net/url"

	"github.com/codekarmatech/healthyphysio-sub004/internal/restclient"
)

// Gateway is the attendance slice of the clinic API.
type Gateway interface {
	PendingRecords(ctx context.Context) ([]AttendanceRecord, error)
	ApproveRecord(ctx context.Context, id string) error
	DeleteRecord(ctx context.Context, id string) error
	SubmitRecord(ctx context.Context, input SubmitInput) (AttendanceRecord, error)

	ChangeRequests(ctx context.Context) ([]ChangeRequest, error)
	ApproveChangeRequest(ctx context.Context, id string) error
	RejectChangeRequest(ctx context.Context, id, reason string) error
	RequestChange(ctx context.Context, input ChangeInput) (ChangeRequest, error)

	LeaveApplications(ctx context.Context) ([]LeaveApplication, error)
	ApproveLeave(ctx context.Context, id string) error
	RejectLeave(ctx context.Context, id, reason string) error
	ApplyForLeave(ctx context.Context, input LeaveInput) (LeaveApplication, error)

	Discrepancies(ctx context.Context) ([]SessionTimeDiscrepancy, error)
	ResolveDiscrepancy(ctx context.Context, id, notes string) error

	MonthlySummary(ctx context.Context, therapistID, month string) (MonthlySummary, error)
}

type httpGateway struct {
	client *restclient.Client
}

func NewHTTPGateway(client *restclient.Client) Gateway {
	return &httpGateway{client: client}
}

type reasonBody struct {
	Reason string `json:"reason"`
}

type notesBody struct {
	Notes string `json:"notes,omitempty"`
}

func (g *httpGateway) PendingRecords(ctx context.Context) ([]AttendanceRecord, error) {
	var out []AttendanceRecord
	if _, err := g.client.GetList(ctx, "/attendance/records/pending", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *httpGateway) ApproveRecord(ctx context.Context, id string) error {
	return g.client.Post(ctx, "/attendance/records/"+id+"/approve", nil, nil)
}

func (g *httpGateway) DeleteRecord(ctx context.Context, id string) error {
	return g.client.Delete(ctx, "/attendance/records/"+id)
}

func (g *httpGateway) SubmitRecord(ctx context.Context, input SubmitInput) (AttendanceRecord, error) {
	var out AttendanceRecord
	if err := g.client.Post(ctx, "/attendance/records", input, &out); err != nil {
		return AttendanceRecord{}, err
	}
	return out, nil
}

func (g *httpGateway) ChangeRequests(ctx context.Context) ([]ChangeRequest, error) {
	var out []ChangeRequest
	query := url.Values{"status": []string{string(RequestPending)}}
	if _, err := g.client.GetList(ctx, "/attendance/change-requests", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *httpGateway) ApproveChangeRequest(ctx context.Context, id string) error {
	return g.client.Post(ctx, "/attendance/change-requests/"+id+"/approve", nil, nil)
}

func (g *httpGateway) RejectChangeRequest(ctx context.Context, id, reason string) error {
	return g.client.Post(ctx, "/attendance/change-requests/"+id+"/reject", reasonBody{Reason: reason}, nil)
}

func (g *httpGateway) RequestChange(ctx context.Context, input ChangeInput) (ChangeRequest, error) {
	var out ChangeRequest
	if err := g.client.Post(ctx, "/attendance/change-requests", input, &out); err != nil {
		return ChangeRequest{}, err
	}
	return out, nil
}

func (g *httpGateway) LeaveApplications(ctx context.Context) ([]LeaveApplication, error) {
	var out []LeaveApplication
	query := url.Values{"status": []string{string(RequestPending)}}
	if _, err := g.client.GetList(ctx, "/attendance/leaves", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *httpGateway) ApproveLeave(ctx context.Context, id string) error {
	return g.client.Post(ctx, "/attendance/leaves/"+id+"/approve", nil, nil)
}

func (g *httpGateway) RejectLeave(ctx context.Context, id, reason string) error {
	return g.client.Post(ctx, "/attendance/leaves/"+id+"/reject", reasonBody{Reason: reason}, nil)
}

func (g *httpGateway) ApplyForLeave(ctx context.Context, input LeaveInput) (LeaveApplication, error) {
	var out LeaveApplication
	if err := g.client.Post(ctx, "/attendance/leaves", input, &out); err != nil {
		return LeaveApplication{}, err
	}
	return out, nil
}

func (g *httpGateway) Discrepancies(ctx context.Context) ([]SessionTimeDiscrepancy, error) {
	var out []SessionTimeDiscrepancy
	if _, err := g.client.GetList(ctx, "/attendance/discrepancies", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *httpGateway) ResolveDiscrepancy(ctx context.Context, id, notes string) error {
	return g.client.Post(ctx, "/attendance/discrepancies/"+id+"/resolve", notesBody{Notes: notes}, nil)
}

func (g *httpGateway) MonthlySummary(ctx context.Context, therapistID, month string) (MonthlySummary, error) {
	query := url.Values{
		"therapist_id": []string{therapistID},
		"month":        []string{month},
	}

	var out MonthlySummary
	if err := g.client.Get(ctx, "/attendance/summary", query, &out); err != nil {
		return MonthlySummary{}, err
	}
	return out, nil
}
