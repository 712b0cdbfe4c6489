package scheduling

import (
	"context"
	"fmt"
	"net/url"

	"github.com/codekarmatech/healthyphysio-sub004/internal/restclient"
)

// Gateway is the scheduling slice of the clinic API.
type Gateway interface {
	AppointmentsByPatient(ctx context.Context, patientID string) ([]Appointment, error)
	AppointmentsByTherapist(ctx context.Context, therapistID, date string) ([]Appointment, error)
	Therapists(ctx context.Context) ([]Therapist, error)

	Availability(ctx context.Context, therapistID string) ([]AvailabilityEntry, error)
	MarkAvailability(ctx context.Context, entry AvailabilityEntry) error
	RemoveAvailability(ctx context.Context, therapistID, date string) error

	ReportSessionTime(ctx context.Context, sessionCode string, minutes int) error
	ConfirmSessionTime(ctx context.Context, sessionCode string, minutes int) error
}

type httpGateway struct {
	client *restclient.Client
}

func NewHTTPGateway(client *restclient.Client) Gateway {
	return &httpGateway{client: client}
}

func (g *httpGateway) AppointmentsByPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	query := url.Values{"patient_id": []string{patientID}}

	var out []Appointment
	if _, err := g.client.GetList(ctx, "/scheduling/appointments", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *httpGateway) AppointmentsByTherapist(ctx context.Context, therapistID, date string) ([]Appointment, error) {
	query := url.Values{"therapist_id": []string{therapistID}}
	if date != "" {
		query.Set("date", date)
	}

	var out []Appointment
	if _, err := g.client.GetList(ctx, "/scheduling/appointments", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Therapists hits the one endpoint that returns a bare array.
func (g *httpGateway) Therapists(ctx context.Context) ([]Therapist, error) {
	var out []Therapist
	if _, err := g.client.GetList(ctx, "/users/therapists", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *httpGateway) Availability(ctx context.Context, therapistID string) ([]AvailabilityEntry, error) {
	query := url.Values{"therapist_id": []string{therapistID}}

	var out []AvailabilityEntry
	if _, err := g.client.GetList(ctx, "/scheduling/availability", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *httpGateway) MarkAvailability(ctx context.Context, entry AvailabilityEntry) error {
	return g.client.Post(ctx, "/scheduling/availability", entry, nil)
}

func (g *httpGateway) RemoveAvailability(ctx context.Context, therapistID, date string) error {
	return g.client.Delete(ctx, fmt.Sprintf("/scheduling/availability/%s/%s", therapistID, date))
}

type sessionTimeBody struct {
	Minutes int `json:"minutes"`
}

func (g *httpGateway) ReportSessionTime(ctx context.Context, sessionCode string, minutes int) error {
	return g.client.Post(ctx, "/scheduling/sessions/"+sessionCode+"/report", sessionTimeBody{Minutes: minutes}, nil)
}

func (g *httpGateway) ConfirmSessionTime(ctx context.Context, sessionCode string, minutes int) error {
	return g.client.Post(ctx, "/scheduling/sessions/"+sessionCode+"/confirm", sessionTimeBody{Minutes: minutes}, nil)
}
