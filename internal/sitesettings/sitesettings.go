// Package sitesettings serves clinic-level settings through a time-boxed
// cache so every dashboard does not hammer the same endpoint.
package sitesettings

import (
	"context"

	"github.com/codekarmatech/healthyphysio-sub004/internal/restclient"
)

// Settings are the clinic-level knobs the API owns. The discrepancy
// tolerance is server-owned and surfaced for display only.
type Settings struct {
	ClinicName                  string  `json:"clinic_name"`
	Currency                    string  `json:"currency"`
	MinimumSessionFee           float64 `json:"minimum_session_fee"`
	DefaultPlatformFeePct       float64 `json:"default_platform_fee_pct"`
	DiscrepancyToleranceMinutes int     `json:"discrepancy_tolerance_minutes"`
	AttendanceEditWindowDays    int     `json:"attendance_edit_window_days"`
}

type Gateway interface {
	Fetch(ctx context.Context) (Settings, error)
}

type httpGateway struct {
	client *restclient.Client
}

func NewHTTPGateway(client *restclient.Client) Gateway {
	return &httpGateway{client: client}
}

func (g *httpGateway) Fetch(ctx context.Context) (Settings, error) {
	var out Settings
	if err := g.client.Get(ctx, "/site-settings", nil, &out); err != nil {
		return Settings{}, err
	}
	return out, nil
}
