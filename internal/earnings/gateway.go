package earnings

import (
	"context"
	"fmt"
	"net/url"

	"github.com/codekarmatech/healthyphysio-sub004/internal/restclient"
)

// Gateway is the slice of the clinic API the calculator talks to. The API is
// the calculator of record; everything here is request/response relay.
type Gateway interface {
	Calculate(ctx context.Context, input CalculationInput) (DistributionResult, error)
	Apply(ctx context.Context, appointmentID string, result DistributionResult) error
	Configs(ctx context.Context) ([]DistributionConfig, error)
	Config(ctx context.Context, id string) (DistributionConfig, error)
	CreateConfig(ctx context.Context, cfg DistributionConfig) (DistributionConfig, error)
	UpdateConfig(ctx context.Context, cfg DistributionConfig) (DistributionConfig, error)
	Summaries(ctx context.Context, from, to string) ([]EarningsSummary, error)
}

type httpGateway struct {
	client *restclient.Client
}

func NewHTTPGateway(client *restclient.Client) Gateway {
	return &httpGateway{client: client}
}

func (g *httpGateway) Calculate(ctx context.Context, input CalculationInput) (DistributionResult, error) {
	var out DistributionResult
	if err := g.client.Post(ctx, "/earnings/calculate", input, &out); err != nil {
		return DistributionResult{}, err
	}
	return out, nil
}

func (g *httpGateway) Apply(ctx context.Context, appointmentID string, result DistributionResult) error {
	path := fmt.Sprintf("/earnings/appointments/%s/apply", appointmentID)
	return g.client.Post(ctx, path, result, nil)
}

func (g *httpGateway) Configs(ctx context.Context) ([]DistributionConfig, error) {
	var out []DistributionConfig
	if _, err := g.client.GetList(ctx, "/earnings/configs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *httpGateway) Config(ctx context.Context, id string) (DistributionConfig, error) {
	var out DistributionConfig
	if err := g.client.Get(ctx, "/earnings/configs/"+id, nil, &out); err != nil {
		return DistributionConfig{}, err
	}
	return out, nil
}

func (g *httpGateway) CreateConfig(ctx context.Context, cfg DistributionConfig) (DistributionConfig, error) {
	var out DistributionConfig
	if err := g.client.Post(ctx, "/earnings/configs", cfg, &out); err != nil {
		return DistributionConfig{}, err
	}
	return out, nil
}

func (g *httpGateway) UpdateConfig(ctx context.Context, cfg DistributionConfig) (DistributionConfig, error) {
	var out DistributionConfig
	if err := g.client.Put(ctx, "/earnings/configs/"+cfg.ID, cfg, &out); err != nil {
		return DistributionConfig{}, err
	}
	return out, nil
}

func (g *httpGateway) Summaries(ctx context.Context, from, to string) ([]EarningsSummary, error) {
	query := url.Values{}
	if from != "" {
		query.Set("from", from)
	}
	if to != "" {
		query.Set("to", to)
	}

	var out []EarningsSummary
	if _, err := g.client.GetList(ctx, "/earnings/summary", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}
