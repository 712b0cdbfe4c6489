package earnings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/codekarmatech/healthyphysio-sub004/internal/restclient"
	"github.com/codekarmatech/healthyphysio-sub004/internal/validate"
)

var (
	ErrAlreadyApplied = errors.New("distribution already applied to this appointment")
	ErrConfigNotFound = errors.New("distribution config not found")
)

// Settings supplies the clinic-level knobs the calculator needs for its local
// preview. The API applies the same thresholds authoritatively.
type Settings interface {
	MinimumSessionFee(ctx context.Context) (float64, error)
}

type Service struct {
	gw       Gateway
	settings Settings
	log      *slog.Logger
}

func NewService(gw Gateway, settings Settings, log *slog.Logger) *Service {
	return &Service{
		gw:       gw,
		settings: settings,
		log:      log.With("component", "earnings"),
	}
}

// Calculate validates the input, computes a local preview, then asks the API
// for the authoritative result. Split-sum violations are rejected before any
// network call, in named-config and manual mode alike. A drift between the
// preview and the authoritative amounts is logged but the server result wins.
func (s *Service) Calculate(ctx context.Context, input CalculationInput) (DistributionResult, error) {
	if err := validate.Struct(input); err != nil {
		return DistributionResult{}, fmt.Errorf("validate calculation input: %w", err)
	}

	split, err := s.resolveSplit(ctx, input)
	if err != nil {
		return DistributionResult{}, err
	}

	minimumFee, err := s.settings.MinimumSessionFee(ctx)
	if err != nil {
		return DistributionResult{}, fmt.Errorf("load minimum session fee: %w", err)
	}

	preview, err := Compute(input.Fee, split, minimumFee)
	if err != nil {
		return DistributionResult{}, err
	}

	result, err := s.gw.Calculate(ctx, input)
	if err != nil {
		return DistributionResult{}, fmt.Errorf("calculate distribution: %w", err)
	}

	if drift := amountDrift(preview, result); drift > 0.01 {
		s.log.WarnContext(ctx, "preview drifted from authoritative result",
			"appointment_id", input.AppointmentID, "drift", drift)
	}

	return result, nil
}

// Apply persists a calculated result against an appointment. The API rejects
// a second apply for the same appointment; that surfaces as ErrAlreadyApplied.
func (s *Service) Apply(ctx context.Context, appointmentID string, result DistributionResult) error {
	if appointmentID == "" {
		return fmt.Errorf("apply distribution: appointment id is required")
	}

	if err := s.gw.Apply(ctx, appointmentID, result); err != nil {
		if restclient.IsConflict(err) {
			return fmt.Errorf("apply distribution: %w", ErrAlreadyApplied)
		}
		return fmt.Errorf("apply distribution: %w", err)
	}

	s.log.InfoContext(ctx, "distribution applied",
		"appointment_id", appointmentID, "total", result.Total)
	return nil
}

func (s *Service) resolveSplit(ctx context.Context, input CalculationInput) (PercentSplit, error) {
	if input.Manual != nil {
		return *input.Manual, nil
	}

	cfg, err := s.gw.Config(ctx, input.ConfigID)
	if err != nil {
		if restclient.IsNotFound(err) {
			return PercentSplit{}, fmt.Errorf("load config %s: %w", input.ConfigID, ErrConfigNotFound)
		}
		return PercentSplit{}, fmt.Errorf("load config %s: %w", input.ConfigID, err)
	}
	return cfg.PercentSplit, nil
}

func (s *Service) Configs(ctx context.Context) ([]DistributionConfig, error) {
	configs, err := s.gw.Configs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list distribution configs: %w", err)
	}
	return configs, nil
}

// SaveConfig creates or updates a named split after validating it the same
// way a calculation would.
func (s *Service) SaveConfig(ctx context.Context, cfg DistributionConfig) (DistributionConfig, error) {
	if err := validate.Struct(cfg); err != nil {
		return DistributionConfig{}, fmt.Errorf("validate distribution config: %w", err)
	}
	if _, err := Compute(1, cfg.PercentSplit, 0); err != nil {
		return DistributionConfig{}, fmt.Errorf("validate distribution config: %w", err)
	}

	if cfg.ID == "" {
		saved, err := s.gw.CreateConfig(ctx, cfg)
		if err != nil {
			return DistributionConfig{}, fmt.Errorf("create distribution config: %w", err)
		}
		return saved, nil
	}

	saved, err := s.gw.UpdateConfig(ctx, cfg)
	if err != nil {
		return DistributionConfig{}, fmt.Errorf("update distribution config: %w", err)
	}
	return saved, nil
}

func (s *Service) Summaries(ctx context.Context, from, to string) ([]EarningsSummary, error) {
	summaries, err := s.gw.Summaries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list earnings summaries: %w", err)
	}
	return summaries, nil
}

func amountDrift(a, b DistributionResult) float64 {
	drift := math.Abs(a.AdminAmount - b.AdminAmount)
	drift = math.Max(drift, math.Abs(a.TherapistAmount-b.TherapistAmount))
	drift = math.Max(drift, math.Abs(a.DoctorAmount-b.DoctorAmount))
	drift = math.Max(drift, math.Abs(a.PlatformFee-b.PlatformFee))
	return drift
}
