package earnings

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrFeeNotPositive     = errors.New("session fee must be greater than zero")
	ErrPercentOutOfRange  = errors.New("percentages must be between 0 and 100")
	ErrSplitSumNotHundred = errors.New("admin, therapist and doctor percentages must sum to 100")
)

// splitSumTolerance absorbs float input noise like 33.33+33.33+33.34.
var splitSumTolerance = decimal.NewFromFloat(0.01)

var hundred = decimal.NewFromInt(100)

// Compute turns a gross session fee and a percentage split into concrete
// amounts. The platform fee comes off the gross fee first; the three party
// percentages then apply to the remaining distributable amount. Each amount
// is rounded half-up to the cent independently, so the party amounts can
// drift from the distributable amount by a cent or two.
//
// Fees under minimumFee fall back to the small-session policy: the platform
// fee is waived and the entire fee goes to the therapist.
//
// This is the local preview; the API performs the calculation of record.
func Compute(fee float64, split PercentSplit, minimumFee float64) (DistributionResult, error) {
	if fee <= 0 {
		return DistributionResult{}, ErrFeeNotPositive
	}
	for _, pct := range []float64{split.AdminPct, split.TherapistPct, split.DoctorPct, split.PlatformFeePct} {
		if pct < 0 || pct > 100 {
			return DistributionResult{}, ErrPercentOutOfRange
		}
	}

	adminPct := decimal.NewFromFloat(split.AdminPct)
	therapistPct := decimal.NewFromFloat(split.TherapistPct)
	doctorPct := decimal.NewFromFloat(split.DoctorPct)

	partySum := adminPct.Add(therapistPct).Add(doctorPct)
	if partySum.Sub(hundred).Abs().GreaterThan(splitSumTolerance) {
		return DistributionResult{}, ErrSplitSumNotHundred
	}

	total := decimal.NewFromFloat(fee)

	if minimumFee > 0 && fee < minimumFee {
		amount, _ := total.Round(2).Float64()
		return DistributionResult{
			TherapistAmount:     amount,
			Total:               amount,
			DistributableAmount: amount,
			BelowThreshold:      true,
			AdminPct:            split.AdminPct,
			TherapistPct:        split.TherapistPct,
			DoctorPct:           split.DoctorPct,
		}, nil
	}

	platformFee := total.Mul(decimal.NewFromFloat(split.PlatformFeePct)).Div(hundred).Round(2)
	distributable := total.Sub(platformFee)

	adminAmount, _ := distributable.Mul(adminPct).Div(hundred).Round(2).Float64()
	therapistAmount, _ := distributable.Mul(therapistPct).Div(hundred).Round(2).Float64()
	doctorAmount, _ := distributable.Mul(doctorPct).Div(hundred).Round(2).Float64()

	platformOut, _ := platformFee.Float64()
	totalOut, _ := total.Round(2).Float64()
	distributableOut, _ := distributable.Float64()

	return DistributionResult{
		AdminAmount:         adminAmount,
		TherapistAmount:     therapistAmount,
		DoctorAmount:        doctorAmount,
		PlatformFee:         platformOut,
		Total:               totalOut,
		DistributableAmount: distributableOut,
		BelowThreshold:      false,
		AdminPct:            split.AdminPct,
		TherapistPct:        split.TherapistPct,
		DoctorPct:           split.DoctorPct,
	}, nil
}
