package reservations

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nestora/nestora-backend/pkg/enums"
)

// Refund tiers, measured in whole days before the stay starts.
const (
	fullRefundWindowDays = 7
	noRefundWindowDays   = 3
)

var halfRefundRate = decimal.NewFromFloat(0.5)

// ComputeRefund returns the refundable portion of a deposit when a
// reservation is cancelled at `now`:
//
//	more than 7 days before the start date: the full deposit
//	more than 3 and up to 7 days before:    half the deposit
//	3 days or fewer before:                 nothing
//
// Nothing was collected when the reservation is not paid, so the refund is
// zero regardless of timing.
func ComputeRefund(depositCents int64, paymentStatus enums.PaymentStatus, startDate, now time.Time) int64 {
	if paymentStatus != enums.PaymentStatusPaid || depositCents <= 0 {
		return 0
	}

	days := DaysUntilStart(startDate, now)
	switch {
	case days > fullRefundWindowDays:
		return depositCents
	case days > noRefundWindowDays:
		return decimal.NewFromInt(depositCents).Mul(halfRefundRate).Round(0).IntPart()
	default:
		return 0
	}
}

// DaysUntilStart counts the days remaining before startDate, rounding partial
// days up. A start date in the past counts as zero.
func DaysUntilStart(startDate, now time.Time) int {
	diff := startDate.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}
