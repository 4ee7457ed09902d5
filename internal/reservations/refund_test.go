package reservations

import (
	"testing"
	"time"

	"github.com/nestora/nestora-backend/pkg/enums"
)

func TestComputeRefundTiers(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		deposit  int64
		paid     enums.PaymentStatus
		daysOut  int
		expected int64
	}{
		{name: "ten days out refunds full deposit", deposit: 100_000, paid: enums.PaymentStatusPaid, daysOut: 10, expected: 100_000},
		{name: "eight days out refunds full deposit", deposit: 100_000, paid: enums.PaymentStatusPaid, daysOut: 8, expected: 100_000},
		{name: "seven days out refunds half", deposit: 100_000, paid: enums.PaymentStatusPaid, daysOut: 7, expected: 50_000},
		{name: "five days out refunds half", deposit: 100_000, paid: enums.PaymentStatusPaid, daysOut: 5, expected: 50_000},
		{name: "four days out refunds half", deposit: 100_000, paid: enums.PaymentStatusPaid, daysOut: 4, expected: 50_000},
		{name: "three days out refunds nothing", deposit: 100_000, paid: enums.PaymentStatusPaid, daysOut: 3, expected: 0},
		{name: "one day out refunds nothing", deposit: 100_000, paid: enums.PaymentStatusPaid, daysOut: 1, expected: 0},
		{name: "start already passed refunds nothing", deposit: 100_000, paid: enums.PaymentStatusPaid, daysOut: -2, expected: 0},
		{name: "unpaid reservation refunds nothing", deposit: 100_000, paid: enums.PaymentStatusPending, daysOut: 10, expected: 0},
		{name: "zero deposit refunds nothing", deposit: 0, paid: enums.PaymentStatusPaid, daysOut: 10, expected: 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			start := now.AddDate(0, 0, tc.daysOut)
			got := ComputeRefund(tc.deposit, tc.paid, start, now)
			if got != tc.expected {
				t.Fatalf("expected refund %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestComputeRefundRoundsHalfCents(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, 5)

	// 1001 / 2 = 500.5, rounded half-up.
	got := ComputeRefund(1001, enums.PaymentStatusPaid, start, now)
	if got != 501 {
		t.Fatalf("expected 501, got %d", got)
	}
}

func TestDaysUntilStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := DaysUntilStart(now.Add(-time.Hour), now); got != 0 {
		t.Fatalf("past start should count as 0, got %d", got)
	}
	if got := DaysUntilStart(now.Add(time.Hour), now); got != 1 {
		t.Fatalf("partial day should round up to 1, got %d", got)
	}
	if got := DaysUntilStart(now.AddDate(0, 0, 7), now); got != 7 {
		t.Fatalf("expected 7 days, got %d", got)
	}
	if got := DaysUntilStart(now.AddDate(0, 0, 7).Add(time.Minute), now); got != 8 {
		t.Fatalf("a minute past 7 days rounds up to 8, got %d", got)
	}
}
