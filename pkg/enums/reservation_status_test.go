package enums

import "testing"

func TestReservationStatusTransitions(t *testing.T) {
	t.Parallel()

	allowed := map[ReservationStatus][]ReservationStatus{
		ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
		ReservationStatusConfirmed: {ReservationStatusCancelled, ReservationStatusCompleted},
		ReservationStatusCancelled: {},
		ReservationStatusCompleted: {},
	}

	for from, targets := range allowed {
		permitted := map[ReservationStatus]bool{}
		for _, target := range targets {
			permitted[target] = true
		}
		for _, to := range validReservationStatuses {
			if got := from.CanTransitionTo(to); got != permitted[to] {
				t.Fatalf("%s -> %s: expected %v, got %v", from, to, permitted[to], got)
			}
		}
	}
}

func TestReservationStatusTerminal(t *testing.T) {
	t.Parallel()

	if ReservationStatusPending.IsTerminal() || ReservationStatusConfirmed.IsTerminal() {
		t.Fatal("active states must not be terminal")
	}
	if !ReservationStatusCancelled.IsTerminal() || !ReservationStatusCompleted.IsTerminal() {
		t.Fatal("cancelled and completed are terminal")
	}
}

func TestParseReservationStatus(t *testing.T) {
	t.Parallel()

	status, err := ParseReservationStatus("confirmed")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if status != ReservationStatusConfirmed {
		t.Fatalf("unexpected status %s", status)
	}

	if _, err := ParseReservationStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
