package reservations

import (
	"testing"

	"github.com/hanSiey/pppa-management-backend/internal/payments"
)

func ledger(amounts ...float64) []payments.Payment {
	entries := make([]payments.Payment, 0, len(amounts))
	for _, amount := range amounts {
		entries = append(entries, payments.Payment{Amount: amount, Status: payments.StatusCompleted})
	}
	return entries
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	t.Run("empty ledger stays reserved", func(t *testing.T) {
		amountPaid, status := Reconcile(StatusReserved, 1000, nil)
		if amountPaid != 0 {
			t.Fatalf("expected amount paid 0, got %v", amountPaid)
		}
		if status != StatusReserved {
			t.Fatalf("expected status %s, got %s", StatusReserved, status)
		}
	})

	t.Run("any completed payment confirms", func(t *testing.T) {
		amountPaid, status := Reconcile(StatusReserved, 1000, ledger(250))
		if amountPaid != 250 {
			t.Fatalf("expected amount paid 250, got %v", amountPaid)
		}
		if status != StatusConfirmed {
			t.Fatalf("expected status %s, got %s", StatusConfirmed, status)
		}
	})

	t.Run("payment below deposit still confirms", func(t *testing.T) {
		// Deposit would be 500 for 2 tickets at a 250 fee; 50 is far short of
		// it, yet a partial payment always moves the reservation forward.
		_, status := Reconcile(StatusReserved, 1000, ledger(50))
		if status != StatusConfirmed {
			t.Fatalf("expected status %s, got %s", StatusConfirmed, status)
		}
	})

	t.Run("full payment completes", func(t *testing.T) {
		amountPaid, status := Reconcile(StatusConfirmed, 1000, ledger(400, 600))
		if amountPaid != 1000 {
			t.Fatalf("expected amount paid 1000, got %v", amountPaid)
		}
		if status != StatusCompleted {
			t.Fatalf("expected status %s, got %s", StatusCompleted, status)
		}
	})

	t.Run("overpayment completes and keeps the surplus on record", func(t *testing.T) {
		amountPaid, status := Reconcile(StatusConfirmed, 1000, ledger(800, 400))
		if amountPaid != 1200 {
			t.Fatalf("expected amount paid 1200, got %v", amountPaid)
		}
		if status != StatusCompleted {
			t.Fatalf("expected status %s, got %s", StatusCompleted, status)
		}
	})

	t.Run("non-completed entries never count", func(t *testing.T) {
		entries := []payments.Payment{
			{Amount: 300, Status: payments.StatusPending},
			{Amount: 300, Status: payments.StatusFailed},
			{Amount: 300, Status: payments.StatusRefunded},
			{Amount: 100, Status: payments.StatusCompleted},
		}
		amountPaid, status := Reconcile(StatusConfirmed, 1000, entries)
		if amountPaid != 100 {
			t.Fatalf("expected amount paid 100, got %v", amountPaid)
		}
		if status != StatusConfirmed {
			t.Fatalf("expected status %s, got %s", StatusConfirmed, status)
		}
	})

	t.Run("refund flip demotes a completed reservation", func(t *testing.T) {
		entries := []payments.Payment{
			{Amount: 1000, Status: payments.StatusRefunded},
		}
		amountPaid, status := Reconcile(StatusCompleted, 1000, entries)
		if amountPaid != 0 {
			t.Fatalf("expected amount paid 0, got %v", amountPaid)
		}
		if status != StatusReserved {
			t.Fatalf("expected status %s, got %s", StatusReserved, status)
		}
	})

	t.Run("payment against a cancelled reservation confirms it", func(t *testing.T) {
		amountPaid, status := Reconcile(StatusCancelled, 1000, ledger(250))
		if amountPaid != 250 {
			t.Fatalf("expected amount paid 250, got %v", amountPaid)
		}
		if status != StatusConfirmed {
			t.Fatalf("expected status %s, got %s", StatusConfirmed, status)
		}
	})

	t.Run("full payment against a cancelled reservation completes it", func(t *testing.T) {
		_, status := Reconcile(StatusCancelled, 1000, ledger(1000))
		if status != StatusCompleted {
			t.Fatalf("expected status %s, got %s", StatusCompleted, status)
		}
	})

	t.Run("unpaid cancelled reservation keeps its status", func(t *testing.T) {
		amountPaid, status := Reconcile(StatusCancelled, 1000, nil)
		if amountPaid != 0 {
			t.Fatalf("expected amount paid 0, got %v", amountPaid)
		}
		if status != StatusCancelled {
			t.Fatalf("expected status %s, got %s", StatusCancelled, status)
		}
	})

	t.Run("unpaid attended reservation keeps its status", func(t *testing.T) {
		_, status := Reconcile(StatusAttended, 1000, nil)
		if status != StatusAttended {
			t.Fatalf("expected status %s, got %s", StatusAttended, status)
		}
	})

	t.Run("reconcile is idempotent", func(t *testing.T) {
		entries := ledger(400, 600)
		firstAmount, firstStatus := Reconcile(StatusReserved, 1000, entries)
		secondAmount, secondStatus := Reconcile(firstStatus, 1000, entries)
		if firstAmount != secondAmount || firstStatus != secondStatus {
			t.Fatalf("expected stable result, got (%v,%s) then (%v,%s)", firstAmount, firstStatus, secondAmount, secondStatus)
		}
	})

	t.Run("exact boundary completes", func(t *testing.T) {
		_, status := Reconcile(StatusReserved, 500, ledger(500))
		if status != StatusCompleted {
			t.Fatalf("expected status %s, got %s", StatusCompleted, status)
		}
	})
}

func TestDepositRequirement(t *testing.T) {
	t.Parallel()

	if got := DepositRequirement(250, 4); got != 1000 {
		t.Fatalf("expected deposit 1000, got %v", got)
	}
	if got := DepositRequirement(0, 4); got != 0 {
		t.Fatalf("expected deposit 0, got %v", got)
	}

	if !DepositMet(1000, 250, 4) {
		t.Fatalf("expected deposit met at the exact amount")
	}
	if DepositMet(999.99, 250, 4) {
		t.Fatalf("expected deposit not met just below the requirement")
	}
	if !DepositMet(0, 0, 4) {
		t.Fatalf("expected zero fee to always be met")
	}
}

func TestStatusGuards(t *testing.T) {
	t.Parallel()

	terminal := []Status{StatusCancelled, StatusAttended}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
		if status.CanBeCancelled() {
			t.Fatalf("expected %s to not be cancellable", status)
		}
	}

	active := []Status{StatusReserved, StatusPending, StatusConfirmed, StatusCompleted}
	for _, status := range active {
		if status.IsTerminal() {
			t.Fatalf("expected %s to not be terminal", status)
		}
		if !status.CanBeCancelled() {
			t.Fatalf("expected %s to be cancellable", status)
		}
	}

	if StatusReserved.CanMarkAttended() || StatusPending.CanMarkAttended() {
		t.Fatalf("unpaid reservations must not be checked in")
	}
	if !StatusConfirmed.CanMarkAttended() || !StatusCompleted.CanMarkAttended() {
		t.Fatalf("paid reservations must be checkable")
	}

	if StatusCancelled.CountsAgainstCapacity() {
		t.Fatalf("cancelled reservations must release their tickets")
	}
	for _, status := range []Status{StatusReserved, StatusPending, StatusConfirmed, StatusCompleted, StatusAttended} {
		if !status.CountsAgainstCapacity() {
			t.Fatalf("expected %s to hold capacity", status)
		}
	}
}
