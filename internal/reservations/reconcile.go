package reservations

import (
	"github.com/hanSiey/pppa-management-backend/internal/payments"
)

// Reconcile derives a reservation's amount paid and status from its payment
// ledger. It is a pure function: callers persist the result themselves,
// inside the same transaction as whatever ledger mutation triggered it.
//
// Decision order:
//  1. amount paid is the sum of completed ledger entries, nothing else
//  2. fully paid moves to completed
//  3. any payment at all moves to confirmed, even below the deposit
//     requirement (reservation_fee x quantity)
//  4. unpaid moves back to reserved, unless the reservation is already
//     cancelled or attended, which stay as they are
//
// The payment branches run even for cancelled and attended reservations:
// money arriving against a terminal reservation still flips it, and only
// the unpaid case leaves a terminal status alone.
func Reconcile(current Status, totalAmount float64, ledger []payments.Payment) (amountPaid float64, status Status) {
	for i := range ledger {
		if ledger[i].Status.Counted() {
			amountPaid += ledger[i].Amount
		}
	}

	switch {
	case amountPaid >= totalAmount:
		return amountPaid, StatusCompleted
	case amountPaid > 0:
		return amountPaid, StatusConfirmed
	case current.IsTerminal():
		return amountPaid, current
	default:
		return amountPaid, StatusReserved
	}
}

// DepositRequirement is the per-reservation deposit considered sufficient to
// secure a spot. It is informational only: reconciliation confirms on any
// payment regardless of whether the deposit is met.
func DepositRequirement(reservationFee float64, quantity int) float64 {
	return reservationFee * float64(quantity)
}

// DepositMet reports whether the paid amount covers the deposit requirement.
func DepositMet(amountPaid, reservationFee float64, quantity int) bool {
	return amountPaid >= DepositRequirement(reservationFee, quantity)
}
