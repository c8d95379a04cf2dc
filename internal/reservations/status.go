package reservations

type Status string

const (
	StatusReserved  Status = "reserved"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusAttended  Status = "attended"
)

// IsValid checks if the reservation status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusReserved, StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusAttended:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status sits outside the normal payment
// flow. Reconciliation leaves a terminal reservation alone only while its
// ledger stays empty; a completed payment still flips it.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusAttended
}

// CanBeCancelled checks if a reservation with this status can be cancelled
func (s Status) CanBeCancelled() bool {
	return !s.IsTerminal()
}

// CanMarkAttended checks if check-in is allowed from this status
func (s Status) CanMarkAttended() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

// CountsAgainstCapacity reports whether the reservation still holds tickets
func (s Status) CountsAgainstCapacity() bool {
	return s != StatusCancelled
}

type ProofStatus string

const (
	ProofPending  ProofStatus = "pending"
	ProofApproved ProofStatus = "approved"
	ProofRejected ProofStatus = "rejected"
)

func (s ProofStatus) IsValid() bool {
	switch s {
	case ProofPending, ProofApproved, ProofRejected:
		return true
	}
	return false
}

func (s ProofStatus) String() string {
	return string(s)
}

// IsReviewed reports whether a staff member has already acted on the proof
func (s ProofStatus) IsReviewed() bool {
	return s != ProofPending
}
