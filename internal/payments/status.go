package payments

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// IsValid checks if the payment status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Counted reports whether a ledger entry with this status contributes to a
// reservation's amount paid. Only completed entries do.
func (s Status) Counted() bool {
	return s == StatusCompleted
}

type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodCreditCard   Method = "credit_card"
	MethodDebitCard    Method = "debit_card"
	MethodCash         Method = "cash"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodBankTransfer, MethodCreditCard, MethodDebitCard, MethodCash:
		return true
	}
	return false
}

func (m Method) String() string {
	return string(m)
}

type RefundStatus string

const (
	RefundRequested RefundStatus = "requested"
	RefundApproved  RefundStatus = "approved"
	RefundProcessed RefundStatus = "processed"
	RefundRejected  RefundStatus = "rejected"
)

func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundRequested, RefundApproved, RefundProcessed, RefundRejected:
		return true
	}
	return false
}

func (s RefundStatus) String() string {
	return string(s)
}
