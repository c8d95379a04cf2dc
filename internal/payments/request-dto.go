package payments

type RecordPaymentRequest struct {
	ReservationID string  `json:"reservation_id" binding:"required,uuid"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Currency      string  `json:"currency" binding:"omitempty,len=3"`
	Status        string  `json:"status" binding:"omitempty,oneof=pending completed failed refunded"`
	Method        string  `json:"method" binding:"omitempty,oneof=bank_transfer credit_card debit_card cash"`
	TransactionID string  `json:"transaction_id" binding:"omitempty,max=100"`
	Notes         string  `json:"notes" binding:"omitempty,max=2000"`
}

type MarkCompletedRequest struct {
	TransactionID string `json:"transaction_id" binding:"omitempty,max=100"`
}

type RequestRefundRequest struct {
	PaymentID string  `json:"payment_id" binding:"required,uuid"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Reason    string  `json:"reason" binding:"omitempty,max=2000"`
}

type ReviewRefundRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=2000"`
}

type BankingDetailRequest struct {
	BankName      string `json:"bank_name" binding:"required,max=100"`
	AccountName   string `json:"account_name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"required,max=50"`
	BranchCode    string `json:"branch_code" binding:"omitempty,max=20"`
	AccountType   string `json:"account_type" binding:"omitempty,max=50"`
	Reference     string `json:"reference" binding:"omitempty,max=100"`
	Active        *bool  `json:"active"`
}

type PaymentListQuery struct {
	Page          int    `form:"page" binding:"omitempty,min=1"`
	Limit         int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status        string `form:"status"`
	Method        string `form:"method"`
	ReservationID string `form:"reservation_id" binding:"omitempty,uuid"`
}
