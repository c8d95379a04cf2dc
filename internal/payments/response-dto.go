package payments

type PaginatedPayments struct {
	Payments   []Payment `json:"payments"`
	TotalCount int64     `json:"total_count"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

type MethodStats struct {
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

// PaymentStats summarizes completed ledger entries for the staff dashboard.
type PaymentStats struct {
	TodayCount int64                  `json:"today_count"`
	TodayTotal float64                `json:"today_total"`
	WeekCount  int64                  `json:"week_count"`
	WeekTotal  float64                `json:"week_total"`
	MonthCount int64                  `json:"month_count"`
	MonthTotal float64                `json:"month_total"`
	ByMethod   map[string]MethodStats `json:"by_method"`
}
