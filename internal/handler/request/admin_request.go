package request

type SetAccountStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active suspended"`
}

// SetSpendingLimitRequest 指针区分 "未传" 与 0
type SetSpendingLimitRequest struct {
	SpendingLimit *int64 `json:"spending_limit" binding:"required,gte=0"`
}
