package request

type CreateWithdrawalRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type ReviewWithdrawalRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}

type ListWithdrawalsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}
