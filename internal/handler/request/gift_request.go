package request

type SendGiftRequest struct {
	CreatorID string `json:"creator_id" binding:"required"`
	GiftID    string `json:"gift_id" binding:"required"`
}
