package service

import (
	"context"
	"errors"

	"gift-core/internal/event"
	"gift-core/internal/model"
	"gift-core/internal/store"
	"gift-core/pkg/clock"
	"gift-core/pkg/errno"
	"gift-core/pkg/logger"
	"gift-core/pkg/monitor"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type GiftService struct {
	store   store.Store
	clock   clock.Clock
	feeRate decimal.Decimal
}

func NewGiftService(s store.Store, c clock.Clock, feeRate decimal.Decimal) *GiftService {
	return &GiftService{store: s, clock: c, feeRate: feeRate}
}

// SendGift 送礼: 扣减发送方余额，按费率拆分给创作者与平台钱包，并记录一笔交易。
// 所有检查与写入在同一个工作单元内完成，任一步失败都不会留下部分状态
func (s *GiftService) SendGift(ctx context.Context, senderID, creatorID, giftID string) (*model.Transaction, error) {
	now := s.clock.Now()
	var (
		record *model.Transaction
		gift   *model.Gift
	)

	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		// 1. 发送方: 存在、角色允许、未封禁
		acc, err := tx.Account(senderID)
		if errors.Is(err, store.ErrNotFound) {
			return errno.ErrAccountNotFound.Withf("Sender %s not found", senderID)
		}
		if err != nil {
			return err
		}
		sender, ok := acc.(model.Spender)
		if !ok {
			return errno.ErrSenderRole
		}
		if err := CanTransact(sender); err != nil {
			return err
		}

		// 2. 接收方: 已认证且未封禁的创作者
		creator, err := loadCreator(tx, creatorID)
		if err != nil {
			return err
		}
		if creator.VerificationStatus != model.VerificationVerified {
			return errno.ErrCreatorNotVerified.Withf("Creator %s is not verified", creatorID)
		}
		if !creator.Active() {
			return errno.ErrCreatorSuspended.Withf("Creator %s is suspended", creatorID)
		}

		// 3. 礼物
		gift, err = tx.Gift(giftID)
		if errors.Is(err, store.ErrNotFound) {
			return errno.ErrGiftNotFound.Withf("Gift %s not found", giftID)
		}
		if err != nil {
			return err
		}

		// 4. 消费上限与余额
		if err := WithinLimit(sender, gift.Price); err != nil {
			return err
		}
		if err := HasFunds(sender, gift.Price); err != nil {
			return err
		}

		// 5. 记账
		fee, net := SplitFee(gift.Price, s.feeRate)
		if err := sender.Debit(gift.Price); err != nil {
			return err
		}
		sender.Base().UpdatedAt = now
		creator.Credit(net)
		creator.UpdatedAt = now

		wallet, err := tx.PlatformWallet()
		if err != nil {
			return err
		}
		wallet.Balance += fee
		wallet.UpdatedAt = now

		if err := tx.SaveAccount(sender); err != nil {
			return err
		}
		if err := tx.SaveAccount(creator); err != nil {
			return err
		}
		if err := tx.SavePlatformWallet(wallet); err != nil {
			return err
		}

		record = &model.Transaction{
			ID:            model.NewID("tx"),
			SenderID:      senderID,
			ReceiverID:    creatorID,
			GiftID:        gift.ID,
			Amount:        gift.Price,
			AdminFee:      fee,
			CreatorAmount: net,
			CreatedAt:     now,
		}
		if err := tx.CreateTransaction(record); err != nil {
			return err
		}

		// 6. 写入 Outbox
		return emit(tx, event.TopicTransaction, creatorID, event.GiftSentEvent{
			TransactionID: record.ID,
			SenderID:      senderID,
			CreatorID:     creatorID,
			GiftID:        gift.ID,
			Amount:        record.Amount,
			AdminFee:      fee,
			CreatorAmount: net,
			OccurredAt:    now,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	monitor.Business.GiftsSentTotal.WithLabelValues(gift.Name).Inc()
	monitor.Business.GiftVolumeTotal.Add(float64(record.Amount))
	monitor.Business.PlatformFeesTotal.Add(float64(record.AdminFee))
	logger.Info("Gift sent",
		zap.String("tx_id", record.ID),
		zap.String("sender", senderID),
		zap.String("creator", creatorID),
		zap.String("gift", gift.Name),
		zap.Int64("amount", record.Amount),
		zap.Int64("fee", record.AdminFee))

	return record, nil
}
