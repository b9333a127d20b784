package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gift-core/internal/event"
	"gift-core/internal/model"
	"gift-core/internal/store"
	"gift-core/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendGift(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tx, err := f.gifts.SendGift(ctx, "user-1", "creator-1", "gift-3")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), tx.Amount)
	assert.Equal(t, int64(100), tx.AdminFee)
	assert.Equal(t, int64(900), tx.CreatorAmount)
	assert.Equal(t, testNow, tx.CreatedAt)

	assert.Equal(t, int64(24000), f.balance(t, "user-1"))
	assert.Equal(t, int64(54900), f.balance(t, "creator-1"))
	platform, _ := f.store.PlatformBalance(ctx)
	assert.Equal(t, int64(210), platform)

	txs, _ := f.store.ListTransactions(ctx, store.TransactionFilter{})
	assert.Len(t, txs, 3)

	pending, _ := f.store.PendingOutbox(ctx, 10)
	require.Len(t, pending, 1)
	assert.Equal(t, event.TopicTransaction, pending[0].Topic)
	assert.Equal(t, "creator-1", pending[0].Key)
}

func TestSendGiftByAdminIgnoresSpendingLimit(t *testing.T) {
	f := newFixture(t)

	tx, err := f.gifts.SendGift(context.Background(), "admin-1", "creator-3", "gift-5")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), tx.AdminFee)
	assert.Equal(t, int64(989999), f.balance(t, "admin-1"))
	assert.Equal(t, int64(114000), f.balance(t, "creator-3"))
}

func TestSendGiftRejected(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		creator string
		gift    string
		wantErr error
	}{
		{"unknown sender", "nobody", "creator-1", "gift-1", errno.ErrAccountNotFound},
		{"suspended sender", "user-3", "creator-1", "gift-1", errno.ErrAccountSuspended},
		{"creator cannot send", "creator-3", "creator-1", "gift-1", errno.ErrSenderRole},
		{"unknown creator", "user-1", "creator-99", "gift-1", errno.ErrCreatorNotFound},
		{"receiver is not a creator", "user-1", "user-2", "gift-1", errno.ErrCreatorNotFound},
		{"pending creator", "user-1", "creator-2", "gift-1", errno.ErrCreatorNotVerified},
		{"rejected creator", "user-1", "creator-4", "gift-1", errno.ErrCreatorNotVerified},
		{"suspended creator", "user-1", "creator-5", "gift-1", errno.ErrCreatorSuspended},
		{"unknown gift", "user-1", "creator-1", "gift-99", errno.ErrGiftNotFound},
		{"over spending limit", "user-2", "creator-1", "gift-5", errno.ErrSpendingLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)

			_, err := f.gifts.SendGift(ctx, tt.sender, tt.creator, tt.gift)
			assert.ErrorIs(t, err, tt.wantErr)

			// 没有任何部分写入
			platform, _ := f.store.PlatformBalance(ctx)
			assert.Equal(t, int64(110), platform)
			assert.Equal(t, int64(25000), f.balance(t, "user-1"))
			assert.Equal(t, int64(54000), f.balance(t, "creator-1"))
			txs, _ := f.store.ListTransactions(ctx, store.TransactionFilter{})
			assert.Len(t, txs, 2)
			pending, _ := f.store.PendingOutbox(ctx, 10)
			assert.Empty(t, pending)
		})
	}
}

func TestSendGiftInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.store.Transaction(ctx, func(tx store.Tx) error {
		u, err := tx.EndUser("user-2")
		if err != nil {
			return err
		}
		u.WalletBalance = 50
		return tx.SaveAccount(u)
	}))

	_, err := f.gifts.SendGift(ctx, "user-2", "creator-1", "gift-1")
	assert.ErrorIs(t, err, errno.ErrInsufficientFunds)
	assert.Equal(t, errno.KindEligibility, errno.KindOf(err))
	assert.Equal(t, int64(50), f.balance(t, "user-2"))

	// 余额恰好等于价格时允许
	_, err = f.gifts.SendGift(ctx, "user-2", "creator-1", "gift-6")
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.balance(t, "user-2"))
}

func TestSendGiftConcurrentSpendNeverOverdraws(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// user-2: 余额 5000，Diamond 500，最多成功 10 次
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.gifts.SendGift(ctx, "user-2", "creator-1", "gift-2")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, errno.ErrInsufficientFunds):
				failed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, failed)
	assert.Equal(t, int64(0), f.balance(t, "user-2"))
	assert.Equal(t, int64(54000+10*450), f.balance(t, "creator-1"))
	platform, _ := f.store.PlatformBalance(ctx)
	assert.Equal(t, int64(110+10*50), platform)
}

func TestSendGiftToNewlyVerifiedCreator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.gifts.SendGift(ctx, "user-1", "creator-2", "gift-1")
	require.ErrorIs(t, err, errno.ErrCreatorNotVerified)

	_, err = f.verify.ReviewCreator(ctx, "creator-2", model.VerificationVerified, "admin-1")
	require.NoError(t, err)

	_, err = f.gifts.SendGift(ctx, "user-1", "creator-2", "gift-1")
	require.NoError(t, err)
	assert.Equal(t, int64(12090), f.balance(t, "creator-2"))
}
