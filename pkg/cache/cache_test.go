package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opinion struct {
	Handle    string `json:"handle"`
	Followers int64  `json:"followers"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute, time.Minute)

	var got opinion
	assert.ErrorIs(t, c.Get(ctx, "missing", &got), ErrMiss)

	v := opinion{Handle: "charliecreates", Followers: 12000}
	require.NoError(t, c.Set(ctx, "k", v, time.Minute))
	v.Followers = 1 // 修改原对象不影响缓存

	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, opinion{Handle: "charliecreates", Followers: 12000}, got)

	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	c := NewRedisCache(db, "gift:")

	mock.ExpectSet("gift:k", []byte(`{"handle":"eve","followers":5}`), time.Minute).SetVal("OK")
	require.NoError(t, c.Set(ctx, "k", opinion{Handle: "eve", Followers: 5}, time.Minute))

	mock.ExpectGet("gift:k").SetVal(`{"handle":"eve","followers":5}`)
	var got opinion
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "eve", got.Handle)

	mock.ExpectGet("gift:none").RedisNil()
	assert.ErrorIs(t, c.Get(ctx, "none", &got), ErrMiss)

	mock.ExpectGet("gift:err").SetErr(errors.New("conn refused"))
	err := c.Get(ctx, "err", &got)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMultiLevelCacheBackfillsLocal(t *testing.T) {
	ctx := context.Background()
	local := NewMemoryCache(time.Minute, time.Minute)
	remote := NewMemoryCache(time.Minute, time.Minute)
	c := NewMultiLevelCache(local, remote)

	require.NoError(t, remote.Set(ctx, "k", opinion{Handle: "diana"}, time.Minute))

	var got opinion
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "diana", got.Handle)

	var fromLocal opinion
	require.NoError(t, local.Get(ctx, "k", &fromLocal))
	assert.Equal(t, "diana", fromLocal.Handle)

	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}
