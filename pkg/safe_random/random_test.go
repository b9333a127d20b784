package safe_random

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomBytes(t *testing.T) {
	b, err := GenerateRandomBytes(32)
	require.NoError(t, err)
	assert.Len(t, b, 32)
	assert.NotEqual(t, make([]byte, 32), b, "全零数据，随机数可能未正确生成")
}

func TestGenerateRandomHexString(t *testing.T) {
	s, err := GenerateRandomHexString(16)
	require.NoError(t, err)

	decoded, err := hex.DecodeString(s)
	require.NoError(t, err)
	assert.Len(t, decoded, 16)
}

func TestGenerateRandomInt(t *testing.T) {
	max := big.NewInt(100)
	for i := 0; i < 100; i++ {
		n, err := GenerateRandomInt(max)
		require.NoError(t, err)
		assert.True(t, n.Sign() >= 0 && n.Cmp(max) < 0, "值 %v 超出范围 [0, %v)", n, max)
	}

	_, err := GenerateRandomInt(big.NewInt(0))
	assert.Error(t, err)
}

func TestIntInRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		n, err := IntInRange(800, 5800)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(800))
		assert.Less(t, n, int64(5800))
	}

	_, err := IntInRange(10, 10)
	assert.Error(t, err)
}

func TestChanceBounds(t *testing.T) {
	for i := 0; i < 50; i++ {
		always, err := Chance(100)
		require.NoError(t, err)
		assert.True(t, always)

		never, err := Chance(0)
		require.NoError(t, err)
		assert.False(t, never)
	}
}

func TestDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := Digits(6)
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.NotEqual(t, byte('0'), code[0])

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
	}
}
