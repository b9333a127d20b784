package crypto_util

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// CalculateBlake3 计算输入的 Blake3 哈希值。
func CalculateBlake3(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ChainHash links a record to its predecessor: blake3(prev || 0x1f || field1 || 0x1f || ...).
// The unit separator keeps ("ab","c") and ("a","bc") from colliding.
func ChainHash(prev string, fields ...string) string {
	h := blake3.New(32, nil)
	h.Write([]byte(prev))
	for _, f := range fields {
		h.Write([]byte{0x1f})
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}
