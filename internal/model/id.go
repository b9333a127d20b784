package model

import "github.com/google/uuid"

// NewID returns prefix-<uuid>, e.g. "tx-3f0c...".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
