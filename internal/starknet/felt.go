package starknet

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	domainerrors "stark-ops.backend/internal/domain/errors"
)

// ParseFelt parses a felt from its decimal or 0x-prefixed hex string form.
func ParseFelt(s string) (*big.Int, error) {
	v, ok := math.ParseBig256(s)
	if !ok || v == nil {
		return nil, fmt.Errorf("invalid felt %q: %w", s, domainerrors.ErrArgumentShape)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative felt %q: %w", s, domainerrors.ErrArgumentShape)
	}
	return v, nil
}

// FormatFelt renders a felt in the canonical decimal form the CLI expects.
func FormatFelt(v *big.Int) string {
	return v.Text(10)
}
