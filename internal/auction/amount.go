package auction

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point scale of ledger amounts (1 unit = 10^18 wei).
const Decimals int32 = 18

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a human decimal string such as "1.5" into the scaled
// integer the ledger works with. Only the presentation boundary calls it.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	scaled := d.Shift(Decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, Decimals)
	}
	return scaled.BigInt(), nil
}

// FormatAmount renders a scaled integer as a plain decimal string, "0" for nil.
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -Decimals).String()
}
