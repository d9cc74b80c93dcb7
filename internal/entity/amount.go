package entity

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrValueOutOfRange = errors.New("value out of uint256 range")
)

// MaxUint256 is the largest price, token id or balance the ledger accepts.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ParseUint256 parses a base 10 (or 0x prefixed base 16) unsigned integer.
func ParseUint256(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	n, ok := new(big.Int).SetString(value, 0)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if err := CheckUint256(n); err != nil {
		return nil, err
	}
	return n, nil
}

func CheckUint256(n *big.Int) error {
	if n == nil {
		return fmt.Errorf("%w: nil", ErrInvalidAmount)
	}
	if n.Sign() < 0 || n.Cmp(MaxUint256) > 0 {
		return fmt.Errorf("%w: %s", ErrValueOutOfRange, n.String())
	}
	return nil
}

// Amount returns a copy of n, treating nil as zero.
func Amount(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(n)
}
