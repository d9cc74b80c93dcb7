package entity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Zilliqa/gozilliqa-sdk/bech32"
	"go.uber.org/zap"
)

// Address is a 20 byte account or contract identity in lower case 0x hex.
type Address string

const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

const addressHexLen = 40

var (
	ErrInvalidAddress = errors.New("invalid address")
)

// ParseAddress accepts 0x hex, bare hex or a bech32 (zil1...) address.
func ParseAddress(value string) (Address, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(strings.ToLower(value), "zil1") {
		hexAddr, err := bech32.FromBech32Addr(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidAddress, value)
		}
		value = hexAddr
	}

	value = strings.TrimPrefix(strings.ToLower(value), "0x")
	if len(value) != addressHexLen {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, value)
	}
	if _, err := hex.DecodeString(value); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, value)
	}

	return Address("0x" + value), nil
}

func MustParseAddress(value string) Address {
	addr, err := ParseAddress(value)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) IsZero() bool {
	return a == "" || a == ZeroAddress
}

func (a Address) String() string {
	return string(a)
}

// Hex returns the address without the 0x prefix, as the Zilliqa RPC expects it.
func (a Address) Hex() string {
	return strings.TrimPrefix(string(a), "0x")
}

func (a Address) Bech32() string {
	if a == "" {
		return ""
	}
	bech32Address, err := bech32.ToBech32Address(a.Hex())
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("address", a.String())).Error("Failed to create bech32 address")
		return ""
	}
	return bech32Address
}
