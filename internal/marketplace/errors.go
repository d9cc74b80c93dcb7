package marketplace

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/bank"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
)

var (
	ErrPriceMustBeAboveZero      = errors.New("price must be above zero")
	ErrNotOwner                  = errors.New("not owner")
	ErrNotApprovedForMarketplace = errors.New("not approved for marketplace")
	ErrAlreadyListed             = errors.New("already listed")
	ErrNotListed                 = errors.New("not listed")
	ErrPriceNotMet               = errors.New("price not met")
	ErrNoProceeds                = errors.New("no proceeds")
	ErrWithdrawalUnsuccessful    = errors.New("withdrawal unsuccessful")
	ErrReentrantCall             = errors.New("reentrant call")
)

// AssetError carries the asset and caller a guard rejected.
type AssetError struct {
	Err    error
	Asset  entity.AssetKey
	Caller entity.Address
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("%s: %s (caller %s)", e.Err, e.Asset, e.Caller)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

type NotListedError struct {
	Collection entity.Address
	TokenID    *big.Int
}

func (e *NotListedError) Error() string {
	return fmt.Sprintf("%s: %s/%s", ErrNotListed, e.Collection, entity.Amount(e.TokenID))
}

func (e *NotListedError) Is(target error) bool {
	return target == ErrNotListed
}

// PriceNotMetError reports the price a buyer has to attach.
type PriceNotMetError struct {
	Collection entity.Address
	TokenID    *big.Int
	Price      *big.Int
}

func (e *PriceNotMetError) Error() string {
	return fmt.Sprintf("%s: %s/%s requires %s", ErrPriceNotMet, e.Collection, entity.Amount(e.TokenID), entity.Amount(e.Price))
}

func (e *PriceNotMetError) Is(target error) bool {
	return target == ErrPriceNotMet
}

// WithdrawalError is ErrWithdrawalUnsuccessful with the failed value transfer as cause.
type WithdrawalError struct {
	Seller entity.Address
	Amount *big.Int
	Err    error
}

func (e *WithdrawalError) Error() string {
	return fmt.Sprintf("%s: %s to %s: %v", ErrWithdrawalUnsuccessful, entity.Amount(e.Amount), e.Seller, e.Err)
}

func (e *WithdrawalError) Is(target error) bool {
	return target == ErrWithdrawalUnsuccessful
}

func (e *WithdrawalError) Unwrap() error {
	return e.Err
}

var codes = []struct {
	err  error
	code string
}{
	{ErrPriceMustBeAboveZero, "PriceMustBeAboveZero"},
	{ErrNotOwner, "NotOwner"},
	{ErrNotApprovedForMarketplace, "NotApprovedForMarketplace"},
	{ErrAlreadyListed, "AlreadyListed"},
	{ErrNotListed, "NotListed"},
	{ErrPriceNotMet, "PriceNotMet"},
	{ErrNoProceeds, "NoProceeds"},
	{ErrWithdrawalUnsuccessful, "WithdrawalUnsuccessful"},
	{ErrReentrantCall, "ReentrantCall"},
	{bank.ErrInsufficientFunds, "InsufficientFunds"},
	{registry.ErrUnknownCollection, "UnknownCollection"},
	{registry.ErrTokenNotFound, "TokenNotFound"},
	{registry.ErrNotAuthorized, "TransferNotAuthorized"},
	{registry.ErrTransferRejected, "TransferRejected"},
	{registry.ErrTransferPending, "TransferPending"},
	{entity.ErrValueOutOfRange, "ValueOutOfRange"},
	{entity.ErrInvalidAmount, "InvalidAmount"},
	{entity.ErrInvalidAddress, "InvalidAddress"},
}

// Code maps an operation error to its stable name. Unknown errors are "Internal".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "Internal"
}

// Details returns the diagnostic fields an error carries.
func Details(err error) map[string]string {
	details := map[string]string{}

	var assetErr *AssetError
	if errors.As(err, &assetErr) {
		details["collection"] = assetErr.Asset.Collection.String()
		details["tokenId"] = entity.Amount(assetErr.Asset.TokenID).String()
		details["caller"] = assetErr.Caller.String()
	}

	var notListed *NotListedError
	if errors.As(err, &notListed) {
		details["collection"] = notListed.Collection.String()
		details["tokenId"] = entity.Amount(notListed.TokenID).String()
	}

	var priceNotMet *PriceNotMetError
	if errors.As(err, &priceNotMet) {
		details["collection"] = priceNotMet.Collection.String()
		details["tokenId"] = entity.Amount(priceNotMet.TokenID).String()
		details["price"] = entity.Amount(priceNotMet.Price).String()
	}

	var withdrawal *WithdrawalError
	if errors.As(err, &withdrawal) {
		details["seller"] = withdrawal.Seller.String()
		details["amount"] = entity.Amount(withdrawal.Amount).String()
	}

	return details
}
