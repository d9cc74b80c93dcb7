package marketplace

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

// BuyItem purchases a listed token with value attached by the caller. The whole value
// is credited to the seller, overpayment included.
//
// Proceeds and the listing are settled before the registry transfer, so a callback
// made by the recipient already sees the token unlisted. A failed transfer fails the
// unit of work and every effect, the attached value included, is reverted.
//
// Ownership is not checked again here: a listing whose token moved outside the
// marketplace stays purchasable until it is canceled, and the registry decides whether
// the transfer from the recorded seller is still possible.
func (m *Marketplace) BuyItem(ctx context.Context, caller, collection entity.Address, tokenID, value *big.Int) error {
	asset := entity.NewAssetKey(collection, tokenID)
	fields := append(assetFields(asset, caller), zap.String("value", entity.Amount(value).String()))

	return m.execute(ctx, "buy", fields, func(ctx context.Context) error {
		if err := entity.CheckUint256(tokenID); err != nil {
			return err
		}
		if err := entity.CheckUint256(value); err != nil {
			return err
		}
		if err := m.receive(ctx, caller, value); err != nil {
			return err
		}

		listing, err := m.requireListed(asset)
		if err != nil {
			return err
		}
		if value.Cmp(listing.Price) < 0 {
			return &PriceNotMetError{Collection: collection, TokenID: entity.Amount(tokenID), Price: listing.Price}
		}
		r, err := m.collection(ctx, collection)
		if err != nil {
			return err
		}

		if _, err := m.proceeds.Credit(listing.Seller, value); err != nil {
			return err
		}
		m.listings.Delete(asset)

		e := entity.NewEvent(entity.ItemBoughtEvent, listing.Seller).ForAsset(asset)
		e.Buyer = caller
		e.Value = value.String()
		m.emit(ctx, e)

		if err := r.SafeTransferFrom(ctx, listing.Seller, caller, asset.TokenID); err != nil {
			return fmt.Errorf("marketplace: transfer %s from %s to %s: %w", asset, listing.Seller, caller, err)
		}

		return nil
	})
}

// receive moves the value attached to a call into the marketplace account.
func (m *Marketplace) receive(ctx context.Context, caller entity.Address, value *big.Int) error {
	if value.Sign() == 0 {
		return nil
	}
	if err := m.bank.Transfer(ctx, caller, m.address, value); err != nil {
		return fmt.Errorf("marketplace: attach value: %w", err)
	}
	return nil
}
