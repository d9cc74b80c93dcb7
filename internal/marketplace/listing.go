package marketplace

import (
	"context"
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

// ListItem lists the caller's token at price. The caller must own the token and must
// have approved the marketplace as the token's spender.
func (m *Marketplace) ListItem(ctx context.Context, caller, collection entity.Address, tokenID, price *big.Int) error {
	asset := entity.NewAssetKey(collection, tokenID)
	fields := append(assetFields(asset, caller), zap.String("price", entity.Amount(price).String()))

	return m.execute(ctx, "list", fields, func(ctx context.Context) error {
		if err := entity.CheckUint256(tokenID); err != nil {
			return err
		}
		if err := m.requireNotListed(asset, caller); err != nil {
			return err
		}
		r, err := m.collection(ctx, collection)
		if err != nil {
			return err
		}
		if err := requireOwner(ctx, r, asset, caller); err != nil {
			return err
		}
		if err := requirePositivePrice(price); err != nil {
			return err
		}
		if err := m.requireApproval(ctx, r, asset, caller); err != nil {
			return err
		}

		m.listings.Put(asset, entity.Listing{Price: entity.Amount(price), Seller: caller})

		e := entity.NewEvent(entity.ItemListedEvent, caller).ForAsset(asset)
		e.Price = price.String()
		m.emit(ctx, e)

		return nil
	})
}

// UpdateListing replaces the price of the caller's listing. The stored record is
// rewritten, the seller is kept.
func (m *Marketplace) UpdateListing(ctx context.Context, caller, collection entity.Address, tokenID, newPrice *big.Int) error {
	asset := entity.NewAssetKey(collection, tokenID)
	fields := append(assetFields(asset, caller), zap.String("price", entity.Amount(newPrice).String()))

	return m.execute(ctx, "update", fields, func(ctx context.Context) error {
		if err := entity.CheckUint256(tokenID); err != nil {
			return err
		}
		r, err := m.collection(ctx, collection)
		if err != nil {
			return err
		}
		if err := requireOwner(ctx, r, asset, caller); err != nil {
			return err
		}
		listing, err := m.requireListed(asset)
		if err != nil {
			return err
		}
		if err := requirePositivePrice(newPrice); err != nil {
			return err
		}

		listing.Price = entity.Amount(newPrice)
		m.listings.Put(asset, listing)

		e := entity.NewEvent(entity.ListingUpdatedEvent, listing.Seller).ForAsset(asset)
		e.Price = newPrice.String()
		m.emit(ctx, e)

		return nil
	})
}

// CancelListing removes the caller's listing.
func (m *Marketplace) CancelListing(ctx context.Context, caller, collection entity.Address, tokenID *big.Int) error {
	asset := entity.NewAssetKey(collection, tokenID)

	return m.execute(ctx, "cancel", assetFields(asset, caller), func(ctx context.Context) error {
		if err := entity.CheckUint256(tokenID); err != nil {
			return err
		}
		r, err := m.collection(ctx, collection)
		if err != nil {
			return err
		}
		if err := requireOwner(ctx, r, asset, caller); err != nil {
			return err
		}
		if _, err := m.requireListed(asset); err != nil {
			return err
		}

		m.listings.Delete(asset)
		m.emit(ctx, entity.NewEvent(entity.ItemCanceledEvent, caller).ForAsset(asset))

		return nil
	})
}
