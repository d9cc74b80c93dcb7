package marketplace

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
)

func requirePositivePrice(price *big.Int) error {
	if err := entity.CheckUint256(price); err != nil {
		return err
	}
	if price.Sign() == 0 {
		return ErrPriceMustBeAboveZero
	}
	return nil
}

// requireOwner asks the registry who owns the token right now.
func requireOwner(ctx context.Context, r registry.Registry, asset entity.AssetKey, caller entity.Address) error {
	owner, err := r.OwnerOf(ctx, asset.TokenID)
	if err != nil {
		return fmt.Errorf("marketplace: owner of %s: %w", asset, err)
	}
	if owner != caller {
		return &AssetError{Err: ErrNotOwner, Asset: asset, Caller: caller}
	}
	return nil
}

// requireApproval checks the registry names the marketplace as the token's single
// token spender. Operator approval for all of an owner's tokens does not count.
func (m *Marketplace) requireApproval(ctx context.Context, r registry.Registry, asset entity.AssetKey, caller entity.Address) error {
	approved, err := r.GetApproved(ctx, asset.TokenID)
	if err != nil {
		return fmt.Errorf("marketplace: approval of %s: %w", asset, err)
	}
	if approved != m.address {
		return &AssetError{Err: ErrNotApprovedForMarketplace, Asset: asset, Caller: caller}
	}
	return nil
}

func (m *Marketplace) requireNotListed(asset entity.AssetKey, caller entity.Address) error {
	if m.listings.Get(asset).IsListed() {
		return &AssetError{Err: ErrAlreadyListed, Asset: asset, Caller: caller}
	}
	return nil
}

func (m *Marketplace) requireListed(asset entity.AssetKey) (entity.Listing, error) {
	listing := m.listings.Get(asset)
	if !listing.IsListed() {
		return listing, &NotListedError{Collection: asset.Collection, TokenID: entity.Amount(asset.TokenID)}
	}
	return listing, nil
}

func (m *Marketplace) requireProceeds(seller entity.Address) (*big.Int, error) {
	amount := m.proceeds.Balance(seller)
	if amount.Sign() == 0 {
		return nil, ErrNoProceeds
	}
	return amount, nil
}
