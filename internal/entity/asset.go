package entity

import (
	"fmt"
	"math/big"

	"github.com/gosimple/slug"
)

// AssetKey identifies a token inside a collection contract.
type AssetKey struct {
	Collection Address
	TokenID    *big.Int
}

func NewAssetKey(collection Address, tokenID *big.Int) AssetKey {
	return AssetKey{Collection: collection, TokenID: Amount(tokenID)}
}

func (k AssetKey) Slug() string {
	return CreateAssetSlug(k.Collection, k.TokenID)
}

func (k AssetKey) String() string {
	return fmt.Sprintf("%s/%s", k.Collection, Amount(k.TokenID).String())
}

func CreateAssetSlug(collection Address, tokenID *big.Int) string {
	return slug.Make(fmt.Sprintf("asset-%s-%s", collection, Amount(tokenID).String()))
}
