package entity

import (
	"math/big"
)

// Listing is a seller's offer for one asset. A zero price means the asset is not listed.
type Listing struct {
	Price  *big.Int
	Seller Address
}

func (l Listing) IsListed() bool {
	return l.Price != nil && l.Price.Sign() > 0
}

func (l Listing) Copy() Listing {
	return Listing{Price: Amount(l.Price), Seller: l.Seller}
}

// NoListing is the record returned for an asset that is not listed.
func NoListing() Listing {
	return Listing{Price: new(big.Int), Seller: ZeroAddress}
}

type ListingRecord struct {
	Asset   AssetKey
	Listing Listing
}
