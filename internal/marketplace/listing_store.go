package marketplace

import (
	"sort"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
)

// ListingStore maps assets to their listing. Absent assets read as a zero price listing.
type ListingStore struct {
	journal  *state.Journal
	listings map[string]entity.ListingRecord
}

func NewListingStore(journal *state.Journal) *ListingStore {
	return &ListingStore{journal: journal, listings: map[string]entity.ListingRecord{}}
}

func (s *ListingStore) Get(asset entity.AssetKey) entity.Listing {
	record, ok := s.listings[asset.Slug()]
	if !ok {
		return entity.NoListing()
	}
	return record.Listing.Copy()
}

// Put writes listing into the store, replacing any previous record for asset.
func (s *ListingStore) Put(asset entity.AssetKey, listing entity.Listing) {
	key := asset.Slug()
	s.record(key)
	s.listings[key] = entity.ListingRecord{
		Asset:   entity.NewAssetKey(asset.Collection, asset.TokenID),
		Listing: listing.Copy(),
	}
}

func (s *ListingStore) Delete(asset entity.AssetKey) {
	key := asset.Slug()
	if _, ok := s.listings[key]; !ok {
		return
	}
	s.record(key)
	delete(s.listings, key)
}

func (s *ListingStore) Len() int {
	return len(s.listings)
}

// All returns every present listing ordered by asset slug.
func (s *ListingStore) All() []entity.ListingRecord {
	records := make([]entity.ListingRecord, 0, len(s.listings))
	for _, r := range s.listings {
		records = append(records, entity.ListingRecord{
			Asset:   entity.NewAssetKey(r.Asset.Collection, r.Asset.TokenID),
			Listing: r.Listing.Copy(),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Asset.Slug() < records[j].Asset.Slug()
	})
	return records
}

func (s *ListingStore) record(key string) {
	prev, existed := s.listings[key]
	s.journal.Append(func() {
		if existed {
			s.listings[key] = prev
		} else {
			delete(s.listings, key)
		}
	})
}
