package entity

import (
	"time"

	"github.com/nu7hatch/gouuid"
)

type EventType string

const (
	ItemListedEvent        EventType = "ItemListed"
	ItemBoughtEvent        EventType = "ItemBought"
	ItemCanceledEvent      EventType = "ItemCanceled"
	ListingUpdatedEvent    EventType = "ListingUpdated"
	ProceedsWithdrawnEvent EventType = "ProceedsWithdrawn"
)

// Event is one record of the marketplace log. Amounts are decimal strings.
type Event struct {
	ID         string    `json:"id"`
	Sequence   uint64    `json:"sequence"`
	Type       EventType `json:"type"`
	Seller     Address   `json:"seller"`
	Buyer      Address   `json:"buyer,omitempty"`
	Collection Address   `json:"collection,omitempty"`
	TokenID    string    `json:"tokenId,omitempty"`
	Price      string    `json:"price,omitempty"`
	Value      string    `json:"value,omitempty"`
	Time       time.Time `json:"time"`
}

func (e Event) Slug() string {
	return e.ID
}

func NewEvent(eventType EventType, seller Address) Event {
	id := ""
	if u, err := uuid.NewV4(); err == nil {
		id = u.String()
	}

	return Event{
		ID:     id,
		Type:   eventType,
		Seller: seller,
		Time:   time.Now().UTC(),
	}
}

func (e Event) ForAsset(asset AssetKey) Event {
	e.Collection = asset.Collection
	e.TokenID = Amount(asset.TokenID).String()
	return e
}
