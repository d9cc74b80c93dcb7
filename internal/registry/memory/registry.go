package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
)

// Registry holds the development collections of one world.
type Registry struct {
	journal     *state.Journal
	collections map[entity.Address]*Collection
}

func NewRegistry(journal *state.Journal) *Registry {
	return &Registry{journal: journal, collections: map[entity.Address]*Collection{}}
}

// Deploy returns the collection at addr, creating it when missing.
func (r *Registry) Deploy(addr entity.Address) *Collection {
	if c, ok := r.collections[addr]; ok {
		return c
	}
	c := NewCollection(addr, r.journal)
	r.collections[addr] = c
	return c
}

func (r *Registry) Get(addr entity.Address) (*Collection, error) {
	c, ok := r.collections[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", registry.ErrUnknownCollection, addr)
	}
	return c, nil
}

func (r *Registry) Addresses() []entity.Address {
	addrs := make([]entity.Address, 0, len(r.collections))
	for addr := range r.collections {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// For resolves collections as seen by caller, normally the marketplace contract.
func (r *Registry) For(caller entity.Address) registry.Collections {
	return callerView{r, caller}
}

type callerView struct {
	registry *Registry
	caller   entity.Address
}

func (v callerView) Collection(_ context.Context, addr entity.Address) (registry.Registry, error) {
	c, err := v.registry.Get(addr)
	if err != nil {
		return nil, err
	}
	return c.As(v.caller), nil
}
