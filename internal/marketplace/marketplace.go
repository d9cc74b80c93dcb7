package marketplace

import (
	"context"
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/bank"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
	"go.uber.org/zap"
)

// Dispatcher receives every event once the operation that emitted it commits.
type Dispatcher interface {
	Dispatch(e entity.Event)
}

// Marketplace coordinates listings of externally owned tokens and the proceeds owed to
// their sellers. It owns its listing store, proceeds ledger and event log; ownership of
// the tokens stays with the collections' registries.
type Marketplace struct {
	address     entity.Address
	runtime     *state.Runtime
	collections registry.Collections
	bank        bank.Bank

	listings *ListingStore
	proceeds *ProceedsLedger
	events   *EventLog

	dispatchers []Dispatcher
	guarded     bool
	entered     bool
}

type Option func(m *Marketplace)

// WithReentrancyGuard rejects any mutating call made while another one is running.
func WithReentrancyGuard() Option {
	return func(m *Marketplace) {
		m.guarded = true
	}
}

func WithDispatcher(d Dispatcher) Option {
	return func(m *Marketplace) {
		m.dispatchers = append(m.dispatchers, d)
	}
}

func New(
	address entity.Address,
	runtime *state.Runtime,
	collections registry.Collections,
	bank bank.Bank,
	opts ...Option,
) *Marketplace {
	m := &Marketplace{
		address:     address,
		runtime:     runtime,
		collections: collections,
		bank:        bank,
		listings:    NewListingStore(runtime.Journal()),
		proceeds:    NewProceedsLedger(runtime.Journal()),
		events:      NewEventLog(runtime.Journal()),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Marketplace) Address() entity.Address {
	return m.address
}

func (m *Marketplace) GetListing(ctx context.Context, collection entity.Address, tokenID *big.Int) (listing entity.Listing) {
	m.runtime.Read(ctx, func() {
		listing = m.listings.Get(entity.NewAssetKey(collection, tokenID))
	})
	return
}

func (m *Marketplace) GetProceeds(ctx context.Context, seller entity.Address) (amount *big.Int) {
	m.runtime.Read(ctx, func() {
		amount = m.proceeds.Balance(seller)
	})
	return
}

func (m *Marketplace) Listings(ctx context.Context) (records []entity.ListingRecord) {
	m.runtime.Read(ctx, func() {
		records = m.listings.All()
	})
	return
}

func (m *Marketplace) Events(ctx context.Context, from uint64, size int) (events []entity.Event) {
	m.runtime.Read(ctx, func() {
		events = m.events.From(from, size)
	})
	return
}

// TotalProceeds is the sum owed to all sellers.
func (m *Marketplace) TotalProceeds(ctx context.Context) (total *big.Int) {
	m.runtime.Read(ctx, func() {
		total = m.proceeds.Total()
	})
	return
}

// Balance is the native value the marketplace account holds.
func (m *Marketplace) Balance(ctx context.Context) (balance *big.Int) {
	m.runtime.Read(ctx, func() {
		balance = m.bank.BalanceOf(m.address)
	})
	return
}

// execute runs op as one unit of work, behind the reentrancy guard when enabled.
func (m *Marketplace) execute(ctx context.Context, op string, fields []zap.Field, fn func(ctx context.Context) error) error {
	err := m.runtime.Execute(ctx, func(ctx context.Context) error {
		release, err := m.enter()
		if err != nil {
			return err
		}
		defer release()

		return fn(ctx)
	})

	if err != nil {
		zap.L().With(fields...).With(zap.String("op", op), zap.String("code", Code(err)), zap.Error(err)).
			Debug("Marketplace: Operation rejected")
		return err
	}
	zap.L().With(fields...).With(zap.String("op", op)).Info("Marketplace: Operation committed")

	return nil
}

func (m *Marketplace) enter() (func(), error) {
	if !m.guarded {
		return func() {}, nil
	}
	if m.entered {
		return nil, ErrReentrantCall
	}
	m.entered = true
	return func() { m.entered = false }, nil
}

// emit logs e and hands it to the dispatchers when the unit of work commits.
func (m *Marketplace) emit(ctx context.Context, e entity.Event) {
	e = m.events.Append(e)
	state.OnCommit(ctx, func() {
		for _, d := range m.dispatchers {
			d.Dispatch(e)
		}
	})
}

func (m *Marketplace) collection(ctx context.Context, collection entity.Address) (registry.Registry, error) {
	return m.collections.Collection(ctx, collection)
}

func assetFields(asset entity.AssetKey, caller entity.Address) []zap.Field {
	return []zap.Field{
		zap.String("collection", asset.Collection.String()),
		zap.String("tokenId", entity.Amount(asset.TokenID).String()),
		zap.String("caller", caller.String()),
	}
}
