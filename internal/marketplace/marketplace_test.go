package marketplace

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/bank"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry/memory"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	marketAddr     = entity.MustParseAddress("0x9000000000000000000000000000000000000009")
	collectionAddr = entity.MustParseAddress("0xc000000000000000000000000000000000000001")
	owner          = entity.MustParseAddress("0x1000000000000000000000000000000000000001")
	buyer          = entity.MustParseAddress("0x2000000000000000000000000000000000000002")
	stranger       = entity.MustParseAddress("0x3000000000000000000000000000000000000003")

	token0 = big.NewInt(0)
)

type world struct {
	runtime    *state.Runtime
	bank       *bank.Ledger
	registry   *memory.Registry
	collection *memory.Collection
	market     *Marketplace
	recorder   *recorder
	received   *big.Int
	withdrawn  *big.Int
}

type recorder struct {
	events []entity.Event
}

func (r *recorder) Dispatch(e entity.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) ofType(t entity.EventType) []entity.Event {
	events := make([]entity.Event, 0)
	for _, e := range r.events {
		if e.Type == t {
			events = append(events, e)
		}
	}
	return events
}

func newWorld(t *testing.T, opts ...Option) *world {
	journal := state.NewJournal()
	w := &world{
		runtime:   state.NewRuntime(journal),
		bank:      bank.NewLedger(journal),
		registry:  memory.NewRegistry(journal),
		recorder:  &recorder{},
		received:  new(big.Int),
		withdrawn: new(big.Int),
	}
	w.collection = w.registry.Deploy(collectionAddr)
	require.NoError(t, w.collection.Mint(owner, token0))
	require.NoError(t, w.collection.Mint(owner, big.NewInt(1)))
	require.NoError(t, w.bank.Mint(buyer, big.NewInt(1000)))
	require.NoError(t, w.bank.Mint(stranger, big.NewInt(1000)))
	journal.Reset()

	opts = append(opts, WithDispatcher(w.recorder))
	w.market = New(marketAddr, w.runtime, w.registry.For(marketAddr), w.bank, opts...)

	return w
}

func (w *world) approve(t *testing.T, tokenID *big.Int) {
	require.NoError(t, w.collection.Approve(owner, marketAddr, tokenID))
}

func (w *world) list(t *testing.T, tokenID *big.Int, price int64) {
	w.approve(t, tokenID)
	require.NoError(t, w.market.ListItem(context.Background(), owner, collectionAddr, tokenID, big.NewInt(price)))
}

func (w *world) buy(ctx context.Context, caller entity.Address, tokenID *big.Int, value int64) error {
	err := w.market.BuyItem(ctx, caller, collectionAddr, tokenID, big.NewInt(value))
	if err == nil {
		w.received.Add(w.received, big.NewInt(value))
	}
	return err
}

func (w *world) withdraw(ctx context.Context, caller entity.Address) error {
	before := w.bank.BalanceOf(caller)
	err := w.market.WithdrawProceeds(ctx, caller)
	if err == nil {
		w.withdrawn.Add(w.withdrawn, new(big.Int).Sub(w.bank.BalanceOf(caller), before))
	}
	return err
}

// the marketplace holds exactly what it received minus what it paid out, and every
// unit of proceeds owed is backed by that balance
func (w *world) assertAccounting(t *testing.T) {
	ctx := context.Background()
	balance := w.bank.BalanceOf(marketAddr)
	proceeds := w.market.TotalProceeds(ctx)

	expected := new(big.Int).Sub(w.received, w.withdrawn)
	assert.Equal(t, expected.String(), balance.String())
	assert.True(t, proceeds.Cmp(balance) <= 0, "proceeds %s exceed balance %s", proceeds, balance)

	residual := new(big.Int).Sub(balance, proceeds)
	assert.Equal(t, expected.String(), new(big.Int).Add(proceeds, residual).String())
}

func TestEndToEndSaleAndWithdrawal(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	w.list(t, token0, 100)
	listing := w.market.GetListing(ctx, collectionAddr, token0)
	assert.Equal(t, "100", listing.Price.String())
	assert.Equal(t, owner, listing.Seller)

	require.NoError(t, w.buy(ctx, buyer, token0, 100))

	assert.False(t, w.market.GetListing(ctx, collectionAddr, token0).IsListed())
	assert.Equal(t, "100", w.market.GetProceeds(ctx, owner).String())
	newOwner, err := w.collection.Owner(token0)
	require.NoError(t, err)
	assert.Equal(t, buyer, newOwner)
	assert.Equal(t, "900", w.bank.BalanceOf(buyer).String())
	w.assertAccounting(t)

	require.NoError(t, w.withdraw(ctx, owner))

	assert.Equal(t, "100", w.bank.BalanceOf(owner).String())
	assert.Equal(t, "0", w.market.GetProceeds(ctx, owner).String())
	assert.Equal(t, "0", w.bank.BalanceOf(marketAddr).String())
	w.assertAccounting(t)

	require.ErrorIs(t, w.withdraw(ctx, owner), ErrNoProceeds)
}

func TestUnlistedAssetReadsAsZeroPrice(t *testing.T) {
	w := newWorld(t)

	listing := w.market.GetListing(context.Background(), collectionAddr, big.NewInt(42))

	assert.False(t, listing.IsListed())
	assert.Equal(t, "0", listing.Price.String())
	assert.Equal(t, entity.ZeroAddress, listing.Seller)
	assert.Equal(t, "0", w.market.GetProceeds(context.Background(), stranger).String())
}

func TestListItemEmitsEvent(t *testing.T) {
	w := newWorld(t)

	w.list(t, token0, 100)

	listed := w.recorder.ofType(entity.ItemListedEvent)
	require.Len(t, listed, 1)
	assert.Equal(t, owner, listed[0].Seller)
	assert.Equal(t, collectionAddr, listed[0].Collection)
	assert.Equal(t, "0", listed[0].TokenID)
	assert.Equal(t, "100", listed[0].Price)
	assert.Equal(t, uint64(1), listed[0].Sequence)
	assert.NotEmpty(t, listed[0].ID)
}

func TestListItemWithZeroPrice(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.approve(t, token0)

	err := w.market.ListItem(ctx, owner, collectionAddr, token0, big.NewInt(0))
	require.ErrorIs(t, err, ErrPriceMustBeAboveZero)

	assert.Empty(t, w.market.Listings(ctx))
	assert.Empty(t, w.recorder.events)
}

func TestListItemGuardOrder(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	// ownership is checked before price, approval last
	err := w.market.ListItem(ctx, stranger, collectionAddr, token0, big.NewInt(0))
	require.ErrorIs(t, err, ErrNotOwner)
	err = w.market.ListItem(ctx, owner, collectionAddr, token0, big.NewInt(0))
	require.ErrorIs(t, err, ErrPriceMustBeAboveZero)

	// an existing listing is reported before anything else
	w.list(t, token0, 100)
	err = w.market.ListItem(ctx, stranger, collectionAddr, token0, big.NewInt(0))
	require.ErrorIs(t, err, ErrAlreadyListed)
}

func TestListItemByNonOwner(t *testing.T) {
	w := newWorld(t)
	w.approve(t, token0)

	err := w.market.ListItem(context.Background(), stranger, collectionAddr, token0, big.NewInt(10))

	require.ErrorIs(t, err, ErrNotOwner)
	var assetErr *AssetError
	require.True(t, errors.As(err, &assetErr))
	assert.Equal(t, stranger, assetErr.Caller)
	assert.Empty(t, w.market.Listings(context.Background()))
}

func TestListItemWithoutApproval(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	err := w.market.ListItem(ctx, owner, collectionAddr, token0, big.NewInt(10))
	require.ErrorIs(t, err, ErrNotApprovedForMarketplace)

	w.collection.SetOperator(owner, marketAddr, true)
	err = w.market.ListItem(ctx, owner, collectionAddr, token0, big.NewInt(10))
	require.ErrorIs(t, err, ErrNotApprovedForMarketplace, "operator approval is not a single token approval")

	require.NoError(t, w.collection.Approve(owner, stranger, token0))
	err = w.market.ListItem(ctx, owner, collectionAddr, token0, big.NewInt(10))
	require.ErrorIs(t, err, ErrNotApprovedForMarketplace)
}

func TestListItemTwice(t *testing.T) {
	w := newWorld(t)
	w.list(t, token0, 100)

	err := w.market.ListItem(context.Background(), owner, collectionAddr, token0, big.NewInt(200))

	require.ErrorIs(t, err, ErrAlreadyListed)
	assert.Equal(t, "100", w.market.GetListing(context.Background(), collectionAddr, token0).Price.String())
}

func TestListItemUnknownCollectionOrToken(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	err := w.market.ListItem(ctx, owner, stranger, token0, big.NewInt(1))
	require.ErrorIs(t, err, registry.ErrUnknownCollection)

	err = w.market.ListItem(ctx, owner, collectionAddr, big.NewInt(77), big.NewInt(1))
	require.ErrorIs(t, err, registry.ErrTokenNotFound)
	assert.NotErrorIs(t, err, ErrNotOwner)
}

func TestListItemRejectsOutOfRangeValues(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.approve(t, token0)

	tooBig := new(big.Int).Add(entity.MaxUint256, big.NewInt(1))
	require.ErrorIs(t, w.market.ListItem(ctx, owner, collectionAddr, token0, tooBig), entity.ErrValueOutOfRange)
	require.ErrorIs(t, w.market.ListItem(ctx, owner, collectionAddr, token0, big.NewInt(-1)), entity.ErrValueOutOfRange)
	require.ErrorIs(t, w.market.ListItem(ctx, owner, collectionAddr, big.NewInt(-1), big.NewInt(1)), entity.ErrValueOutOfRange)
}

func TestBuyItemBelowPrice(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)

	err := w.buy(ctx, buyer, token0, 99)

	require.ErrorIs(t, err, ErrPriceNotMet)
	var priceErr *PriceNotMetError
	require.True(t, errors.As(err, &priceErr))
	assert.Equal(t, "100", priceErr.Price.String())
	assert.Equal(t, collectionAddr, priceErr.Collection)

	assert.True(t, w.market.GetListing(ctx, collectionAddr, token0).IsListed())
	assert.Equal(t, "1000", w.bank.BalanceOf(buyer).String(), "attached value is returned")
	assert.Equal(t, "0", w.bank.BalanceOf(marketAddr).String())
	assert.Equal(t, "0", w.market.GetProceeds(ctx, owner).String())
	w.assertAccounting(t)
}

func TestBuyItemNotListed(t *testing.T) {
	w := newWorld(t)

	err := w.buy(context.Background(), buyer, token0, 100)

	require.ErrorIs(t, err, ErrNotListed)
	var notListed *NotListedError
	require.True(t, errors.As(err, &notListed))
	assert.Equal(t, "0", notListed.TokenID.String())
	assert.Equal(t, "1000", w.bank.BalanceOf(buyer).String())
}

func TestBuyItemWithoutFunds(t *testing.T) {
	w := newWorld(t)
	w.list(t, token0, 100)

	err := w.buy(context.Background(), buyer, token0, 5000)

	require.ErrorIs(t, err, bank.ErrInsufficientFunds)
	assert.True(t, w.market.GetListing(context.Background(), collectionAddr, token0).IsListed())
}

func TestBuyItemOverpaymentIsProceeds(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)

	require.NoError(t, w.buy(ctx, buyer, token0, 150))

	assert.Equal(t, "150", w.market.GetProceeds(ctx, owner).String())
	assert.Equal(t, "150", w.bank.BalanceOf(marketAddr).String())

	bought := w.recorder.ofType(entity.ItemBoughtEvent)
	require.Len(t, bought, 1)
	assert.Equal(t, owner, bought[0].Seller)
	assert.Equal(t, buyer, bought[0].Buyer)
	assert.Equal(t, "150", bought[0].Value)
	w.assertAccounting(t)
}

func TestBuyItemTransferFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)
	eventsBefore := len(w.recorder.events)

	w.collection.FailTransfers(errors.New("registry paused"))
	err := w.buy(ctx, buyer, token0, 100)

	require.Error(t, err)
	assert.True(t, w.market.GetListing(ctx, collectionAddr, token0).IsListed())
	assert.Equal(t, "0", w.market.GetProceeds(ctx, owner).String())
	assert.Equal(t, "1000", w.bank.BalanceOf(buyer).String())
	assert.Equal(t, "0", w.bank.BalanceOf(marketAddr).String())
	assert.Len(t, w.recorder.events, eventsBefore)
	assert.Len(t, w.market.Events(ctx, 0, 0), eventsBefore)
	w.assertAccounting(t)

	w.collection.FailTransfers(nil)
	require.NoError(t, w.buy(ctx, buyer, token0, 100))
}

func TestBuyItemUnconfirmedTransferIsReported(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)
	w.collection.FailTransfers(fmt.Errorf("%w: tx1", registry.ErrTransferPending))

	err := w.buy(ctx, buyer, token0, 100)

	require.ErrorIs(t, err, registry.ErrTransferPending)
	assert.Equal(t, "TransferPending", Code(err))
	assert.True(t, w.market.GetListing(ctx, collectionAddr, token0).IsListed())
	assert.Equal(t, "1000", w.bank.BalanceOf(buyer).String())
	w.assertAccounting(t)
}

func TestBuyItemRejectedByRecipientRollsBack(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)
	w.collection.SetReceiver(buyer, func(ctx context.Context, operator, from entity.Address, tokenID *big.Int) error {
		return errors.New("contract does not accept tokens")
	})

	err := w.buy(ctx, buyer, token0, 100)

	require.ErrorIs(t, err, registry.ErrTransferRejected)
	assert.True(t, w.market.GetListing(ctx, collectionAddr, token0).IsListed())
	assert.Equal(t, "0", w.market.GetProceeds(ctx, owner).String())
	current, _ := w.collection.Owner(token0)
	assert.Equal(t, owner, current)
}

func TestReentrantBuyFromRecipientSeesUnlistedAsset(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)

	var reentry error
	var proceedsSeen *big.Int
	w.collection.SetReceiver(buyer, func(ctx context.Context, operator, from entity.Address, tokenID *big.Int) error {
		proceedsSeen = w.market.GetProceeds(ctx, owner)
		reentry = w.market.BuyItem(ctx, buyer, collectionAddr, tokenID, big.NewInt(100))
		return nil
	})

	require.NoError(t, w.buy(ctx, buyer, token0, 100))

	require.ErrorIs(t, reentry, ErrNotListed)
	assert.Equal(t, "100", proceedsSeen.String(), "proceeds are credited before the transfer")
	assert.Equal(t, "100", w.market.GetProceeds(ctx, owner).String())
	assert.Equal(t, "900", w.bank.BalanceOf(buyer).String())
	assert.Len(t, w.recorder.ofType(entity.ItemBoughtEvent), 1)
	w.assertAccounting(t)
}

func TestReentrantListFromRecipientSucceedsWithoutGuard(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)

	// the buyer relists the token it receives while the purchase is still running
	var reentry error
	w.collection.SetReceiver(buyer, func(ctx context.Context, operator, from entity.Address, tokenID *big.Int) error {
		if err := w.collection.Approve(buyer, marketAddr, tokenID); err != nil {
			return err
		}
		reentry = w.market.ListItem(ctx, buyer, collectionAddr, tokenID, big.NewInt(300))
		return reentry
	})

	require.NoError(t, w.buy(ctx, buyer, token0, 100))
	require.NoError(t, reentry)

	listing := w.market.GetListing(ctx, collectionAddr, token0)
	assert.Equal(t, buyer, listing.Seller)
	assert.Equal(t, "300", listing.Price.String())
}

func TestReentrancyGuardRejectsNestedCalls(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, WithReentrancyGuard())
	w.list(t, token0, 100)

	var reentry error
	w.collection.SetReceiver(buyer, func(ctx context.Context, operator, from entity.Address, tokenID *big.Int) error {
		reentry = w.market.WithdrawProceeds(ctx, owner)
		return nil
	})

	require.NoError(t, w.buy(ctx, buyer, token0, 100))
	require.ErrorIs(t, reentry, ErrReentrantCall)

	// the guard is released after the operation
	require.NoError(t, w.withdraw(ctx, owner))
	w.assertAccounting(t)
}

func TestReentrancyGuardReleasedOnFailure(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, WithReentrancyGuard())

	require.ErrorIs(t, w.buy(ctx, buyer, token0, 100), ErrNotListed)

	w.list(t, token0, 100)
	require.NoError(t, w.buy(ctx, buyer, token0, 100))
}

func TestReentrantWithdrawFromPayeeHitsNoProceeds(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)
	require.NoError(t, w.buy(ctx, buyer, token0, 100))

	var reentry error
	calls := 0
	w.bank.SetReceiver(owner, func(ctx context.Context, from entity.Address, amount *big.Int) error {
		calls++
		reentry = w.market.WithdrawProceeds(ctx, owner)
		return nil
	})

	require.NoError(t, w.withdraw(ctx, owner))

	require.ErrorIs(t, reentry, ErrNoProceeds)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "100", w.bank.BalanceOf(owner).String())
	assert.Equal(t, "0", w.bank.BalanceOf(marketAddr).String())
	w.assertAccounting(t)
}

func TestWithdrawFailureRestoresBalance(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)
	require.NoError(t, w.buy(ctx, buyer, token0, 100))
	eventsBefore := len(w.recorder.events)

	w.bank.SetReceiver(owner, func(ctx context.Context, from entity.Address, amount *big.Int) error {
		return errors.New("payee reverted")
	})

	err := w.withdraw(ctx, owner)

	require.ErrorIs(t, err, ErrWithdrawalUnsuccessful)
	require.ErrorIs(t, err, bank.ErrTransferRejected)
	assert.Equal(t, "WithdrawalUnsuccessful", Code(err))
	assert.Equal(t, "100", w.market.GetProceeds(ctx, owner).String())
	assert.Equal(t, "100", w.bank.BalanceOf(marketAddr).String())
	assert.Equal(t, "0", w.bank.BalanceOf(owner).String())
	assert.Len(t, w.recorder.events, eventsBefore)
	w.assertAccounting(t)

	w.bank.SetReceiver(owner, nil)
	require.NoError(t, w.withdraw(ctx, owner))
	assert.Equal(t, "100", w.bank.BalanceOf(owner).String())
}

func TestWithdrawWithoutProceeds(t *testing.T) {
	err := newWorld(t).market.WithdrawProceeds(context.Background(), stranger)
	require.ErrorIs(t, err, ErrNoProceeds)
}

func TestProceedsAccumulateAcrossSales(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)
	w.list(t, big.NewInt(1), 50)

	require.NoError(t, w.buy(ctx, buyer, token0, 100))
	require.NoError(t, w.buy(ctx, stranger, big.NewInt(1), 60))

	assert.Equal(t, "160", w.market.GetProceeds(ctx, owner).String())
	w.assertAccounting(t)

	require.NoError(t, w.withdraw(ctx, owner))
	assert.Equal(t, "160", w.bank.BalanceOf(owner).String())
	w.assertAccounting(t)
}

func TestCancelListing(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)

	require.ErrorIs(t, w.market.CancelListing(ctx, stranger, collectionAddr, token0), ErrNotOwner)
	require.ErrorIs(t, w.market.CancelListing(ctx, owner, collectionAddr, big.NewInt(1)), ErrNotListed)

	require.NoError(t, w.market.CancelListing(ctx, owner, collectionAddr, token0))
	assert.False(t, w.market.GetListing(ctx, collectionAddr, token0).IsListed())

	canceled := w.recorder.ofType(entity.ItemCanceledEvent)
	require.Len(t, canceled, 1)
	assert.Equal(t, owner, canceled[0].Seller)
	assert.Equal(t, "0", canceled[0].TokenID)

	require.ErrorIs(t, w.buy(ctx, buyer, token0, 100), ErrNotListed)
}

func TestListCancelListRoundTrip(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	w.list(t, token0, 100)
	first := w.market.GetListing(ctx, collectionAddr, token0)
	require.NoError(t, w.market.CancelListing(ctx, owner, collectionAddr, token0))
	require.NoError(t, w.market.ListItem(ctx, owner, collectionAddr, token0, big.NewInt(100)))
	second := w.market.GetListing(ctx, collectionAddr, token0)

	assert.Equal(t, first.Seller, second.Seller)
	assert.Equal(t, 0, first.Price.Cmp(second.Price))
}

func TestUpdateListing(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	err := w.market.UpdateListing(ctx, owner, collectionAddr, token0, big.NewInt(5))
	require.ErrorIs(t, err, ErrNotListed)

	w.list(t, token0, 100)

	err = w.market.UpdateListing(ctx, owner, collectionAddr, token0, big.NewInt(0))
	require.ErrorIs(t, err, ErrPriceMustBeAboveZero)
	assert.Equal(t, "100", w.market.GetListing(ctx, collectionAddr, token0).Price.String())

	err = w.market.UpdateListing(ctx, stranger, collectionAddr, token0, big.NewInt(5))
	require.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, w.market.UpdateListing(ctx, owner, collectionAddr, token0, big.NewInt(250)))

	// the new price must be persisted, not just set on a copy
	listing := w.market.GetListing(ctx, collectionAddr, token0)
	assert.Equal(t, "250", listing.Price.String())
	assert.Equal(t, owner, listing.Seller)

	updated := w.recorder.ofType(entity.ListingUpdatedEvent)
	require.Len(t, updated, 1)
	assert.Equal(t, "250", updated[0].Price)

	require.ErrorIs(t, w.buy(ctx, buyer, token0, 100), ErrPriceNotMet)
	require.NoError(t, w.buy(ctx, buyer, token0, 250))
}

func TestGetListingReturnsCopy(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)

	w.market.GetListing(ctx, collectionAddr, token0).Price.SetInt64(1)

	assert.Equal(t, "100", w.market.GetListing(ctx, collectionAddr, token0).Price.String())
}

func TestStaleListingIsNotReverified(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)

	// the owner moves the token outside the marketplace without canceling
	require.NoError(t, w.collection.TransferFrom(owner, owner, stranger, token0))

	assert.True(t, w.market.GetListing(ctx, collectionAddr, token0).IsListed())

	// the registry refuses the transfer from the recorded seller and the purchase unwinds
	err := w.buy(ctx, buyer, token0, 100)
	require.ErrorIs(t, err, registry.ErrNotAuthorized)
	assert.True(t, w.market.GetListing(ctx, collectionAddr, token0).IsListed())
	assert.Equal(t, "0", w.market.GetProceeds(ctx, owner).String())

	// only the current owner can clear it
	require.ErrorIs(t, w.market.CancelListing(ctx, owner, collectionAddr, token0), ErrNotOwner)
	require.NoError(t, w.market.CancelListing(ctx, stranger, collectionAddr, token0))
}

func TestEventsArePaged(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, token0, 100)
	w.list(t, big.NewInt(1), 100)
	require.NoError(t, w.buy(ctx, buyer, token0, 100))

	all := w.market.Events(ctx, 0, 0)
	require.Len(t, all, 3)
	assert.Equal(t, entity.ItemBoughtEvent, all[2].Type)

	page := w.market.Events(ctx, 2, 1)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(2), page[0].Sequence)

	assert.Empty(t, w.market.Events(ctx, 10, 0))
}

func TestListingsAreSorted(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.list(t, big.NewInt(1), 10)
	w.list(t, token0, 20)

	records := w.market.Listings(ctx)
	require.Len(t, records, 2)
	assert.True(t, records[0].Asset.Slug() < records[1].Asset.Slug())
}
