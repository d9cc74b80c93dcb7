package memory

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
	"go.uber.org/zap"
)

var (
	ErrTokenExists      = errors.New("token already exists")
	ErrInvalidRecipient = errors.New("invalid recipient")
)

// Receiver is the recipient hook run by SafeTransferFrom, the ZRC6 RecipientAcceptTransferFrom
// callback. It may call back into the marketplace.
type Receiver func(ctx context.Context, operator, from entity.Address, tokenID *big.Int) error

// Collection is a journaled ZRC6 style token contract: owners, single token spenders and
// operators approved for all of an owner's tokens.
type Collection struct {
	address   entity.Address
	journal   *state.Journal
	owners    map[string]entity.Address
	spenders  map[string]entity.Address
	operators map[entity.Address]map[entity.Address]bool
	receivers map[entity.Address]Receiver
	failWith  error
}

func NewCollection(address entity.Address, journal *state.Journal) *Collection {
	return &Collection{
		address:   address,
		journal:   journal,
		owners:    map[string]entity.Address{},
		spenders:  map[string]entity.Address{},
		operators: map[entity.Address]map[entity.Address]bool{},
		receivers: map[entity.Address]Receiver{},
	}
}

func (c *Collection) Address() entity.Address {
	return c.address
}

func (c *Collection) Mint(to entity.Address, tokenID *big.Int) error {
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	key := tokenID.String()
	if _, exists := c.owners[key]; exists {
		return fmt.Errorf("%w: %s/%s", ErrTokenExists, c.address, key)
	}
	c.setOwner(key, to)
	return nil
}

func (c *Collection) Owner(tokenID *big.Int) (entity.Address, error) {
	owner, ok := c.owners[tokenID.String()]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", registry.ErrTokenNotFound, c.address, tokenID)
	}
	return owner, nil
}

func (c *Collection) Spender(tokenID *big.Int) (entity.Address, error) {
	if _, err := c.Owner(tokenID); err != nil {
		return "", err
	}
	spender, ok := c.spenders[tokenID.String()]
	if !ok {
		return entity.ZeroAddress, nil
	}
	return spender, nil
}

// Approve sets the single token spender. The caller must own the token or be one of the
// owner's operators.
func (c *Collection) Approve(caller, spender entity.Address, tokenID *big.Int) error {
	owner, err := c.Owner(tokenID)
	if err != nil {
		return err
	}
	if caller != owner && !c.IsOperator(owner, caller) {
		return fmt.Errorf("%w: %s", registry.ErrNotAuthorized, caller)
	}
	c.setSpender(tokenID.String(), spender)
	return nil
}

func (c *Collection) SetOperator(owner, operator entity.Address, approved bool) {
	prev := c.IsOperator(owner, operator)
	c.journal.Append(func() { c.putOperator(owner, operator, prev) })
	c.putOperator(owner, operator, approved)
}

func (c *Collection) IsOperator(owner, operator entity.Address) bool {
	return c.operators[owner][operator]
}

func (c *Collection) SetReceiver(addr entity.Address, receiver Receiver) {
	if receiver == nil {
		delete(c.receivers, addr)
		return
	}
	c.receivers[addr] = receiver
}

// FailTransfers makes every following transfer fail with err. Pass nil to clear it.
func (c *Collection) FailTransfers(err error) {
	c.failWith = err
}

// TransferFrom moves tokenID from from to to on behalf of operator, clearing its spender.
func (c *Collection) TransferFrom(operator, from, to entity.Address, tokenID *big.Int) error {
	if c.failWith != nil {
		return c.failWith
	}

	owner, err := c.Owner(tokenID)
	if err != nil {
		return err
	}
	if owner != from {
		return fmt.Errorf("%w: %s is not the owner", registry.ErrNotAuthorized, from)
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}

	key := tokenID.String()
	if operator != from && c.spenders[key] != operator && !c.IsOperator(from, operator) {
		return fmt.Errorf("%w: %s", registry.ErrNotAuthorized, operator)
	}

	c.setSpender(key, entity.ZeroAddress)
	c.setOwner(key, to)

	return nil
}

// SafeTransferFrom is TransferFrom followed by the recipient hook. A rejecting recipient
// undoes the transfer.
func (c *Collection) SafeTransferFrom(ctx context.Context, operator, from, to entity.Address, tokenID *big.Int) error {
	snapshot := c.journal.Snapshot()
	if err := c.TransferFrom(operator, from, to, tokenID); err != nil {
		return err
	}

	if receiver, ok := c.receivers[to]; ok {
		if err := receiver(ctx, operator, from, entity.Amount(tokenID)); err != nil {
			c.journal.RevertTo(snapshot)
			zap.L().With(zap.String("collection", c.address.String()), zap.String("to", to.String()), zap.Error(err)).
				Debug("Registry: Transfer rejected")
			return fmt.Errorf("%w: %v", registry.ErrTransferRejected, err)
		}
	}

	return nil
}

// As binds the collection to a calling contract, giving the Registry view that contract uses.
func (c *Collection) As(caller entity.Address) registry.Registry {
	return boundCollection{c, caller}
}

func (c *Collection) setOwner(key string, owner entity.Address) {
	prev, existed := c.owners[key]
	c.journal.Append(func() {
		if existed {
			c.owners[key] = prev
		} else {
			delete(c.owners, key)
		}
	})
	c.owners[key] = owner
}

func (c *Collection) setSpender(key string, spender entity.Address) {
	prev, existed := c.spenders[key]
	c.journal.Append(func() {
		if existed {
			c.spenders[key] = prev
		} else {
			delete(c.spenders, key)
		}
	})
	if spender.IsZero() {
		delete(c.spenders, key)
		return
	}
	c.spenders[key] = spender
}

func (c *Collection) putOperator(owner, operator entity.Address, approved bool) {
	if !approved {
		delete(c.operators[owner], operator)
		return
	}
	if c.operators[owner] == nil {
		c.operators[owner] = map[entity.Address]bool{}
	}
	c.operators[owner][operator] = true
}

type boundCollection struct {
	collection *Collection
	caller     entity.Address
}

func (b boundCollection) OwnerOf(_ context.Context, tokenID *big.Int) (entity.Address, error) {
	return b.collection.Owner(tokenID)
}

func (b boundCollection) GetApproved(_ context.Context, tokenID *big.Int) (entity.Address, error) {
	return b.collection.Spender(tokenID)
}

func (b boundCollection) SafeTransferFrom(ctx context.Context, from, to entity.Address, tokenID *big.Int) error {
	return b.collection.SafeTransferFrom(ctx, b.caller, from, to, tokenID)
}
