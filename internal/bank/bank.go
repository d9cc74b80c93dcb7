package bank

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
	"go.uber.org/zap"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTransferRejected  = errors.New("transfer rejected by recipient")
	ErrNegativeAmount    = errors.New("negative amount")
)

// Bank moves native value between accounts.
type Bank interface {
	BalanceOf(addr entity.Address) *big.Int
	Transfer(ctx context.Context, from, to entity.Address, amount *big.Int) error
}

// Receiver runs after value lands in an account and may execute arbitrary code,
// including calls back into the marketplace. An error rejects the transfer.
type Receiver func(ctx context.Context, from entity.Address, amount *big.Int) error

// Ledger is the in-process native value ledger. Every mutation is journaled.
type Ledger struct {
	journal   *state.Journal
	balances  map[entity.Address]*big.Int
	receivers map[entity.Address]Receiver
}

func NewLedger(journal *state.Journal) *Ledger {
	return &Ledger{
		journal:   journal,
		balances:  map[entity.Address]*big.Int{},
		receivers: map[entity.Address]Receiver{},
	}
}

func (l *Ledger) BalanceOf(addr entity.Address) *big.Int {
	return entity.Amount(l.balances[addr])
}

// Total is the sum of every account balance.
func (l *Ledger) Total() *big.Int {
	total := new(big.Int)
	for _, bal := range l.balances {
		total.Add(total, bal)
	}
	return total
}

// Mint credits new value to addr. Used to fund development accounts.
func (l *Ledger) Mint(addr entity.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	l.set(addr, new(big.Int).Add(l.BalanceOf(addr), amount))
	return nil
}

func (l *Ledger) SetReceiver(addr entity.Address, receiver Receiver) {
	if receiver == nil {
		delete(l.receivers, addr)
		return
	}
	l.receivers[addr] = receiver
}

// Transfer debits from and credits to, then hands control to the recipient's
// Receiver. A rejected transfer is undone before the error is returned.
func (l *Ledger) Transfer(ctx context.Context, from, to entity.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}

	bal := l.BalanceOf(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: could not transfer (bal=%s < amount=%s, addr=%s)", ErrInsufficientFunds, bal, amount, from)
	}

	snapshot := l.journal.Snapshot()
	l.set(from, bal.Sub(bal, amount))
	l.set(to, new(big.Int).Add(l.BalanceOf(to), amount))

	if receiver, ok := l.receivers[to]; ok {
		if err := receiver(ctx, from, entity.Amount(amount)); err != nil {
			l.journal.RevertTo(snapshot)
			zap.L().With(zap.String("to", to.String()), zap.Error(err)).Debug("Bank: Transfer rejected")
			return fmt.Errorf("%w: %v", ErrTransferRejected, err)
		}
	}

	return nil
}

func (l *Ledger) set(addr entity.Address, amount *big.Int) {
	prev, existed := l.balances[addr]
	l.journal.Append(func() {
		if existed {
			l.balances[addr] = prev
		} else {
			delete(l.balances, addr)
		}
	})
	l.balances[addr] = amount
}
