package marketplace

import (
	"fmt"
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
)

// ProceedsLedger holds what each seller may withdraw. Entries are created on the first
// credit and zeroed, never removed, by a withdrawal.
type ProceedsLedger struct {
	journal  *state.Journal
	balances map[entity.Address]*big.Int
}

func NewProceedsLedger(journal *state.Journal) *ProceedsLedger {
	return &ProceedsLedger{journal: journal, balances: map[entity.Address]*big.Int{}}
}

func (p *ProceedsLedger) Balance(seller entity.Address) *big.Int {
	return entity.Amount(p.balances[seller])
}

func (p *ProceedsLedger) Credit(seller entity.Address, amount *big.Int) (*big.Int, error) {
	bal := p.Balance(seller)
	nbal := new(big.Int).Add(bal, amount)
	if err := entity.CheckUint256(nbal); err != nil {
		return nil, fmt.Errorf("%w: could not credit proceeds (bal=%s, seller=%s, amount=%s)", entity.ErrValueOutOfRange, bal, seller, amount)
	}
	p.set(seller, nbal)
	return entity.Amount(nbal), nil
}

// Zero clears the seller's balance and returns what it held.
func (p *ProceedsLedger) Zero(seller entity.Address) *big.Int {
	bal := p.Balance(seller)
	p.set(seller, new(big.Int))
	return bal
}

func (p *ProceedsLedger) Total() *big.Int {
	total := new(big.Int)
	for _, bal := range p.balances {
		total.Add(total, bal)
	}
	return total
}

func (p *ProceedsLedger) Has(seller entity.Address) bool {
	_, ok := p.balances[seller]
	return ok
}

func (p *ProceedsLedger) set(seller entity.Address, amount *big.Int) {
	prev, existed := p.balances[seller]
	p.journal.Append(func() {
		if existed {
			p.balances[seller] = prev
		} else {
			delete(p.balances, seller)
		}
	})
	p.balances[seller] = amount
}
