package genesis

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/bank"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry/memory"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
	"go.uber.org/zap"
)

// Genesis seeds a development world: funded native accounts and minted collections.
type Genesis struct {
	Accounts    map[string]string `json:"accounts"`
	Collections []Collection      `json:"collections"`
}

type Collection struct {
	Address string  `json:"address"`
	Tokens  []Token `json:"tokens"`
}

type Token struct {
	ID      string `json:"id"`
	Owner   string `json:"owner"`
	Spender string `json:"spender,omitempty"`
}

func Load(path string) (*Genesis, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(b)
}

func Parse(b []byte) (*Genesis, error) {
	var g Genesis
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	return &g, nil
}

// Apply mints the accounts and tokens as one unit of work. Nothing is applied if any
// entry is invalid.
func (g *Genesis) Apply(ctx context.Context, runtime *state.Runtime, ledger *bank.Ledger, reg *memory.Registry) error {
	return runtime.Execute(ctx, func(ctx context.Context) error {
		for account, balance := range g.Accounts {
			addr, err := entity.ParseAddress(account)
			if err != nil {
				return fmt.Errorf("genesis: account: %w", err)
			}
			amount, err := entity.ParseUint256(balance)
			if err != nil {
				return fmt.Errorf("genesis: balance of %s: %w", addr, err)
			}
			if err := ledger.Mint(addr, amount); err != nil {
				return fmt.Errorf("genesis: fund %s: %w", addr, err)
			}
		}

		for _, c := range g.Collections {
			if err := c.apply(reg); err != nil {
				return err
			}
		}

		zap.L().With(zap.Int("accounts", len(g.Accounts)), zap.Int("collections", len(g.Collections))).
			Info("Genesis: World seeded")

		return nil
	})
}

func (c Collection) apply(reg *memory.Registry) error {
	addr, err := entity.ParseAddress(c.Address)
	if err != nil {
		return fmt.Errorf("genesis: collection: %w", err)
	}
	collection := reg.Deploy(addr)

	for _, t := range c.Tokens {
		tokenID, err := entity.ParseUint256(t.ID)
		if err != nil {
			return fmt.Errorf("genesis: token of %s: %w", addr, err)
		}
		owner, err := entity.ParseAddress(t.Owner)
		if err != nil {
			return fmt.Errorf("genesis: owner of %s/%s: %w", addr, tokenID, err)
		}
		if err := collection.Mint(owner, tokenID); err != nil {
			return fmt.Errorf("genesis: %w", err)
		}

		if t.Spender == "" {
			continue
		}
		spender, err := entity.ParseAddress(t.Spender)
		if err != nil {
			return fmt.Errorf("genesis: spender of %s/%s: %w", addr, tokenID, err)
		}
		if err := collection.Approve(owner, spender, tokenID); err != nil {
			return fmt.Errorf("genesis: %w", err)
		}
	}

	return nil
}
