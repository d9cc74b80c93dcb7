package api

import (
	"context"
	"net/http"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/bank"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry/memory"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
	"github.com/gorilla/mux"
)

// Dev exposes the in-memory world behind a development marketplace: minting,
// approvals and funding. It is only routed when the memory registry is in use.
type Dev struct {
	runtime     *state.Runtime
	registry    *memory.Registry
	ledger      *bank.Ledger
	marketplace entity.Address
}

func NewDev(runtime *state.Runtime, registry *memory.Registry, ledger *bank.Ledger, marketplace entity.Address) *Dev {
	return &Dev{runtime: runtime, registry: registry, ledger: ledger, marketplace: marketplace}
}

type MintRequest struct {
	TokenID string `json:"tokenId"`
	Owner   string `json:"owner"`
}

type ApproveRequest struct {
	TokenID string `json:"tokenId"`
	Spender string `json:"spender,omitempty"`
}

type FundRequest struct {
	Amount string `json:"amount"`
}

type Balance struct {
	Address entity.Address `json:"address"`
	Balance string         `json:"balance"`
}

func (d *Dev) routes(r *mux.Router) {
	r.HandleFunc("/collections/{collection}/tokens", d.handleMint).Methods("POST")
	r.HandleFunc("/collections/{collection}/approve", d.handleApprove).Methods("POST")
	r.HandleFunc("/accounts/{address}", d.handleGetBalance).Methods("GET")
	r.HandleFunc("/accounts/{address}/fund", d.handleFund).Methods("POST")
}

func (d *Dev) handleMint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if err := readJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	asset, err := parseAsset(mux.Vars(r)["collection"], req.TokenID)
	if err != nil {
		writeError(w, err)
		return
	}
	owner, err := entity.ParseAddress(req.Owner)
	if err != nil {
		writeError(w, err)
		return
	}

	err = d.runtime.Execute(r.Context(), func(ctx context.Context) error {
		return d.registry.Deploy(asset.Collection).Mint(owner, asset.TokenID)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// handleApprove sets the token's spender on behalf of the caller, the marketplace
// unless another spender is named.
func (d *Dev) handleApprove(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req ApproveRequest
	if err := readJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	asset, err := parseAsset(mux.Vars(r)["collection"], req.TokenID)
	if err != nil {
		writeError(w, err)
		return
	}
	spender := d.marketplace
	if req.Spender != "" {
		if spender, err = entity.ParseAddress(req.Spender); err != nil {
			writeError(w, err)
			return
		}
	}

	err = d.runtime.Execute(r.Context(), func(ctx context.Context) error {
		c, err := d.registry.Get(asset.Collection)
		if err != nil {
			return err
		}
		return c.Approve(caller, spender, asset.TokenID)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (d *Dev) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := entity.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		writeError(w, err)
		return
	}

	var balance string
	d.runtime.Read(r.Context(), func() {
		balance = d.ledger.BalanceOf(addr).String()
	})

	writeJson(w, http.StatusOK, Balance{Address: addr, Balance: balance})
}

func (d *Dev) handleFund(w http.ResponseWriter, r *http.Request) {
	addr, err := entity.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		writeError(w, err)
		return
	}

	var req FundRequest
	if err := readJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	amount, err := entity.ParseUint256(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	err = d.runtime.Execute(r.Context(), func(ctx context.Context) error {
		return d.ledger.Mint(addr, amount)
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
