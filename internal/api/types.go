package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry/memory"
	"go.uber.org/zap"
)

var (
	ErrBadRequestBody = errors.New("bad request body")
)

type ListRequest struct {
	Collection string `json:"collection"`
	TokenID    string `json:"tokenId"`
	Price      string `json:"price"`
}

type UpdateRequest struct {
	Price string `json:"price"`
}

type BuyRequest struct {
	Value string `json:"value"`
}

type Listing struct {
	Collection entity.Address `json:"collection"`
	TokenID    string         `json:"tokenId"`
	Price      string         `json:"price"`
	Seller     entity.Address `json:"seller"`
	Listed     bool           `json:"listed"`
}

func newListing(asset entity.AssetKey, listing entity.Listing) Listing {
	return Listing{
		Collection: asset.Collection,
		TokenID:    amountString(asset.TokenID),
		Price:      amountString(listing.Price),
		Seller:     listing.Seller,
		Listed:     listing.IsListed(),
	}
}

type Purchase struct {
	Collection entity.Address `json:"collection"`
	TokenID    string         `json:"tokenId"`
	Buyer      entity.Address `json:"buyer"`
	Value      string         `json:"value"`
}

type Proceeds struct {
	Seller entity.Address `json:"seller"`
	Amount string         `json:"amount"`
}

type Error struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

var statuses = map[string]int{
	"PriceMustBeAboveZero":      http.StatusBadRequest,
	"InvalidAmount":             http.StatusBadRequest,
	"ValueOutOfRange":           http.StatusBadRequest,
	"InvalidAddress":            http.StatusBadRequest,
	"BadRequest":                http.StatusBadRequest,
	"InvalidRecipient":          http.StatusBadRequest,
	"NotOwner":                  http.StatusForbidden,
	"NotApprovedForMarketplace": http.StatusForbidden,
	"TransferNotAuthorized":     http.StatusForbidden,
	"NotListed":                 http.StatusNotFound,
	"UnknownCollection":         http.StatusNotFound,
	"TokenNotFound":             http.StatusNotFound,
	"PriceNotMet":               http.StatusPaymentRequired,
	"AlreadyListed":             http.StatusConflict,
	"TokenExists":               http.StatusConflict,
	"NoProceeds":                http.StatusConflict,
	"ReentrantCall":             http.StatusConflict,
	"InsufficientFunds":         http.StatusConflict,
	"WithdrawalUnsuccessful":    http.StatusBadGateway,
	"TransferRejected":          http.StatusBadGateway,
	"TransferPending":           http.StatusGatewayTimeout,
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrBadRequestBody):
		return "BadRequest"
	case errors.Is(err, memory.ErrTokenExists):
		return "TokenExists"
	case errors.Is(err, memory.ErrInvalidRecipient):
		return "InvalidRecipient"
	}
	return marketplace.Code(err)
}

func writeError(w http.ResponseWriter, err error) {
	code := errorCode(err)
	status, ok := statuses[code]
	if !ok {
		status = http.StatusInternalServerError
		zap.L().With(zap.Error(err)).Error("Api: Internal error")
	}

	writeJson(w, status, Error{Error: code, Message: err.Error(), Details: marketplace.Details(err)})
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().With(zap.Error(err)).Warn("Api: Failed to write response")
	}
}

func readJson(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequestBody, err)
	}
	return nil
}
