package api

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/marketplace"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const CallerHeader = "X-Caller"

type Server struct {
	marketplace *marketplace.Marketplace
	dev         *Dev
}

func NewServer(m *marketplace.Marketplace, dev *Dev) Server {
	return Server{marketplace: m, dev: dev}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/listings", s.handleGetListings).Methods("GET")
	r.HandleFunc("/listings", s.handleListItem).Methods("POST")
	r.HandleFunc("/listings/{collection}/{tokenId}", s.handleGetListing).Methods("GET")
	r.HandleFunc("/listings/{collection}/{tokenId}", s.handleUpdateListing).Methods("PUT")
	r.HandleFunc("/listings/{collection}/{tokenId}", s.handleCancelListing).Methods("DELETE")
	r.HandleFunc("/listings/{collection}/{tokenId}/buy", s.handleBuyItem).Methods("POST")
	r.HandleFunc("/proceeds/withdraw", s.handleWithdrawProceeds).Methods("POST")
	r.HandleFunc("/proceeds/{address}", s.handleGetProceeds).Methods("GET")
	r.HandleFunc("/events", s.handleGetEvents).Methods("GET")

	if s.dev != nil {
		s.dev.routes(r.PathPrefix("/dev").Subrouter())
	}

	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s Server) handleGetListings(w http.ResponseWriter, r *http.Request) {
	records := s.marketplace.Listings(r.Context())

	listings := make([]Listing, 0, len(records))
	for _, record := range records {
		listings = append(listings, newListing(record.Asset, record.Listing))
	}

	writeJson(w, http.StatusOK, listings)
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	asset, err := getAsset(r)
	if err != nil {
		writeError(w, err)
		return
	}

	listing := s.marketplace.GetListing(r.Context(), asset.Collection, asset.TokenID)
	writeJson(w, http.StatusOK, newListing(asset, listing))
}

func (s Server) handleListItem(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req ListRequest
	if err := readJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	asset, err := parseAsset(req.Collection, req.TokenID)
	if err != nil {
		writeError(w, err)
		return
	}
	price, err := entity.ParseUint256(req.Price)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.marketplace.ListItem(r.Context(), caller, asset.Collection, asset.TokenID, price); err != nil {
		writeError(w, err)
		return
	}

	listing := s.marketplace.GetListing(r.Context(), asset.Collection, asset.TokenID)
	writeJson(w, http.StatusCreated, newListing(asset, listing))
}

func (s Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := getAsset(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateRequest
	if err := readJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	price, err := entity.ParseUint256(req.Price)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.marketplace.UpdateListing(r.Context(), caller, asset.Collection, asset.TokenID, price); err != nil {
		writeError(w, err)
		return
	}

	listing := s.marketplace.GetListing(r.Context(), asset.Collection, asset.TokenID)
	writeJson(w, http.StatusOK, newListing(asset, listing))
}

func (s Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := getAsset(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.marketplace.CancelListing(r.Context(), caller, asset.Collection, asset.TokenID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := getAsset(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req BuyRequest
	if err := readJson(r, &req); err != nil {
		writeError(w, err)
		return
	}
	value, err := entity.ParseUint256(req.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.marketplace.BuyItem(r.Context(), caller, asset.Collection, asset.TokenID, value); err != nil {
		writeError(w, err)
		return
	}

	zap.L().With(zap.String("asset", asset.String()), zap.String("buyer", caller.String())).Info("Api: Item bought")
	writeJson(w, http.StatusOK, Purchase{
		Collection: asset.Collection,
		TokenID:    asset.TokenID.String(),
		Buyer:      caller,
		Value:      value.String(),
	})
}

func (s Server) handleGetProceeds(w http.ResponseWriter, r *http.Request) {
	seller, err := entity.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		writeError(w, err)
		return
	}

	amount := s.marketplace.GetProceeds(r.Context(), seller)
	writeJson(w, http.StatusOK, Proceeds{Seller: seller, Amount: amount.String()})
}

func (s Server) handleWithdrawProceeds(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.marketplace.WithdrawProceeds(r.Context(), caller); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	from, err := getUintQuery(r, "from", 1)
	if err != nil {
		writeError(w, err)
		return
	}
	size, err := getUintQuery(r, "size", 100)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJson(w, http.StatusOK, s.marketplace.Events(r.Context(), from, int(size)))
}

func getCaller(r *http.Request) (entity.Address, error) {
	caller, err := entity.ParseAddress(r.Header.Get(CallerHeader))
	if err != nil {
		return "", fmt.Errorf("%s header: %w", CallerHeader, err)
	}
	return caller, nil
}

func getAsset(r *http.Request) (entity.AssetKey, error) {
	vars := mux.Vars(r)
	return parseAsset(vars["collection"], vars["tokenId"])
}

func parseAsset(collection, tokenID string) (entity.AssetKey, error) {
	addr, err := entity.ParseAddress(collection)
	if err != nil {
		return entity.AssetKey{}, err
	}
	id, err := entity.ParseUint256(tokenID)
	if err != nil {
		return entity.AssetKey{}, err
	}
	return entity.NewAssetKey(addr, id), nil
}

func getUintQuery(r *http.Request, key string, defaultValue uint64) (uint64, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", entity.ErrInvalidAmount, key, value)
	}
	return n, nil
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusNotFound, Error{Error: "NotFound", Message: "Page not found"})
	})
}

func amountString(n *big.Int) string {
	return entity.Amount(n).String()
}
