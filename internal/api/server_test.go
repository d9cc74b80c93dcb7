package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/bank"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry/memory"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	marketAddr     = "0x9000000000000000000000000000000000000009"
	collectionAddr = "0xc000000000000000000000000000000000000001"
	seller         = "0x1000000000000000000000000000000000000001"
	buyer          = "0x2000000000000000000000000000000000000002"
)

func newTestServer(t *testing.T) *httptest.Server {
	rt := state.NewRuntime(nil)
	ledger := bank.NewLedger(rt.Journal())
	reg := memory.NewRegistry(rt.Journal())
	addr := entity.MustParseAddress(marketAddr)

	m := marketplace.New(addr, rt, reg.For(addr), ledger)
	server := httptest.NewServer(NewServer(m, NewDev(rt, reg, ledger, addr)).Router())
	t.Cleanup(server.Close)

	return server
}

func do(t *testing.T, server *httptest.Server, method, path, caller string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	require.NoError(t, err)
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func seed(t *testing.T, server *httptest.Server) {
	resp := do(t, server, "POST", "/dev/collections/"+collectionAddr+"/tokens", "", MintRequest{TokenID: "1", Owner: seller})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, server, "POST", "/dev/accounts/"+buyer+"/fund", "", FundRequest{Amount: "1000"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, server, "POST", "/dev/collections/"+collectionAddr+"/approve", seller, ApproveRequest{TokenID: "1"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	resp := do(t, newTestServer(t), "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSaleOverHttp(t *testing.T) {
	server := newTestServer(t)
	seed(t, server)

	resp := do(t, server, "POST", "/listings", seller, ListRequest{Collection: collectionAddr, TokenID: "1", Price: "100"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var listing Listing
	decode(t, resp, &listing)
	assert.True(t, listing.Listed)
	assert.Equal(t, "100", listing.Price)
	assert.Equal(t, entity.Address(seller), listing.Seller)

	resp = do(t, server, "GET", "/listings", "", nil)
	var listings []Listing
	decode(t, resp, &listings)
	assert.Len(t, listings, 1)

	resp = do(t, server, "POST", "/listings/"+collectionAddr+"/1/buy", buyer, BuyRequest{Value: "99"})
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	var apiErr Error
	decode(t, resp, &apiErr)
	assert.Equal(t, "PriceNotMet", apiErr.Error)
	assert.Equal(t, "100", apiErr.Details["price"])

	resp = do(t, server, "POST", "/listings/"+collectionAddr+"/1/buy", buyer, BuyRequest{Value: "100"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, server, "GET", "/listings/"+collectionAddr+"/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &listing)
	assert.False(t, listing.Listed)
	assert.Equal(t, "0", listing.Price)
	assert.Equal(t, entity.ZeroAddress, listing.Seller)

	resp = do(t, server, "GET", "/proceeds/"+seller, "", nil)
	var proceeds Proceeds
	decode(t, resp, &proceeds)
	assert.Equal(t, "100", proceeds.Amount)

	resp = do(t, server, "POST", "/proceeds/withdraw", seller, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, server, "GET", "/dev/accounts/"+seller, "", nil)
	var balance Balance
	decode(t, resp, &balance)
	assert.Equal(t, "100", balance.Balance)

	resp = do(t, server, "POST", "/proceeds/withdraw", seller, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	decode(t, resp, &apiErr)
	assert.Equal(t, "NoProceeds", apiErr.Error)

	resp = do(t, server, "GET", "/events?from=2&size=1", "", nil)
	var events []entity.Event
	decode(t, resp, &events)
	require.Len(t, events, 1)
	assert.Equal(t, entity.ItemBoughtEvent, events[0].Type)
}

func TestUpdateAndCancelOverHttp(t *testing.T) {
	server := newTestServer(t)
	seed(t, server)

	resp := do(t, server, "PUT", "/listings/"+collectionAddr+"/1", seller, UpdateRequest{Price: "5"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, server, "POST", "/listings", seller, ListRequest{Collection: collectionAddr, TokenID: "1", Price: "100"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, server, "PUT", "/listings/"+collectionAddr+"/1", seller, UpdateRequest{Price: "0"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, server, "PUT", "/listings/"+collectionAddr+"/1", seller, UpdateRequest{Price: "250"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing Listing
	decode(t, resp, &listing)
	assert.Equal(t, "250", listing.Price)

	resp = do(t, server, "DELETE", "/listings/"+collectionAddr+"/1", buyer, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, server, "DELETE", "/listings/"+collectionAddr+"/1", seller, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRequestValidation(t *testing.T) {
	server := newTestServer(t)

	resp := do(t, server, "POST", "/listings", "", ListRequest{Collection: collectionAddr, TokenID: "1", Price: "1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, server, "POST", "/listings", seller, map[string]string{"unknown": "field"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var apiErr Error
	decode(t, resp, &apiErr)
	assert.Equal(t, "BadRequest", apiErr.Error)

	resp = do(t, server, "GET", "/listings/not-an-address/1", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, server, "POST", "/listings", seller, ListRequest{Collection: collectionAddr, TokenID: "1", Price: "1"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	decode(t, resp, &apiErr)
	assert.Equal(t, "UnknownCollection", apiErr.Error)

	resp = do(t, server, "GET", "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListWithoutApproval(t *testing.T) {
	server := newTestServer(t)
	resp := do(t, server, "POST", "/dev/collections/"+collectionAddr+"/tokens", "", MintRequest{TokenID: "1", Owner: seller})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, server, "POST", "/listings", seller, ListRequest{Collection: collectionAddr, TokenID: "1", Price: "1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var apiErr Error
	decode(t, resp, &apiErr)
	assert.Equal(t, "NotApprovedForMarketplace", apiErr.Error)
	assert.Equal(t, seller, apiErr.Details["caller"])

	resp = do(t, server, "POST", "/dev/collections/"+collectionAddr+"/tokens", "", MintRequest{TokenID: "1", Owner: seller})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
