package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/api"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

var (
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// APIError is a rejection returned by the marketplace API.
type APIError struct {
	Status int
	Body   api.Error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Body.Error, e.Status, e.Body.Message)
}

// Client calls the marketplace HTTP API. Requests carry the configured caller identity.
type Client struct {
	baseUrl    string
	caller     string
	httpClient *retryablehttp.Client
}

func New(baseUrl string, caller string) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 3
	retryClient.CheckRetry = retryConnectionErrors

	return &Client{baseUrl: baseUrl, caller: caller, httpClient: retryClient}
}

func (c *Client) Listing(collection, tokenID string) (*api.Listing, error) {
	var listing api.Listing
	err := c.do("GET", fmt.Sprintf("/listings/%s/%s", collection, tokenID), nil, &listing)
	return &listing, err
}

func (c *Client) Listings() ([]api.Listing, error) {
	listings := make([]api.Listing, 0)
	err := c.do("GET", "/listings", nil, &listings)
	return listings, err
}

func (c *Client) List(collection, tokenID, price string) (*api.Listing, error) {
	var listing api.Listing
	err := c.do("POST", "/listings", api.ListRequest{Collection: collection, TokenID: tokenID, Price: price}, &listing)
	return &listing, err
}

func (c *Client) Update(collection, tokenID, price string) (*api.Listing, error) {
	var listing api.Listing
	err := c.do("PUT", fmt.Sprintf("/listings/%s/%s", collection, tokenID), api.UpdateRequest{Price: price}, &listing)
	return &listing, err
}

func (c *Client) Cancel(collection, tokenID string) error {
	return c.do("DELETE", fmt.Sprintf("/listings/%s/%s", collection, tokenID), nil, nil)
}

func (c *Client) Buy(collection, tokenID, value string) (*api.Purchase, error) {
	var purchase api.Purchase
	err := c.do("POST", fmt.Sprintf("/listings/%s/%s/buy", collection, tokenID), api.BuyRequest{Value: value}, &purchase)
	return &purchase, err
}

func (c *Client) Proceeds(seller string) (*api.Proceeds, error) {
	var proceeds api.Proceeds
	err := c.do("GET", "/proceeds/"+seller, nil, &proceeds)
	return &proceeds, err
}

func (c *Client) Withdraw() error {
	return c.do("POST", "/proceeds/withdraw", nil, nil)
}

func (c *Client) Events(from uint64, size uint64) ([]entity.Event, error) {
	query := url.Values{}
	query.Set("from", strconv.FormatUint(from, 10))
	query.Set("size", strconv.FormatUint(size, 10))

	events := make([]entity.Event, 0)
	err := c.do("GET", "/events?"+query.Encode(), nil, &events)
	return events, err
}

func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = b
	}

	req, err := retryablehttp.NewRequest(method, c.baseUrl+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.caller != "" {
		req.Header.Set(api.CallerHeader, c.caller)
	}

	zap.L().With(zap.String("method", method), zap.String("path", path)).Debug("Client: Request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, &apiErr.Body); err != nil {
			return fmt.Errorf("%w: %d %s", ErrUnexpectedResponse, resp.StatusCode, string(data))
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.Unmarshal(data, out)
}

// retryConnectionErrors retries only requests that never got a response. Operations are
// not idempotent, a rejected buy must not be sent again.
func retryConnectionErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
