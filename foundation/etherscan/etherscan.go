// Package etherscan provides a client for the subset of the Etherscan HTTP
// API used by the service: the gas oracle, the ether price quote and the
// account transaction list.
package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the mainnet Etherscan API endpoint.
const DefaultBaseURL = "https://api.etherscan.io/api"

// msgNoTransactions is the message Etherscan returns with status "0" when an
// account has no transactions. It is not a failure.
const msgNoTransactions = "No transactions found"

// ErrNotOK is returned when Etherscan answers with a status other than "1".
var ErrNotOK = errors.New("etherscan status not ok")

// Config represents the settings required to construct a client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client provides access to the Etherscan API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// New constructs a client. A missing API key is not validated here, the
// upstream rejects the calls instead.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// GasOracle returns the current safe, proposed and fast gas prices.
func (c *Client) GasOracle(ctx context.Context) (GasOracle, error) {
	params := url.Values{
		"module": {"gastracker"},
		"action": {"gasoracle"},
	}

	var gas GasOracle
	if err := c.get(ctx, params, &gas); err != nil {
		return GasOracle{}, err
	}

	return gas, nil
}

// EthPrice returns the latest ether price quote.
func (c *Client) EthPrice(ctx context.Context) (EthPrice, error) {
	params := url.Values{
		"module": {"stats"},
		"action": {"ethprice"},
	}

	var price EthPrice
	if err := c.get(ctx, params, &price); err != nil {
		return EthPrice{}, err
	}

	return price, nil
}

// TxList returns the normal transactions for the specified address, newest
// first. An account without transactions returns an empty list.
func (c *Client) TxList(ctx context.Context, address string) ([]Transaction, error) {
	params := url.Values{
		"module":  {"account"},
		"action":  {"txlist"},
		"address": {address},
		"sort":    {"desc"},
	}

	txs := []Transaction{}
	if err := c.get(ctx, params, &txs); err != nil {
		return nil, err
	}

	return txs, nil
}

// =============================================================================

// envelope is the common shape of every Etherscan response.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (c *Client) get(ctx context.Context, params url.Values, result any) error {
	action := params.Get("action")
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%s: new request: %w", action, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", action, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: decode: %w", action, err)
	}

	if env.Status != "1" {
		if env.Message == msgNoTransactions {
			return nil
		}

		// On failure the result field carries a human readable reason. A
		// result that is not a string leaves the reason empty.
		var reason string
		_ = json.Unmarshal(env.Result, &reason)
		return fmt.Errorf("%s: %w: %s: %s", action, ErrNotOK, env.Message, reason)
	}

	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("%s: decode result: %w", action, err)
	}

	return nil
}
