// Package etherscan adapts the Etherscan REST API, proxy module, to the
// detail fetcher's Explorer port. The proxy module mirrors Ethereum JSON-RPC
// semantics over HTTP query parameters, including a null result for hashes
// the explorer has not indexed yet.
package etherscan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/chainbell/chainbell/internal/txdetail"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL is the Etherscan mainnet API endpoint.
const DefaultBaseURL = "https://api.etherscan.io/api"

// ErrExplorerReturnedError indicates that Etherscan answered with an error
// payload rather than transaction data.
var ErrExplorerReturnedError = errors.New("explorer error")

// nullResult is the proxy module's representation of a missing record.
var nullResult = []byte("null")

// Client calls the Etherscan proxy module.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	apiKey  string
}

var _ txdetail.Explorer = (*Client)(nil)

type config struct {
	baseURL string
}

// Option customizes the client created by NewClient.
type Option func(*config)

// WithBaseURL overrides the API endpoint, e.g. for another network's
// deployment of the explorer.
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
	}
}

// NewClient creates an Etherscan client using the given HTTP client and API key.
func NewClient(httpClient *retryablehttp.Client, apiKey string, opts ...Option) *Client {
	cfg := config{
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		http:    httpClient,
		baseURL: cfg.baseURL,
		apiKey:  apiKey,
	}
}

// proxyResponse is the envelope of every proxy-module answer. Successful
// calls fill Result; JSON-RPC level failures fill Error; API level failures
// (bad key, rate limit) fill Status and Message with Result as a plain string.
type proxyResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// fetch performs one proxy-module action and returns the raw result payload.
// A null result maps to txdetail.ErrTransactionNotFound.
func (c *Client) fetch(ctx context.Context, action, txHash string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("module", "proxy")
	query.Set("action", action)
	query.Set("txhash", txHash)
	query.Set("apikey", c.apiKey)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, query.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExplorerReturnedError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrExplorerReturnedError, resp.StatusCode)
	}

	var envelope proxyResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}

	if envelope.Error != nil {
		return nil, fmt.Errorf("%w: [%d] %s", ErrExplorerReturnedError, envelope.Error.Code, envelope.Error.Message)
	}

	if envelope.Status == "0" {
		return nil, fmt.Errorf("%w: %s: %s", ErrExplorerReturnedError, envelope.Message, envelope.Result)
	}

	if len(envelope.Result) == 0 || bytes.Equal(envelope.Result, nullResult) {
		return nil, txdetail.ErrTransactionNotFound
	}

	return envelope.Result, nil
}

// TransactionByHash implements txdetail.Explorer.
func (c *Client) TransactionByHash(ctx context.Context, hash string) (txdetail.Transaction, error) {
	result, err := c.fetch(ctx, "eth_getTransactionByHash", hash)
	if err != nil {
		return txdetail.Transaction{}, err
	}

	var response transactionResponse
	if err := json.Unmarshal(result, &response); err != nil {
		return txdetail.Transaction{}, err
	}

	return response.toTransaction(), nil
}

// TransactionReceipt implements txdetail.Explorer.
func (c *Client) TransactionReceipt(ctx context.Context, hash string) (txdetail.Receipt, error) {
	result, err := c.fetch(ctx, "eth_getTransactionReceipt", hash)
	if err != nil {
		return txdetail.Receipt{}, err
	}

	var response receiptResponse
	if err := json.Unmarshal(result, &response); err != nil {
		return txdetail.Receipt{}, err
	}

	return response.toReceipt(), nil
}
