package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	relayerrors "github.com/relaymesh/gasless-lib/common/errors"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// defaultTimeout is used when no request timeout is configured.
	defaultTimeout = 10 * time.Second
	// defaultRetryDelay is the fixed delay between retry attempts.
	defaultRetryDelay = time.Second
)

// Config holds the relayer client settings passed at construction.
//
// Fields:
// - BaseURL: the relayer service base URL.
// - Timeout: per-request timeout.
// - RetryCount: number of additional attempts after a failed request.
// - RetryDelay: fixed delay between attempts.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
}

// Client is an HTTP client for a relayer service. Transport errors and
// 5xx responses are retried with a fixed delay; 4xx responses carry a
// relayer error body and are returned without retrying.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryCount int
	retryDelay time.Duration
	logger     *logrus.Logger
}

// New creates a new relayer client.
//
// Parameters:
// - config: the client settings.
// - logger: the logger for logging purposes.
//
// Returns:
// - *Client: the new relayer client instance.
// - error: an error if the base URL is empty.
func New(config Config, logger *logrus.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("relayer base URL not provided")
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retryDelay := config.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retryCount: config.RetryCount,
		retryDelay: retryDelay,
		logger:     logger,
	}, nil
}

// Health checks the relayer /health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chains fetches the relayer's supported chain configurations.
func (c *Client) Chains(ctx context.Context) ([]ChainInfo, error) {
	var resp []ChainInfo
	if err := c.doJSON(ctx, http.MethodGet, "/chains", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Nonce fetches the meta-transaction nonce for the given sender address.
func (c *Client) Nonce(ctx context.Context, address string) (*NonceResponse, error) {
	var resp NonceResponse
	path := "/nonce?address=" + url.QueryEscape(address)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Quote requests a fee quote for a transfer.
func (c *Client) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	var resp QuoteResponse
	if err := c.doJSON(ctx, http.MethodPost, "/quote", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PrepareSignature requests a server-built unsigned transaction for the transfers.
func (c *Client) PrepareSignature(ctx context.Context, req *PrepareRequest) (*PrepareResponse, error) {
	var resp PrepareResponse
	if err := c.doJSON(ctx, http.MethodPost, "/prepare-signature", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RelayTransfer submits a signed transfer authorization for execution.
func (c *Client) RelayTransfer(ctx context.Context, req *RelayRequest) (*RelayResponse, error) {
	var resp RelayResponse
	if err := c.doJSON(ctx, http.MethodPost, "/relay-transfer", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// doJSON performs an HTTP request with retry and decodes the JSON response into out.
//
// Parameters:
// - ctx: the context for managing the request.
// - method: the HTTP method.
// - path: the endpoint path relative to the base URL.
// - body: the request body to encode as JSON, or nil.
// - out: the destination for the decoded response.
//
// Returns:
// - error: a RelayError describing the failure, or nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
	}

	var lastErr error
	attempts := c.retryCount + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return relayerrors.Wrap(ctx.Err(), relayerrors.CodeNetworkError, "request cancelled")
			case <-time.After(c.retryDelay):
			}
		}

		data, retryable, err := c.doOnce(ctx, method, path, payload)
		if err == nil {
			if out == nil || len(data) == 0 {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return relayerrors.Wrap(err, relayerrors.CodeRelayerError, "failed to decode relayer response")
			}
			return nil
		}

		lastErr = err
		if !retryable {
			return err
		}

		if c.logger != nil {
			c.logger.WithFields(logrus.Fields{
				"endpoint": path,
				"attempt":  attempt,
				"error":    err,
			}).Warn("Relayer request failed, retrying")
		}
	}

	return lastErr
}

// doOnce performs a single HTTP attempt. The second return value reports
// whether the failure is retryable (transport error or 5xx status).
func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte) ([]byte, bool, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, false, relayerrors.Wrap(err, relayerrors.CodeNetworkError, "failed to build request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, relayerrors.Wrap(err, relayerrors.CodeNetworkError, "relayer request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, relayerrors.Wrap(err, relayerrors.CodeNetworkError, "failed to read relayer response")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, false, nil
	}

	if resp.StatusCode >= 500 {
		return nil, true, relayerrors.Newf(relayerrors.CodeRelayerError, "relayer returned status %d", resp.StatusCode)
	}

	return nil, false, decodeErrorBody(resp.StatusCode, data)
}

// decodeErrorBody maps a relayer error body to a RelayError, passing the
// relayer code and details through when present.
func decodeErrorBody(status int, data []byte) error {
	var body ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Code == "" {
		return relayerrors.Newf(relayerrors.CodeRelayerError, "relayer returned status %d", status)
	}

	relayErr := relayerrors.New(relayerrors.Code(body.Code), body.Message)
	if len(body.Details) > 0 {
		details := make(map[string]interface{})
		if err := json.Unmarshal(body.Details, &details); err == nil {
			relayErr = relayErr.WithDetails(details)
		}
	}
	return relayErr
}

// BaseURL returns the relayer base URL the client was constructed with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// String implements fmt.Stringer for log fields.
func (c *Client) String() string {
	return fmt.Sprintf("relayer(%s)", c.baseURL)
}
