package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solpay/pkg/amount"
	"solpay/pkg/types"
)

// DefaultTimeout bounds a single aggregator request. Quotes go stale in
// seconds, so there is no point waiting longer.
const DefaultTimeout = 15 * time.Second

// JupiterClient talks to the aggregator's v6 HTTP API. It issues no
// retries of its own: a quote is cheap to re-request and silently retrying
// could hide a worsening price from the caller.
type JupiterClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewJupiterClient creates an aggregator client for the given base URL.
func NewJupiterClient(baseURL string, timeout time.Duration) *JupiterClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &JupiterClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// quoteResponse is the subset of the aggregator's quote payload we read.
// The full body is preserved as the opaque route token.
type quoteResponse struct {
	InputMint  string `json:"inputMint"`
	InAmount   string `json:"inAmount"`
	OutputMint string `json:"outputMint"`
	OutAmount  string `json:"outAmount"`
}

// ExactOutQuote asks the aggregator how much of inputMint is needed to
// produce exactly outputAmount of outputMint.
func (c *JupiterClient) ExactOutQuote(ctx context.Context, outputMint, inputMint string, outputAmount uint64, slippageBps int) (*types.Quote, error) {
	if err := amount.CheckPositive(outputAmount); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", strconv.FormatUint(outputAmount, 10))
	q.Set("swapMode", "ExactOut")
	q.Set("slippageBps", strconv.Itoa(slippageBps))

	body, err := c.get(ctx, "/quote?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrQuoteUnavailable, err)
	}

	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed quote payload: %v", types.ErrQuoteUnavailable, err)
	}

	inAmount, err := strconv.ParseUint(resp.InAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed input amount %q", types.ErrQuoteUnavailable, resp.InAmount)
	}
	outAmount, err := strconv.ParseUint(resp.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed output amount %q", types.ErrQuoteUnavailable, resp.OutAmount)
	}

	return &types.Quote{
		InputMint:  resp.InputMint,
		OutputMint: resp.OutputMint,
		InAmount:   inAmount,
		OutAmount:  outAmount,
		Route:      json.RawMessage(body),
	}, nil
}

// swapRequest asks the aggregator to expand a quoted route into a
// ready-to-sign transaction. The route token goes back verbatim.
type swapRequest struct {
	QuoteResponse           json.RawMessage `json:"quoteResponse"`
	UserPublicKey           string          `json:"userPublicKey"`
	DestinationTokenAccount string          `json:"destinationTokenAccount,omitempty"`
	WrapAndUnwrapSol        bool            `json:"wrapAndUnwrapSol"`
}

type swapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// SwapTransaction expands the quote's route into serialized unsigned
// transaction bytes with the payer as fee payer. Returns ErrRouteExpired
// when the aggregator reports the route is no longer executable.
func (c *JupiterClient) SwapTransaction(ctx context.Context, quote *types.Quote, payer, destinationTokenAccount string) ([]byte, uint64, error) {
	reqBody, err := json.Marshal(swapRequest{
		QuoteResponse:           quote.Route,
		UserPublicKey:           payer,
		DestinationTokenAccount: destinationTokenAccount,
		WrapAndUnwrapSol:        true,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(reqBody))
	if err != nil {
		return nil, 0, fmt.Errorf("create swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("swap request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read swap response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		msg := apiErrorMessage(body)
		if isRouteGone(msg) {
			return nil, 0, fmt.Errorf("%w: %s", types.ErrRouteExpired, msg)
		}
		return nil, 0, fmt.Errorf("aggregator error (status %d): %s", httpResp.StatusCode, msg)
	}

	var resp swapResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("malformed swap payload: %w", err)
	}
	if resp.SwapTransaction == "" {
		return nil, 0, fmt.Errorf("empty swap transaction in response")
	}

	raw, err := base64.StdEncoding.DecodeString(resp.SwapTransaction)
	if err != nil {
		return nil, 0, fmt.Errorf("decode swap transaction: %w", err)
	}

	return raw, resp.LastValidBlockHeight, nil
}

// get performs a GET and returns the body, turning non-2xx responses into
// errors carrying the aggregator's own message when present.
func (c *JupiterClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("aggregator error (status %d): %s", httpResp.StatusCode, apiErrorMessage(body))
	}

	return body, nil
}

// apiErrorMessage extracts a short human-readable message from an
// aggregator error body. Falls back to the raw body, truncated.
func apiErrorMessage(body []byte) string {
	var errorResp map[string]interface{}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if msg, ok := errorResp["error"].(string); ok && msg != "" {
			return msg
		}
		if msg, ok := errorResp["message"].(string); ok && msg != "" {
			return msg
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		msg = "no error detail"
	}
	return msg
}

// isRouteGone recognizes aggregator messages that mean the quoted route is
// no longer executable and a fresh quote is required.
func isRouteGone(msg string) bool {
	m := strings.ToUpper(msg)
	return strings.Contains(m, "ROUTE") || strings.Contains(m, "STALE") || strings.Contains(m, "EXPIRED")
}
