package nodeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tobias-fyi/xebec/internal/blockchain"
	"github.com/tobias-fyi/xebec/internal/models"
)

var (
	// the node answered with something that is not JSON; callers treat it as fatal
	ErrNonJSON = errors.New("non-json response")
	// the node answered 4xx/5xx with a JSON message
	ErrRejected = errors.New("request rejected by node")
)

// typed HTTP client for a ledger node
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("node url must not be empty")
	}

	cl := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(cl)
	}
	return cl, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Ping(ctx context.Context) (models.HealthCheckResponse, error) {
	var out models.HealthCheckResponse
	err := c.do(ctx, http.MethodGet, "/ping", nil, &out)
	return out, err
}

func (c *Client) LastBlock(ctx context.Context) (blockchain.Block, error) {
	var out blockchain.Block
	err := c.do(ctx, http.MethodGet, "/last_block", nil, &out)
	return out, err
}

func (c *Client) Chain(ctx context.Context) (models.ChainResponse, error) {
	var out models.ChainResponse
	err := c.do(ctx, http.MethodGet, "/chain", nil, &out)
	return out, err
}

func (c *Client) Pending(ctx context.Context) (models.MempoolResponse, error) {
	var out models.MempoolResponse
	err := c.do(ctx, http.MethodGet, "/transactions/pending", nil, &out)
	return out, err
}

func (c *Client) NewTransaction(ctx context.Context, sender, recipient string, amount float64) (models.TransactionResponse, error) {
	req := models.TransactionRequest{Sender: &sender, Recipient: &recipient, Amount: &amount}

	var out models.TransactionResponse
	err := c.do(ctx, http.MethodPost, "/transactions/new", req, &out)
	return out, err
}

// Mine submits a proof. A rejected proof returns the node's message in the
// response together with an error wrapping ErrRejected.
func (c *Client) Mine(ctx context.Context, proof int64, id string) (models.MineResponse, error) {
	rawID, err := json.Marshal(id)
	if err != nil {
		return models.MineResponse{}, err
	}
	req := models.MineRequest{Proof: &proof, ID: rawID}

	var out models.MineResponse
	err = c.do(ctx, http.MethodPost, "/mine", req, &out)
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		out.Message = rejected.Message
	}
	return out, err
}

// RejectedError carries the status and message of a refused request.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrRejected, e.Status, e.Message)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg models.MessageResponse
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("%w: %s %s: status %d: %q", ErrNonJSON, method, path, resp.StatusCode, truncate(raw))
		}
		return &RejectedError{Status: resp.StatusCode, Message: msg.Message}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v: %q", ErrNonJSON, method, path, err, truncate(raw))
	}
	return nil
}

func truncate(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
