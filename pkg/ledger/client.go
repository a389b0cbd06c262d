package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	log "github.com/sirupsen/logrus"

	"github.com/movedao/dao-node/pkg/config"
	"github.com/movedao/dao-node/pkg/errors"
)

// Client - JSON-RPC client against the ledger's full node
type Client struct {
	client     *http.Client
	nodeURL    string
	maxElapsed time.Duration
}

// NewClient creates a ledger read client for the configured node.
func NewClient(cfg config.Config) *Client {
	return &Client{
		client:     &http.Client{Timeout: 30 * time.Second},
		nodeURL:    cfg.NodeURL,
		maxElapsed: 15 * time.Second,
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC method call, retrying transient transport
// failures with exponential backoff. Exhausted retries and RPC-level errors
// surface as ErrFetchFailure.
func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s request failed due to error: %v: %w", method, err, errors.ErrFetchFailure)
	}

	var raw json.RawMessage
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.nodeURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating %s request failed due to error: %v", method, err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("%s request failed due to error: %v", method, err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				log.Errorf("closing %s response body failed due to error: %v", method, err)
			}
		}()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading %s response failed due to error: %v", method, err)
		}
		if resp.StatusCode != http.StatusOK {
			err = fmt.Errorf("%s request returned non 200 status code %d", method, resp.StatusCode)
			if resp.StatusCode >= 500 {
				return err
			}
			return backoff.Permanent(err)
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(data, &rpcResp); err != nil {
			return backoff.Permanent(fmt.Errorf("unmarshaling %s response failed due to error: %v", method, err))
		}
		if rpcResp.Error != nil {
			return backoff.Permanent(fmt.Errorf("%s returned rpc error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message))
		}
		raw = rpcResp.Result
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return fmt.Errorf("%v: %w", err, errors.ErrFetchFailure)
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("unmarshaling %s result failed due to error: %v: %w", method, err, errors.ErrFetchFailure)
		}
	}
	return nil
}
