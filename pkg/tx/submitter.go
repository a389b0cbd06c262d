package tx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/movedao/dao-node/pkg/config"
	"github.com/movedao/dao-node/pkg/errors"
	"github.com/movedao/dao-node/pkg/model"
)

// Submitter hands a built request to the external signing and submission
// collaborator. Key custody is entirely outside this module.
type Submitter interface {
	Submit(ctx context.Context, req model.UnsignedRequest) (model.ExecutionResult, error)
}

// HTTPSubmitter forwards unsigned requests to a local signer service.
type HTTPSubmitter struct {
	client    *http.Client
	signerURL string
}

// NewHTTPSubmitter creates a submitter against the configured signer.
func NewHTTPSubmitter(cfg config.Config) *HTTPSubmitter {
	return &HTTPSubmitter{
		client:    &http.Client{Timeout: 60 * time.Second},
		signerURL: cfg.SignerURL,
	}
}

// Submit posts the request to the signer and decodes the execution result.
func (s *HTTPSubmitter) Submit(ctx context.Context, request model.UnsignedRequest) (model.ExecutionResult, error) {
	if s.signerURL == "" {
		return model.ExecutionResult{}, fmt.Errorf("no signer configured: %w", errors.ErrSubmissionFailure)
	}

	bs, err := json.Marshal(request)
	if err != nil {
		return model.ExecutionResult{}, fmt.Errorf("marshal request failed due to error: %v: %w", err, errors.ErrSubmissionFailure)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.signerURL, bytes.NewReader(bs))
	if err != nil {
		return model.ExecutionResult{}, fmt.Errorf("creating submit request failed due to error: %v: %w", err, errors.ErrSubmissionFailure)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.ExecutionResult{}, fmt.Errorf("submit request failed due to error: %v: %w", err, errors.ErrSubmissionFailure)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ExecutionResult{}, fmt.Errorf("reading submit response failed due to error: %v: %w", err, errors.ErrSubmissionFailure)
	}
	if resp.StatusCode != http.StatusOK {
		return model.ExecutionResult{}, fmt.Errorf("signer returned non 200 status code %d: %w", resp.StatusCode, errors.ErrSubmissionFailure)
	}

	var result model.ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.ExecutionResult{}, fmt.Errorf("unmarshaling execution result failed due to error: %v: %w", err, errors.ErrSubmissionFailure)
	}
	return result, nil
}
