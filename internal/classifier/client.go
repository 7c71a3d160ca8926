package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/nhle/case-classifier/internal/model"
)

const defaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// classifyRequest is the wire body sent to the service.
type classifyRequest struct {
	EmailBody string `json:"email_body"`
}

// Client posts email text to the classification service.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewClient creates a client for the endpoint described by cfg.
func NewClient(cfg model.ServiceConfig, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint: cfg.Endpoint(),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.Named("classifier"),
	}
}

// Endpoint returns the full URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Classify sends body verbatim and decodes the service answer. It returns
// a *RemoteError for non-2xx statuses and a *TransportError when the
// exchange fails or the body is not JSON.
func (c *Client) Classify(
	ctx context.Context,
	body string,
) (*model.ClassificationResult, error) {
	payload, err := json.Marshal(classifyRequest{EmailBody: body})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload),
	)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("posting classification request",
		zap.String("endpoint", c.endpoint),
		zap.Int("body_bytes", len(body)),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{
			Endpoint: c.endpoint,
			Err:      fmt.Errorf("reading response: %w", err),
		}
	}

	// The body is decoded before the status is inspected, so a non-JSON
	// error page is a transport failure rather than a service error.
	if !gjson.ValidBytes(respBody) {
		return nil, &TransportError{
			Endpoint: c.endpoint,
			Err:      fmt.Errorf("status %d: %w", resp.StatusCode, ErrMalformedResponse),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// A bare null carries no error field to read.
		if gjson.ParseBytes(respBody).Type == gjson.Null {
			return nil, &TransportError{
				Endpoint: c.endpoint,
				Err:      fmt.Errorf("status %d: %w", resp.StatusCode, ErrNullErrorBody),
			}
		}
		return nil, &RemoteError{
			StatusCode: resp.StatusCode,
			Message:    remoteMessage(respBody),
		}
	}

	return parseResult(respBody), nil
}
