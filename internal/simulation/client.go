package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kanonhq/kanon/internal/log"
)

// readBufferSize is the chunk size for reading the response body.
const readBufferSize = 8 * 1024

// errorBodyLimit caps how much of a non-2xx response body is read for the
// error message.
const errorBodyLimit = 4 * 1024

// Client runs simulations against a remote streaming endpoint and feeds the
// decoded events into an Aggregator. One Run call corresponds to one HTTP
// request and one pass through the aggregator lifecycle.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The default has no
// timeout: a simulation stream legitimately stays open for minutes, so
// cancellation is driven by the caller's context instead.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a simulation client for the given endpoint URL.
func NewClient(endpoint string, logger log.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = log.NewNop()
	}
	c := &Client{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run issues the simulation request and consumes the streamed response until
// a terminal event or a fatal error. The aggregator is fully reset before
// the request goes out; on return it is in StateDone or StateFailed.
//
// Cancelling ctx aborts the underlying request and fails the aggregator.
func (c *Client) Run(ctx context.Context, req Request, agg *Aggregator) error {
	if err := req.Validate(); err != nil {
		return err
	}

	agg.Begin(req.Strategies)
	start := time.Now()

	body, err := json.Marshal(req)
	if err != nil {
		err = fmt.Errorf("encoding request: %w", err)
		agg.Fail(err)
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		err = fmt.Errorf("building request: %w", err)
		agg.Fail(err)
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		err = fmt.Errorf("simulation request: %w", err)
		agg.Fail(err)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = fmt.Errorf("simulation endpoint returned %s: %s",
			resp.Status, readErrorBody(resp.Body))
		agg.Fail(err)
		return err
	}

	agg.StreamStarted()
	if err := c.consume(ctx, resp.Body, agg); err != nil {
		return err
	}

	c.logger.Info("simulation stream finished",
		"state", agg.State().String(),
		"runs", agg.RunCount(),
		"elapsed", time.Since(start))
	return nil
}

// consume reads the response body chunk by chunk, decodes frames and applies
// events until the terminal event or end of stream.
func (c *Client) consume(ctx context.Context, body io.Reader, agg *Aggregator) error {
	dec := &FrameDecoder{}
	defer dec.Close()

	buf := make([]byte, readBufferSize)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, payload := range dec.Write(buf[:n]) {
				ev, perr := ParseEvent(payload)
				if perr != nil {
					c.logger.Debug("skipping malformed frame", "error", perr)
					continue
				}
				if err := agg.Apply(ctx, ev); err != nil {
					return err
				}
				if agg.State() == StateDone {
					// Terminal event processed; remaining frames, if any,
					// have no further effects.
					return nil
				}
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			err := fmt.Errorf("reading stream: %w", readErr)
			agg.Fail(err)
			return err
		}
	}

	// End of stream without a complete event is a truncated run, not a
	// success; partial state must not pass for a finished simulation.
	agg.Fail(ErrStreamTruncated)
	return ErrStreamTruncated
}

// readErrorBody extracts a short error message from a non-2xx response.
func readErrorBody(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, errorBodyLimit))
	if err != nil || len(raw) == 0 {
		return "no response body"
	}
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error != "" {
		return parsed.Error
	}
	return string(raw)
}
