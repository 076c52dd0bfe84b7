package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/fotoserve/queuepulse/pkg/core"
)

// AuthHeader is the fixed header carrying the API credential on every request.
const AuthHeader = "X-Api-Key"

// maxErrorBodySize bounds how much of an error response body is read back
// into a ProtocolError.
const maxErrorBodySize = 4096

// Client talks to the job-queue server's REST API. The credential token is
// static; rotating it means constructing a new Client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// Option configures a Client.
type Option interface {
	apply(*Client)
}

type optionFunc func(*Client)

func (f optionFunc) apply(c *Client) { f(c) }

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return optionFunc(func(c *Client) {
		c.http = h
	})
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *Client) {
		c.http.Timeout = d
	})
}

// WithLogger sets the logger used for request-level debug logging.
func WithLogger(l zerolog.Logger) Option {
	return optionFunc(func(c *Client) {
		c.logger = l
	})
}

// NewClient creates a client for the server at baseURL, authenticating every
// request with the given token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// queueStatusPayload mirrors one entry of the server's nested /jobs response.
// Unknown queue keys decode fine because the top level is a map, and absent
// fields default to zero.
type queueStatusPayload struct {
	IsPaused bool `json:"isPaused"`
	IsActive bool `json:"isActive"`
	Counts   struct {
		Active    int `json:"active"`
		Completed int `json:"completed"`
		Failed    int `json:"failed"`
		Delayed   int `json:"delayed"`
		Waiting   int `json:"waiting"`
		Paused    int `json:"paused"`
	} `json:"counts"`
}

// Fetch retrieves the current per-queue status counts and normalizes them
// into a snapshot list sorted by queue name.
func (c *Client) Fetch(ctx context.Context) ([]core.QueueSnapshot, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/jobs")
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, protocolError(resp)
	}

	var payload map[string]queueStatusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &DecodeError{Err: err}
	}

	snapshots := make([]core.QueueSnapshot, 0, len(payload))
	for name, qs := range payload {
		snapshots = append(snapshots, core.QueueSnapshot{
			Name:           name,
			WaitingCount:   qs.Counts.Waiting,
			ActiveCount:    qs.Counts.Active,
			CompletedCount: qs.Counts.Completed,
			FailedCount:    qs.Counts.Failed,
			PausedCount:    qs.Counts.Paused,
			DelayedCount:   qs.Counts.Delayed,
			IsPaused:       qs.IsPaused,
		})
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name < snapshots[j].Name
	})

	c.logger.Debug().Int("queues", len(snapshots)).Msg("fetched queue snapshots")
	return snapshots, nil
}

// PauseQueue pauses a queue on the server. The change shows up in the next
// snapshot, not in any already-fetched one.
func (c *Client) PauseQueue(ctx context.Context, queueName string) error {
	return c.doEmpty(ctx, http.MethodPost, fmt.Sprintf("/jobs/%s/pause", queueName))
}

// ResumeQueue resumes a paused queue on the server.
func (c *Client) ResumeQueue(ctx context.Context, queueName string) error {
	return c.doEmpty(ctx, http.MethodPost, fmt.Sprintf("/jobs/%s/resume", queueName))
}

// RetryJob asks the server to retry a failed job.
func (c *Client) RetryJob(ctx context.Context, jobID string) error {
	return c.doEmpty(ctx, http.MethodPost, fmt.Sprintf("/jobs/%s/retry", jobID))
}

// CancelJob asks the server to cancel a job.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	return c.doEmpty(ctx, http.MethodDelete, fmt.Sprintf("/jobs/%s/cancel", jobID))
}

// Ping performs an out-of-band connectivity check. It is not part of the
// regular poll cycle.
func (c *Client) Ping(ctx context.Context) error {
	return c.doEmpty(ctx, http.MethodGet, "/server/ping")
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set(AuthHeader, c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doEmpty(ctx context.Context, method, path string) error {
	req, err := c.newRequest(ctx, method, path)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return protocolError(resp)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func protocolError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	return &ProtocolError{StatusCode: resp.StatusCode, Body: string(body)}
}
