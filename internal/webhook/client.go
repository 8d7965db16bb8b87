package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	DefaultTimeout = 15 * time.Second
	UserAgent      = "MPD/1.0"

	// MaxBodyBytes caps both the outbound payload and how much of the
	// receiver's response is read before the connection is released.
	MaxBodyBytes = 1 << 20
)

// Result is the normalized outcome of one delivery. Transport failures carry
// Status 0 and a non-empty Error; any received response carries its status.
type Result struct {
	OK        bool   `json:"ok"`
	Status    int    `json:"status"`
	ElapsedMs int64  `json:"ms"`
	Error     string `json:"error,omitempty"`
}

// Client performs a single webhook POST with a hard timeout. It never
// returns an error: every outcome is a Result.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		http: &http.Client{
			Timeout: timeout,
			// a redirect would replay the signed POST as a body-less GET;
			// 3xx is reported as a non-success response instead
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
	}
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

func (c *Client) Deliver(ctx context.Context, url string, headers http.Header, body []byte) Result {
	if len(body) > MaxBodyBytes {
		return Result{Error: fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes)}
	}

	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{ElapsedMs: elapsedMs(started), Error: fmt.Sprintf("create request: %v", err)}
	}

	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{ElapsedMs: elapsedMs(started), Error: c.describe(err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodyBytes))
		_ = resp.Body.Close()
	}()

	return Result{
		OK:        resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:    resp.StatusCode,
		ElapsedMs: elapsedMs(started),
	}
}

func (c *Client) describe(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("timeout of %dms exceeded", c.timeout.Milliseconds())
	}
	if err.Error() == "" {
		return "network error"
	}
	return err.Error()
}

func elapsedMs(started time.Time) int64 {
	return time.Since(started).Milliseconds()
}
