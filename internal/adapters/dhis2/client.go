package dhis2

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	perr "github.com/openimis/openimis-be-dhis2-py/internal/platform/errors"
	"github.com/openimis/openimis-be-dhis2-py/internal/platform/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUA        = "openimis-dhis2-adx"
	defaultRetryBase = 500 * time.Millisecond
	maxBackoff       = 30 * time.Second

	// DefaultMaxRetries is the retry budget FromConfig applies when DHIS2_MAX_RETRIES is unset
	DefaultMaxRetries = 3

	// ContentTypeADX is the media type DHIS2 expects for ADX imports
	ContentTypeADX = "application/adx+xml"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	Username  string
	Password  string
	UserAgent string
	Timeout   time.Duration

	// IDScheme identifies data elements and category options, CODE by default
	IDScheme string
	// OrgUnitIDScheme identifies org units, UID by default
	OrgUnitIDScheme string
	// DryRun asks DHIS2 to validate without saving
	DryRun bool

	// MaxRetries counts attempts after the first one; 0 disables retries
	MaxRetries int
	RetryBase  time.Duration
}

// Client posts ADX documents to DHIS2
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a Client with defaults filled in
func NewClient(o Options) *Client {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.IDScheme == "" {
		o.IDScheme = "CODE"
	}
	if o.OrgUnitIDScheme == "" {
		o.OrgUnitIDScheme = "UID"
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("dhis2"),
		now:   time.Now,
		sleep: sleepCtx,
	}
}

func (c *Client) endpoint() string {
	q := url.Values{}
	q.Set("dataElementIdScheme", c.opts.IDScheme)
	q.Set("idScheme", c.opts.IDScheme)
	q.Set("orgUnitIdScheme", c.opts.OrgUnitIDScheme)
	q.Set("async", "false")
	if c.opts.DryRun {
		q.Set("dryRun", "true")
	}
	return c.opts.BaseURL + "/api/dataValueSets?" + q.Encode()
}

// SubmitADX posts payload and returns the import summary. Transport errors,
// 429 and 5xx gateway responses are retried with exponential backoff.
// A rejected import returns the summary together with a Conflict error
func (c *Client) SubmitADX(ctx context.Context, payload []byte) (*ImportSummary, error) {
	if c.opts.BaseURL == "" {
		return nil, perr.Newf(perr.ErrorCodeValidation, "dhis2 base url is not configured")
	}
	target := c.endpoint()
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "dhis2 new request failed")
		}
		req.Header.Set("Content-Type", ContentTypeADX)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.opts.UserAgent)
		if c.opts.Username != "" {
			req.SetBasicAuth(c.opts.Username, c.opts.Password)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt >= c.opts.MaxRetries {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "dhis2 submit failed")
			}
			if err := c.retry(ctx, attempt, 0, "dhis2 transport error retrying"); err != nil {
				return nil, err
			}
			continue
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		_ = resp.Body.Close()

		c.log.Debug().
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Dur("latency", lat).
			Int("bytes", len(payload)).
			Msg("dhis2 http response")

		switch code := resp.StatusCode; {
		case code == http.StatusOK || code == http.StatusCreated || code == http.StatusAccepted:
			sum, err := decodeSummary(body)
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "dhis2 import summary is not json")
			}
			if !sum.OK() {
				return sum, perr.Newf(perr.ErrorCodeConflict, "dhis2 import %s: %d conflicts", sum.Status, len(sum.Conflicts))
			}
			return sum, nil
		case code == http.StatusConflict:
			sum, err := decodeSummary(body)
			if err != nil {
				return nil, perr.Newf(perr.ErrorCodeConflict, "dhis2 rejected the import: %s", snippet(body))
			}
			return sum, perr.Newf(perr.ErrorCodeConflict, "dhis2 import %s: %d conflicts", sum.Status, len(sum.Conflicts))
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return nil, perr.Newf(perr.ErrorCodeUpstream, "dhis2 rejected credentials (status %d)", code)
		case code == http.StatusTooManyRequests:
			if attempt >= c.opts.MaxRetries {
				return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "dhis2 rate limited")
			}
			if err := c.retry(ctx, attempt, retryAfter(resp.Header), "dhis2 rate limited backing off"); err != nil {
				return nil, err
			}
		case code == http.StatusBadGateway || code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout:
			if attempt >= c.opts.MaxRetries {
				return nil, perr.Newf(perr.ErrorCodeUnavailable, "dhis2 transient server error (status %d)", code)
			}
			if err := c.retry(ctx, attempt, 0, "dhis2 transient error retrying"); err != nil {
				return nil, err
			}
		default:
			return nil, perr.Newf(perr.ErrorCodeUpstream, "dhis2 unexpected status %d body %s", code, snippet(body))
		}
	}
}

func (c *Client) retry(ctx context.Context, attempt int, wait time.Duration, msg string) error {
	if wait <= 0 {
		wait = c.backoff(attempt)
	}
	c.log.Warn().Dur("retry_in", wait).Int("attempt", attempt).Msg(msg)
	return c.sleep(ctx, wait)
}

func (c *Client) backoff(attempt int) time.Duration {
	if attempt > 16 {
		return maxBackoff
	}
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func retryAfter(h http.Header) time.Duration {
	if s, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After"))); err == nil && s > 0 {
		return min(time.Duration(s)*time.Second, maxBackoff)
	}
	return 0
}

func snippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
