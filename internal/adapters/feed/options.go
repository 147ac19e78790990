package feed

import (
	"net/http"
	"time"

	"github.com/marquee-live/marquee/pkg/logger"
)

// ClientOption configures a feed Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpc = hc
		}
	}
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithFetchTimeout bounds each refresh cycle.
func WithFetchTimeout(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRefresherLogger overrides the default named logger.
func WithRefresherLogger(l logger.Logger) RefresherOption {
	return func(r *Refresher) {
		if l != nil {
			r.log = l
		}
	}
}
