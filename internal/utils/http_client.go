package utils

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "chatsync"

// HTTPClient is the resty client shared by the blob store adapters.
type HTTPClient struct {
	*resty.Client
}

// HTTPClientOptions configures [NewHTTPClient]. Zero values leave the resty
// defaults in place.
type HTTPClientOptions struct {
	BaseURL string
	Timeout time.Duration
	// Token is sent as "Authorization: Bearer <token>" on every request.
	Token string
}

// NewHTTPClient returns an independent client with its own connection pool.
func NewHTTPClient(opts HTTPClientOptions) *HTTPClient {
	client := resty.New().SetHeader("User-Agent", userAgent)

	if opts.BaseURL != "" {
		client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if token := strings.TrimSpace(opts.Token); token != "" {
		client.SetAuthToken(token)
	}

	return &HTTPClient{Client: client}
}
