// Package probe holds rules that reach out over the network.
package probe

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/reoring/grape"
	"github.com/reoring/grape/i18n"
	"github.com/reoring/grape/internal/format"
)

// DefaultTimeout bounds a single probe when no client is supplied.
const DefaultTimeout = 5 * time.Second

// Option configures ActiveURL.
type Option func(*prober)

// WithClient sets the resty client used for requests.
func WithClient(c *resty.Client) Option {
	return func(p *prober) { p.client = c }
}

// WithTimeout sets the timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(p *prober) { p.timeout = d }
}

type prober struct {
	client  *resty.Client
	timeout time.Duration
}

// ActiveURL requires a string holding an absolute URL that answers HEAD
// with a 2xx status. Servers answering 405 to HEAD are retried with GET.
// Requests carry the context of the validation pass.
func ActiveURL(opts ...Option) grape.Rule {
	p := &prober{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = resty.New().SetTimeout(p.timeout)
	}
	return func(c *grape.Context) {
		s, ok := c.Value().AsString()
		if !ok || !format.URL(s) {
			c.Report(i18n.T("string.active_url", nil), "active_url")
			return
		}
		if err := p.reachable(c, s); err != nil {
			c.Logger().Debug().Err(err).Str("url", s).Msg("url not reachable")
			c.Report(i18n.T("string.active_url", nil), "active_url")
		}
	}
}

func (p *prober) reachable(c *grape.Context, url string) error {
	resp, err := p.client.R().SetContext(c.Context()).Head(url)
	if err == nil && resp.StatusCode() == http.StatusMethodNotAllowed {
		resp, err = p.client.R().SetContext(c.Context()).Get(url)
	}
	if err != nil {
		return err
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return &StatusError{URL: url, Code: resp.StatusCode()}
	}
	return nil
}

// StatusError is logged when a URL answers with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return "probe: " + e.URL + " answered " + http.StatusText(e.Code)
}
