package azure

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"symptom-checker/backend/internal/config"
	"symptom-checker/backend/internal/model"
)

// Dispatcher turns a user turn into an upstream request and sends it.
type Dispatcher interface {
	Build(capability model.Capability, input string, history []model.ChatTurn) (*RequestSpec, error)
	Dispatch(ctx context.Context, spec *RequestSpec) (*http.Response, error)
}

type azureDispatcher struct {
	cfg    *config.UpstreamConfig
	client *http.Client
	now    func() time.Time
}

// Option customises a dispatcher.
type Option func(*azureDispatcher)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(d *azureDispatcher) { d.now = now }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *azureDispatcher) { d.client = c }
}

func NewDispatcher(cfg *config.UpstreamConfig, opts ...Option) Dispatcher {
	d := &azureDispatcher{
		cfg:    cfg,
		client: &http.Client{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewHTTPClient builds the upstream client. Only connection set-up and the
// wait for response headers are bounded; the body of a chat stream may take
// as long as the model needs.
func NewHTTPClient(dialTimeout, responseHeaderTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = dialTimeout
	transport.ResponseHeaderTimeout = responseHeaderTimeout
	return &http.Client{Transport: transport}
}

// Build validates the configuration and capability and assembles the
// request. No network activity happens here.
func (d *azureDispatcher) Build(capability model.Capability, input string, history []model.ChatTurn) (*RequestSpec, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := model.ParseCapability(string(capability))
	if err != nil {
		return nil, err
	}

	switch c {
	case model.CapabilityChat:
		return buildChat(d.cfg, SystemTurn(d.cfg.AppName, d.now(), d.cfg.Location), input, history)
	default:
		return buildImage(d.cfg, input)
	}
}

// Dispatch issues exactly one POST. The caller owns the response body.
func (d *azureDispatcher) Dispatch(ctx context.Context, spec *RequestSpec) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, spec.EndpointURL, bytes.NewReader(spec.Body))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	spec.applyHeaders(httpReq)

	slog.Debug("Dispatching upstream request", "capability", spec.Capability, "url", httpReq.URL.Redacted())
	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	return resp, nil
}
