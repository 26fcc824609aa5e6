package hutko

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const (
	// DefaultAPIURL is the hutko API base URL.
	DefaultAPIURL = "https://pay.hutko.org/api/"

	// Test credentials issued by hutko for sandbox merchants.
	TestMerchantID = 1700002
	TestSecretKey  = "test"

	// DefaultTimeout bounds a single request round trip.
	DefaultTimeout = 70 * time.Second
)

// Credentials identifies the merchant to the processor. Set once at startup,
// immutable thereafter.
type Credentials struct {
	MerchantID int
	SecretKey  string
}

// TestCredentials returns the hutko sandbox credential set.
func TestCredentials() Credentials {
	return Credentials{MerchantID: TestMerchantID, SecretKey: TestSecretKey}
}

// Response is the unwrapped payload of a successful API answer.
type Response map[string]any

// Get renders a payload field as a string, or "" when absent.
func (r Response) Get(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	return scalarString(v)
}

// Status returns the response_status field.
func (r Response) Status() string { return r.Get("response_status") }

// ErrorMessage returns the processor's error text, if any.
func (r Response) ErrorMessage() string { return r.Get("error_message") }

// RequestID returns the processor-side request identifier.
func (r Response) RequestID() string { return r.Get("request_id") }

// Client talks to the hutko API. All five operations share one send pipeline;
// they differ only in endpoint path and which response field is extracted.
// Calls are synchronous, bounded by a fixed timeout and never retried; a
// timed-out call is simply a failure for the caller to handle.
type Client struct {
	apiURL     string
	creds      Credentials
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[Response]
	logger     zerolog.Logger
	observe    RequestObserver
	onState    BreakerStateHook
}

// RequestObserver is called after every API round trip, for metrics.
type RequestObserver func(endpoint string, elapsed time.Duration, err error)

// BreakerStateHook is called on circuit breaker state transitions.
type BreakerStateHook func(name string, from, to gobreaker.State)

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the API base URL.
func WithAPIURL(url string) Option {
	return func(c *Client) { c.apiURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger attaches a logger for request-level debug logging.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver attaches a per-request metrics observer.
func WithObserver(fn RequestObserver) Option {
	return func(c *Client) { c.observe = fn }
}

// WithBreakerStateHook attaches a circuit breaker state change hook.
func WithBreakerStateHook(fn BreakerStateHook) Option {
	return func(c *Client) { c.onState = fn }
}

// NewClient creates a hutko API client for the given merchant.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		apiURL:     DefaultAPIURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[Response](gobreaker.Settings{
		Name:        "hutko",
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// A processor decline is a valid answer, not a transport fault.
			return err == nil || IsDeclined(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("hutko circuit breaker state change")
			if c.onState != nil {
				c.onState(name, from, to)
			}
		},
	})
	return c
}

// Credentials returns the merchant credential set the client was built with.
func (c *Client) Credentials() Credentials { return c.creds }

// CheckoutURL requests a hosted-redirect payment URL.
func (c *Client) CheckoutURL(ctx context.Context, fields Fields) (string, error) {
	resp, err := c.send(ctx, "checkout/url", fields)
	if err != nil {
		return "", err
	}
	u := resp.Get("checkout_url")
	if u == "" {
		return "", &ProtocolError{Reason: "missing checkout_url"}
	}
	return u, nil
}

// CheckoutToken requests a short-lived embedded-widget token.
func (c *Client) CheckoutToken(ctx context.Context, fields Fields) (string, error) {
	resp, err := c.send(ctx, "checkout/token", fields)
	if err != nil {
		return "", err
	}
	token := resp.Get("token")
	if token == "" {
		return "", &ProtocolError{Reason: "missing token"}
	}
	return token, nil
}

// Reverse refunds or voids a settled transaction.
func (c *Client) Reverse(ctx context.Context, fields Fields) (Response, error) {
	return c.send(ctx, "reverse/order_id", fields)
}

// Capture settles a preauthorized transaction.
func (c *Client) Capture(ctx context.Context, fields Fields) (Response, error) {
	return c.send(ctx, "capture/order_id", fields)
}

// Recurring charges a stored recurring token.
func (c *Client) Recurring(ctx context.Context, fields Fields) (Response, error) {
	return c.send(ctx, "recurring", fields)
}

func (c *Client) send(ctx context.Context, endpoint string, fields Fields) (Response, error) {
	start := time.Now()
	resp, err := c.breaker.Execute(func() (Response, error) {
		return c.post(ctx, endpoint, fields)
	})
	if c.observe != nil {
		c.observe(endpoint, time.Since(start), err)
	}
	return resp, err
}

func (c *Client) post(ctx context.Context, endpoint string, fields Fields) (Response, error) {
	data := fields.Clone()
	data["merchant_id"] = c.creds.MerchantID
	data["signature"] = Sign(data, c.creds.SecretKey)

	body, err := json.Marshal(map[string]any{"request": data})
	if err != nil {
		return nil, &ProtocolError{Reason: "encode request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("order_id", data.Str("order_id")).
		Msg("hutko API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UnexpectedStatusError{Code: resp.StatusCode}
	}

	var wrapper struct {
		Response Response `json:"response"`
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&wrapper); err != nil {
		return nil, &ProtocolError{Reason: "decode body: " + err.Error()}
	}

	if len(wrapper.Response) == 0 {
		return nil, &ProtocolError{Reason: "missing response wrapper"}
	}
	if wrapper.Response.Status() == "" {
		return nil, &ProtocolError{Reason: "missing response_status"}
	}
	if wrapper.Response.Status() != "success" {
		return nil, &DeclinedError{Message: wrapper.Response.ErrorMessage()}
	}

	return wrapper.Response, nil
}
