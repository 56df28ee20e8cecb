package dandelion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/proxy"
	"golang.org/x/text/unicode/norm"
)

// Default client settings.
const (
	// DefaultBaseURL is the entity extraction endpoint.
	DefaultBaseURL = "https://api.dandelion.eu/datatxt/nex/v1"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 15 * time.Second

	// DefaultLanguage lets the API detect the language.
	DefaultLanguage = "auto"

	// DefaultMinConfidence is the API's own default threshold.
	DefaultMinConfidence = 0.6

	// DefaultMaxBodySize limits how much of a response is read.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent identifies the client.
	DefaultUserAgent = "entityscan/1.0"
)

// DefaultInclude lists the optional annotation fields requested by default.
var DefaultInclude = []string{"types", "lod", "abstract"}

// Request is the input of one extraction.
// Exactly one of Text and URL should be set; Text wins when both are.
type Request struct {
	// Text is the text to analyze.
	Text string

	// URL is a web page the API fetches and analyzes itself.
	URL string

	// Lang overrides the client's language for this request.
	Lang string
}

// Client talks to the extraction API.
// It is safe for concurrent use.
type Client struct {
	token         string
	baseURL       string
	lang          string
	include       []string
	minConfidence float64
	userAgent     string
	maxBodySize   int64
	timeout       time.Duration
	proxyAddress  string
	httpClient    *http.Client
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
// WithProxy has no effect when a custom client is given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLanguage sets the default language code, e.g. "en" or "auto".
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.lang = strings.ToLower(lang)
		}
	}
}

// WithMinConfidence sets the API-side confidence threshold.
func WithMinConfidence(v float64) Option {
	return func(c *Client) {
		c.minConfidence = v
	}
}

// WithInclude sets the optional annotation fields to request.
func WithInclude(fields ...string) Option {
	return func(c *Client) {
		c.include = append([]string(nil), fields...)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize limits the response body size. Non-positive values keep the default.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithProxy routes requests through a SOCKS5 proxy at addr ("host:port").
func WithProxy(addr string) Option {
	return func(c *Client) {
		c.proxyAddress = addr
	}
}

// NewClient creates a Client authenticated with token.
func NewClient(token string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	c := &Client{
		token:         token,
		baseURL:       DefaultBaseURL,
		lang:          DefaultLanguage,
		include:       append([]string(nil), DefaultInclude...),
		minConfidence: DefaultMinConfidence,
		userAgent:     DefaultUserAgent,
		maxBodySize:   DefaultMaxBodySize,
		timeout:       DefaultTimeout,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		hc, err := newHTTPClient(c.proxyAddress)
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
	}

	return c, nil
}

// newHTTPClient builds an HTTP client, optionally dialing through a SOCKS5 proxy.
func newHTTPClient(proxyAddress string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyAddress != "" {
		if !isValidProxyAddress(proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}

	return &http.Client{Transport: transport}, nil
}

// isValidProxyAddress checks that address is "host:port" with a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// PrepareText NFC-normalizes and trims text before it is sent.
func PrepareText(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}

// Extract sends one extraction request and decodes the response.
//
// It returns ErrEmptyText for blank input, *APIError for non-2xx answers and
// a wrapped transport error when the request cannot be completed.
func (c *Client) Extract(ctx context.Context, req Request) (*Response, error) {
	text := PrepareText(req.Text)
	sourceURL := strings.TrimSpace(req.URL)
	if text == "" && sourceURL == "" {
		return nil, ErrEmptyText
	}

	lang := c.lang
	if req.Lang != "" {
		lang = strings.ToLower(req.Lang)
	}

	form := url.Values{}
	form.Set("token", c.token)
	if text != "" {
		form.Set("text", text)
	} else {
		form.Set("url", sourceURL)
	}
	form.Set("lang", lang)
	form.Set("min_confidence", strconv.FormatFloat(c.minConfidence, 'f', -1, 64))
	if len(c.include) > 0 {
		form.Set("include", strings.Join(c.include, ","))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("sending extraction request",
		"url", c.baseURL,
		"lang", lang,
		"chars", utf8.RuneCountInString(text),
		"sourceURL", sourceURL,
	)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := c.readBody(httpResp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("received extraction response",
		"status", httpResp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, newAPIError(httpResp.StatusCode, body)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	resp.readUnits(httpResp.Header)

	return &resp, nil
}

// readBody reads at most maxBodySize bytes and reports ErrResponseTooLarge
// when the body is longer.
func (c *Client) readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, ErrResponseTooLarge
	}
	return body, nil
}

// IsTimeout reports whether err was caused by the request timing out.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
