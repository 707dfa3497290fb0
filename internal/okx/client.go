// Package okx is a thin signed client for the OKX v5 REST API.
//
// Every response passes through decodeEnvelope and is converted to one of the
// typed results in models.go; callers never see raw JSON.
package okx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.okx.com"
	defaultTimeout = 10 * time.Second

	timestampLayout = "2006-01-02T15:04:05.000Z"

	headerKey        = "OK-ACCESS-KEY"
	headerSign       = "OK-ACCESS-SIGN"
	headerTimestamp  = "OK-ACCESS-TIMESTAMP"
	headerPassphrase = "OK-ACCESS-PASSPHRASE"
	headerSimulated  = "x-simulated-trading"
)

// Config configures the OKX client.
type Config struct {
	APIKey     string
	SecretKey  string
	Passphrase string
	Sandbox    bool
	BaseURL    string
	Timeout    time.Duration
}

// Client performs authenticated calls against the account, trade, market and
// public resource groups. Each call is sent once; there is no retry or rate
// limiting at this layer.
type Client struct {
	cfg    Config
	http   *resty.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewClient constructs a client. A zero BaseURL or Timeout falls back to the defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.Sandbox {
		httpClient.SetHeader(headerSimulated, "1")
	}

	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger.Named("okx"),
		now:    time.Now,
	}
}

// Sandbox reports whether requests are flagged as demo trading.
func (c *Client) Sandbox() bool {
	return c.cfg.Sandbox
}

type call struct {
	method  string
	path    string
	params  url.Values
	payload interface{}
	private bool
}

func (c *Client) get(ctx context.Context, path string, params url.Values, private bool, out interface{}) error {
	return c.do(ctx, call{method: http.MethodGet, path: path, params: params, private: private}, out)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	return c.do(ctx, call{method: http.MethodPost, path: path, payload: payload, private: true}, out)
}

func (c *Client) do(ctx context.Context, req call, out interface{}) error {
	requestPath := req.path
	if len(req.params) > 0 {
		requestPath += "?" + req.params.Encode()
	}

	var body []byte
	if req.payload != nil {
		raw, err := sonic.Marshal(req.payload)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		body = raw
	}

	r := c.http.R().SetContext(ctx)
	if req.private {
		if c.cfg.APIKey == "" || c.cfg.SecretKey == "" || c.cfg.Passphrase == "" {
			return errors.New("okx credentials are not configured")
		}
		timestamp := c.now().UTC().Format(timestampLayout)
		r.SetHeaders(map[string]string{
			headerKey:        c.cfg.APIKey,
			headerSign:       sign(prehash(timestamp, req.method, requestPath, body), c.cfg.SecretKey),
			headerTimestamp:  timestamp,
			headerPassphrase: c.cfg.Passphrase,
		})
	}
	if body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	started := time.Now()
	resp, err := r.Execute(req.method, requestPath)
	if err != nil {
		c.logger.Debug("Request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err))
		return errors.Wrapf(err, "okx %s %s", req.method, req.path)
	}

	c.logger.Debug("Request completed",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(started)))

	return decodeEnvelope(resp.StatusCode(), resp.Body(), out)
}

func prehash(timestamp, method, requestPath string, body []byte) string {
	return timestamp + strings.ToUpper(method) + requestPath + string(body)
}

func sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
