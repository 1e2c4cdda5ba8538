package mexc

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"sigbridge/internal/config"
	"sigbridge/internal/pkg/circuit"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	headerAPIKey      = "ApiKey"
	headerRequestTime = "Request-Time"
	headerSignature   = "Signature"
	headerRecvWindow  = "Recv-Window"
)

// Client 封装 MEXC USDT 本位永续合约 REST API 的传输层：
// 签名、限速（令牌桶，串行化出站请求）、熔断与统一的响应信封校验。
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	apiKey     string
	apiSecret  string
	recvWindow int
	limiter    *rate.Limiter
	breaker    *circuit.Breaker
	now        func() time.Time
}

// NewClient constructs the transport from configuration.
func NewClient(cfg config.MexcConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("mexc.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing mexc.base_url failed: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 5
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     strings.TrimSpace(cfg.APIKey),
		apiSecret:  strings.TrimSpace(cfg.APISecret),
		recvWindow: cfg.RecvWindow,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), burst),
		breaker:    circuit.NewBreaker("mexc", 5, 30*time.Second),
		now:        time.Now,
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Get 发送公共或私有 GET 请求，返回响应 data 字段的原始 JSON。
func (c *Client) Get(ctx context.Context, path string, query url.Values, signed bool) (gjson.Result, error) {
	endpoint := c.resolve(path)
	if len(query) > 0 {
		endpoint += "?" + encodeSorted(query)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	if signed {
		c.sign(req, encodeSorted(query))
	}
	return c.do(req)
}

// Post 发送私有 POST 请求（JSON body），返回响应 data 字段的原始 JSON。
func (c *Client) Post(ctx context.Context, path string, payload any) (gjson.Result, error) {
	if c.apiKey == "" || c.apiSecret == "" {
		return gjson.Result{}, fmt.Errorf("mexc api credentials not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return gjson.Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.sign(req, string(body))
	return c.do(req)
}

func (c *Client) resolve(path string) string {
	base := strings.TrimRight(c.baseURL.String(), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// sign 按合约 API 规则签名：HMAC-SHA256(secret, accessKey + timestamp + paramString)。
func (c *Client) sign(req *http.Request, paramString string) {
	ts := fmt.Sprintf("%d", c.now().UnixMilli())
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(c.apiKey + ts + paramString))
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerRequestTime, ts)
	req.Header.Set(headerSignature, hex.EncodeToString(mac.Sum(nil)))
	if c.recvWindow > 0 {
		req.Header.Set(headerRecvWindow, fmt.Sprintf("%d", c.recvWindow))
	}
}

func (c *Client) do(req *http.Request) (gjson.Result, error) {
	if !c.breaker.Allow() {
		return gjson.Result{}, fmt.Errorf("mexc circuit open, request refused")
	}
	if err := c.limiter.Wait(req.Context()); err != nil {
		return gjson.Result{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return gjson.Result{}, fmt.Errorf("mexc request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.breaker.RecordFailure()
		return gjson.Result{}, fmt.Errorf("mexc read response failed: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		c.breaker.RecordFailure()
		return gjson.Result{}, fmt.Errorf("mexc http %d: %s", resp.StatusCode, truncate(raw, 256))
	}
	c.breaker.RecordSuccess()

	parsed := gjson.ParseBytes(raw)
	// 信封：{"success":bool,"code":int,"message":string,"data":...}
	if s := parsed.Get("success"); s.Exists() && !s.Bool() {
		return gjson.Result{}, fmt.Errorf("mexc error code=%d: %s",
			parsed.Get("code").Int(), parsed.Get("message").String())
	}
	if code := parsed.Get("code"); code.Exists() && code.Int() != 0 && code.Int() != 200 {
		return gjson.Result{}, fmt.Errorf("mexc error code=%d: %s",
			code.Int(), parsed.Get("message").String())
	}
	return parsed.Get("data"), nil
}

func encodeSorted(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+query.Get(k))
	}
	return strings.Join(parts, "&")
}

func truncate(raw []byte, n int) string {
	s := string(raw)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
