package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/lendtrack-backend/internal/pkg/httpx"
	"github.com/yungbote/lendtrack-backend/internal/platform/ctxutil"
	"github.com/yungbote/lendtrack-backend/internal/platform/envutil"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
)

// Client delivers push notifications to a single device token.
type Client interface {
	Send(ctx context.Context, req SendRequest) (*SendResponse, error)
}

type Config struct {
	ServerKey  string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	timeoutSec := envutil.Int("FCM_TIMEOUT_SECONDS", 10)
	maxRetries := envutil.Int("FCM_MAX_RETRIES", 2)

	return Config{
		ServerKey:  strings.TrimSpace(os.Getenv("FCM_SERVER_KEY")),
		BaseURL:    strings.TrimSpace(os.Getenv("FCM_BASE_URL")),
		Timeout:    time.Duration(timeoutSec) * time.Second,
		MaxRetries: maxRetries,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	cfg.ServerKey = strings.TrimSpace(cfg.ServerKey)
	if cfg.ServerKey == "" {
		return nil, fmt.Errorf("missing FCM_SERVER_KEY")
	}

	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://fcm.googleapis.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("client", "FCMClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
	maxRetries int
}

type SendRequest struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type payload struct {
	To           string            `json:"to"`
	Notification notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type SendResponse struct {
	Success   int `json:"success"`
	Failure   int `json:"failure"`
	MessageID any `json:"message_id,omitempty"`
}

func (c *client) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("fcm client unavailable")
	}

	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		return nil, fmt.Errorf("fcm: device token required")
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Body) == "" {
		return nil, fmt.Errorf("fcm: title or body required")
	}

	body := payload{
		To:           req.Token,
		Notification: notification{Title: req.Title, Body: req.Body},
		Data:         req.Data,
	}
	endpoint := c.cfg.BaseURL + "/fcm/send"
	return doJSON[SendResponse](c, ctx, endpoint, body)
}

// ---------- HTTP / retry helpers ----------

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "fcm: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("fcm http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func doJSON[T any](c *client, ctx context.Context, urlStr string, in any) (*T, error) {
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		out, resp, err := doJSONOnce[T](c, ctx, urlStr, in)
		if err == nil {
			return out, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return nil, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 5*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("FCM request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return nil, fmt.Errorf("unreachable retry loop")
}

func doJSONOnce[T any](c *client, ctx context.Context, urlStr string, in any) (*T, *http.Response, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodPost, urlStr, bytes.NewReader(raw))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.cfg.ServerKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resp, err
	}

	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out T
	if len(respBody) == 0 {
		return &out, resp, nil
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, resp, fmt.Errorf("fcm decode error: %w; raw=%s", err, string(respBody))
	}
	return &out, resp, nil
}
