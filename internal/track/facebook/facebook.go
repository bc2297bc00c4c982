package facebook

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrDisabled        = errors.New("facebook client disabled")
	ErrRequestFailed   = errors.New("facebook request failed")
	ErrResponseInvalid = errors.New("facebook response invalid")
)

const (
	defaultAPIVersion = "v19.0"
	defaultBaseURL    = "https://graph.facebook.com"
	defaultTimeout    = 10 * time.Second
)

// Config 转化追踪客户端配置。
type Config struct {
	Enabled        bool
	BaseURL        string
	PixelID        string
	AccessToken    string
	APIVersion     string
	TimeoutSeconds int
}

// Event 服务端转化事件。
type Event struct {
	Name       string
	Email      string
	ValuePence int64
	Currency   string
	ContentIDs []string
	EventTime  time.Time
}

// Client 转化追踪客户端。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建转化追踪客户端。
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled 返回客户端是否可用。
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled &&
		strings.TrimSpace(c.cfg.PixelID) != "" &&
		strings.TrimSpace(c.cfg.AccessToken) != ""
}

// SendEvent 上报服务端转化事件。
func (c *Client) SendEvent(ctx context.Context, event Event) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	if strings.TrimSpace(event.Name) == "" {
		return fmt.Errorf("%w: event name is required", ErrRequestFailed)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	eventTime := event.EventTime
	if eventTime.IsZero() {
		eventTime = time.Now()
	}

	customData := map[string]interface{}{
		"value":    float64(event.ValuePence) / 100,
		"currency": strings.ToUpper(strings.TrimSpace(event.Currency)),
	}
	if len(event.ContentIDs) > 0 {
		customData["content_ids"] = event.ContentIDs
	}
	payload := map[string]interface{}{
		"data": []map[string]interface{}{
			{
				"event_name":    event.Name,
				"event_time":    eventTime.Unix(),
				"action_source": "website",
				"user_data": map[string]interface{}{
					"em": []string{hashEmail(event.Email)},
				},
				"custom_data": customData,
			},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal payload failed", ErrRequestFailed)
	}
	endpoint := fmt.Sprintf("%s/%s/%s/events?access_token=%s",
		c.cfg.BaseURL, c.cfg.APIVersion, c.cfg.PixelID, c.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: events status %d: %s", ErrResponseInvalid, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func hashEmail(email string) string {
	normalized := strings.TrimSpace(strings.ToLower(email))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
