package intercom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrDisabled        = errors.New("intercom client disabled")
	ErrRequestFailed   = errors.New("intercom request failed")
	ErrResponseInvalid = errors.New("intercom response invalid")
	ErrContactNotFound = errors.New("intercom contact not found")
)

const defaultTimeout = 10 * time.Second

// Config CRM 客户端配置。
type Config struct {
	Enabled        bool
	BaseURL        string
	Token          string
	TimeoutSeconds int
}

// Contact CRM 联系人。
type Contact struct {
	ID               string
	Email            string
	CustomAttributes map[string]interface{}
}

// Client CRM 客户端。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 创建 CRM 客户端。
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.intercom.io"
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
	return c != nil && c.cfg.Enabled && strings.TrimSpace(c.cfg.Token) != ""
}

// SearchContactByEmail 按邮箱查询联系人。
func (c *Client) SearchContactByEmail(ctx context.Context, email string) (*Contact, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrRequestFailed)
	}

	payload := map[string]interface{}{
		"query": map[string]interface{}{
			"field":    "email",
			"operator": "=",
			"value":    email,
		},
	}
	body, statusCode, err := c.doJSONRequest(ctx, http.MethodPost, "/contacts/search", payload)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, fmt.Errorf("%w: search status %d", ErrResponseInvalid, statusCode)
	}

	var decoded struct {
		Data []struct {
			ID               string                 `json:"id"`
			Email            string                 `json:"email"`
			CustomAttributes map[string]interface{} `json:"custom_attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode search response failed", ErrResponseInvalid)
	}
	if len(decoded.Data) == 0 {
		return nil, ErrContactNotFound
	}
	first := decoded.Data[0]
	attrs := first.CustomAttributes
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	return &Contact{ID: first.ID, Email: first.Email, CustomAttributes: attrs}, nil
}

// UpdateCustomAttributes 更新联系人自定义属性。
func (c *Client) UpdateCustomAttributes(ctx context.Context, contactID string, attrs map[string]interface{}) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return fmt.Errorf("%w: contact id is required", ErrRequestFailed)
	}
	if len(attrs) == 0 {
		return nil
	}

	payload := map[string]interface{}{"custom_attributes": attrs}
	_, statusCode, err := c.doJSONRequest(ctx, http.MethodPut, "/contacts/"+contactID, payload)
	if err != nil {
		return err
	}
	if statusCode < 200 || statusCode >= 300 {
		return fmt.Errorf("%w: update status %d", ErrResponseInvalid, statusCode)
	}
	return nil
}

// AttributeNumber 读取联系人数值属性,缺失时返回 0。
func (ct *Contact) AttributeNumber(key string) float64 {
	if ct == nil || ct.CustomAttributes == nil {
		return 0
	}
	value, ok := ct.CustomAttributes[key]
	if !ok || value == nil {
		return 0
	}
	switch typed := value.(type) {
	case float64:
		return typed
	case int64:
		return float64(typed)
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: marshal payload failed", ErrRequestFailed)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}
