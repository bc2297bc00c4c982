package threeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(map[string]interface{}{
		"base_url": "https://gateway.example.com/",
		"api_key":  " sk_test_123 ",
	})
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if cfg.BaseURL != "https://gateway.example.com" {
		t.Fatalf("unexpected base url: %s", cfg.BaseURL)
	}
	if cfg.APIKey != "sk_test_123" {
		t.Fatalf("unexpected api key: %s", cfg.APIKey)
	}
	if cfg.TimeoutSeconds <= 0 {
		t.Fatalf("timeout not defaulted: %d", cfg.TimeoutSeconds)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(&Config{BaseURL: "https://x.example.com", APIKey: "k"}); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := ValidateConfig(&Config{APIKey: "k"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	if err := ValidateConfig(&Config{BaseURL: "https://x.example.com"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestApproveSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/payments/pay_123" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "sk_test_abc" {
			t.Fatalf("missing authorization header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pay_123","approved":true,"reference":"ref_9","status":"Authorized"}`))
	}))
	defer server.Close()

	cfg := &Config{BaseURL: server.URL, APIKey: "sk_test_abc"}
	result, err := Approve(context.Background(), cfg, "pay_123")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if !result.Approved {
		t.Fatalf("expected approved result")
	}
	if result.Reference != "ref_9" {
		t.Fatalf("unexpected reference: %s", result.Reference)
	}
	if result.TransactionID != "pay_123" {
		t.Fatalf("unexpected transaction id: %s", result.TransactionID)
	}
}

func TestApproveDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pay_55","approved":false,"status":"Declined"}`))
	}))
	defer server.Close()

	cfg := &Config{BaseURL: server.URL, APIKey: "sk"}
	result, err := Approve(context.Background(), cfg, "pay_55")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if result.Approved {
		t.Fatalf("expected declined result")
	}
}

func TestApproveBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := &Config{BaseURL: server.URL, APIKey: "sk"}
	if _, err := Approve(context.Background(), cfg, "pay_1"); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected ErrResponseInvalid, got %v", err)
	}
}

func TestApproveMissingTransactionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"approved":true}`))
	}))
	defer server.Close()

	cfg := &Config{BaseURL: server.URL, APIKey: "sk"}
	if _, err := Approve(context.Background(), cfg, "pay_1"); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected ErrResponseInvalid, got %v", err)
	}
}
