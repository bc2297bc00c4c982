package intercom

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnabled(t *testing.T) {
	if NewClient(Config{Enabled: true, Token: "tok"}).Enabled() != true {
		t.Fatalf("expected enabled client")
	}
	if NewClient(Config{Enabled: true}).Enabled() {
		t.Fatalf("expected disabled without token")
	}
	if NewClient(Config{Token: "tok"}).Enabled() {
		t.Fatalf("expected disabled without flag")
	}
	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("expected nil client disabled")
	}
}

func TestSearchContactByEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/contacts/search" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected authorization header: %s", got)
		}
		var payload struct {
			Query struct {
				Field string `json:"field"`
				Value string `json:"value"`
			} `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload failed: %v", err)
		}
		if payload.Query.Field != "email" || payload.Query.Value != "player@example.com" {
			t.Fatalf("unexpected query: %+v", payload.Query)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"c-1","email":"player@example.com","custom_attributes":{"entriesBought":12}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{Enabled: true, BaseURL: server.URL, Token: "test-token"})
	contact, err := client.SearchContactByEmail(context.Background(), " Player@Example.com ")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if contact.ID != "c-1" {
		t.Fatalf("unexpected contact id: %s", contact.ID)
	}
	if got := contact.AttributeNumber("entriesBought"); got != 12 {
		t.Fatalf("expected entriesBought 12, got %v", got)
	}
	if got := contact.AttributeNumber("missing"); got != 0 {
		t.Fatalf("expected 0 for missing attribute, got %v", got)
	}
}

func TestSearchContactByEmailNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{Enabled: true, BaseURL: server.URL, Token: "tok"})
	if _, err := client.SearchContactByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected contact not found, got: %v", err)
	}
}

func TestSearchContactByEmailDisabled(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.SearchContactByEmail(context.Background(), "player@example.com"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected disabled error, got: %v", err)
	}
}

func TestUpdateCustomAttributes(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPut {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var payload struct {
			CustomAttributes map[string]interface{} `json:"custom_attributes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload failed: %v", err)
		}
		if payload.CustomAttributes["entriesBought"] != float64(5) {
			t.Fatalf("unexpected attributes: %+v", payload.CustomAttributes)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(Config{Enabled: true, BaseURL: server.URL, Token: "tok"})
	if err := client.UpdateCustomAttributes(context.Background(), "c-1", map[string]interface{}{"entriesBought": 5}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if gotPath != "/contacts/c-1" {
		t.Fatalf("unexpected path: %s", gotPath)
	}

	// 空属性集合是空操作
	if err := client.UpdateCustomAttributes(context.Background(), "c-1", nil); err != nil {
		t.Fatalf("expected no-op for empty attributes, got: %v", err)
	}
}

func TestUpdateCustomAttributesBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{Enabled: true, BaseURL: server.URL, Token: "tok"})
	err := client.UpdateCustomAttributes(context.Background(), "c-1", map[string]interface{}{"entriesBought": 1})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected response invalid, got: %v", err)
	}
}
