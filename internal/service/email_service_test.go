package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rafflehouse-next/internal/models"
)

func TestReceiptTemplateRendering(t *testing.T) {
	input := ReceiptEmailInput{
		Name:    "Alex",
		GroupID: "group-123",
		Buckets: []ReceiptBucket{
			{Label: "Dream Home", Tickets: 5, Amount: models.NewMoneyFromPence(1250)},
			{Label: "Instant Win", Tickets: 2, Amount: models.NewMoneyFromPence(198)},
		},
		TotalPaid:   models.NewMoneyFromPence(1448),
		AddPhoneURL: "https://rafflehouse.example/add-phone?token=abc",
		WebURL:      "https://rafflehouse.example",
	}

	var body bytes.Buffer
	if err := receiptTemplate.Execute(&body, input); err != nil {
		t.Fatalf("render receipt failed: %v", err)
	}
	rendered := body.String()

	for _, expected := range []string{
		"Hi Alex",
		"order group-123",
		"Dream Home: 5 entries",
		"£12.50",
		"Total paid: £14.48",
		"add-phone?token=abc",
	} {
		if !strings.Contains(rendered, expected) {
			t.Fatalf("receipt missing %q:\n%s", expected, rendered)
		}
	}
}

func TestReceiptTemplateOmitsPhonePrompt(t *testing.T) {
	input := ReceiptEmailInput{
		Name:      "Alex",
		GroupID:   "group-123",
		TotalPaid: models.NewMoneyFromPence(500),
		WebURL:    "https://rafflehouse.example",
	}

	var body bytes.Buffer
	if err := receiptTemplate.Execute(&body, input); err != nil {
		t.Fatalf("render receipt failed: %v", err)
	}
	if strings.Contains(body.String(), "phone number") {
		t.Fatalf("expected no phone prompt when url empty:\n%s", body.String())
	}
}

func TestSendReceiptEmailDisabled(t *testing.T) {
	svc := NewEmailService(nil)
	err := svc.SendReceiptEmail("player@example.com", ReceiptEmailInput{GroupID: "g"})
	if !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected disabled error, got: %v", err)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "smtp_550_no_such_recipient",
			err:  errors.New("550 No such recipient here"),
			want: true,
		},
		{
			name: "smtp_user_unknown",
			err:  errors.New("SMTP 5.1.1 user unknown"),
			want: true,
		},
		{
			name: "smtp_550_mailbox_unavailable",
			err:  errors.New("550 mailbox unavailable"),
			want: true,
		},
		{
			name: "network_timeout",
			err:  errors.New("dial tcp timeout"),
			want: false,
		},
		{
			name: "nil_error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmailRecipientRejected(tt.err); got != tt.want {
				t.Fatalf("isEmailRecipientRejected() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmailSendError(t *testing.T) {
	rejected := errors.New("550 No such recipient here")
	if got := normalizeEmailSendError(rejected); !errors.Is(got, ErrEmailRecipientRejected) {
		t.Fatalf("normalizeEmailSendError() expected ErrEmailRecipientRejected, got %v", got)
	}

	networkErr := errors.New("dial tcp timeout")
	if got := normalizeEmailSendError(networkErr); !errors.Is(got, networkErr) {
		t.Fatalf("normalizeEmailSendError() should keep original error, got %v", got)
	}

	if got := normalizeEmailSendError(nil); got != nil {
		t.Fatalf("normalizeEmailSendError(nil) should be nil, got %v", got)
	}
}
