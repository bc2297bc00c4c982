package service

import (
	"testing"

	"github.com/rafflehouse-next/internal/models"
)

func TestGenerateTickets(t *testing.T) {
	svc := NewTicketService()

	tickets := svc.GenerateTickets(5)
	if len(tickets) != 5 {
		t.Fatalf("expected 5 tickets, got %d", len(tickets))
	}
	seen := make(map[string]bool, len(tickets))
	for _, ticket := range tickets {
		if ticket == "" {
			t.Fatalf("expected non-empty ticket number")
		}
		if seen[ticket] {
			t.Fatalf("duplicate ticket number: %s", ticket)
		}
		seen[ticket] = true
	}

	if got := svc.GenerateTickets(0); len(got) != 0 {
		t.Fatalf("expected empty slice for zero count, got %d", len(got))
	}
}

func TestBonusTicketCountPrizeTierPriority(t *testing.T) {
	svc := NewTicketService()
	settings := &PricingSettings{
		IsFreeTicketsRates: true,
		FreeTicketsRates: models.FreeTicketRates{
			{AmountTickets: 10, FreeTickets: 1},
		},
	}

	prize := &models.Prize{
		IsFreeTicketsRates: true,
		FreeTicketsRates: models.FreeTicketRates{
			{AmountTickets: 20, FreeTickets: 3},
		},
	}
	if got := svc.BonusTicketCount(prize, 20, settings); got != 3 {
		t.Fatalf("expected prize tier 3 bonus tickets, got %d", got)
	}

	// 奖品阶梯启用但未命中时不回落到平台阶梯
	if got := svc.BonusTicketCount(prize, 10, settings); got != 0 {
		t.Fatalf("expected 0 bonus tickets when prize tier misses, got %d", got)
	}

	// 奖品未启用阶梯时用平台阶梯
	plain := &models.Prize{}
	if got := svc.BonusTicketCount(plain, 10, settings); got != 1 {
		t.Fatalf("expected platform tier 1 bonus ticket, got %d", got)
	}
	if got := svc.BonusTicketCount(plain, 10, nil); got != 0 {
		t.Fatalf("expected 0 bonus tickets without settings, got %d", got)
	}
}
