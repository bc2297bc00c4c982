package service

import (
	"testing"
	"time"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestBuildEarnedCreditsPrizeWindowPriority(t *testing.T) {
	svc := NewCreditService(nil)
	now := time.Now()
	settings := &PricingSettings{
		IsCreditsRates: true,
		CreditsRates: models.CreditRates{
			{Count: 1000, Percent: decimal.NewFromInt(5)},
		},
	}

	orders := []models.Order{
		{
			UserID:    1,
			GroupID:   "g1",
			TotalCost: 2000,
			Prize: models.Prize{
				IsCreditsActive:    true,
				IsCreditsPermanent: true,
				CreditsRates: models.CreditRates{
					{Count: 1000, Percent: decimal.NewFromInt(20)},
				},
			},
		},
	}

	credits := svc.BuildEarnedCredits(orders, settings, now)
	if len(credits) != 1 {
		t.Fatalf("expected one credit, got %d", len(credits))
	}
	if credits[0].Amount != 400 {
		t.Fatalf("expected prize window 20%% of 2000, got %d", credits[0].Amount)
	}
	if credits[0].Arrival != constants.CreditArrivalBought {
		t.Fatalf("expected bought arrival, got %s", credits[0].Arrival)
	}
	if credits[0].ExpiredAt == nil || !credits[0].ExpiredAt.After(now) {
		t.Fatalf("expected future expiry")
	}
}

func TestBuildEarnedCreditsSkipsBonusAndCreditPaid(t *testing.T) {
	svc := NewCreditService(nil)
	now := time.Now()
	settings := &PricingSettings{
		IsCreditsRates: true,
		CreditsRates: models.CreditRates{
			{Count: 100, Percent: decimal.NewFromInt(5)},
		},
	}

	orders := []models.Order{
		{UserID: 1, TotalCost: constants.BonusOrderTotalCost, Bonus: true},
		{
			UserID:         1,
			TotalCost:      500,
			SpentCredits:   500,
			AppliedCredits: models.AppliedCredits{{CreditID: 1, SpentAmount: 500}},
		},
	}

	if credits := svc.BuildEarnedCredits(orders, settings, now); len(credits) != 0 {
		t.Fatalf("expected no credits for bonus or fully credit-paid orders, got %d", len(credits))
	}
}

func TestBuildEarnedCreditsExpiredPrizeWindowFallsBack(t *testing.T) {
	svc := NewCreditService(nil)
	now := time.Now()
	windowStart := now.Add(-48 * time.Hour)
	windowEnd := now.Add(-24 * time.Hour)
	settings := &PricingSettings{
		IsCreditsRates: true,
		CreditsRates: models.CreditRates{
			{Count: 1000, Percent: decimal.NewFromInt(5)},
		},
	}

	orders := []models.Order{
		{
			UserID:    1,
			TotalCost: 2000,
			Prize: models.Prize{
				IsCreditsActive: true,
				CreditsStartAt:  &windowStart,
				CreditsEndAt:    &windowEnd,
				CreditsRates: models.CreditRates{
					{Count: 1000, Percent: decimal.NewFromInt(20)},
				},
			},
		},
	}

	credits := svc.BuildEarnedCredits(orders, settings, now)
	if len(credits) != 1 {
		t.Fatalf("expected one credit, got %d", len(credits))
	}
	if credits[0].Amount != 100 {
		t.Fatalf("expected platform 5%% of 2000 after window close, got %d", credits[0].Amount)
	}
}
