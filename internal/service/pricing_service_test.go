package service

import (
	"testing"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestCalculateTicketPriceFlatDiscountWins(t *testing.T) {
	svc := NewPricingService()
	prize := &models.Prize{
		TicketPrice:      models.NewMoneyFromDecimal(decimal.RequireFromString("4.99")),
		IsActiveDiscount: true,
		DiscountPrice:    models.NewMoneyFromDecimal(decimal.RequireFromString("3.50")),
		IsDiscountRates:  true,
		DiscountRates: models.DiscountRates{
			{AmountTickets: 1, NewPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("1.00"))},
		},
	}
	got := svc.CalculateTicketPrice(prize, 10, constants.PrizeTypePrize, nil, nil)
	if !got.Equal(decimal.RequireFromString("3.50")) {
		t.Fatalf("expected flat discount price 3.50, got %s", got.String())
	}
}

func TestCalculateTicketPricePrizeTierNewPrice(t *testing.T) {
	svc := NewPricingService()
	prize := &models.Prize{
		TicketPrice:     models.NewMoneyFromDecimal(decimal.RequireFromString("2.50")),
		IsDiscountRates: true,
		DiscountRates: models.DiscountRates{
			{AmountTickets: 10, NewPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("2.25"))},
			{AmountTickets: 25, NewPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("2.00"))},
		},
	}

	got := svc.CalculateTicketPrice(prize, 30, constants.PrizeTypePrize, nil, nil)
	if !got.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("expected top tier price 2.00, got %s", got.String())
	}

	got = svc.CalculateTicketPrice(prize, 10, constants.PrizeTypePrize, nil, nil)
	if !got.Equal(decimal.RequireFromString("2.25")) {
		t.Fatalf("expected first tier price 2.25, got %s", got.String())
	}

	got = svc.CalculateTicketPrice(prize, 5, constants.PrizeTypePrize, nil, nil)
	if !got.Equal(decimal.RequireFromString("2.50")) {
		t.Fatalf("expected base price 2.50 below all tiers, got %s", got.String())
	}
}

func TestCalculateTicketPricePlatformPercentTier(t *testing.T) {
	svc := NewPricingService()
	prize := &models.Prize{
		TicketPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("2.00")),
	}
	settings := &PricingSettings{
		IsDiscountRates: true,
		DiscountRates: map[string]models.DiscountRates{
			constants.PrizeTypeRaffle: {
				{AmountTickets: 10, Percent: decimal.NewFromInt(5)},
				{AmountTickets: 25, Percent: decimal.NewFromInt(10)},
			},
		},
	}

	// 2.00 - 2.00/100*10 = 1.80
	got := svc.CalculateTicketPrice(prize, 25, constants.PrizeTypeRaffle, settings, nil)
	if !got.Equal(decimal.RequireFromString("1.80")) {
		t.Fatalf("expected 10%% tier price 1.80, got %s", got.String())
	}

	// 其他奖品类型没有配置阶梯时不打折
	got = svc.CalculateTicketPrice(prize, 25, constants.PrizeTypePrize, settings, nil)
	if !got.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("expected base price for unconfigured type, got %s", got.String())
	}
}

func TestCalculateTicketPriceBasketCouponIsFinal(t *testing.T) {
	svc := NewPricingService()
	prize := &models.Prize{
		TicketPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("2.00")),
	}
	settings := &PricingSettings{
		IsDiscountRates: true,
		DiscountRates: map[string]models.DiscountRates{
			constants.PrizeTypePrize: {
				{AmountTickets: 10, Percent: decimal.NewFromInt(10)},
			},
		},
	}
	coupon := &models.Coupon{
		Type:  constants.CouponTypeBasket,
		Value: decimal.NewFromInt(25),
	}

	// 阶梯后 1.80，再减 25% = 1.35，basket 券后不再做 2 位舍入
	got := svc.CalculateTicketPrice(prize, 10, constants.PrizeTypePrize, settings, coupon)
	if !got.Equal(decimal.RequireFromString("1.35")) {
		t.Fatalf("expected coupon price 1.35, got %s", got.String())
	}
}

func TestCalculateTicketPriceBasketCouponTypeScope(t *testing.T) {
	svc := NewPricingService()
	prize := &models.Prize{
		TicketPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("2.00")),
	}
	coupon := &models.Coupon{
		Type:         constants.CouponTypeBasket,
		Value:        decimal.NewFromInt(50),
		DiscountType: constants.PrizeTypeRaffle,
	}

	got := svc.CalculateTicketPrice(prize, 1, constants.PrizeTypeRaffle, nil, coupon)
	if !got.Equal(decimal.RequireFromString("1.00")) {
		t.Fatalf("expected scoped coupon to apply, got %s", got.String())
	}

	got = svc.CalculateTicketPrice(prize, 1, constants.PrizeTypePrize, nil, coupon)
	if !got.Equal(decimal.RequireFromString("2.00")) {
		t.Fatalf("expected scoped coupon to be ignored for other type, got %s", got.String())
	}
}

func TestCalculateTicketPriceRaffleRoundingBypass(t *testing.T) {
	svc := NewPricingService()
	prize := &models.Prize{
		TicketPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("1.99")),
	}
	settings := &PricingSettings{
		IsDiscountRates: true,
		DiscountRates: map[string]models.DiscountRates{
			constants.PrizeTypeRaffle: {
				{AmountTickets: 10, Percent: decimal.NewFromInt(7)},
			},
		},
	}

	// 1.99 - 1.99*0.07 = 1.8507，恰好 15 张保留精度
	got := svc.CalculateTicketPrice(prize, 15, constants.PrizeTypeRaffle, settings, nil)
	if !got.Equal(decimal.RequireFromString("1.8507")) {
		t.Fatalf("expected unrounded price 1.8507, got %s", got.String())
	}

	// 不是 15 张时都回落到 2 位舍入
	for _, quantity := range []int{14, 16} {
		got = svc.CalculateTicketPrice(prize, quantity, constants.PrizeTypeRaffle, settings, nil)
		if !got.Equal(decimal.RequireFromString("1.85")) {
			t.Fatalf("expected rounded price 1.85 for quantity %d, got %s", quantity, got.String())
		}
	}
}

func TestTotalCostPence(t *testing.T) {
	svc := NewPricingService()

	if got := svc.TotalCost(decimal.RequireFromString("2.50"), 10); got != 2500 {
		t.Fatalf("expected 2500 pence, got %d", got)
	}
	// 高精度单价在总价处一次性舍入
	if got := svc.TotalCost(decimal.RequireFromString("1.8507"), 15); got != 2776 {
		t.Fatalf("expected 2776 pence, got %d", got)
	}
	if got := svc.TotalCost(decimal.Zero, 5); got != 0 {
		t.Fatalf("expected zero cost, got %d", got)
	}
}
