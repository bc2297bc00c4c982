package service

import (
	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/models"

	"github.com/shopspring/decimal"
)

// PricingSettings 平台级定价配置（由设置服务加载后显式传入）
type PricingSettings struct {
	IsDiscountRates    bool                            `json:"is_discount_rates"`
	DiscountRates      map[string]models.DiscountRates `json:"discount_rates"`
	IsCreditsRates     bool                            `json:"is_credits_rates"`
	CreditsRates       models.CreditRates              `json:"credits_rates"`
	IsFreeTicketsRates bool                            `json:"is_free_tickets_rates"`
	FreeTicketsRates   models.FreeTicketRates          `json:"free_tickets_rates"`
}

// PricingService 票价计算服务
type PricingService struct{}

// NewPricingService 创建票价计算服务
func NewPricingService() *PricingService {
	return &PricingService{}
}

var hundred = decimal.NewFromInt(100)

// CalculateTicketPrice 计算成交单价。
// 优先级：固定折扣价 > 奖品折扣阶梯 > 平台百分比阶梯；
// basket 优惠券在此之后终价生效（不再做 2 位舍入）；
// 抽奖订单恰好 15 张跳过最终 2 位舍入，保留 12 位精度。
func (s *PricingService) CalculateTicketPrice(prize *models.Prize, quantity int, prizeType string, settings *PricingSettings, coupon *models.Coupon) decimal.Decimal {
	price := prize.TicketPrice.Decimal

	switch {
	case prize.IsActiveDiscount:
		price = prize.DiscountPrice.Decimal
	case prize.IsDiscountRates:
		if tier := resolveDiscountTier(prize.DiscountRates, quantity); tier != nil {
			price = tier.NewPrice.Decimal
		}
	case settings != nil && settings.IsDiscountRates:
		if tier := resolveDiscountTier(settings.DiscountRates[prizeType], quantity); tier != nil {
			cut := price.Div(hundred).Mul(tier.Percent).Round(12)
			price = price.Sub(cut).Round(12)
		}
	}

	if basketCouponApplies(coupon, prizeType) {
		cut := price.Div(hundred).Mul(coupon.Value)
		return price.Sub(cut).Round(12)
	}

	if prizeType == constants.PrizeTypeRaffle && quantity == constants.RaffleRoundBypassTickets {
		return price
	}

	return price.Round(2)
}

// TotalCost 订单总价（便士），赠票不计费
func (s *PricingService) TotalCost(unitPrice decimal.Decimal, ticketCount int) int64 {
	return unitPrice.Mul(hundred).Mul(decimal.NewFromInt(int64(ticketCount))).Round(0).IntPart()
}

// basketCouponApplies basket 券是否适用于该奖品类型
func basketCouponApplies(coupon *models.Coupon, prizeType string) bool {
	if coupon == nil || coupon.Type != constants.CouponTypeBasket {
		return false
	}
	return coupon.DiscountType == "" || coupon.DiscountType == prizeType
}
