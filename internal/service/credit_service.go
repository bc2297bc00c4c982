package service

import (
	"time"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CreditService 积分服务
type CreditService struct {
	creditRepo repository.CreditRepository
}

// NewCreditService 创建积分服务
func NewCreditService(creditRepo repository.CreditRepository) *CreditService {
	return &CreditService{creditRepo: creditRepo}
}

// BuildEarnedCredits 按结算订单生成购买返积分。
// 奖品返积分窗口生效时用奖品阶梯，否则回落到平台阶梯；都未命中则不返。
func (s *CreditService) BuildEarnedCredits(orders []models.Order, settings *PricingSettings, now time.Time) []models.Credit {
	var credits []models.Credit
	for i := range orders {
		order := &orders[i]
		if order.Bonus {
			continue
		}
		paid := order.PaidAmount()
		if paid <= 0 {
			continue
		}

		var rates models.CreditRates
		if order.Prize.CreditsWindowActive(now) {
			rates = order.Prize.CreditsRates
		} else if settings != nil && settings.IsCreditsRates {
			rates = settings.CreditsRates
		}

		tier := resolveCreditTier(rates, paid)
		if tier == nil {
			continue
		}

		amount := creditAmount(paid, tier.Percent)
		if amount <= 0 {
			continue
		}
		credits = append(credits, makeCredit(order.UserID, amount, constants.CreditArrivalBought, order.GroupID, nil, now))
	}
	return credits
}

// CreateMany 批量写入积分
func (s *CreditService) CreateMany(credits []models.Credit) error {
	return s.creditRepo.CreateMany(credits)
}

// creditAmount 返积分金额 = round(实付便士 × 百分比 / 100)
func creditAmount(paidPence int64, percent decimal.Decimal) int64 {
	return decimal.NewFromInt(paidPence).Mul(percent).Div(hundred).Round(0).IntPart()
}

// makeCredit 构造积分记录（30 天有效）
func makeCredit(userID uint, amount int64, arrival, groupID string, couponID *uint, now time.Time) models.Credit {
	expiredAt := now.AddDate(0, 0, constants.CreditExpiryDays)
	return models.Credit{
		UserID:    userID,
		Amount:    amount,
		Arrival:   arrival,
		GroupID:   groupID,
		CouponID:  couponID,
		ExpiredAt: &expiredAt,
	}
}
