package service

import (
	"time"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/logger"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/repository"

	"gorm.io/gorm"
)

// CouponService 优惠券服务
type CouponService struct {
	couponRepo    repository.CouponRepository
	prizeRepo     repository.PrizeRepository
	ticketService *TicketService
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, prizeRepo repository.PrizeRepository, ticketService *TicketService) *CouponService {
	return &CouponService{
		couponRepo:    couponRepo,
		prizeRepo:     prizeRepo,
		ticketService: ticketService,
	}
}

// CouponOutcome 结算时优惠券的兑现结果
type CouponOutcome struct {
	Coupon            *models.Coupon
	Credit            *models.Credit
	FreeOrders        []models.Order
	SkipEarnedCredits bool
}

// ResolveForSettlement 兑现支付组登记的优惠券。
// 门槛未达或券已失效时静默跳过；credit 券返积分并抑制购买返积分；
// prize/fixed_odds/dream_home 券为目标奖品生成免费订单。
func (s *CouponService) ResolveForSettlement(tx *gorm.DB, groupID string, userID uint, paidAmount int64, now time.Time) (*CouponOutcome, error) {
	redemption, err := s.couponRepo.WithTx(tx).GetRedemptionByGroup(groupID)
	if err != nil {
		return nil, err
	}
	if redemption == nil {
		return nil, nil
	}

	coupon := &redemption.Coupon
	if coupon.ID == 0 {
		return nil, nil
	}
	if paidAmount < coupon.BasketAmount {
		logger.Debugw("coupon_basket_amount_not_reached", "group_id", groupID, "coupon_id", coupon.ID, "paid", paidAmount)
		return nil, nil
	}

	outcome := &CouponOutcome{Coupon: coupon}
	switch coupon.Type {
	case constants.CouponTypeBasket:
		// basket 券在定价阶段已生效

	case constants.CouponTypeCredit:
		amount := creditAmount(paidAmount, coupon.Value)
		if amount > 0 {
			couponID := coupon.ID
			credit := makeCredit(userID, amount, constants.CreditArrivalCoupon, groupID, &couponID, now)
			outcome.Credit = &credit
			outcome.SkipEarnedCredits = true
		}

	case constants.CouponTypePrize, constants.CouponTypeFixedOdds, constants.CouponTypeDreamHome:
		order, err := s.buildFreeOrder(tx, coupon, userID, groupID, now)
		if err != nil {
			return nil, err
		}
		if order != nil {
			outcome.FreeOrders = append(outcome.FreeOrders, *order)
		}

	default:
		logger.Warnw("coupon_type_unknown", "coupon_id", coupon.ID, "type", coupon.Type)
	}
	return outcome, nil
}

// buildFreeOrder 为券目标奖品构造免费订单（固定赔率受余票上限约束）
func (s *CouponService) buildFreeOrder(tx *gorm.DB, coupon *models.Coupon, userID uint, groupID string, now time.Time) (*models.Order, error) {
	if coupon.PrizeID == nil {
		logger.Warnw("coupon_without_target_prize", "coupon_id", coupon.ID)
		return nil, nil
	}
	prize, err := s.prizeRepo.WithTx(tx).GetByID(*coupon.PrizeID)
	if err != nil {
		return nil, err
	}
	if prize == nil {
		logger.Warnw("coupon_target_prize_missing", "coupon_id", coupon.ID, "prize_id", *coupon.PrizeID)
		return nil, nil
	}

	count := int(coupon.Value.IntPart())
	if count <= 0 {
		count = 1
	}
	if prize.Type == constants.PrizeTypeFixedOdds {
		if remaining := prize.RemainingTickets(); remaining >= 0 && count > remaining {
			count = remaining
		}
		if count <= 0 {
			logger.Warnw("coupon_target_prize_sold_out", "coupon_id", coupon.ID, "prize_id", prize.ID)
			return nil, nil
		}
	}

	purchaseDate := now
	return &models.Order{
		GroupID:       groupID,
		UserID:        userID,
		PrizeID:       prize.ID,
		PrizeType:     prize.Type,
		Tickets:       s.ticketService.GenerateTickets(count),
		NumOfTickets:  count,
		TicketPrice:   models.NewMoneyFromPence(0),
		PaymentStatus: constants.OrderStatusFree,
		PurchaseDate:  &purchaseDate,
	}, nil
}
