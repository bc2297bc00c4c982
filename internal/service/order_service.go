package service

import (
	"strings"
	"time"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/logger"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/queue"
	"github.com/rafflehouse-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo       repository.OrderRepository
	prizeRepo       repository.PrizeRepository
	competitionRepo repository.CompetitionRepository
	couponRepo      repository.CouponRepository
	creditRepo      repository.CreditRepository
	pricingService  *PricingService
	ticketService   *TicketService
	settingService  *SettingService
	queueClient     *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, prizeRepo repository.PrizeRepository, competitionRepo repository.CompetitionRepository, couponRepo repository.CouponRepository, creditRepo repository.CreditRepository, pricingService *PricingService, ticketService *TicketService, settingService *SettingService, queueClient *queue.Client) *OrderService {
	return &OrderService{
		orderRepo:       orderRepo,
		prizeRepo:       prizeRepo,
		competitionRepo: competitionRepo,
		couponRepo:      couponRepo,
		creditRepo:      creditRepo,
		pricingService:  pricingService,
		ticketService:   ticketService,
		settingService:  settingService,
		queueClient:     queueClient,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID       uint
	PrizeType    string
	PrizeID      uint
	NumOfTickets int
	GroupID      string
	CouponCode   string
	UseCredits   bool
	AfterLogin   bool
	FromLanding  bool
}

var validPrizeTypes = map[string]bool{
	constants.PrizeTypeRaffle:    true,
	constants.PrizeTypePrize:     true,
	constants.PrizeTypeFixedOdds: true,
}

// CreateOrder 创建购物篮订单
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if !validPrizeTypes[input.PrizeType] {
		return nil, ErrPrizeTypeInvalid
	}
	if input.NumOfTickets <= 0 {
		return nil, ErrOrderQuantityInvalid
	}
	if input.NumOfTickets > constants.MaxTicketsPerOrder {
		return nil, ErrTicketLimitExceeded
	}

	prize, err := s.prizeRepo.GetByIDAndType(input.PrizeID, input.PrizeType)
	if err != nil {
		return nil, err
	}
	if prize == nil {
		// 登录后重放购物篮时静默跳过已下架的奖品
		if input.AfterLogin {
			logger.Warnw("order_prize_skipped_after_login", "prize_id", input.PrizeID, "user_id", input.UserID)
			return nil, nil
		}
		return nil, ErrPrizeNotFound
	}

	now := time.Now()
	if !prize.IsActive || prize.Ended(now) {
		return nil, ErrPrizeUnavailable
	}

	settings, err := s.settingService.GetPricingSettings()
	if err != nil {
		return nil, err
	}

	coupon, err := s.resolveBasketCoupon(input.CouponCode, now)
	if err != nil {
		return nil, err
	}

	unitPrice := s.pricingService.CalculateTicketPrice(prize, input.NumOfTickets, input.PrizeType, settings, coupon)

	if input.PrizeType == constants.PrizeTypeFixedOdds {
		if err := s.checkFixedOddsLimit(input.UserID, prize.ID, unitPrice, input.NumOfTickets); err != nil {
			return nil, err
		}
	}

	if prize.MaxTickets > 0 && prize.TicketsBought+input.NumOfTickets > prize.MaxTickets {
		return nil, ErrNotEnoughTickets
	}

	bonusCount := 0
	if input.PrizeType == constants.PrizeTypeRaffle {
		bonusCount = s.ticketService.BonusTicketCount(prize, input.NumOfTickets, settings)
	}

	groupID := strings.TrimSpace(input.GroupID)
	if groupID == "" {
		groupID = uuid.NewString()
	}

	order := &models.Order{
		GroupID:       groupID,
		UserID:        input.UserID,
		PrizeID:       prize.ID,
		PrizeType:     input.PrizeType,
		Tickets:       s.ticketService.GenerateTickets(input.NumOfTickets + bonusCount),
		NumOfTickets:  input.NumOfTickets,
		TicketPrice:   models.NewMoneyFromDecimal(unitPrice),
		TotalCost:     s.pricingService.TotalCost(unitPrice, input.NumOfTickets),
		PaymentStatus: constants.OrderStatusPendingBasket,
		IsFromLanding: input.FromLanding,
	}

	if competition, err := s.competitionRepo.GetActiveByPrize(prize.ID); err != nil {
		return nil, err
	} else if competition != nil {
		order.CompetitionID = competition.ID
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if input.UseCredits {
			applied, spent, err := s.holdCredits(tx, input.UserID, order.TotalCost)
			if err != nil {
				return err
			}
			order.AppliedCredits = applied
			order.SpentCredits = spent
		}
		if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
			return err
		}
		if coupon != nil {
			if err := s.registerCouponRedemption(tx, coupon, input.UserID, groupID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.trackBasket(input.UserID, order)
	return order, nil
}

// CreateBonusOrder 创建奖励订单（固定 100 便士，不受限额约束）
func (s *OrderService) CreateBonusOrder(userID uint, prizeType string, prizeID uint, numOfTickets int, groupID string) (*models.Order, error) {
	if !validPrizeTypes[prizeType] {
		return nil, ErrPrizeTypeInvalid
	}
	if numOfTickets <= 0 {
		numOfTickets = 1
	}

	prize, err := s.prizeRepo.GetByIDAndType(prizeID, prizeType)
	if err != nil {
		return nil, err
	}
	if prize == nil {
		return nil, ErrPrizeNotFound
	}

	if strings.TrimSpace(groupID) == "" {
		groupID = uuid.NewString()
	}

	order := &models.Order{
		GroupID:       groupID,
		UserID:        userID,
		PrizeID:       prize.ID,
		PrizeType:     prizeType,
		Tickets:       s.ticketService.GenerateTickets(numOfTickets),
		NumOfTickets:  numOfTickets,
		TicketPrice:   models.NewMoneyFromPence(0),
		TotalCost:     constants.BonusOrderTotalCost,
		PaymentStatus: constants.OrderStatusPendingBasket,
		Bonus:         true,
	}

	if competition, err := s.competitionRepo.GetActiveByPrize(prize.ID); err != nil {
		return nil, err
	} else if competition != nil {
		order.CompetitionID = competition.ID
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

// BeginPayment 将支付组从购物篮迁移到支付中
func (s *OrderService) BeginPayment(userID uint, groupID string) error {
	rows, err := s.orderRepo.UpdateStatusByGroup(groupID, userID, constants.OrderStatusPendingBasket, constants.OrderStatusInPaymentProcess)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrOrderGroupNotFound
	}
	return nil
}

// ListUserOrders 获取用户订单列表
func (s *OrderService) ListUserOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// checkFixedOddsLimit 校验用户在该奖品上的累计投入不超过上限（含本单，单位英镑）
func (s *OrderService) checkFixedOddsLimit(userID, prizeID uint, unitPrice decimal.Decimal, quantity int) error {
	orders, err := s.orderRepo.ListByUserAndPrize(userID, prizeID, []string{
		constants.OrderStatusAccepted,
		constants.OrderStatusPendingBasket,
	})
	if err != nil {
		return err
	}

	var spentPence int64
	for i := range orders {
		spentPence += orders[i].TotalCost - orders[i].SpentCredits
	}

	exposure := decimal.New(spentPence, -2).Add(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
	if exposure.GreaterThan(decimal.NewFromInt(constants.FixedOddsExposureLimit)) {
		return ErrFixedOddsLimitExceeded
	}
	return nil
}

// holdCredits 占用用户可用积分直至覆盖订单总价
func (s *OrderService) holdCredits(tx *gorm.DB, userID uint, totalCost int64) (models.AppliedCredits, int64, error) {
	credits, err := s.creditRepo.WithTx(tx).ListAvailableByUser(userID)
	if err != nil {
		return nil, 0, err
	}

	applied := models.AppliedCredits{}
	remaining := totalCost
	for i := range credits {
		if remaining <= 0 {
			break
		}
		amount := credits[i].Available()
		if amount > remaining {
			amount = remaining
		}
		if amount <= 0 {
			continue
		}
		if err := s.creditRepo.WithTx(tx).Hold(credits[i].ID, amount); err != nil {
			return nil, 0, err
		}
		applied = append(applied, models.AppliedCredit{CreditID: credits[i].ID, SpentAmount: amount})
		remaining -= amount
	}
	return applied, applied.TotalSpent(), nil
}

// resolveBasketCoupon 解析下单时携带的优惠码（非法或停用时忽略）
func (s *OrderService) resolveBasketCoupon(code string, now time.Time) (*models.Coupon, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, nil
	}
	coupon, err := s.couponRepo.GetByCode(trimmed)
	if err != nil {
		return nil, err
	}
	if coupon == nil || !coupon.IsActive {
		return nil, nil
	}
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return nil, nil
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return nil, nil
	}
	return coupon, nil
}

// registerCouponRedemption 为支付组登记优惠券，重复登记时跳过
func (s *OrderService) registerCouponRedemption(tx *gorm.DB, coupon *models.Coupon, userID uint, groupID string) error {
	existing, err := s.couponRepo.WithTx(tx).GetRedemptionByGroup(groupID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.couponRepo.WithTx(tx).CreateRedemption(&models.CouponRedemption{
		CouponID: coupon.ID,
		UserID:   userID,
		GroupID:  groupID,
	})
}

// trackBasket 推送加购侧效应（失败仅记日志）
func (s *OrderService) trackBasket(userID uint, order *models.Order) {
	if !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueConversionEvent(queue.ConversionEventPayload{
		UserID:     userID,
		Event:      constants.ConversionEventAddToCart,
		GroupID:    order.GroupID,
		ValuePence: order.TotalCost,
		Currency:   constants.SiteCurrencyDefault,
		PrizeIDs:   []uint{order.PrizeID},
	}); err != nil {
		logger.Warnw("enqueue_add_to_cart_failed", "error", err, "group_id", order.GroupID)
	}
	if err := s.queueClient.EnqueueCRMBasketUpdate(queue.CRMBasketUpdatePayload{
		UserID:      userID,
		BasketValue: order.TotalCost,
	}); err != nil {
		logger.Warnw("enqueue_crm_basket_update_failed", "error", err, "user_id", userID)
	}
}
