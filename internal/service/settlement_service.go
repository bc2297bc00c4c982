package service

import (
	"time"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/logger"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/queue"
	"github.com/rafflehouse-next/internal/repository"

	"gorm.io/gorm"
)

// SettlementService 结算服务：按支付组一次性完成订单落账
type SettlementService struct {
	orderRepo      repository.OrderRepository
	prizeRepo      repository.PrizeRepository
	userRepo       repository.UserRepository
	creditRepo     repository.CreditRepository
	creditService  *CreditService
	couponService  *CouponService
	ticketService  *TicketService
	settingService *SettingService
	queueClient    *queue.Client
}

// NewSettlementService 创建结算服务
func NewSettlementService(orderRepo repository.OrderRepository, prizeRepo repository.PrizeRepository, userRepo repository.UserRepository, creditRepo repository.CreditRepository, creditService *CreditService, couponService *CouponService, ticketService *TicketService, settingService *SettingService, queueClient *queue.Client) *SettlementService {
	return &SettlementService{
		orderRepo:      orderRepo,
		prizeRepo:      prizeRepo,
		userRepo:       userRepo,
		creditRepo:     creditRepo,
		creditService:  creditService,
		couponService:  couponService,
		ticketService:  ticketService,
		settingService: settingService,
		queueClient:    queueClient,
	}
}

// VerifyInput 结算输入
type VerifyInput struct {
	UserID        uint
	GroupID       string
	CheckoutID    string
	TransactionID string
}

// VerifyResult 结算结果
type VerifyResult struct {
	PaidAmount  int64
	TicketCount int
	OrderIDs    []uint
}

// Verify 结算支付组。
// 组内没有待结算订单时返回 ErrOrderGroupNotFound，由此保证重复结算是空操作。
// 所有写入在一个事务内完成，队列侧效应在提交后推送。
func (s *SettlementService) Verify(input VerifyInput) (*VerifyResult, error) {
	orders, err := s.orderRepo.ListByGroupAndStatus(input.GroupID, input.UserID, constants.OrderStatusInPaymentProcess)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderGroupNotFound
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	settings, err := s.settingService.GetPricingSettings()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &VerifyResult{}
	for i := range orders {
		result.PaidAmount += orders[i].PaidAmount()
		// 入账票数含赠票
		result.TicketCount += len(orders[i].Tickets)
		result.OrderIDs = append(result.OrderIDs, orders[i].ID)
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		for i := range orders {
			order := &orders[i]
			if order.PrizeType == constants.PrizeTypeFixedOdds {
				if err := s.prizeRepo.WithTx(tx).IncrementTicketsBought(order.PrizeID, order.NumOfTickets); err != nil {
					return err
				}
			}
			if err := s.orderRepo.WithTx(tx).MarkAccepted(order.ID, input.CheckoutID, input.TransactionID, now); err != nil {
				return err
			}
			for _, applied := range order.AppliedCredits {
				if err := s.creditRepo.WithTx(tx).ApplySpend(applied.CreditID, applied.SpentAmount); err != nil {
					return err
				}
			}
		}

		if err := s.completeReferral(tx, user, result.PaidAmount, now); err != nil {
			return err
		}

		if err := s.userRepo.WithTx(tx).IncrementTotalTicketsBought(user.ID, result.TicketCount); err != nil {
			return err
		}

		for i := range orders {
			if orders[i].PrizeType == constants.PrizeTypeRaffle {
				if err := s.grantFreeRaffleOrder(tx, user.ID, input.GroupID, &orders[i], now); err != nil {
					return err
				}
			}
		}

		outcome, err := s.couponService.ResolveForSettlement(tx, input.GroupID, user.ID, result.PaidAmount, now)
		if err != nil {
			return err
		}
		if outcome != nil {
			if outcome.Credit != nil {
				if err := s.creditRepo.WithTx(tx).CreateMany([]models.Credit{*outcome.Credit}); err != nil {
					return err
				}
			}
			if len(outcome.FreeOrders) > 0 {
				if err := s.orderRepo.WithTx(tx).CreateMany(outcome.FreeOrders); err != nil {
					return err
				}
				for i := range outcome.FreeOrders {
					free := &outcome.FreeOrders[i]
					if free.PrizeType == constants.PrizeTypeFixedOdds {
						if err := s.prizeRepo.WithTx(tx).IncrementTicketsBought(free.PrizeID, free.NumOfTickets); err != nil {
							return err
						}
						continue
					}
					if free.PrizeType == constants.PrizeTypeRaffle {
						if err := s.grantFreeRaffleOrder(tx, user.ID, input.GroupID, free, now); err != nil {
							return err
						}
					}
				}
			}
		}

		if outcome == nil || !outcome.SkipEarnedCredits {
			earned := s.creditService.BuildEarnedCredits(orders, settings, now)
			if err := s.creditRepo.WithTx(tx).CreateMany(earned); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchSettlementEffects(user, input.GroupID, result)
	return result, nil
}

// completeReferral 推荐消费考核：累计消费，达标时给推荐人发积分
func (s *SettlementService) completeReferral(tx *gorm.DB, user *models.User, paidAmount int64, now time.Time) error {
	if !user.ReferralPending() || paidAmount <= 0 {
		return nil
	}
	if err := s.userRepo.WithTx(tx).IncrementSpentMoney(user.ID, paidAmount); err != nil {
		return err
	}
	if user.SpentMoney+paidAmount < user.NeededSpend {
		return nil
	}
	reward := makeCredit(*user.ReferredBy, constants.ReferralRewardCredit, constants.CreditArrivalBought, "", nil, now)
	reward.Description = "referral reward"
	return s.creditRepo.WithTx(tx).CreateMany([]models.Credit{reward})
}

// grantFreeRaffleOrder 按已购抽奖订单赠送等票数的免费抽奖订单。
// 目标取另一个进行中的抽奖；落地页订单在仅剩一个抽奖时允许同一抽奖；找不到则跳过。
func (s *SettlementService) grantFreeRaffleOrder(tx *gorm.DB, userID uint, groupID string, paid *models.Order, now time.Time) error {
	raffles, err := s.prizeRepo.WithTx(tx).ListActiveRaffles(now)
	if err != nil {
		return err
	}

	var target *models.Prize
	if paid.IsFromLanding && len(raffles) == 1 {
		if raffles[0].ID == paid.PrizeID {
			target = &raffles[0]
		}
	} else {
		for i := range raffles {
			if raffles[i].ID != paid.PrizeID {
				target = &raffles[i]
				break
			}
		}
	}
	if target == nil {
		logger.Warnw("free_raffle_grant_skipped", "user_id", userID, "group_id", groupID)
		return nil
	}

	ticketCount := len(paid.Tickets)
	if ticketCount == 0 {
		ticketCount = paid.NumOfTickets
	}
	purchaseDate := now
	return s.orderRepo.WithTx(tx).Create(&models.Order{
		GroupID:       groupID,
		UserID:        userID,
		PrizeID:       target.ID,
		PrizeType:     constants.PrizeTypeRaffle,
		Tickets:       s.ticketService.GenerateTickets(ticketCount),
		NumOfTickets:  ticketCount,
		TicketPrice:   models.NewMoneyFromPence(0),
		PaymentStatus: constants.OrderStatusFree,
		PurchaseDate:  &purchaseDate,
		IsFromLanding: paid.IsFromLanding,
	})
}

// dispatchSettlementEffects 推送结算后的异步侧效应（失败仅记日志）
func (s *SettlementService) dispatchSettlementEffects(user *models.User, groupID string, result *VerifyResult) {
	if !s.queueClient.Enabled() {
		logger.Debugw("settlement_effects_skipped_queue_disabled", "group_id", groupID)
		return
	}
	if err := s.queueClient.EnqueueConversionEvent(queue.ConversionEventPayload{
		UserID:     user.ID,
		Event:      constants.ConversionEventPurchase,
		GroupID:    groupID,
		ValuePence: result.PaidAmount,
		Currency:   constants.SiteCurrencyDefault,
	}); err != nil {
		logger.Warnw("enqueue_purchase_event_failed", "error", err, "group_id", groupID)
	}
	if err := s.queueClient.EnqueueCRMTicketsUpdate(queue.CRMTicketsUpdatePayload{
		UserID:  user.ID,
		GroupID: groupID,
	}); err != nil {
		logger.Warnw("enqueue_crm_tickets_update_failed", "error", err, "group_id", groupID)
	}
	if err := s.queueClient.EnqueueReceiptEmail(queue.ReceiptEmailPayload{
		UserID:  user.ID,
		GroupID: groupID,
	}); err != nil {
		logger.Warnw("enqueue_receipt_email_failed", "error", err, "group_id", groupID)
	}
}
