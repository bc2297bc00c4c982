package service

import (
	"fmt"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/models"
	"github.com/rafflehouse-next/internal/repository"
)

// ReceiptService 结算回执服务
type ReceiptService struct {
	orderRepo    repository.OrderRepository
	userRepo     repository.UserRepository
	emailService *EmailService
	authService  *UserAuthService
	webURL       string
}

// NewReceiptService 创建回执服务
func NewReceiptService(orderRepo repository.OrderRepository, userRepo repository.UserRepository, emailService *EmailService, authService *UserAuthService, webURL string) *ReceiptService {
	return &ReceiptService{
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		emailService: emailService,
		authService:  authService,
		webURL:       webURL,
	}
}

var receiptBucketLabels = map[string]string{
	constants.PrizeTypeRaffle:    "Raffle entries",
	constants.PrizeTypePrize:     "Prize competitions",
	constants.PrizeTypeFixedOdds: "Instant wins",
}

// SendGroupReceipt 汇总支付组订单并发送回执邮件
func (s *ReceiptService) SendGroupReceipt(userID uint, groupID string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	orders, _, err := s.orderRepo.ListByUser(repository.OrderListFilter{UserID: userID, GroupID: groupID})
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return ErrOrderGroupNotFound
	}

	input := s.buildReceipt(user, groupID, orders)
	return s.emailService.SendReceiptEmail(user.Email, input)
}

// buildReceipt 按奖品类型汇总票数与净支付金额
func (s *ReceiptService) buildReceipt(user *models.User, groupID string, orders []models.Order) ReceiptEmailInput {
	type bucket struct {
		tickets int
		pence   int64
	}
	buckets := map[string]*bucket{}
	var totalPence int64

	for i := range orders {
		order := &orders[i]
		b := buckets[order.PrizeType]
		if b == nil {
			b = &bucket{}
			buckets[order.PrizeType] = b
		}
		b.tickets += len(order.Tickets)
		net := order.TotalCost - order.SpentCredits
		b.pence += net
		totalPence += net
	}

	input := ReceiptEmailInput{
		Name:      user.Name,
		GroupID:   groupID,
		TotalPaid: models.NewMoneyFromPence(totalPence),
		WebURL:    s.webURL,
	}
	for _, prizeType := range []string{constants.PrizeTypeRaffle, constants.PrizeTypePrize, constants.PrizeTypeFixedOdds} {
		if b, ok := buckets[prizeType]; ok {
			input.Buckets = append(input.Buckets, ReceiptBucket{
				Label:   receiptBucketLabels[prizeType],
				Tickets: b.tickets,
				Amount:  models.NewMoneyFromPence(b.pence),
			})
		}
	}

	if user.Phone == "" && s.authService != nil {
		if token, err := s.authService.GenerateAddPhoneToken(user); err == nil {
			input.AddPhoneURL = fmt.Sprintf("%s/account/phone?token=%s", s.webURL, token)
		}
	}
	return input
}
