package service

import (
	"github.com/rafflehouse-next/internal/models"

	"github.com/google/uuid"
)

// TicketService 票号分配服务
type TicketService struct{}

// NewTicketService 创建票号分配服务
func NewTicketService() *TicketService {
	return &TicketService{}
}

// GenerateTickets 生成指定数量的票号
func (s *TicketService) GenerateTickets(count int) models.StringArray {
	if count <= 0 {
		return models.StringArray{}
	}
	tickets := make(models.StringArray, 0, count)
	for i := 0; i < count; i++ {
		tickets = append(tickets, uuid.NewString())
	}
	return tickets
}

// BonusTicketCount 计算赠票张数。奖品阶梯优先，其次平台阶梯。
func (s *TicketService) BonusTicketCount(prize *models.Prize, quantity int, settings *PricingSettings) int {
	if prize.IsFreeTicketsRates {
		if tier := resolveFreeTicketTier(prize.FreeTicketsRates, quantity); tier != nil {
			return tier.FreeTickets
		}
		return 0
	}
	if settings != nil && settings.IsFreeTicketsRates {
		if tier := resolveFreeTicketTier(settings.FreeTicketsRates, quantity); tier != nil {
			return tier.FreeTickets
		}
	}
	return 0
}
