package service

import (
	"github.com/rafflehouse-next/internal/models"
)

// resolveDiscountTier 返回满足票数门槛的最高折扣阶梯，未命中返回 nil
func resolveDiscountTier(rates models.DiscountRates, quantity int) *models.DiscountRate {
	var matched *models.DiscountRate
	for i := range rates {
		if rates[i].AmountTickets > quantity {
			continue
		}
		if matched == nil || rates[i].AmountTickets > matched.AmountTickets {
			matched = &rates[i]
		}
	}
	return matched
}

// resolveCreditTier 返回满足实付金额门槛的最高返积分阶梯，未命中返回 nil
func resolveCreditTier(rates models.CreditRates, paidAmount int64) *models.CreditRate {
	var matched *models.CreditRate
	for i := range rates {
		if rates[i].Count > paidAmount {
			continue
		}
		if matched == nil || rates[i].Count > matched.Count {
			matched = &rates[i]
		}
	}
	return matched
}

// resolveFreeTicketTier 返回满足票数门槛的最高赠票阶梯，未命中返回 nil
func resolveFreeTicketTier(rates models.FreeTicketRates, quantity int) *models.FreeTicketRate {
	var matched *models.FreeTicketRate
	for i := range rates {
		if rates[i].AmountTickets > quantity {
			continue
		}
		if matched == nil || rates[i].AmountTickets > matched.AmountTickets {
			matched = &rates[i]
		}
	}
	return matched
}
