package models

import (
	"time"

	"gorm.io/gorm"
)

// Prize 奖品表（raffle/prize/fixed_odds 统一存储，Type 区分）
type Prize struct {
	ID                 uint            `gorm:"primarykey" json:"id"`                                        // 主键
	Type               string          `gorm:"type:varchar(20);not null;index" json:"type"`                 // 奖品类型（raffle/prize/fixed_odds）
	Slug               string          `gorm:"uniqueIndex;not null" json:"slug"`                            // 唯一标识
	Title              string          `gorm:"not null" json:"title"`                                       // 标题
	IsActive           bool            `gorm:"default:true;index" json:"is_active"`                         // 是否上架
	TicketPrice        Money           `gorm:"type:decimal(20,2);not null;default:0" json:"ticket_price"`   // 单张票价
	MaxTickets         int             `gorm:"not null;default:0" json:"max_tickets"`                       // 票量上限
	TicketsBought      int             `gorm:"not null;default:0" json:"tickets_bought"`                    // 已售票数
	IsActiveDiscount   bool            `gorm:"default:false" json:"is_active_discount"`                     // 是否启用固定折扣价
	DiscountPrice      Money           `gorm:"type:decimal(20,2);not null;default:0" json:"discount_price"` // 固定折扣价
	IsDiscountRates    bool            `gorm:"default:false" json:"is_discount_rates"`                      // 是否启用折扣阶梯
	DiscountRates      DiscountRates   `gorm:"type:json" json:"discount_rates"`                             // 折扣阶梯
	IsFreeTicketsRates bool            `gorm:"default:false" json:"is_free_tickets_rates"`                  // 是否启用赠票阶梯
	FreeTicketsRates   FreeTicketRates `gorm:"type:json" json:"free_tickets_rates"`                         // 赠票阶梯
	IsCreditsActive    bool            `gorm:"default:false" json:"is_credits_active"`                      // 是否启用购买返积分
	IsCreditsPermanent bool            `gorm:"default:false" json:"is_credits_permanent"`                   // 返积分是否长期有效
	CreditsStartAt     *time.Time      `json:"credits_start_at"`                                            // 返积分开始时间
	CreditsEndAt       *time.Time      `json:"credits_end_at"`                                              // 返积分结束时间
	CreditsRates       CreditRates     `gorm:"type:json" json:"credits_rates"`                              // 返积分阶梯
	StartAt            *time.Time      `gorm:"index" json:"start_at"`                                       // 开售时间
	EndsAt             *time.Time      `gorm:"index" json:"ends_at"`                                        // 截止时间
	CreatedAt          time.Time       `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt          time.Time       `json:"updated_at"`                                                  // 更新时间
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (Prize) TableName() string {
	return "prizes"
}

// Ended 奖品是否已过截止时间
func (p *Prize) Ended(now time.Time) bool {
	return p.EndsAt != nil && p.EndsAt.Before(now)
}

// RemainingTickets 剩余可售票数（无上限时返回 -1）
func (p *Prize) RemainingTickets() int {
	if p.MaxTickets <= 0 {
		return -1
	}
	remaining := p.MaxTickets - p.TicketsBought
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CreditsWindowActive 返积分窗口是否生效
func (p *Prize) CreditsWindowActive(now time.Time) bool {
	if !p.IsCreditsActive {
		return false
	}
	if p.IsCreditsPermanent {
		return true
	}
	if p.CreditsStartAt == nil || p.CreditsEndAt == nil {
		return false
	}
	return p.CreditsStartAt.Before(now) && p.CreditsEndAt.After(now)
}
