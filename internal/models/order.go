package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表（一组订单共享 GroupID，按 GroupID 结算）
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                       // 主键
	GroupID        string         `gorm:"index;not null" json:"group_id"`                             // 支付组标识（购物篮/支付引用）
	UserID         uint           `gorm:"index;not null" json:"user_id"`                              // 用户ID
	PrizeID        uint           `gorm:"index;not null" json:"prize_id"`                             // 奖品ID
	PrizeType      string         `gorm:"type:varchar(20);not null;index" json:"prize_type"`          // 奖品类型（raffle/prize/fixed_odds）
	CompetitionID  uint           `gorm:"index" json:"competition_id"`                                // 活动ID
	Tickets        StringArray    `gorm:"type:json" json:"tickets"`                                   // 票号数组
	NumOfTickets   int            `gorm:"not null;default:0" json:"num_of_tickets"`                   // 付费票数（不含赠票）
	TicketPrice    Money          `gorm:"type:decimal(20,12);not null;default:0" json:"ticket_price"` // 成交单价
	TotalCost      int64          `gorm:"not null;default:0" json:"total_cost"`                       // 总价（便士）
	SpentCredits   int64          `gorm:"not null;default:0" json:"spent_credits"`                    // 已消费积分（便士）
	AppliedCredits AppliedCredits `gorm:"type:json" json:"applied_credits"`                           // 占用积分明细
	PaymentStatus  string         `gorm:"type:varchar(30);index;not null" json:"payment_status"`      // 支付状态
	Bonus          bool           `gorm:"default:false" json:"bonus"`                                 // 是否奖励订单
	IsFromLanding  bool           `gorm:"default:false" json:"is_from_landing"`                       // 是否来自落地页
	CheckoutID     string         `gorm:"type:varchar(100);index" json:"checkout_id,omitempty"`       // 支付单标识
	TransactionID  string         `gorm:"type:varchar(100)" json:"transaction_id,omitempty"`          // 交易流水号
	PurchaseDate   *time.Time     `gorm:"index" json:"purchase_date"`                                 // 成交时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	// 关联
	Prize Prize `gorm:"foreignKey:PrizeID" json:"prize,omitempty"` // 奖品信息
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// PaidAmount 订单实付金额（总价扣除占用积分，便士）
func (o *Order) PaidAmount() int64 {
	return o.TotalCost - o.AppliedCredits.TotalSpent()
}
