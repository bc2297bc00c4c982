package models

import (
	"time"

	"gorm.io/gorm"
)

// Credit 积分表（金额均为便士）
type Credit struct {
	ID          uint           `gorm:"primarykey" json:"id"`                          // 主键
	UserID      uint           `gorm:"index;not null" json:"user_id"`                 // 用户ID
	Amount      int64          `gorm:"not null;default:0" json:"amount"`              // 总额
	Spent       int64          `gorm:"not null;default:0" json:"spent"`               // 已消费
	HoldAmount  int64          `gorm:"not null;default:0" json:"hold_amount"`         // 占用中（待结算）
	Arrival     string         `gorm:"type:varchar(20);not null;index" json:"arrival"` // 来源（bought/coupon）
	Description string         `gorm:"type:varchar(200)" json:"description"`          // 说明
	GroupID     string         `gorm:"index" json:"group_id,omitempty"`               // 产生积分的支付组
	CouponID    *uint          `gorm:"index" json:"coupon_id,omitempty"`              // 产生积分的优惠券
	ExpiredAt   *time.Time     `gorm:"index" json:"expired_at"`                       // 失效时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                    // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (Credit) TableName() string {
	return "credits"
}

// Available 当前可用额度（便士）
func (c *Credit) Available() int64 {
	available := c.Amount - c.Spent - c.HoldAmount
	if available < 0 {
		return 0
	}
	return available
}
