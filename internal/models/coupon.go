package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon 优惠券
type Coupon struct {
	ID           uint            `gorm:"primarykey" json:"id"`                                    // 主键
	Code         string          `gorm:"uniqueIndex;not null" json:"code"`                        // 优惠码
	Type         string          `gorm:"type:varchar(20);not null" json:"type"`                   // 类型（basket/credit/prize/fixed_odds/dream_home）
	Value        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"value"`                // 数值（百分比或赠票张数）
	DiscountType string          `gorm:"type:varchar(20)" json:"discount_type"`                   // 适用奖品类型（basket 券，空为全部）
	BasketAmount int64           `gorm:"not null;default:0" json:"basket_amount"`                 // 使用门槛（便士）
	PrizeID      *uint           `gorm:"index" json:"prize_id,omitempty"`                         // 赠单目标奖品ID（prize/fixed_odds/dream_home 券）
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`                  // 是否启用
	StartsAt     *time.Time      `gorm:"index" json:"starts_at"`                                  // 生效时间
	EndsAt       *time.Time      `gorm:"index" json:"ends_at"`                                    // 失效时间
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt    time.Time       `gorm:"index" json:"updated_at"`                                 // 更新时间
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`                                          // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

// CouponRedemption 优惠券使用记录（下单时登记，结算时兑现）
type CouponRedemption struct {
	ID        uint      `gorm:"primarykey" json:"id"`                   // 主键
	CouponID  uint      `gorm:"index;not null" json:"coupon_id"`        // 优惠券ID
	UserID    uint      `gorm:"index;not null" json:"user_id"`          // 用户ID
	GroupID   string    `gorm:"uniqueIndex;not null" json:"group_id"`   // 支付组标识
	CreatedAt time.Time `gorm:"index" json:"created_at"`                // 创建时间

	// 关联
	Coupon Coupon `gorm:"foreignKey:CouponID" json:"coupon,omitempty"` // 优惠券信息
}

// TableName 指定表名
func (CouponRedemption) TableName() string {
	return "coupon_redemptions"
}
