package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                      // 主键
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`         // 邮箱
	PasswordHash       string         `gorm:"not null" json:"-"`                         // 密码哈希（不返回给前端）
	Name               string         `gorm:"default:''" json:"name"`                    // 姓名
	Phone              string         `gorm:"default:''" json:"phone"`                   // 手机号（为空时回执邮件带补录链接）
	ReferralKey        string         `gorm:"uniqueIndex" json:"referral_key"`           // 推荐码
	ReferredBy         *uint          `gorm:"index" json:"referred_by,omitempty"`        // 推荐人用户ID
	SpentMoney         int64          `gorm:"not null;default:0" json:"spent_money"`     // 推荐考核期内累计消费（便士）
	NeededSpend        int64          `gorm:"not null;default:0" json:"needed_spend"`    // 推荐达标所需消费（便士）
	TotalTicketsBought int            `gorm:"not null;default:0" json:"total_tickets_bought"` // 累计购票数
	LastLoginAt        *time.Time     `json:"last_login_at"`                             // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                   // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// ReferralPending 推荐消费考核是否仍在进行
func (u *User) ReferralPending() bool {
	return u.ReferredBy != nil && u.SpentMoney < u.NeededSpend
}
