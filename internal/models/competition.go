package models

import (
	"time"

	"gorm.io/gorm"
)

// Competition 活动表（一期活动对应一个奖品）
type Competition struct {
	ID        uint           `gorm:"primarykey" json:"id"`                        // 主键
	Type      string         `gorm:"type:varchar(20);not null;index" json:"type"` // 活动类型（dream_home/prize/fixed_odds）
	PrizeID   uint           `gorm:"index;not null" json:"prize_id"`              // 奖品ID
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`         // 是否进行中
	StartAt   *time.Time     `gorm:"index" json:"start_at"`                       // 开始时间
	EndsAt    *time.Time     `gorm:"index" json:"ends_at"`                        // 结束时间
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                  // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间

	// 关联
	Prize Prize `gorm:"foreignKey:PrizeID" json:"prize,omitempty"` // 奖品信息
}

// TableName 指定表名
func (Competition) TableName() string {
	return "competitions"
}
