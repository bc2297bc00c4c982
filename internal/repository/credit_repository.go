package repository

import (
	"errors"

	"github.com/rafflehouse-next/internal/models"

	"gorm.io/gorm"
)

// CreditRepository 积分数据访问接口
type CreditRepository interface {
	CreateMany(credits []models.Credit) error
	GetByID(id uint) (*models.Credit, error)
	ListAvailableByUser(userID uint) ([]models.Credit, error)
	ApplySpend(id uint, amount int64) error
	Hold(id uint, amount int64) error
	ReleaseHold(id uint, amount int64) error
	WithTx(tx *gorm.DB) *GormCreditRepository
}

// GormCreditRepository GORM 实现
type GormCreditRepository struct {
	db *gorm.DB
}

// NewCreditRepository 创建积分仓库
func NewCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCreditRepository) WithTx(tx *gorm.DB) *GormCreditRepository {
	if tx == nil {
		return r
	}
	return &GormCreditRepository{db: tx}
}

// CreateMany 批量创建积分
func (r *GormCreditRepository) CreateMany(credits []models.Credit) error {
	if len(credits) == 0 {
		return nil
	}
	return r.db.Create(&credits).Error
}

// GetByID 根据 ID 获取积分
func (r *GormCreditRepository) GetByID(id uint) (*models.Credit, error) {
	var credit models.Credit
	if err := r.db.First(&credit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &credit, nil
}

// ListAvailableByUser 获取用户未过期且有余额的积分
func (r *GormCreditRepository) ListAvailableByUser(userID uint) ([]models.Credit, error) {
	var credits []models.Credit
	if err := r.db.
		Where("user_id = ? AND amount - spent - hold_amount > 0", userID).
		Where("expired_at IS NULL OR expired_at > CURRENT_TIMESTAMP").
		Order("expired_at asc").
		Find(&credits).Error; err != nil {
		return nil, err
	}
	return credits, nil
}

// ApplySpend 将占用额度转为实际消费
func (r *GormCreditRepository) ApplySpend(id uint, amount int64) error {
	if amount <= 0 {
		return nil
	}
	return r.db.Model(&models.Credit{}).Where("id = ?", id).Updates(map[string]interface{}{
		"spent":       gorm.Expr("spent + ?", amount),
		"hold_amount": gorm.Expr("hold_amount - ?", amount),
	}).Error
}

// Hold 占用额度（下单时）
func (r *GormCreditRepository) Hold(id uint, amount int64) error {
	if amount <= 0 {
		return nil
	}
	return r.db.Model(&models.Credit{}).Where("id = ?", id).
		UpdateColumn("hold_amount", gorm.Expr("hold_amount + ?", amount)).Error
}

// ReleaseHold 释放占用额度（取消/过期时）
func (r *GormCreditRepository) ReleaseHold(id uint, amount int64) error {
	if amount <= 0 {
		return nil
	}
	return r.db.Model(&models.Credit{}).Where("id = ?", id).
		UpdateColumn("hold_amount", gorm.Expr("hold_amount - ?", amount)).Error
}
