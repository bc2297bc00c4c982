package repository

import (
	"errors"

	"github.com/rafflehouse-next/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByReferralKey(key string) (*models.User, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	IncrementSpentMoney(id uint, amount int64) error
	IncrementTotalTicketsBought(id uint, count int) error
	WithTx(tx *gorm.DB) *GormUserRepository
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByReferralKey 根据推荐码获取用户
func (r *GormUserRepository) GetByReferralKey(key string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("referral_key = ?", key).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateFields 更新用户字段
func (r *GormUserRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// IncrementSpentMoney 累加推荐考核消费
func (r *GormUserRepository) IncrementSpentMoney(id uint, amount int64) error {
	if amount <= 0 {
		return nil
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("spent_money", gorm.Expr("spent_money + ?", amount)).Error
}

// IncrementTotalTicketsBought 累加累计购票数
func (r *GormUserRepository) IncrementTotalTicketsBought(id uint, count int) error {
	if count <= 0 {
		return nil
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("total_tickets_bought", gorm.Expr("total_tickets_bought + ?", count)).Error
}
