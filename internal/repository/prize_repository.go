package repository

import (
	"errors"
	"time"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/models"

	"gorm.io/gorm"
)

// PrizeRepository 奖品数据访问接口
type PrizeRepository interface {
	GetByID(id uint) (*models.Prize, error)
	GetByIDAndType(id uint, prizeType string) (*models.Prize, error)
	ListActive(filter PrizeListFilter) ([]models.Prize, int64, error)
	ListActiveRaffles(now time.Time) ([]models.Prize, error)
	IncrementTicketsBought(id uint, count int) error
	WithTx(tx *gorm.DB) *GormPrizeRepository
}

// GormPrizeRepository GORM 实现
type GormPrizeRepository struct {
	db *gorm.DB
}

// NewPrizeRepository 创建奖品仓库
func NewPrizeRepository(db *gorm.DB) *GormPrizeRepository {
	return &GormPrizeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPrizeRepository) WithTx(tx *gorm.DB) *GormPrizeRepository {
	if tx == nil {
		return r
	}
	return &GormPrizeRepository{db: tx}
}

// GetByID 根据 ID 获取奖品
func (r *GormPrizeRepository) GetByID(id uint) (*models.Prize, error) {
	var prize models.Prize
	if err := r.db.First(&prize, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prize, nil
}

// GetByIDAndType 根据 ID 与类型获取奖品
func (r *GormPrizeRepository) GetByIDAndType(id uint, prizeType string) (*models.Prize, error) {
	var prize models.Prize
	if err := r.db.Where("id = ? AND type = ?", id, prizeType).First(&prize).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prize, nil
}

// ListActive 获取上架奖品列表
func (r *GormPrizeRepository) ListActive(filter PrizeListFilter) ([]models.Prize, int64, error) {
	var prizes []models.Prize
	query := r.db.Model(&models.Prize{}).Where("is_active = ?", true)

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("id desc").Find(&prizes).Error; err != nil {
		return nil, 0, err
	}
	return prizes, total, nil
}

// ListActiveRaffles 获取进行中的抽奖奖品（未过截止时间）
func (r *GormPrizeRepository) ListActiveRaffles(now time.Time) ([]models.Prize, error) {
	var prizes []models.Prize
	if err := r.db.
		Where("type = ? AND is_active = ?", constants.PrizeTypeRaffle, true).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("id asc").
		Find(&prizes).Error; err != nil {
		return nil, err
	}
	return prizes, nil
}

// IncrementTicketsBought 原子累加已售票数
func (r *GormPrizeRepository) IncrementTicketsBought(id uint, count int) error {
	if count <= 0 {
		return nil
	}
	return r.db.Model(&models.Prize{}).Where("id = ?", id).
		UpdateColumn("tickets_bought", gorm.Expr("tickets_bought + ?", count)).Error
}
