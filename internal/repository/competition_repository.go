package repository

import (
	"errors"

	"github.com/rafflehouse-next/internal/models"

	"gorm.io/gorm"
)

// CompetitionRepository 活动数据访问接口
type CompetitionRepository interface {
	GetByID(id uint) (*models.Competition, error)
	GetActiveByPrize(prizeID uint) (*models.Competition, error)
	GetActiveByType(competitionType string) (*models.Competition, error)
	WithTx(tx *gorm.DB) *GormCompetitionRepository
}

// GormCompetitionRepository GORM 实现
type GormCompetitionRepository struct {
	db *gorm.DB
}

// NewCompetitionRepository 创建活动仓库
func NewCompetitionRepository(db *gorm.DB) *GormCompetitionRepository {
	return &GormCompetitionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCompetitionRepository) WithTx(tx *gorm.DB) *GormCompetitionRepository {
	if tx == nil {
		return r
	}
	return &GormCompetitionRepository{db: tx}
}

// GetByID 根据 ID 获取活动
func (r *GormCompetitionRepository) GetByID(id uint) (*models.Competition, error) {
	var competition models.Competition
	if err := r.db.First(&competition, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &competition, nil
}

// GetActiveByPrize 获取奖品对应的进行中活动
func (r *GormCompetitionRepository) GetActiveByPrize(prizeID uint) (*models.Competition, error) {
	var competition models.Competition
	if err := r.db.Where("prize_id = ? AND is_active = ?", prizeID, true).
		Order("id desc").
		First(&competition).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &competition, nil
}

// GetActiveByType 获取指定类型的进行中活动
func (r *GormCompetitionRepository) GetActiveByType(competitionType string) (*models.Competition, error) {
	var competition models.Competition
	if err := r.db.Where("type = ? AND is_active = ?", competitionType, true).
		Order("id desc").
		First(&competition).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &competition, nil
}
