package repository

import (
	"errors"
	"time"

	"github.com/rafflehouse-next/internal/constants"
	"github.com/rafflehouse-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order) error
	CreateMany(orders []models.Order) error
	GetByID(id uint) (*models.Order, error)
	ListByGroupAndStatus(groupID string, userID uint, status string) ([]models.Order, error)
	ListByUserAndPrize(userID, prizeID uint, statuses []string) ([]models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	MarkAccepted(id uint, checkoutID, transactionID string, purchaseDate time.Time) error
	UpdateStatusByGroup(groupID string, userID uint, from, to string) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// CreateMany 批量创建订单
func (r *GormOrderRepository) CreateMany(orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db.Create(&orders).Error
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Prize").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByGroupAndStatus 获取支付组内指定状态的订单（含奖品信息）
func (r *GormOrderRepository) ListByGroupAndStatus(groupID string, userID uint, status string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Prize").
		Where("group_id = ? AND user_id = ? AND payment_status = ?", groupID, userID, status).
		Order("id asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUserAndPrize 获取用户在指定奖品上、状态集合内的订单
func (r *GormOrderRepository) ListByUserAndPrize(userID, prizeID uint, statuses []string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.
		Where("user_id = ? AND prize_id = ? AND payment_status IN ?", userID, prizeID, statuses).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUser 获取用户订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)

	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.PrizeType != "" {
		query = query.Where("prize_type = ?", filter.PrizeType)
	}
	if filter.GroupID != "" {
		query = query.Where("group_id = ?", filter.GroupID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("Prize").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// MarkAccepted 标记订单结算完成
func (r *GormOrderRepository) MarkAccepted(id uint, checkoutID, transactionID string, purchaseDate time.Time) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"payment_status": constants.OrderStatusAccepted,
		"checkout_id":    checkoutID,
		"transaction_id": transactionID,
		"purchase_date":  purchaseDate,
	}).Error
}

// UpdateStatusByGroup 按支付组迁移订单状态，返回受影响行数
func (r *GormOrderRepository) UpdateStatusByGroup(groupID string, userID uint, from, to string) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("group_id = ? AND user_id = ? AND payment_status = ?", groupID, userID, from).
		Update("payment_status", to)
	return result.RowsAffected, result.Error
}
