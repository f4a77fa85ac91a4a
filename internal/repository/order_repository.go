package repository

import (
	"mdla_service/internal/model"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: tx}
}

type OrderQuery struct {
	UserID   uint
	Status   model.OrderStatus
	Page     int
	PageSize int
}

// Create inserts the order together with its items.
func (r *OrderRepository) Create(order *model.Order) error {
	return r.DB.Create(order).Error
}

func (r *OrderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	err := r.DB.Preload("Items").First(&order, id).Error
	return &order, err
}

func (r *OrderRepository) List(q OrderQuery) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.DB.Model(&model.Order{})
	if q.UserID > 0 {
		query = query.Where("user_id = ?", q.UserID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Items").
		Order("created_at DESC, id DESC").
		Scopes(Paginate(q.Page, q.PageSize)).
		Find(&orders).Error
	return orders, total, err
}

// UpdateStatus moves an order from one status to another. It reports false when
// the order was no longer in status from.
func (r *OrderRepository) UpdateStatus(id uint, from, to model.OrderStatus) (bool, error) {
	result := r.DB.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *OrderRepository) CountByStatus(userID uint) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		Count  int64
	}
	query := r.DB.Model(&model.Order{}).Select("status, COUNT(*) AS count")
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
