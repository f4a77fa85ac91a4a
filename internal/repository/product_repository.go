package repository

import (
	"mdla_service/internal/model"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) WithTx(tx *gorm.DB) *ProductRepository {
	return &ProductRepository{DB: tx}
}

type ProductQuery struct {
	Category model.ProductCategory
	Status   model.ProductStatus
	Search   string
	Page     int
	PageSize int
}

func (r *ProductRepository) Create(product *model.Product) error {
	return r.DB.Create(product).Error
}

func (r *ProductRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.DB.First(&product, id).Error
	return &product, err
}

func (r *ProductRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	var products []model.Product
	err := r.DB.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *ProductRepository) Update(product *model.Product) error {
	return r.DB.Save(product).Error
}

func (r *ProductRepository) Delete(id uint) error {
	result := r.DB.Delete(&model.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProductRepository) List(q ProductQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.DB.Model(&model.Product{})
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC, id DESC").
		Scopes(Paginate(q.Page, q.PageSize)).
		Find(&products).Error
	return products, total, err
}

// DecrementStock takes qty units out of stock. It reports false when stock is insufficient.
func (r *ProductRepository) DecrementStock(id uint, qty int) (bool, error) {
	result := r.DB.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ProductRepository) IncrementStock(id uint, qty int) error {
	return r.DB.Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}
