package repository

import (
	"mdla_service/internal/model"

	"gorm.io/gorm"
)

type ContactRepository struct {
	DB *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

func (r *ContactRepository) Create(msg *model.ContactMessage) error {
	return r.DB.Create(msg).Error
}

func (r *ContactRepository) FindByID(id uint) (*model.ContactMessage, error) {
	var msg model.ContactMessage
	err := r.DB.First(&msg, id).Error
	return &msg, err
}

func (r *ContactRepository) List(status model.ContactStatus, page, pageSize int) ([]model.ContactMessage, int64, error) {
	var msgs []model.ContactMessage
	var total int64

	query := r.DB.Model(&model.ContactMessage{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC, id DESC").
		Scopes(Paginate(page, pageSize)).
		Find(&msgs).Error
	return msgs, total, err
}

func (r *ContactRepository) UpdateStatus(id uint, status model.ContactStatus) error {
	result := r.DB.Model(&model.ContactMessage{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ContactRepository) Delete(id uint) error {
	result := r.DB.Delete(&model.ContactMessage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ContactRepository) CountByStatus(status model.ContactStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.ContactMessage{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
