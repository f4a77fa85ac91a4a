package repository

import (
	"mdla_service/internal/model"

	"gorm.io/gorm"
)

type SourcingRepository struct {
	DB *gorm.DB
}

func NewSourcingRepository(db *gorm.DB) *SourcingRepository {
	return &SourcingRepository{DB: db}
}

type SourcingQuery struct {
	UserID   uint
	Status   model.SourcingStatus
	Page     int
	PageSize int
}

func (r *SourcingRepository) Create(req *model.SourcingRequest) error {
	return r.DB.Create(req).Error
}

func (r *SourcingRepository) FindByID(id uint) (*model.SourcingRequest, error) {
	var req model.SourcingRequest
	err := r.DB.First(&req, id).Error
	return &req, err
}

func (r *SourcingRepository) Update(req *model.SourcingRequest) error {
	return r.DB.Save(req).Error
}

func (r *SourcingRepository) List(q SourcingQuery) ([]model.SourcingRequest, int64, error) {
	var reqs []model.SourcingRequest
	var total int64

	query := r.DB.Model(&model.SourcingRequest{})
	if q.UserID > 0 {
		query = query.Where("user_id = ?", q.UserID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC, id DESC").
		Scopes(Paginate(q.Page, q.PageSize)).
		Find(&reqs).Error
	return reqs, total, err
}

// CountOpen counts requests that still need a staff or customer action.
func (r *SourcingRepository) CountOpen(userID uint) (int64, error) {
	var count int64
	query := r.DB.Model(&model.SourcingRequest{}).
		Where("status IN ?", []model.SourcingStatus{model.SourcingPending, model.SourcingOffered})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *SourcingRepository) Count(userID uint) (int64, error) {
	var count int64
	query := r.DB.Model(&model.SourcingRequest{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	err := query.Count(&count).Error
	return count, err
}
