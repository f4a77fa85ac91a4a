package repository

import (
	"mdla_service/internal/model"

	"gorm.io/gorm"
)

type CurriculumRepository struct {
	DB *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: db}
}

func (r *CurriculumRepository) WithTx(tx *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: tx}
}

// ListModules returns the modules of a course with their items, both in display order.
func (r *CurriculumRepository) ListModules(courseID uint) ([]model.Module, error) {
	var modules []model.Module
	err := r.DB.Where("course_id = ?", courseID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Order("position ASC, id ASC").
		Find(&modules).Error
	return modules, err
}

func (r *CurriculumRepository) FindModule(id uint) (*model.Module, error) {
	var module model.Module
	err := r.DB.First(&module, id).Error
	return &module, err
}

func (r *CurriculumRepository) CreateModule(module *model.Module) error {
	return r.DB.Omit("Items").Create(module).Error
}

func (r *CurriculumRepository) UpdateModule(id uint, updates map[string]interface{}) error {
	return r.DB.Model(&model.Module{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteModules removes modules with their items and the completions recorded on those items.
func (r *CurriculumRepository) DeleteModules(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	itemIDs := r.DB.Model(&model.CurriculumItem{}).Select("id").Where("module_id IN ?", ids)
	if err := r.DB.Where("item_id IN (?)", itemIDs).Delete(&model.LessonCompletion{}).Error; err != nil {
		return err
	}
	if err := r.DB.Where("module_id IN ?", ids).Delete(&model.CurriculumItem{}).Error; err != nil {
		return err
	}
	return r.DB.Where("id IN ?", ids).Delete(&model.Module{}).Error
}

// ModuleIDs lists the module ids of a course in display order.
func (r *CurriculumRepository) ModuleIDs(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Module{}).
		Where("course_id = ?", courseID).
		Order("position ASC, id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// ItemIDs lists the item ids of a module in display order.
func (r *CurriculumRepository) ItemIDs(moduleID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.CurriculumItem{}).
		Where("module_id = ?", moduleID).
		Order("position ASC, id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *CurriculumRepository) NextModuleOrder(courseID uint) (int, error) {
	var max int
	err := r.DB.Model(&model.Module{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max + 1, err
}

func (r *CurriculumRepository) FindItem(id uint) (*model.CurriculumItem, error) {
	var item model.CurriculumItem
	err := r.DB.First(&item, id).Error
	return &item, err
}

func (r *CurriculumRepository) CreateItem(item *model.CurriculumItem) error {
	return r.DB.Create(item).Error
}

func (r *CurriculumRepository) UpdateItem(id uint, updates map[string]interface{}) error {
	return r.DB.Model(&model.CurriculumItem{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteItems removes items and the completions recorded on them.
func (r *CurriculumRepository) DeleteItems(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.DB.Where("item_id IN ?", ids).Delete(&model.LessonCompletion{}).Error; err != nil {
		return err
	}
	return r.DB.Where("id IN ?", ids).Delete(&model.CurriculumItem{}).Error
}

func (r *CurriculumRepository) NextItemOrder(moduleID uint) (int, error) {
	var max int
	err := r.DB.Model(&model.CurriculumItem{}).
		Where("module_id = ?", moduleID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max + 1, err
}

// FindCourseItem returns the item only if it belongs to a module of courseID.
func (r *CurriculumRepository) FindCourseItem(courseID, itemID uint) (*model.CurriculumItem, error) {
	var item model.CurriculumItem
	err := r.DB.Model(&model.CurriculumItem{}).
		Joins("JOIN course_modules ON course_modules.id = curriculum_items.module_id").
		Where("course_modules.course_id = ? AND curriculum_items.id = ?", courseID, itemID).
		First(&item).Error
	return &item, err
}

// CountItems counts the items of a course, only required ones when requiredOnly is set.
func (r *CurriculumRepository) CountItems(courseID uint, requiredOnly bool) (int64, error) {
	var count int64
	query := r.DB.Model(&model.CurriculumItem{}).
		Joins("JOIN course_modules ON course_modules.id = curriculum_items.module_id").
		Where("course_modules.course_id = ?", courseID)
	if requiredOnly {
		query = query.Where("curriculum_items.is_required = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}
