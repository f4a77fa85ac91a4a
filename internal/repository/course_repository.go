package repository

import (
	"mdla_service/internal/model"
	"mdla_service/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// WithTx returns a repository bound to tx.
func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

// CourseQuery filters course listings. When VisibleTo is set, only published
// courses and the courses owned by that teacher are returned.
type CourseQuery struct {
	Status        model.CourseStatus
	Level         model.CourseLevel
	Search        string
	TeacherID     uint
	PublishedOnly bool
	VisibleTo     uint
	Page          int
	PageSize      int
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

// LockByID reads the course with a row lock held until the transaction ends, so
// writers keyed on the same course run one after another.
func (r *CourseRepository) LockByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, id).Error
	return &course, err
}

// FindWithCurriculum loads the course, its teacher and its modules and items in display order.
func (r *CourseRepository) FindWithCurriculum(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Teacher").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Modules.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) List(q CourseQuery) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})
	if q.PublishedOnly {
		query = query.Where("status = ?", model.CoursePublished)
	} else if q.VisibleTo > 0 {
		query = query.Where("status = ? OR teacher_id = ?", model.CoursePublished, q.VisibleTo)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Level != "" {
		query = query.Where("level = ?", q.Level)
	}
	if q.TeacherID > 0 {
		query = query.Where("teacher_id = ?", q.TeacherID)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Teacher").
		Order("created_at DESC, id DESC").
		Scopes(Paginate(q.Page, q.PageSize)).
		Find(&courses).Error
	return courses, total, err
}

// UpdateVersioned applies updates only if the stored version still equals version,
// and bumps the version. A lost race returns util.ErrVersionConflict.
func (r *CourseRepository) UpdateVersioned(id uint, version int, updates map[string]interface{}) error {
	updates["version"] = gorm.Expr("version + 1")
	result := r.DB.Model(&model.Course{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrVersionConflict
	}
	return nil
}

// Touch bumps the version of a course whose curriculum changed.
func (r *CourseRepository) Touch(id uint, version int) error {
	return r.UpdateVersioned(id, version, map[string]interface{}{})
}

// DeleteCascade removes the course with its curriculum, enrollments and lesson completions.
func (r *CourseRepository) DeleteCascade(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		enrollmentIDs := tx.Model(&model.Enrollment{}).Select("id").Where("course_id = ?", id)
		if err := tx.Where("enrollment_id IN (?)", enrollmentIDs).Delete(&model.LessonCompletion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}

		moduleIDs := tx.Model(&model.Module{}).Select("id").Where("course_id = ?", id)
		if err := tx.Where("module_id IN (?)", moduleIDs).Delete(&model.CurriculumItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Module{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Course{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CountByStatus counts courses per status, restricted to one teacher when teacherID > 0.
func (r *CourseRepository) CountByStatus(teacherID uint) (map[model.CourseStatus]int64, error) {
	var rows []struct {
		Status model.CourseStatus
		Count  int64
	}
	query := r.DB.Model(&model.Course{}).Select("status, COUNT(*) AS count")
	if teacherID > 0 {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[model.CourseStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
