package repository

import (
	"time"

	"mdla_service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

type EnrollmentQuery struct {
	UserID       uint
	CourseID     uint
	TeacherID    uint
	Status       model.EnrollmentStatus
	LearningMode model.LearningMode
	Page         int
	PageSize     int
}

// ModeStatusCount is one row of the grouped enrollment statistics.
type ModeStatusCount struct {
	LearningMode model.LearningMode
	Status       model.EnrollmentStatus
	Count        int64
	ProgressSum  int64
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) FindByID(id uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.First(&enrollment, id).Error
	return &enrollment, err
}

// FindActive returns the active enrollment of user in course, if any.
func (r *EnrollmentRepository) FindActive(userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, model.EnrollmentActive).
		First(&enrollment).Error
	return &enrollment, err
}

const enrollmentViewColumns = `enrollments.id, enrollments.user_id, u.name AS user_name,
	enrollments.course_id, c.title AS course_title, c.level AS course_level,
	c.thumbnail AS course_thumbnail, t.name AS teacher_name,
	enrollments.learning_mode, enrollments.progress_percent, enrollments.status,
	enrollments.enrolled_at, enrollments.completed_at`

func (r *EnrollmentRepository) viewQuery() *gorm.DB {
	return r.DB.Table("enrollments").
		Joins("JOIN courses c ON c.id = enrollments.course_id").
		Joins("LEFT JOIN users u ON u.id = enrollments.user_id").
		Joins("LEFT JOIN users t ON t.id = c.teacher_id")
}

func (r *EnrollmentRepository) ListViewsByUser(userID uint) ([]model.EnrollmentView, error) {
	var views []model.EnrollmentView
	err := r.viewQuery().
		Select(enrollmentViewColumns).
		Where("enrollments.user_id = ?", userID).
		Order("enrollments.enrolled_at DESC, enrollments.id DESC").
		Scan(&views).Error
	return views, err
}

func (r *EnrollmentRepository) ListViews(q EnrollmentQuery) ([]model.EnrollmentView, int64, error) {
	var views []model.EnrollmentView
	var total int64

	query := r.viewQuery()
	if q.UserID > 0 {
		query = query.Where("enrollments.user_id = ?", q.UserID)
	}
	if q.CourseID > 0 {
		query = query.Where("enrollments.course_id = ?", q.CourseID)
	}
	if q.TeacherID > 0 {
		query = query.Where("c.teacher_id = ?", q.TeacherID)
	}
	if q.Status != "" {
		query = query.Where("enrollments.status = ?", q.Status)
	}
	if q.LearningMode != "" {
		query = query.Where("enrollments.learning_mode = ?", q.LearningMode)
	}

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Select(enrollmentViewColumns).
		Order("enrollments.enrolled_at DESC, enrollments.id DESC").
		Scopes(Paginate(q.Page, q.PageSize)).
		Scan(&views).Error
	return views, total, err
}

// CountByModeAndStatus groups enrollments by learning mode and status, optionally
// restricted to the courses of one teacher or to one user.
func (r *EnrollmentRepository) CountByModeAndStatus(teacherID, userID uint) ([]ModeStatusCount, error) {
	var rows []ModeStatusCount
	query := r.DB.Model(&model.Enrollment{}).
		Select("enrollments.learning_mode, enrollments.status, COUNT(*) AS count, COALESCE(SUM(enrollments.progress_percent), 0) AS progress_sum")
	if teacherID > 0 {
		query = query.Joins("JOIN courses c ON c.id = enrollments.course_id").Where("c.teacher_id = ?", teacherID)
	}
	if userID > 0 {
		query = query.Where("enrollments.user_id = ?", userID)
	}
	err := query.Group("enrollments.learning_mode, enrollments.status").Scan(&rows).Error
	return rows, err
}

// AdvanceProgress raises the progress of an enrollment. A lower percent never overwrites a higher one.
func (r *EnrollmentRepository) AdvanceProgress(id uint, percent int, now time.Time) error {
	updates := map[string]interface{}{
		"progress_percent": percent,
	}
	if percent >= 100 {
		updates["status"] = model.EnrollmentCompleted
		updates["completed_at"] = now
	}
	return r.DB.Model(&model.Enrollment{}).
		Where("id = ? AND progress_percent < ?", id, percent).
		Updates(updates).Error
}

// AddCompletion records a finished item. It reports false when the item was already recorded.
func (r *EnrollmentRepository) AddCompletion(completion *model.LessonCompletion) (bool, error) {
	result := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(completion)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *EnrollmentRepository) CompletedItemIDs(enrollmentID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.LessonCompletion{}).
		Where("enrollment_id = ?", enrollmentID).
		Order("completed_at ASC, id ASC").
		Pluck("item_id", &ids).Error
	return ids, err
}

// CountCompleted counts the completed items of an enrollment that still exist,
// only required ones when requiredOnly is set.
func (r *EnrollmentRepository) CountCompleted(enrollmentID uint, requiredOnly bool) (int64, error) {
	var count int64
	query := r.DB.Model(&model.LessonCompletion{}).
		Joins("JOIN curriculum_items ON curriculum_items.id = lesson_completions.item_id").
		Where("lesson_completions.enrollment_id = ?", enrollmentID)
	if requiredOnly {
		query = query.Where("curriculum_items.is_required = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}
