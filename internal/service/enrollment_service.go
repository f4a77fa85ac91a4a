package service

import (
	"errors"
	"time"

	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/internal/util"
	"mdla_service/pkg/logger"
	"mdla_service/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EnrollmentService struct {
	DB             *gorm.DB
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	CurriculumRepo *repository.CurriculumRepository
}

func NewEnrollmentService(db *gorm.DB, enrollmentRepo *repository.EnrollmentRepository, courseRepo *repository.CourseRepository, curriculumRepo *repository.CurriculumRepository) *EnrollmentService {
	return &EnrollmentService{
		DB:             db,
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		CurriculumRepo: curriculumRepo,
	}
}

type EnrollRequest struct {
	CourseID     uint               `json:"courseId" binding:"required"`
	LearningMode model.LearningMode `json:"learningMode" binding:"required"`
}

type CompleteItemRequest struct {
	ItemID uint `json:"itemId" binding:"required"`
}

type EnrollmentFilter struct {
	UserID       uint
	CourseID     uint
	Status       model.EnrollmentStatus
	LearningMode model.LearningMode
	Page         int
	PageSize     int
}

type EnrollmentStats struct {
	Total           int64                        `json:"total"`
	ByLearningMode  map[model.LearningMode]int64 `json:"byLearningMode"`
	Active          int64                        `json:"active"`
	Completed       int64                        `json:"completed"`
	CompletionRate  float64                      `json:"completionRate"`
	AverageProgress float64                      `json:"averageProgress"`
}

// EnrollmentProgress is an enrollment with the items its learner has finished.
type EnrollmentProgress struct {
	Enrollment       *model.Enrollment `json:"enrollment"`
	CompletedItemIDs []uint            `json:"completedItemIds"`
	TotalItems       int64             `json:"totalItems"`
	RequiredItems    int64             `json:"requiredItems"`
}

// Enroll registers the actor in a published course.
func (s *EnrollmentService) Enroll(actor Actor, req EnrollRequest) (*model.Enrollment, error) {
	if actor.Anonymous() {
		return nil, util.ErrUnauthorized
	}
	if !req.LearningMode.Valid() {
		return nil, util.Validationf("unknown learning mode %q", req.LearningMode)
	}

	var enrollment *model.Enrollment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		enrollments := s.EnrollmentRepo.WithTx(tx)

		// the course lock serializes concurrent enrollments of the same learner
		course, err := courses.LockByID(req.CourseID)
		if err != nil {
			return util.NotFoundOr(err, util.ErrCourseNotFound)
		}
		if course.Status != model.CoursePublished {
			return util.ErrCourseNotFound
		}

		_, err = enrollments.FindActive(actor.UserID, course.ID)
		if err == nil {
			return util.ErrAlreadyEnrolled
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		enrollment = &model.Enrollment{
			UserID:       actor.UserID,
			CourseID:     course.ID,
			LearningMode: req.LearningMode,
			Status:       model.EnrollmentActive,
			EnrolledAt:   time.Now(),
		}
		return enrollments.Create(enrollment)
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordEnrollment(string(enrollment.LearningMode))
	logger.Log.Info("Enrollment created",
		zap.Uint("enrollmentId", enrollment.ID),
		zap.Uint("userId", enrollment.UserID),
		zap.Uint("courseId", enrollment.CourseID),
		zap.String("learningMode", string(enrollment.LearningMode)),
	)
	return enrollment, nil
}

func (s *EnrollmentService) ListForUser(userID uint) ([]model.EnrollmentView, error) {
	views, err := s.EnrollmentRepo.ListViewsByUser(userID)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []model.EnrollmentView{}
	}
	return views, nil
}

// ListAll lists enrollments for admins, and the enrollments in their own courses for teachers.
func (s *EnrollmentService) ListAll(actor Actor, f EnrollmentFilter) ([]model.EnrollmentView, int64, error) {
	if f.Status != "" && f.Status != model.EnrollmentActive && f.Status != model.EnrollmentCompleted {
		return nil, 0, util.Validationf("unknown enrollment status %q", f.Status)
	}
	if f.LearningMode != "" && !f.LearningMode.Valid() {
		return nil, 0, util.Validationf("unknown learning mode %q", f.LearningMode)
	}

	q := repository.EnrollmentQuery{
		UserID:       f.UserID,
		CourseID:     f.CourseID,
		Status:       f.Status,
		LearningMode: f.LearningMode,
		Page:         f.Page,
		PageSize:     f.PageSize,
	}
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		q.TeacherID = actor.UserID
	default:
		return nil, 0, util.ErrPermissionDenied
	}

	views, total, err := s.EnrollmentRepo.ListViews(q)
	if err != nil {
		return nil, 0, err
	}
	if views == nil {
		views = []model.EnrollmentView{}
	}
	return views, total, nil
}

// Stats aggregates enrollments, over the teacher's own courses when teacherID > 0.
func (s *EnrollmentService) Stats(teacherID uint) (*EnrollmentStats, error) {
	rows, err := s.EnrollmentRepo.CountByModeAndStatus(teacherID, 0)
	if err != nil {
		return nil, err
	}
	stats := computeStats(rows)
	return &stats, nil
}

// StatsForUser aggregates the enrollments of one learner.
func (s *EnrollmentService) StatsForUser(userID uint) (*EnrollmentStats, error) {
	rows, err := s.EnrollmentRepo.CountByModeAndStatus(0, userID)
	if err != nil {
		return nil, err
	}
	stats := computeStats(rows)
	return &stats, nil
}

// computeStats derives the totals from grouped counts. An empty set yields zero rates.
func computeStats(rows []repository.ModeStatusCount) EnrollmentStats {
	stats := EnrollmentStats{
		ByLearningMode: map[model.LearningMode]int64{
			model.LearningOnline:   0,
			model.LearningInPerson: 0,
		},
	}
	var progressSum int64
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByLearningMode[row.LearningMode] += row.Count
		progressSum += row.ProgressSum
		switch row.Status {
		case model.EnrollmentCompleted:
			stats.Completed += row.Count
		case model.EnrollmentActive:
			stats.Active += row.Count
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total)
		stats.AverageProgress = float64(progressSum) / float64(stats.Total)
	}
	return stats
}

// RecordLessonCompletion marks an item of the enrolled course as finished and
// recomputes the progress. Repeating it for the same item changes nothing, and
// progress never goes down.
func (s *EnrollmentService) RecordLessonCompletion(actor Actor, enrollmentID, itemID uint) (*EnrollmentProgress, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		enrollments := s.EnrollmentRepo.WithTx(tx)
		curriculum := s.CurriculumRepo.WithTx(tx)

		enrollment, err := enrollments.FindByID(enrollmentID)
		if err != nil {
			return util.NotFoundOr(err, util.ErrEnrollmentNotFound)
		}
		if !actor.IsAdmin() && !actor.Owns(enrollment.UserID) {
			return util.ErrPermissionDenied
		}

		if _, err := curriculum.FindItem(itemID); err != nil {
			return util.NotFoundOr(err, util.ErrItemNotFound)
		}
		if _, err := curriculum.FindCourseItem(enrollment.CourseID, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.Validationf("item %d is not part of this course", itemID)
			}
			return err
		}

		now := time.Now()
		created, err := enrollments.AddCompletion(&model.LessonCompletion{
			EnrollmentID: enrollment.ID,
			ItemID:       itemID,
			CompletedAt:  now,
		})
		if err != nil || !created {
			return err
		}

		percent, err := coursePercent(enrollments, curriculum, enrollment)
		if err != nil {
			return err
		}
		if err := enrollments.AdvanceProgress(enrollment.ID, percent, now); err != nil {
			return err
		}
		if percent >= 100 && enrollment.Status != model.EnrollmentCompleted {
			logger.Log.Info("Course completed",
				zap.Uint("enrollmentId", enrollment.ID),
				zap.Uint("userId", enrollment.UserID),
				zap.Uint("courseId", enrollment.CourseID),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.progress(enrollmentID)
}

// Progress returns the enrollment with its finished items, to its learner or an admin.
func (s *EnrollmentService) Progress(actor Actor, enrollmentID uint) (*EnrollmentProgress, error) {
	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrEnrollmentNotFound)
	}
	if !actor.IsAdmin() && !actor.Owns(enrollment.UserID) {
		return nil, util.ErrPermissionDenied
	}
	return s.progress(enrollmentID)
}

func (s *EnrollmentService) progress(enrollmentID uint) (*EnrollmentProgress, error) {
	enrollment, err := s.EnrollmentRepo.FindByID(enrollmentID)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrEnrollmentNotFound)
	}
	ids, err := s.EnrollmentRepo.CompletedItemIDs(enrollmentID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	total, err := s.CurriculumRepo.CountItems(enrollment.CourseID, false)
	if err != nil {
		return nil, err
	}
	required, err := s.CurriculumRepo.CountItems(enrollment.CourseID, true)
	if err != nil {
		return nil, err
	}
	return &EnrollmentProgress{
		Enrollment:       enrollment,
		CompletedItemIDs: ids,
		TotalItems:       total,
		RequiredItems:    required,
	}, nil
}

// coursePercent measures progress against the required items of the course, or
// against all items when none is required.
func coursePercent(enrollments *repository.EnrollmentRepository, curriculum *repository.CurriculumRepository, enrollment *model.Enrollment) (int, error) {
	requiredOnly := true
	total, err := curriculum.CountItems(enrollment.CourseID, true)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		requiredOnly = false
		if total, err = curriculum.CountItems(enrollment.CourseID, false); err != nil {
			return 0, err
		}
	}
	done, err := enrollments.CountCompleted(enrollment.ID, requiredOnly)
	if err != nil {
		return 0, err
	}
	return progressPercent(done, total), nil
}

func progressPercent(done, total int64) int {
	if total <= 0 {
		return 0
	}
	if done >= total {
		return 100
	}
	return int(done * 100 / total)
}
