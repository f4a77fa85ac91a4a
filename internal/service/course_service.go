package service

import (
	"fmt"
	"strings"
	"time"

	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/internal/util"
	"mdla_service/pkg/logger"
	"mdla_service/pkg/monitoring"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseService struct {
	DB         *gorm.DB
	CourseRepo *repository.CourseRepository
	Cache      *CourseCache
}

func NewCourseService(db *gorm.DB, courseRepo *repository.CourseRepository, cache *CourseCache) *CourseService {
	return &CourseService{
		DB:         db,
		CourseRepo: courseRepo,
		Cache:      cache,
	}
}

// CourseRequest carries the teacher-editable fields of a course. Price is advisory
// until an admin approves the course.
type CourseRequest struct {
	Title       string            `json:"title" binding:"required,max=255"`
	Description string            `json:"description"`
	Level       model.CourseLevel `json:"level"`
	Thumbnail   string            `json:"thumbnail"`
	Price       *decimal.Decimal  `json:"price" swaggertype:"number"`
	Version     *int              `json:"version,omitempty"`
}

type ApproveRequest struct {
	Price    *decimal.Decimal `json:"price" binding:"required" swaggertype:"number"`
	Discount decimal.Decimal  `json:"discount" swaggertype:"number"`
	Version  *int             `json:"version,omitempty"`
}

type RejectRequest struct {
	Reason  string `json:"reason" binding:"required"`
	Version *int   `json:"version,omitempty"`
}

// VersionRequest is the optional body of submit and resubmit.
type VersionRequest struct {
	Version *int `json:"version,omitempty"`
}

type CourseFilter struct {
	Status    model.CourseStatus
	Level     model.CourseLevel
	Search    string
	TeacherID uint
	Mine      bool
	Page      int
	PageSize  int
}

var hundred = decimal.NewFromInt(100)

// DiscountedPrice applies a percentage discount and rounds to cents.
func DiscountedPrice(price, discount decimal.Decimal) decimal.Decimal {
	return price.Sub(price.Mul(discount).Div(hundred)).Round(2)
}

func (s *CourseService) Create(actor Actor, req CourseRequest) (*model.Course, error) {
	if actor.Role != model.Teacher && !actor.IsAdmin() {
		return nil, util.ErrPermissionDenied
	}
	if err := validateCourseFields(&req); err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Thumbnail:   req.Thumbnail,
		Status:      model.CourseDraft,
		TeacherID:   actor.UserID,
		Version:     1,
	}
	if req.Price != nil {
		course.Price = decimal.NewNullDecimal(*req.Price)
	}

	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}

	logger.Log.Info("Course created",
		zap.Uint("courseId", course.ID),
		zap.Uint("teacherId", course.TeacherID),
	)
	return course, nil
}

func (s *CourseService) Update(actor Actor, id uint, req CourseRequest) (*model.Course, error) {
	course, err := s.findCourse(id)
	if err != nil {
		return nil, err
	}
	if err := checkCourseEditable(actor, course); err != nil {
		return nil, err
	}
	if err := checkVersion(req.Version, course); err != nil {
		return nil, err
	}
	if err := validateCourseFields(&req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"level":       req.Level,
		"thumbnail":   req.Thumbnail,
	}
	if req.Price != nil {
		price := req.Price.Round(2)
		updates["price"] = decimal.NewNullDecimal(price)
		// an approved discount follows the list price
		if course.DiscountPercent.Valid {
			updates["discount_price"] = decimal.NewNullDecimal(DiscountedPrice(price, course.DiscountPercent.Decimal))
		}
	}

	if err := s.CourseRepo.UpdateVersioned(course.ID, course.Version, updates); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(course.ID)
	return s.findCourse(course.ID)
}

// Submit sends a draft course to review.
func (s *CourseService) Submit(actor Actor, id uint, version *int) (*model.Course, error) {
	course, err := s.findCourse(id)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(actor, course) {
		return nil, util.ErrPermissionDenied
	}
	if course.Status != model.CourseDraft {
		return nil, invalidTransition(course.Status, model.CoursePendingReview)
	}
	if err := validateForReview(course); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.transition(course, model.CoursePendingReview, version, map[string]interface{}{
		"submitted_at": now,
	})
	if err != nil {
		return nil, err
	}
	return s.findCourse(course.ID)
}

// Resubmit sends a rejected course back to review and clears the previous rejection reason.
func (s *CourseService) Resubmit(actor Actor, id uint, version *int) (*model.Course, error) {
	course, err := s.findCourse(id)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(actor, course) {
		return nil, util.ErrPermissionDenied
	}
	if course.Status != model.CourseRejected {
		return nil, invalidTransition(course.Status, model.CoursePendingReview)
	}
	if err := validateForReview(course); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.transition(course, model.CoursePendingReview, version, map[string]interface{}{
		"rejection_reason": "",
		"submitted_at":     now,
	})
	if err != nil {
		return nil, err
	}
	return s.findCourse(course.ID)
}

// Approve publishes a course under review with the final price.
func (s *CourseService) Approve(actor Actor, id uint, req ApproveRequest) (*model.Course, error) {
	if !actor.IsAdmin() {
		return nil, util.ErrPermissionDenied
	}
	if req.Price == nil {
		return nil, util.Validationf("price is required")
	}
	if req.Price.IsNegative() {
		return nil, util.Validationf("price must be greater than or equal to 0")
	}
	if req.Discount.IsNegative() || req.Discount.GreaterThan(hundred) {
		return nil, util.Validationf("discount must be between 0 and 100")
	}

	course, err := s.findCourse(id)
	if err != nil {
		return nil, err
	}

	price := req.Price.Round(2)
	now := time.Now()
	err = s.transition(course, model.CoursePublished, req.Version, map[string]interface{}{
		"price":            decimal.NewNullDecimal(price),
		"discount_price":   decimal.NewNullDecimal(DiscountedPrice(price, req.Discount)),
		"discount_percent": decimal.NewNullDecimal(req.Discount.Round(2)),
		"rejection_reason": "",
		"published_at":     now,
	})
	if err != nil {
		return nil, err
	}
	return s.findCourse(course.ID)
}

// Reject sends a course under review back to its teacher with a reason.
func (s *CourseService) Reject(actor Actor, id uint, req RejectRequest) (*model.Course, error) {
	if !actor.IsAdmin() {
		return nil, util.ErrPermissionDenied
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, util.Validationf("rejection reason is required")
	}

	course, err := s.findCourse(id)
	if err != nil {
		return nil, err
	}

	err = s.transition(course, model.CourseRejected, req.Version, map[string]interface{}{
		"rejection_reason": reason,
	})
	if err != nil {
		return nil, err
	}
	return s.findCourse(course.ID)
}

// Delete removes a course with its curriculum and enrollments.
func (s *CourseService) Delete(actor Actor, id uint) error {
	if !actor.IsAdmin() {
		return util.ErrPermissionDenied
	}
	if err := s.CourseRepo.DeleteCascade(id); err != nil {
		return util.NotFoundOr(err, util.ErrCourseNotFound)
	}
	s.Cache.Invalidate(id)
	logger.Log.Info("Course deleted", zap.Uint("courseId", id), zap.Uint("by", actor.UserID))
	return nil
}

func (s *CourseService) List(actor Actor, f CourseFilter) ([]model.Course, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, util.Validationf("unknown course status %q", f.Status)
	}
	if f.Level != "" && !f.Level.Valid() {
		return nil, 0, util.Validationf("unknown course level %q", f.Level)
	}

	q := repository.CourseQuery{
		Status:    f.Status,
		Level:     f.Level,
		Search:    strings.TrimSpace(f.Search),
		TeacherID: f.TeacherID,
		Page:      f.Page,
		PageSize:  f.PageSize,
	}
	switch {
	case actor.IsAdmin():
		if f.Mine {
			q.TeacherID = actor.UserID
		}
	case actor.IsTeacher():
		if f.Mine {
			q.TeacherID = actor.UserID
		} else {
			q.VisibleTo = actor.UserID
		}
	default:
		q.PublishedOnly = true
	}
	return s.CourseRepo.List(q)
}

// Get returns a course with its curriculum. Unpublished courses are only visible
// to their teacher and to admins.
func (s *CourseService) Get(actor Actor, id uint) (*model.Course, error) {
	if course, ok := s.Cache.Get(id); ok {
		return course, nil
	}

	course, err := s.CourseRepo.FindWithCurriculum(id)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrCourseNotFound)
	}
	if course.Status != model.CoursePublished && !canManageCourse(actor, course) {
		return nil, util.ErrCourseNotFound
	}
	s.Cache.Set(course)
	return course, nil
}

func (s *CourseService) transition(course *model.Course, to model.CourseStatus, version *int, updates map[string]interface{}) error {
	from := course.Status
	if !from.CanTransitionTo(to) {
		return invalidTransition(from, to)
	}
	if err := checkVersion(version, course); err != nil {
		return err
	}

	updates["status"] = to
	if err := s.CourseRepo.UpdateVersioned(course.ID, course.Version, updates); err != nil {
		return err
	}
	s.Cache.Invalidate(course.ID)

	monitoring.RecordCourseTransition(string(from), string(to))
	logger.Log.Info("Course status changed",
		zap.Uint("courseId", course.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return nil
}

func (s *CourseService) findCourse(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrCourseNotFound)
	}
	return course, nil
}

func invalidTransition(from, to model.CourseStatus) error {
	return fmt.Errorf("%w: %s -> %s", util.ErrInvalidTransition, from, to)
}

func canManageCourse(actor Actor, course *model.Course) bool {
	return actor.IsAdmin() || actor.Owns(course.TeacherID)
}

// checkCourseEditable applies the edit rule shared by course fields and curriculum:
// the owner while draft or rejected, admins always.
func checkCourseEditable(actor Actor, course *model.Course) error {
	if !canManageCourse(actor, course) {
		return util.ErrPermissionDenied
	}
	if !actor.IsAdmin() && !course.Status.TeacherEditable() {
		return fmt.Errorf("%w (status %s)", util.ErrCourseLocked, course.Status)
	}
	return nil
}

func checkVersion(expected *int, course *model.Course) error {
	if expected != nil && *expected != course.Version {
		return util.ErrVersionConflict
	}
	return nil
}

func validateCourseFields(req *CourseRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Thumbnail = strings.TrimSpace(req.Thumbnail)
	if req.Title == "" {
		return util.Validationf("title is required")
	}
	if req.Level != "" && !req.Level.Valid() {
		return util.Validationf("unknown course level %q", req.Level)
	}
	if req.Price != nil && req.Price.IsNegative() {
		return util.Validationf("price must be greater than or equal to 0")
	}
	return nil
}

// validateForReview checks the fields a course needs before an admin can review it.
func validateForReview(course *model.Course) error {
	var missing []string
	if strings.TrimSpace(course.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(course.Description) == "" {
		missing = append(missing, "description")
	}
	if !course.Level.Valid() {
		missing = append(missing, "level")
	}
	if len(missing) > 0 {
		return util.Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
