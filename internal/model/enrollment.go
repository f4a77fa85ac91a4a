package model

import "time"

type LearningMode string

const (
	LearningOnline   LearningMode = "online"
	LearningInPerson LearningMode = "in_person"
)

func (m LearningMode) Valid() bool {
	return m == LearningOnline || m == LearningInPerson
}

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID          uint             `gorm:"index:idx_enrollment_user_course;not null" json:"userId"`
	CourseID        uint             `gorm:"index:idx_enrollment_user_course;index;not null" json:"courseId"`
	LearningMode    LearningMode     `gorm:"size:20;not null" json:"learningMode"`
	ProgressPercent int              `gorm:"not null" json:"progressPercent"`
	Status          EnrollmentStatus `gorm:"size:20;index;not null" json:"status"`
	EnrolledAt      time.Time        `json:"enrolledAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// LessonCompletion records that an enrolled user finished one curriculum item.
type LessonCompletion struct {
	BaseModel
	EnrollmentID uint      `gorm:"uniqueIndex:idx_completion_enrollment_item;not null" json:"enrollmentId"`
	ItemID       uint      `gorm:"uniqueIndex:idx_completion_enrollment_item;not null" json:"itemId"`
	CompletedAt  time.Time `json:"completedAt"`
}

func (LessonCompletion) TableName() string {
	return "lesson_completions"
}

// EnrollmentView is an enrollment joined with the course summary shown on dashboards.
// swagger:model EnrollmentView
type EnrollmentView struct {
	ID              uint             `json:"id"`
	UserID          uint             `json:"userId"`
	UserName        string           `json:"userName,omitempty"`
	CourseID        uint             `json:"courseId"`
	CourseTitle     string           `json:"courseTitle"`
	CourseLevel     CourseLevel      `json:"courseLevel"`
	CourseThumbnail string           `json:"courseThumbnail,omitempty"`
	TeacherName     string           `json:"teacherName"`
	LearningMode    LearningMode     `json:"learningMode"`
	ProgressPercent int              `json:"progressPercent"`
	Status          EnrollmentStatus `json:"status"`
	EnrolledAt      time.Time        `json:"enrolledAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
}
