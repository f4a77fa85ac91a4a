package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CourseStatus string

const (
	CourseDraft         CourseStatus = "draft"
	CoursePendingReview CourseStatus = "pending_review"
	CoursePublished     CourseStatus = "published"
	CourseRejected      CourseStatus = "rejected"
)

var courseTransitions = map[CourseStatus][]CourseStatus{
	CourseDraft:         {CoursePendingReview},
	CoursePendingReview: {CoursePublished, CourseRejected},
	CourseRejected:      {CoursePendingReview},
}

func (s CourseStatus) Valid() bool {
	switch s {
	case CourseDraft, CoursePendingReview, CoursePublished, CourseRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the review workflow allows moving from s to next.
// Published is terminal: only deletion removes a published course.
func (s CourseStatus) CanTransitionTo(next CourseStatus) bool {
	for _, allowed := range courseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TeacherEditable reports whether the owning teacher may still change the course content.
func (s CourseStatus) TeacherEditable() bool {
	return s == CourseDraft || s == CourseRejected
}

type CourseLevel string

const (
	LevelA1       CourseLevel = "A1"
	LevelA2       CourseLevel = "A2"
	LevelB1       CourseLevel = "B1"
	LevelB2       CourseLevel = "B2"
	LevelC1       CourseLevel = "C1"
	LevelC2       CourseLevel = "C2"
	LevelBusiness CourseLevel = "Business"
)

func (l CourseLevel) Valid() bool {
	switch l {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2, LevelBusiness:
		return true
	}
	return false
}

// swagger:model Course
type Course struct {
	BaseModel
	Title           string              `gorm:"size:255;not null" json:"title"`
	Description     string              `gorm:"type:text" json:"description"`
	Level           CourseLevel         `gorm:"size:20;index" json:"level"`
	Thumbnail       string              `gorm:"size:500" json:"thumbnail,omitempty"`
	Price           decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"price" swaggertype:"number"`
	DiscountPrice   decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"discountPrice" swaggertype:"number"`
	DiscountPercent decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"discountPercent" swaggertype:"number"`
	Status          CourseStatus        `gorm:"size:20;index;not null" json:"status"`
	RejectionReason string              `gorm:"type:text" json:"rejectionReason,omitempty"`
	TeacherID       uint                `gorm:"index;not null" json:"teacherId"`
	Teacher         *User               `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	SubmittedAt     *time.Time          `json:"submittedAt,omitempty"`
	PublishedAt     *time.Time          `json:"publishedAt,omitempty"`
	Version         int                 `gorm:"not null" json:"version"`
	Modules         []Module            `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
