package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// swagger:model Module
type Module struct {
	BaseModel
	CourseID uint             `gorm:"index;not null" json:"courseId"`
	Title    string           `gorm:"size:255;not null" json:"title"`
	Order    int              `gorm:"column:position;not null" json:"order"`
	Items    []CurriculumItem `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Module) TableName() string {
	return "course_modules"
}

type ItemType string

const (
	ItemVideo       ItemType = "video"
	ItemAudio       ItemType = "audio"
	ItemPDF         ItemType = "pdf"
	ItemQuiz        ItemType = "quiz"
	ItemLiveSession ItemType = "live_session"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemVideo, ItemAudio, ItemPDF, ItemQuiz, ItemLiveSession:
		return true
	}
	return false
}

// swagger:model CurriculumItem
type CurriculumItem struct {
	BaseModel
	ModuleID    uint           `gorm:"index;not null" json:"moduleId"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Type        ItemType       `gorm:"size:20;not null" json:"type"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Duration    int            `gorm:"not null" json:"duration"` // minutes
	Order       int            `gorm:"column:position;not null" json:"order"`
	IsRequired  bool           `gorm:"not null" json:"isRequired"`
	Content     datatypes.JSON `json:"content" swaggertype:"object"`
}

func (CurriculumItem) TableName() string {
	return "curriculum_items"
}

// MediaContent is the payload of video, audio and pdf items.
type MediaContent struct {
	URL string `json:"url"`
}

type QuizContent struct {
	Data json.RawMessage `json:"data"`
}

type LiveSessionContent struct {
	StartsAt   time.Time `json:"startsAt"`
	Location   string    `json:"location,omitempty"`
	MeetingURL string    `json:"meetingUrl,omitempty"`
}

var (
	errContentURLMissing   = errors.New("content.url is required")
	errContentDataMissing  = errors.New("content.data is required")
	errContentStartMissing = errors.New("content.startsAt is required")
)

// NormalizeItemContent decodes raw into the variant for t, validates it and
// re-encodes it so only the fields of that variant are stored.
func NormalizeItemContent(t ItemType, raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	var variant interface{}
	switch t {
	case ItemVideo, ItemAudio, ItemPDF:
		var c MediaContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("invalid %s content: %v", t, err)
		}
		c.URL = strings.TrimSpace(c.URL)
		if c.URL == "" {
			return nil, errContentURLMissing
		}
		variant = c
	case ItemQuiz:
		var c QuizContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("invalid quiz content: %v", err)
		}
		if len(c.Data) == 0 || string(c.Data) == "null" {
			return nil, errContentDataMissing
		}
		variant = c
	case ItemLiveSession:
		var c LiveSessionContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("invalid live_session content: %v", err)
		}
		if c.StartsAt.IsZero() {
			return nil, errContentStartMissing
		}
		variant = c
	default:
		return nil, fmt.Errorf("unknown item type %q", t)
	}

	out, err := json.Marshal(variant)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(out), nil
}
