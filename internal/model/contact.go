package model

type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied, ContactArchived:
		return true
	}
	return false
}

// swagger:model ContactMessage
type ContactMessage struct {
	SoftDeleteModel
	Name    string        `gorm:"size:100;not null" json:"name"`
	Email   string        `gorm:"size:100;not null" json:"email"`
	Phone   string        `gorm:"size:30" json:"phone,omitempty"`
	Subject string        `gorm:"size:255" json:"subject"`
	Message string        `gorm:"type:text;not null" json:"message"`
	Status  ContactStatus `gorm:"size:20;index;not null" json:"status"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}
