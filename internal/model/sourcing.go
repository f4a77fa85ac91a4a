package model

import "github.com/shopspring/decimal"

type SourcingStatus string

const (
	SourcingPending  SourcingStatus = "pending"
	SourcingOffered  SourcingStatus = "offered"
	SourcingAccepted SourcingStatus = "accepted"
	SourcingDeclined SourcingStatus = "declined"
	SourcingClosed   SourcingStatus = "closed"
)

func (s SourcingStatus) Valid() bool {
	switch s {
	case SourcingPending, SourcingOffered, SourcingAccepted, SourcingDeclined, SourcingClosed:
		return true
	}
	return false
}

// Open reports whether the request still waits for an offer or an answer.
func (s SourcingStatus) Open() bool {
	return s == SourcingPending || s == SourcingOffered
}

// SourcingRequest is a customer ask for an item outside standard stock, answered by a staff offer.
// swagger:model SourcingRequest
type SourcingRequest struct {
	BaseModel
	UserID       uint                `gorm:"index;not null" json:"userId"`
	Title        string              `gorm:"size:255;not null" json:"title"`
	Description  string              `gorm:"type:text" json:"description"`
	Category     ProductCategory     `gorm:"size:30" json:"category"`
	Budget       decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"budget" swaggertype:"number"`
	Status       SourcingStatus      `gorm:"size:20;index;not null" json:"status"`
	OfferPrice   decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"offerPrice" swaggertype:"number"`
	OfferDetails string              `gorm:"type:text" json:"offerDetails,omitempty"`
	OfferedBy    *uint               `json:"offeredBy,omitempty"`
}

func (SourcingRequest) TableName() string {
	return "sourcing_requests"
}
