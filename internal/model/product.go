package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductCategory string

const (
	CategoryVehicle   ProductCategory = "vehicle"
	CategorySparePart ProductCategory = "spare_part"
	CategoryEquipment ProductCategory = "equipment"
	CategoryService   ProductCategory = "service"
	CategoryOther     ProductCategory = "other"
)

func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryVehicle, CategorySparePart, CategoryEquipment, CategoryService, CategoryOther:
		return true
	}
	return false
}

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// swagger:model Product
type Product struct {
	SoftDeleteModel
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	Category    ProductCategory             `gorm:"size:30;index;not null" json:"category"`
	Price       decimal.Decimal             `gorm:"type:decimal(14,2);not null" json:"price" swaggertype:"number"`
	Stock       int                         `gorm:"not null" json:"stock"`
	Images      datatypes.JSONSlice[string] `json:"images" swaggertype:"array,string"`
	Status      ProductStatus               `gorm:"size:20;index;not null" json:"status"`
}

func (Product) TableName() string {
	return "products"
}
