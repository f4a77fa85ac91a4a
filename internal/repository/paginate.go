package repository

import (
	"mdla_service/internal/util"

	"gorm.io/gorm"
)

// Paginate limits a listing to one page. Out of range values fall back to the
// first page and the default page size.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		switch {
		case pageSize < 1:
			pageSize = util.DefaultPageSize
		case pageSize > util.MaxPageSize:
			pageSize = util.MaxPageSize
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
