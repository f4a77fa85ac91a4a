package service

import (
	"strings"

	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductService struct {
	ProductRepo *repository.ProductRepository
}

func NewProductService(productRepo *repository.ProductRepository) *ProductService {
	return &ProductService{ProductRepo: productRepo}
}

type ProductRequest struct {
	Name        string                `json:"name" binding:"required,max=255"`
	Description string                `json:"description"`
	Category    model.ProductCategory `json:"category" binding:"required"`
	Price       *decimal.Decimal      `json:"price" binding:"required" swaggertype:"number"`
	Stock       int                   `json:"stock"`
	Images      []string              `json:"images"`
	Status      model.ProductStatus   `json:"status"`
}

type ProductFilter struct {
	Category model.ProductCategory
	Status   model.ProductStatus
	Search   string
	Page     int
	PageSize int
}

// List shows active products to the public; admins may filter on any status.
func (s *ProductService) List(actor Actor, f ProductFilter) ([]model.Product, int64, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, 0, util.Validationf("unknown product category %q", f.Category)
	}
	q := repository.ProductQuery{
		Category: f.Category,
		Status:   f.Status,
		Search:   strings.TrimSpace(f.Search),
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	if !actor.IsAdmin() {
		q.Status = model.ProductActive
	}
	return s.ProductRepo.List(q)
}

func (s *ProductService) Get(actor Actor, id uint) (*model.Product, error) {
	product, err := s.ProductRepo.FindByID(id)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrProductNotFound)
	}
	if product.Status != model.ProductActive && !actor.IsAdmin() {
		return nil, util.ErrProductNotFound
	}
	return product, nil
}

func (s *ProductService) Create(req ProductRequest) (*model.Product, error) {
	product := &model.Product{}
	if err := applyProductRequest(product, &req); err != nil {
		return nil, err
	}
	if err := s.ProductRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Update(id uint, req ProductRequest) (*model.Product, error) {
	product, err := s.ProductRepo.FindByID(id)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrProductNotFound)
	}
	if err := applyProductRequest(product, &req); err != nil {
		return nil, err
	}
	if err := s.ProductRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(id uint) error {
	return util.NotFoundOr(s.ProductRepo.Delete(id), util.ErrProductNotFound)
}

func applyProductRequest(p *model.Product, req *ProductRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return util.Validationf("name is required")
	}
	if !req.Category.Valid() {
		return util.Validationf("unknown product category %q", req.Category)
	}
	if req.Price == nil || req.Price.IsNegative() {
		return util.Validationf("price must be greater than or equal to 0")
	}
	if req.Stock < 0 {
		return util.Validationf("stock must not be negative")
	}
	status := req.Status
	if status == "" {
		status = model.ProductActive
	}
	if status != model.ProductActive && status != model.ProductInactive {
		return util.Validationf("unknown product status %q", status)
	}

	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}

	p.Name = name
	p.Description = strings.TrimSpace(req.Description)
	p.Category = req.Category
	p.Price = req.Price.Round(2)
	p.Stock = req.Stock
	p.Images = datatypes.JSONSlice[string](images)
	p.Status = status
	return nil
}
