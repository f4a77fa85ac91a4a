package service

import (
	"fmt"
	"sort"
	"strings"

	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/internal/util"
	"mdla_service/pkg/logger"
	"mdla_service/pkg/monitoring"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService struct {
	DB          *gorm.DB
	OrderRepo   *repository.OrderRepository
	ProductRepo *repository.ProductRepository
}

func NewOrderService(db *gorm.DB, orderRepo *repository.OrderRepository, productRepo *repository.ProductRepository) *OrderService {
	return &OrderService{
		DB:          db,
		OrderRepo:   orderRepo,
		ProductRepo: productRepo,
	}
}

type OrderLine struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	Items           []OrderLine `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string      `json:"shippingAddress" binding:"required"`
	Phone           string      `json:"phone" binding:"required"`
	Note            string      `json:"note"`
}

type OrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

func newOrderReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CMD-" + strings.ToUpper(id[:12])
}

// Place checks out a cart. Stock of every product is taken in the same
// transaction, so a single missing unit cancels the whole order.
func (s *OrderService) Place(actor Actor, req PlaceOrderRequest) (*model.Order, error) {
	if actor.Anonymous() {
		return nil, util.ErrUnauthorized
	}
	lines, err := mergeOrderLines(req.Items)
	if err != nil {
		return nil, err
	}
	address := strings.TrimSpace(req.ShippingAddress)
	phone := strings.TrimSpace(req.Phone)
	if address == "" || phone == "" {
		return nil, util.Validationf("shipping address and phone are required")
	}

	order := &model.Order{
		Reference:       newOrderReference(),
		UserID:          actor.UserID,
		Status:          model.OrderPending,
		ShippingAddress: address,
		Phone:           phone,
		Note:            strings.TrimSpace(req.Note),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		products := s.ProductRepo.WithTx(tx)
		total := decimal.Zero

		for _, line := range lines {
			product, err := products.FindByID(line.ProductID)
			if err != nil {
				return util.NotFoundOr(err, fmt.Errorf("%w: product %d", util.ErrProductNotFound, line.ProductID))
			}
			if product.Status != model.ProductActive {
				return util.Validationf("product %q is not available", product.Name)
			}
			ok, err := products.DecrementStock(product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %q has %d left", util.ErrInsufficientStock, product.Name, product.Stock)
			}

			subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			order.Items = append(order.Items, model.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    line.Quantity,
				Subtotal:    subtotal,
			})
		}

		order.Total = total
		return s.OrderRepo.WithTx(tx).Create(order)
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordOrder(string(order.Status))
	logger.Log.Info("Order placed",
		zap.Uint("orderId", order.ID),
		zap.String("reference", order.Reference),
		zap.Uint("userId", order.UserID),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

// List returns every order to staff and only their own orders to other users.
func (s *OrderService) List(actor Actor, status model.OrderStatus, page, pageSize int) ([]model.Order, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, util.Validationf("unknown order status %q", status)
	}
	q := repository.OrderQuery{Status: status, Page: page, PageSize: pageSize}
	if !actor.IsStaff() {
		q.UserID = actor.UserID
	}
	return s.OrderRepo.List(q)
}

func (s *OrderService) Get(actor Actor, id uint) (*model.Order, error) {
	order, err := s.OrderRepo.FindByID(id)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrOrderNotFound)
	}
	if !actor.IsStaff() && !actor.Owns(order.UserID) {
		return nil, util.ErrPermissionDenied
	}
	return order, nil
}

// UpdateStatus moves an order along fulfilment. Cancelling puts the stock back.
func (s *OrderService) UpdateStatus(actor Actor, id uint, status model.OrderStatus) (*model.Order, error) {
	if !actor.IsStaff() {
		return nil, util.ErrPermissionDenied
	}
	if !status.Valid() {
		return nil, util.Validationf("unknown order status %q", status)
	}
	if err := s.changeStatus(id, status, nil); err != nil {
		return nil, err
	}
	return s.OrderRepo.FindByID(id)
}

// Cancel lets the customer withdraw an order that is still pending.
func (s *OrderService) Cancel(actor Actor, id uint) (*model.Order, error) {
	err := s.changeStatus(id, model.OrderCancelled, func(order *model.Order) error {
		if !actor.IsStaff() && !actor.Owns(order.UserID) {
			return util.ErrPermissionDenied
		}
		if !actor.IsStaff() && order.Status != model.OrderPending {
			return fmt.Errorf("%w: only pending orders can be cancelled", util.ErrInvalidTransition)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.OrderRepo.FindByID(id)
}

func (s *OrderService) changeStatus(id uint, to model.OrderStatus, check func(*model.Order) error) error {
	var from model.OrderStatus
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		orders := s.OrderRepo.WithTx(tx)
		products := s.ProductRepo.WithTx(tx)

		order, err := orders.FindByID(id)
		if err != nil {
			return util.NotFoundOr(err, util.ErrOrderNotFound)
		}
		if check != nil {
			if err := check(order); err != nil {
				return err
			}
		}
		from = order.Status
		if !from.CanTransitionTo(to) {
			return fmt.Errorf("%w: %s -> %s", util.ErrInvalidTransition, from, to)
		}
		ok, err := orders.UpdateStatus(order.ID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: order status changed concurrently", util.ErrConflict)
		}
		if to == model.OrderCancelled {
			for _, item := range order.Items {
				if err := products.IncrementStock(item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	monitoring.RecordOrder(string(to))
	logger.Log.Info("Order status changed",
		zap.Uint("orderId", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return nil
}

// mergeOrderLines sums quantities of repeated products and sorts lines by product
// id so concurrent checkouts lock rows in the same order.
func mergeOrderLines(items []OrderLine) ([]OrderLine, error) {
	if len(items) == 0 {
		return nil, util.Validationf("order has no items")
	}
	byProduct := make(map[uint]int, len(items))
	for i, item := range items {
		if item.ProductID == 0 || item.Quantity < 1 {
			return nil, util.Validationf("items[%d]: product and a positive quantity are required", i)
		}
		byProduct[item.ProductID] += item.Quantity
	}
	lines := make([]OrderLine, 0, len(byProduct))
	for id, qty := range byProduct {
		lines = append(lines, OrderLine{ProductID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}
