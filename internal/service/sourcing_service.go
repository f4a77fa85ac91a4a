package service

import (
	"fmt"
	"strings"

	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/internal/util"
	"mdla_service/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SourcingService struct {
	SourcingRepo *repository.SourcingRepository
}

func NewSourcingService(sourcingRepo *repository.SourcingRepository) *SourcingService {
	return &SourcingService{SourcingRepo: sourcingRepo}
}

type SourcingRequestInput struct {
	Title       string                `json:"title" binding:"required,max=255"`
	Description string                `json:"description"`
	Category    model.ProductCategory `json:"category"`
	Budget      *decimal.Decimal      `json:"budget" swaggertype:"number"`
}

type SourcingOfferRequest struct {
	Price   *decimal.Decimal `json:"price" binding:"required" swaggertype:"number"`
	Details string           `json:"details"`
}

type SourcingResponseRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

func (s *SourcingService) Create(actor Actor, in SourcingRequestInput) (*model.SourcingRequest, error) {
	if actor.Anonymous() {
		return nil, util.ErrUnauthorized
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, util.Validationf("title is required")
	}
	if in.Category != "" && !in.Category.Valid() {
		return nil, util.Validationf("unknown product category %q", in.Category)
	}

	req := &model.SourcingRequest{
		UserID:      actor.UserID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Status:      model.SourcingPending,
	}
	if in.Budget != nil {
		if in.Budget.IsNegative() {
			return nil, util.Validationf("budget must not be negative")
		}
		req.Budget = decimal.NewNullDecimal(in.Budget.Round(2))
	}
	if err := s.SourcingRepo.Create(req); err != nil {
		return nil, err
	}
	return req, nil
}

// List returns every request to staff and their own requests to customers.
func (s *SourcingService) List(actor Actor, status model.SourcingStatus, page, pageSize int) ([]model.SourcingRequest, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, util.Validationf("unknown sourcing status %q", status)
	}
	q := repository.SourcingQuery{Status: status, Page: page, PageSize: pageSize}
	if !actor.IsStaff() {
		q.UserID = actor.UserID
	}
	return s.SourcingRepo.List(q)
}

// SubmitOffer lets staff quote a price for a pending request, or revise an earlier offer.
func (s *SourcingService) SubmitOffer(actor Actor, id uint, in SourcingOfferRequest) (*model.SourcingRequest, error) {
	if !actor.IsStaff() {
		return nil, util.ErrPermissionDenied
	}
	if in.Price == nil || in.Price.IsNegative() {
		return nil, util.Validationf("offer price must be greater than or equal to 0")
	}
	req, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !req.Status.Open() {
		return nil, sourcingTransition(req.Status, model.SourcingOffered)
	}

	staffID := actor.UserID
	req.Status = model.SourcingOffered
	req.OfferPrice = decimal.NewNullDecimal(in.Price.Round(2))
	req.OfferDetails = strings.TrimSpace(in.Details)
	req.OfferedBy = &staffID
	if err := s.SourcingRepo.Update(req); err != nil {
		return nil, err
	}
	logger.Log.Info("Sourcing offer submitted", zap.Uint("requestId", req.ID), zap.Uint("by", staffID))
	return req, nil
}

// Respond records the customer's answer to an offer.
func (s *SourcingService) Respond(actor Actor, id uint, accept bool) (*model.SourcingRequest, error) {
	req, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(req.UserID) {
		return nil, util.ErrPermissionDenied
	}
	next := model.SourcingDeclined
	if accept {
		next = model.SourcingAccepted
	}
	if req.Status != model.SourcingOffered {
		return nil, sourcingTransition(req.Status, next)
	}

	req.Status = next
	if err := s.SourcingRepo.Update(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *SourcingService) Close(actor Actor, id uint) (*model.SourcingRequest, error) {
	if !actor.IsStaff() {
		return nil, util.ErrPermissionDenied
	}
	req, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if req.Status == model.SourcingClosed {
		return nil, sourcingTransition(req.Status, model.SourcingClosed)
	}
	req.Status = model.SourcingClosed
	if err := s.SourcingRepo.Update(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *SourcingService) find(id uint) (*model.SourcingRequest, error) {
	req, err := s.SourcingRepo.FindByID(id)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrSourcingNotFound)
	}
	return req, nil
}

func sourcingTransition(from, to model.SourcingStatus) error {
	return fmt.Errorf("%w: %s -> %s", util.ErrInvalidTransition, from, to)
}
