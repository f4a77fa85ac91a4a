package service

import (
	"net/mail"
	"strings"

	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/internal/util"
	"mdla_service/pkg/logger"

	"go.uber.org/zap"
)

type ContactService struct {
	ContactRepo *repository.ContactRepository
	Notifier    Notifier
}

func NewContactService(contactRepo *repository.ContactRepository, notifier Notifier) *ContactService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ContactService{ContactRepo: contactRepo, Notifier: notifier}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

type ContactStatusRequest struct {
	Status model.ContactStatus `json:"status" binding:"required"`
}

// Submit stores a message from the public site. Notification failures are logged
// and never fail the submission.
func (s *ContactService) Submit(req ContactRequest) (*model.ContactMessage, error) {
	msg := &model.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
		Status:  model.ContactNew,
	}
	if msg.Name == "" || msg.Message == "" {
		return nil, util.Validationf("name and message are required")
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return nil, util.Validationf("invalid email address")
	}

	if err := s.ContactRepo.Create(msg); err != nil {
		return nil, err
	}

	if err := s.Notifier.NotifyContact(msg); err != nil {
		logger.Log.Warn("Contact notification failed", zap.Uint("messageId", msg.ID), zap.Error(err))
	}
	return msg, nil
}

func (s *ContactService) List(status model.ContactStatus, page, pageSize int) ([]model.ContactMessage, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, util.Validationf("unknown contact status %q", status)
	}
	return s.ContactRepo.List(status, page, pageSize)
}

func (s *ContactService) UpdateStatus(id uint, status model.ContactStatus) (*model.ContactMessage, error) {
	if !status.Valid() {
		return nil, util.Validationf("unknown contact status %q", status)
	}
	if err := s.ContactRepo.UpdateStatus(id, status); err != nil {
		return nil, util.NotFoundOr(err, util.ErrContactNotFound)
	}
	return s.ContactRepo.FindByID(id)
}

func (s *ContactService) Delete(id uint) error {
	return util.NotFoundOr(s.ContactRepo.Delete(id), util.ErrContactNotFound)
}
