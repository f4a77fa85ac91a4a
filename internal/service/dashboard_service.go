package service

import (
	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/pkg/monitoring"
)

type DashboardService struct {
	UserRepo     *repository.UserRepository
	CourseRepo   *repository.CourseRepository
	OrderRepo    *repository.OrderRepository
	SourcingRepo *repository.SourcingRepository
	ContactRepo  *repository.ContactRepository
	Enrollments  *EnrollmentService
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	orderRepo *repository.OrderRepository,
	sourcingRepo *repository.SourcingRepository,
	contactRepo *repository.ContactRepository,
	enrollments *EnrollmentService,
) *DashboardService {
	return &DashboardService{
		UserRepo:     userRepo,
		CourseRepo:   courseRepo,
		OrderRepo:    orderRepo,
		SourcingRepo: sourcingRepo,
		ContactRepo:  contactRepo,
		Enrollments:  enrollments,
	}
}

// Dashboard is the role-specific home screen summary. Sections that do not apply
// to the role are omitted.
type Dashboard struct {
	Role             model.UserRole               `json:"role"`
	Enrollments      *EnrollmentStats             `json:"enrollments,omitempty"`
	CoursesByStatus  map[model.CourseStatus]int64 `json:"coursesByStatus,omitempty"`
	OrdersByStatus   map[model.OrderStatus]int64  `json:"ordersByStatus,omitempty"`
	UsersByRole      map[model.UserRole]int64     `json:"usersByRole,omitempty"`
	SourcingRequests *int64                       `json:"sourcingRequests,omitempty"`
	OpenSourcing     *int64                       `json:"openSourcing,omitempty"`
	NewMessages      *int64                       `json:"newMessages,omitempty"`
}

func (s *DashboardService) Summary(actor Actor) (*Dashboard, error) {
	d := &Dashboard{Role: actor.Role}
	var err error

	switch actor.Role {
	case model.Admin:
		if d.UsersByRole, err = s.UserRepo.CountByRole(); err != nil {
			return nil, err
		}
		if d.CoursesByStatus, err = s.CourseRepo.CountByStatus(0); err != nil {
			return nil, err
		}
		if d.Enrollments, err = s.Enrollments.Stats(0); err != nil {
			return nil, err
		}
		if d.OrdersByStatus, err = s.OrderRepo.CountByStatus(0); err != nil {
			return nil, err
		}
		if d.OpenSourcing, err = countPtr(s.SourcingRepo.CountOpen(0)); err != nil {
			return nil, err
		}
		if d.NewMessages, err = countPtr(s.ContactRepo.CountByStatus(model.ContactNew)); err != nil {
			return nil, err
		}
	case model.Teacher:
		if d.CoursesByStatus, err = s.CourseRepo.CountByStatus(actor.UserID); err != nil {
			return nil, err
		}
		if d.Enrollments, err = s.Enrollments.Stats(actor.UserID); err != nil {
			return nil, err
		}
	case model.Transit:
		if d.OrdersByStatus, err = s.OrderRepo.CountByStatus(0); err != nil {
			return nil, err
		}
		if d.OpenSourcing, err = countPtr(s.SourcingRepo.CountOpen(0)); err != nil {
			return nil, err
		}
	default:
		if d.Enrollments, err = s.Enrollments.StatsForUser(actor.UserID); err != nil {
			return nil, err
		}
		if d.OrdersByStatus, err = s.OrderRepo.CountByStatus(actor.UserID); err != nil {
			return nil, err
		}
		if d.SourcingRequests, err = countPtr(s.SourcingRepo.Count(actor.UserID)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// RefreshCourseGauge publishes the current number of courses per status.
func (s *DashboardService) RefreshCourseGauge() error {
	counts, err := s.CourseRepo.CountByStatus(0)
	if err != nil {
		return err
	}
	gauge := make(map[string]int64, 4)
	for _, status := range []model.CourseStatus{model.CourseDraft, model.CoursePendingReview, model.CoursePublished, model.CourseRejected} {
		gauge[string(status)] = counts[status]
	}
	monitoring.SetCoursesByStatus(gauge)
	return nil
}

func countPtr(n int64, err error) (*int64, error) {
	if err != nil {
		return nil, err
	}
	return &n, nil
}
