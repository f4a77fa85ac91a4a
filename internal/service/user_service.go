package service

import (
	"strings"

	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/internal/util"
	"mdla_service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	UserRepo *repository.UserRepository
	Auth     *AuthService
}

func NewUserService(userRepo *repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{UserRepo: userRepo, Auth: auth}
}

type UserCreateRequest struct {
	Name     string         `json:"name" binding:"required,max=100"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=6"`
	Phone    string         `json:"phone"`
	Language string         `json:"language"`
	Role     model.UserRole `json:"role" binding:"required"`
}

// UserUpdateRequest changes only the fields that are present.
type UserUpdateRequest struct {
	Name     *string         `json:"name"`
	Email    *string         `json:"email"`
	Password *string         `json:"password"`
	Phone    *string         `json:"phone"`
	Language *string         `json:"language"`
	Role     *model.UserRole `json:"role"`
	Disabled *bool           `json:"disabled"`
}

type UserFilter struct {
	Role     model.UserRole
	Search   string
	Page     int
	PageSize int
}

func (s *UserService) List(f UserFilter) ([]model.User, int64, error) {
	if f.Role != "" && !f.Role.Valid() {
		return nil, 0, util.Validationf("unknown role %q", f.Role)
	}
	return s.UserRepo.List(repository.UserQuery{
		Role:     f.Role,
		Search:   strings.TrimSpace(f.Search),
		Page:     f.Page,
		PageSize: f.PageSize,
	})
}

func (s *UserService) Get(actor Actor, id uint) (*model.User, error) {
	if !actor.IsAdmin() && !actor.Owns(id) {
		return nil, util.ErrPermissionDenied
	}
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrUserNotFound)
	}
	return user, nil
}

// Create lets an admin open an account with any role.
func (s *UserService) Create(actor Actor, req UserCreateRequest) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, util.ErrPermissionDenied
	}
	if !req.Role.Valid() {
		return nil, util.Validationf("unknown role %q", req.Role)
	}
	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Language: req.Language,
		Role:     req.Role,
	}
	if err := s.Auth.createUser(user, req.Password); err != nil {
		return nil, err
	}
	logger.Log.Info("User created by admin", zap.Uint("userId", user.ID), zap.Uint("by", actor.UserID))
	return user, nil
}

// Update edits a profile. Users may edit their own; only admins may change a
// role or the disabled flag.
func (s *UserService) Update(actor Actor, id uint, req UserUpdateRequest) (*model.User, error) {
	if !actor.IsAdmin() && !actor.Owns(id) {
		return nil, util.ErrPermissionDenied
	}
	if !actor.IsAdmin() && (req.Role != nil || req.Disabled != nil) {
		return nil, util.ErrPermissionDenied
	}

	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrUserNotFound)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, util.Validationf("name is required")
		}
		user.Name = name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, util.Validationf("email is required")
		}
		if email != user.Email {
			taken, err := s.UserRepo.EmailTaken(email, user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, util.ErrEmailRegistered
			}
			user.Email = email
		}
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, util.Validationf("password must be at least 6 characters")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Language != nil {
		if *req.Language != "fr" && *req.Language != "en" {
			return nil, util.Validationf("unsupported language %q", *req.Language)
		}
		user.Language = *req.Language
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, util.Validationf("unknown role %q", *req.Role)
		}
		if user.ID == actor.UserID && *req.Role != model.Admin {
			return nil, util.Validationf("admins cannot remove their own admin role")
		}
		user.Role = *req.Role
	}
	if req.Disabled != nil {
		if user.ID == actor.UserID && *req.Disabled {
			return nil, util.Validationf("admins cannot disable their own account")
		}
		user.Disabled = *req.Disabled
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(actor Actor, id uint) error {
	if !actor.IsAdmin() {
		return util.ErrPermissionDenied
	}
	if actor.UserID == id {
		return util.Validationf("admins cannot delete their own account")
	}
	if err := s.UserRepo.Delete(id); err != nil {
		return util.NotFoundOr(err, util.ErrUserNotFound)
	}
	logger.Log.Info("User deleted", zap.Uint("userId", id), zap.Uint("by", actor.UserID))
	return nil
}
