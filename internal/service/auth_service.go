package service

import (
	"errors"
	"strings"
	"time"

	"mdla_service/internal/config"
	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/internal/util"
	"mdla_service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

type RegisterRequest struct {
	Name     string         `json:"name" binding:"required,max=100"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required,min=6"`
	Phone    string         `json:"phone"`
	Language string         `json:"language"`
	Role     model.UserRole `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates a self-service account. Only client and teacher accounts can
// be opened this way; other roles are created by an admin.
func (s *AuthService) Register(req RegisterRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.Client
	}
	if role != model.Client && role != model.Teacher {
		return nil, util.Validationf("role %q cannot be chosen at registration", role)
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Language: req.Language,
		Role:     role,
	}
	if err := s.createUser(user, req.Password); err != nil {
		return nil, err
	}
	logger.Log.Info("User registered", zap.Uint("userId", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *AuthService) Login(req LoginRequest) (*LoginResponse, error) {
	user, err := s.UserRepo.FindByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	if user.Disabled {
		return nil, util.ErrAccountDisabled
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.UserRepo.UpdateLastLogin(user.ID, now); err != nil {
		logger.Log.Warn("Failed to record last login", zap.Uint("userId", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	return &LoginResponse{Token: token, User: user}, nil
}

func (s *AuthService) Me(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrUserNotFound)
	}
	return user, nil
}

func (s *AuthService) createUser(user *model.User, password string) error {
	if user.Name == "" {
		return util.Validationf("name is required")
	}
	if user.Email == "" {
		return util.Validationf("email is required")
	}
	if len(password) < 6 {
		return util.Validationf("password must be at least 6 characters")
	}
	if user.Language == "" {
		user.Language = "fr"
	}
	if user.Language != "fr" && user.Language != "en" {
		return util.Validationf("unsupported language %q", user.Language)
	}

	taken, err := s.UserRepo.EmailTaken(user.Email, 0)
	if err != nil {
		return err
	}
	if taken {
		return util.ErrEmailRegistered
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	return s.UserRepo.Create(user)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
