package service

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"mdla_service/internal/config"
	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	auth        *AuthService
	users       *UserService
	courses     *CourseService
	curriculum  *CurriculumService
	enrollments *EnrollmentService
	products    *ProductService
	orders      *OrderService
	sourcing    *SourcingService
	contact     *ContactService
	dashboard   *DashboardService
	seq         int
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour},
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	sourcingRepo := repository.NewSourcingRepository(db)
	contactRepo := repository.NewContactRepository(db)

	env := &testEnv{db: db, cfg: cfg}
	env.auth = NewAuthService(userRepo, cfg)
	env.users = NewUserService(userRepo, env.auth)
	env.courses = NewCourseService(db, courseRepo, nil)
	env.curriculum = NewCurriculumService(db, courseRepo, curriculumRepo, nil)
	env.enrollments = NewEnrollmentService(db, enrollmentRepo, courseRepo, curriculumRepo)
	env.products = NewProductService(productRepo)
	env.orders = NewOrderService(db, orderRepo, productRepo)
	env.sourcing = NewSourcingService(sourcingRepo)
	env.contact = NewContactService(contactRepo, NoopNotifier{})
	env.dashboard = NewDashboardService(userRepo, courseRepo, orderRepo, sourcingRepo, contactRepo, env.enrollments)
	return env
}

// actor inserts a user with the given role and returns it as a caller.
func (e *testEnv) actor(t *testing.T, role model.UserRole) Actor {
	t.Helper()
	e.seq++
	user := &model.User{
		Name:     fmt.Sprintf("%s %d", role, e.seq),
		Email:    fmt.Sprintf("%s%d@example.com", role, e.seq),
		Password: "unused",
		Role:     role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return Actor{UserID: user.ID, Role: role}
}

// draftCourse creates a course that is complete enough to be submitted.
func (e *testEnv) draftCourse(t *testing.T, teacher Actor) *model.Course {
	t.Helper()
	course, err := e.courses.Create(teacher, CourseRequest{
		Title:       "Français des affaires",
		Description: "Négocier et rédiger en contexte professionnel",
		Level:       model.LevelB2,
	})
	require.NoError(t, err)
	return course
}

// publish takes a draft through review and approval.
func (e *testEnv) publish(t *testing.T, teacher, admin Actor, courseID uint) *model.Course {
	t.Helper()
	_, err := e.courses.Submit(teacher, courseID, nil)
	require.NoError(t, err)
	price := decimal.NewFromInt(50000)
	course, err := e.courses.Approve(admin, courseID, ApproveRequest{Price: &price})
	require.NoError(t, err)
	return course
}

func videoItem(title string, required bool) ItemInput {
	return ItemInput{
		Title:      title,
		Type:       model.ItemVideo,
		Duration:   10,
		IsRequired: &required,
		Content:    json.RawMessage(`{"url":"https://cdn.example.com/` + uuid.NewString() + `.mp4"}`),
	}
}

func intPtr(v int) *int { return &v }
