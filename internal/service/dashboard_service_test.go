package service

import (
	"testing"

	"mdla_service/internal/model"
	"mdla_service/pkg/monitoring"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardPerRole(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	admin := env.actor(t, model.Admin)
	transit := env.actor(t, model.Transit)
	client := env.actor(t, model.Client)

	course := env.publish(t, teacher, admin, env.draftCourse(t, teacher).ID)
	env.draftCourse(t, teacher)
	_, err := env.enrollments.Enroll(client, EnrollRequest{CourseID: course.ID, LearningMode: model.LearningOnline})
	require.NoError(t, err)

	product := env.product(t, "Courroie", "8000", 5)
	_, err = env.orders.Place(client, orderRequest(OrderLine{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = env.sourcing.Create(client, SourcingRequestInput{Title: "Boîte de vitesses"})
	require.NoError(t, err)
	_, err = env.contact.Submit(ContactRequest{Name: "N", Email: "n@example.com", Message: "m"})
	require.NoError(t, err)

	a, err := env.dashboard.Summary(admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.UsersByRole[model.Client])
	assert.Equal(t, int64(1), a.CoursesByStatus[model.CoursePublished])
	assert.Equal(t, int64(1), a.CoursesByStatus[model.CourseDraft])
	assert.Equal(t, int64(1), a.Enrollments.Total)
	assert.Equal(t, int64(1), a.OrdersByStatus[model.OrderPending])
	assert.Equal(t, int64(1), *a.OpenSourcing)
	assert.Equal(t, int64(1), *a.NewMessages)

	tc, err := env.dashboard.Summary(teacher)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tc.CoursesByStatus[model.CoursePublished])
	assert.Equal(t, int64(1), tc.CoursesByStatus[model.CourseDraft])
	assert.Equal(t, int64(1), tc.Enrollments.Total)
	assert.Nil(t, tc.OrdersByStatus)
	assert.Nil(t, tc.UsersByRole)

	tr, err := env.dashboard.Summary(transit)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tr.OrdersByStatus[model.OrderPending])
	assert.Equal(t, int64(1), *tr.OpenSourcing)
	assert.Nil(t, tr.Enrollments)

	c, err := env.dashboard.Summary(client)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Enrollments.Total)
	assert.Equal(t, int64(1), c.OrdersByStatus[model.OrderPending])
	assert.Equal(t, int64(1), *c.SourcingRequests)
	assert.Nil(t, c.NewMessages)

	require.NoError(t, env.dashboard.RefreshCourseGauge())
	assert.Equal(t, 1.0, testutil.ToFloat64(monitoring.CoursesByStatus.WithLabelValues(string(model.CoursePublished))))
	assert.Equal(t, 0.0, testutil.ToFloat64(monitoring.CoursesByStatus.WithLabelValues(string(model.CourseRejected))))
}
