package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	CourseTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "course_transitions_total",
			Help: "Course review workflow transitions",
		},
		[]string{"from", "to"},
	)

	Enrollments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrollments_total",
			Help: "Enrollments created, by learning mode",
		},
		[]string{"learning_mode"},
	)

	Orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Order status changes, by resulting status",
		},
		[]string{"status"},
	)

	CoursesByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "courses_by_status",
			Help: "Number of courses currently in each status",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(CourseTransitions)
		prometheus.MustRegister(Enrollments)
		prometheus.MustRegister(Orders)
		prometheus.MustRegister(CoursesByStatus)
	})
}

func RecordCourseTransition(from, to string) {
	CourseTransitions.WithLabelValues(from, to).Inc()
}

func RecordEnrollment(mode string) {
	Enrollments.WithLabelValues(mode).Inc()
}

func RecordOrder(status string) {
	Orders.WithLabelValues(status).Inc()
}

// SetCoursesByStatus replaces the gauge values with counts.
func SetCoursesByStatus(counts map[string]int64) {
	CoursesByStatus.Reset()
	for status, n := range counts {
		CoursesByStatus.WithLabelValues(status).Set(float64(n))
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
