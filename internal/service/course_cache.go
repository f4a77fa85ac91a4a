package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mdla_service/internal/model"
	"mdla_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const cacheOpTimeout = 500 * time.Millisecond

// CourseCache keeps published course details in redis. A nil client disables it,
// and every method is safe on a nil *CourseCache.
type CourseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCourseCache(client *redis.Client, ttl time.Duration) *CourseCache {
	if client == nil {
		return nil
	}
	return &CourseCache{client: client, ttl: ttl}
}

func courseCacheKey(id uint) string {
	return fmt.Sprintf("course_detail:%d", id)
}

func (c *CourseCache) Get(id uint) (*model.Course, bool) {
	if c == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, courseCacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("Course cache read failed", zap.Uint("courseId", id), zap.Error(err))
		}
		return nil, false
	}

	var course model.Course
	if err := json.Unmarshal(data, &course); err != nil {
		return nil, false
	}
	return &course, true
}

func (c *CourseCache) Set(course *model.Course) {
	if c == nil || course.Status != model.CoursePublished {
		return
	}
	data, err := json.Marshal(course)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	if err := c.client.Set(ctx, courseCacheKey(course.ID), data, c.ttl).Err(); err != nil {
		logger.Log.Warn("Course cache write failed", zap.Uint("courseId", course.ID), zap.Error(err))
	}
}

func (c *CourseCache) Invalidate(id uint) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	if err := c.client.Del(ctx, courseCacheKey(id)).Err(); err != nil {
		logger.Log.Warn("Course cache invalidation failed", zap.Uint("courseId", id), zap.Error(err))
	}
}
