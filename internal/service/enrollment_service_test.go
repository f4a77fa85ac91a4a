package service

import (
	"testing"

	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, progressPercent(0, 0))
	assert.Equal(t, 0, progressPercent(3, 0))
	assert.Equal(t, 33, progressPercent(1, 3))
	assert.Equal(t, 66, progressPercent(2, 3))
	assert.Equal(t, 100, progressPercent(3, 3))
	assert.Equal(t, 100, progressPercent(4, 3))
}

func TestComputeStats(t *testing.T) {
	empty := computeStats(nil)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.CompletionRate)
	assert.Zero(t, empty.AverageProgress)
	assert.Equal(t, map[model.LearningMode]int64{model.LearningOnline: 0, model.LearningInPerson: 0}, empty.ByLearningMode)

	stats := computeStats([]repository.ModeStatusCount{
		{LearningMode: model.LearningOnline, Status: model.EnrollmentActive, Count: 2, ProgressSum: 50},
		{LearningMode: model.LearningOnline, Status: model.EnrollmentCompleted, Count: 1, ProgressSum: 100},
		{LearningMode: model.LearningInPerson, Status: model.EnrollmentActive, Count: 1, ProgressSum: 10},
	})
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(3), stats.ByLearningMode[model.LearningOnline])
	assert.Equal(t, int64(1), stats.ByLearningMode[model.LearningInPerson])
	assert.Equal(t, int64(3), stats.Active)
	assert.Equal(t, int64(1), stats.Completed)
	assert.InDelta(t, 0.25, stats.CompletionRate, 1e-9)
	assert.InDelta(t, 40.0, stats.AverageProgress, 1e-9)
}

func TestEnrollRequiresPublishedCourse(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	admin := env.actor(t, model.Admin)
	client := env.actor(t, model.Client)

	draft := env.draftCourse(t, teacher)
	_, err := env.enrollments.Enroll(client, EnrollRequest{CourseID: draft.ID, LearningMode: model.LearningOnline})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	_, err = env.enrollments.Enroll(client, EnrollRequest{CourseID: 9999, LearningMode: model.LearningOnline})
	assert.ErrorIs(t, err, util.ErrNotFound)

	course := env.publish(t, teacher, admin, env.draftCourse(t, teacher).ID)
	_, err = env.enrollments.Enroll(client, EnrollRequest{CourseID: course.ID, LearningMode: "hybrid"})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.enrollments.Enroll(Actor{}, EnrollRequest{CourseID: course.ID, LearningMode: model.LearningOnline})
	assert.ErrorIs(t, err, util.ErrUnauthorized)

	enrollment, err := env.enrollments.Enroll(client, EnrollRequest{CourseID: course.ID, LearningMode: model.LearningInPerson})
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentActive, enrollment.Status)
	assert.Zero(t, enrollment.ProgressPercent)

	_, err = env.enrollments.Enroll(client, EnrollRequest{CourseID: course.ID, LearningMode: model.LearningOnline})
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	views, err := env.enrollments.ListForUser(client.UserID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, course.Title, views[0].CourseTitle)
	assert.Equal(t, model.LearningInPerson, views[0].LearningMode)
	assert.NotEmpty(t, views[0].TeacherName)
}

func TestLessonCompletionProgress(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	admin := env.actor(t, model.Admin)
	client := env.actor(t, model.Client)

	course := env.draftCourse(t, teacher)
	saved, err := env.curriculum.SaveCurriculum(teacher, course.ID, SaveCurriculumRequest{
		Modules: []ModuleInput{{Title: "M", Items: []ItemInput{
			withClientID(videoItem("1", true), "1"),
			withClientID(videoItem("2", true), "2"),
			withClientID(videoItem("bonus", false), "bonus"),
		}}},
	})
	require.NoError(t, err)
	env.publish(t, teacher, admin, course.ID)

	enrollment, err := env.enrollments.Enroll(client, EnrollRequest{CourseID: course.ID, LearningMode: model.LearningOnline})
	require.NoError(t, err)

	// optional items do not move the percentage
	progress, err := env.enrollments.RecordLessonCompletion(client, enrollment.ID, saved.IDMap["bonus"])
	require.NoError(t, err)
	assert.Zero(t, progress.Enrollment.ProgressPercent)
	assert.Equal(t, int64(3), progress.TotalItems)
	assert.Equal(t, int64(2), progress.RequiredItems)

	progress, err = env.enrollments.RecordLessonCompletion(client, enrollment.ID, saved.IDMap["1"])
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Enrollment.ProgressPercent)

	// repeating a completion is a no-op
	progress, err = env.enrollments.RecordLessonCompletion(client, enrollment.ID, saved.IDMap["1"])
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Enrollment.ProgressPercent)
	assert.Len(t, progress.CompletedItemIDs, 2)

	// a required item added after publication lowers the ratio but not the stored progress
	modules, err := env.curriculum.GetCurriculum(admin, course.ID)
	require.NoError(t, err)
	for _, title := range []string{"3", "4"} {
		in := videoItem(title, true)
		_, err = env.curriculum.CreateItem(admin, modules[0].ID, ItemRequest{Title: in.Title, Type: in.Type, Content: in.Content})
		require.NoError(t, err)
	}
	progress, err = env.enrollments.RecordLessonCompletion(client, enrollment.ID, saved.IDMap["2"])
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Enrollment.ProgressPercent)
	assert.Equal(t, model.EnrollmentActive, progress.Enrollment.Status)

	modules, err = env.curriculum.GetCurriculum(client, course.ID)
	require.NoError(t, err)
	for _, item := range modules[0].Items {
		progress, err = env.enrollments.RecordLessonCompletion(client, enrollment.ID, item.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 100, progress.Enrollment.ProgressPercent)
	assert.Equal(t, model.EnrollmentCompleted, progress.Enrollment.Status)
	assert.NotNil(t, progress.Enrollment.CompletedAt)

	// a finished course can be taken again
	again, err := env.enrollments.Enroll(client, EnrollRequest{CourseID: course.ID, LearningMode: model.LearningOnline})
	require.NoError(t, err)
	assert.NotEqual(t, enrollment.ID, again.ID)
}

func TestLessonCompletionChecks(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	admin := env.actor(t, model.Admin)
	client := env.actor(t, model.Client)
	intruder := env.actor(t, model.Client)

	course := env.draftCourse(t, teacher)
	_, err := env.curriculum.SaveCurriculum(teacher, course.ID, SaveCurriculumRequest{
		Modules: []ModuleInput{{Title: "M", Items: []ItemInput{withClientID(videoItem("1", true), "1")}}},
	})
	require.NoError(t, err)
	env.publish(t, teacher, admin, course.ID)

	other := env.draftCourse(t, teacher)
	foreign, err := env.curriculum.SaveCurriculum(teacher, other.ID, SaveCurriculumRequest{
		Modules: []ModuleInput{{Title: "M", Items: []ItemInput{withClientID(videoItem("x", true), "x")}}},
	})
	require.NoError(t, err)

	enrollment, err := env.enrollments.Enroll(client, EnrollRequest{CourseID: course.ID, LearningMode: model.LearningOnline})
	require.NoError(t, err)

	_, err = env.enrollments.RecordLessonCompletion(client, enrollment.ID, foreign.IDMap["x"])
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.enrollments.RecordLessonCompletion(client, enrollment.ID, 9999)
	assert.ErrorIs(t, err, util.ErrItemNotFound)

	_, err = env.enrollments.RecordLessonCompletion(client, 9999, foreign.IDMap["x"])
	assert.ErrorIs(t, err, util.ErrEnrollmentNotFound)

	_, err = env.enrollments.RecordLessonCompletion(intruder, enrollment.ID, foreign.IDMap["x"])
	assert.ErrorIs(t, err, util.ErrForbidden)

	_, err = env.enrollments.Progress(intruder, enrollment.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	progress, err := env.enrollments.Progress(admin, enrollment.ID)
	require.NoError(t, err)
	assert.Empty(t, progress.CompletedItemIDs)
}

func TestEnrollmentListingAndStats(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	otherTeacher := env.actor(t, model.Teacher)
	admin := env.actor(t, model.Admin)
	alice := env.actor(t, model.Client)
	bob := env.actor(t, model.Client)

	mine := env.publish(t, teacher, admin, env.draftCourse(t, teacher).ID)
	theirs := env.publish(t, otherTeacher, admin, env.draftCourse(t, otherTeacher).ID)

	empty, err := env.enrollments.Stats(teacher.UserID)
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.CompletionRate)
	assert.Zero(t, empty.ByLearningMode[model.LearningOnline])

	for _, e := range []struct {
		who    Actor
		course uint
		mode   model.LearningMode
	}{
		{alice, mine.ID, model.LearningOnline},
		{bob, mine.ID, model.LearningInPerson},
		{alice, theirs.ID, model.LearningOnline},
	} {
		_, err := env.enrollments.Enroll(e.who, EnrollRequest{CourseID: e.course, LearningMode: e.mode})
		require.NoError(t, err)
	}

	views, total, err := env.enrollments.ListAll(teacher, EnrollmentFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, v := range views {
		assert.Equal(t, mine.ID, v.CourseID)
	}

	_, total, err = env.enrollments.ListAll(admin, EnrollmentFilter{LearningMode: model.LearningOnline})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = env.enrollments.ListAll(admin, EnrollmentFilter{UserID: alice.UserID, CourseID: theirs.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, _, err = env.enrollments.ListAll(alice, EnrollmentFilter{})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, _, err = env.enrollments.ListAll(admin, EnrollmentFilter{Status: "paused"})
	assert.ErrorIs(t, err, util.ErrValidation)

	stats, err := env.enrollments.Stats(teacher.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByLearningMode[model.LearningOnline])
	assert.Equal(t, int64(1), stats.ByLearningMode[model.LearningInPerson])
	assert.Equal(t, int64(2), stats.Active)

	all, err := env.enrollments.Stats(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)

	own, err := env.enrollments.StatsForUser(alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.Total)
}
