package service

import (
	"encoding/json"
	"testing"

	"mdla_service/internal/model"
	"mdla_service/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReposition(t *testing.T) {
	cases := []struct {
		name  string
		ids   []uint
		id    uint
		order int
		want  []uint
	}{
		{"to front", []uint{1, 2, 3}, 3, 1, []uint{3, 1, 2}},
		{"to back", []uint{1, 2, 3}, 1, 3, []uint{2, 3, 1}},
		{"past the end", []uint{1, 2, 3}, 2, 10, []uint{1, 3, 2}},
		{"before the start", []uint{1, 2, 3}, 2, -4, []uint{2, 1, 3}},
		{"new member", []uint{1, 2}, 9, 2, []uint{1, 9, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, reposition(tc.ids, tc.id, tc.order))
		})
	}
}

func TestModulesAndItemsGetSequentialOrders(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	course := env.draftCourse(t, teacher)

	first, err := env.curriculum.CreateModule(teacher, course.ID, ModuleRequest{Title: "Accueil"})
	require.NoError(t, err)
	second, err := env.curriculum.CreateModule(teacher, course.ID, ModuleRequest{Title: "Réunions"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)

	in := videoItem("Se présenter", true)
	a, err := env.curriculum.CreateItem(teacher, first.ID, ItemRequest{Title: in.Title, Type: in.Type, Content: in.Content})
	require.NoError(t, err)
	b, err := env.curriculum.CreateItem(teacher, first.ID, ItemRequest{
		Title:   "Quiz",
		Type:    model.ItemQuiz,
		Content: json.RawMessage(`{"data":{"questions":[]}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Order)
	assert.Equal(t, 2, b.Order)
	assert.True(t, a.IsRequired, "items are required unless marked optional")

	stored, err := env.courses.Get(teacher, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.Version+4, stored.Version)
}

func TestCreateItemRejectsBadContent(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	course := env.draftCourse(t, teacher)
	module, err := env.curriculum.CreateModule(teacher, course.ID, ModuleRequest{Title: "M"})
	require.NoError(t, err)

	bad := []ItemRequest{
		{Title: "Vidéo", Type: model.ItemVideo, Content: json.RawMessage(`{}`)},
		{Title: "PDF", Type: model.ItemPDF, Content: json.RawMessage(`{"url":"   "}`)},
		{Title: "Quiz", Type: model.ItemQuiz},
		{Title: "Live", Type: model.ItemLiveSession, Content: json.RawMessage(`{"location":"Dakar"}`)},
		{Title: "Autre", Type: "slides", Content: json.RawMessage(`{"url":"x"}`)},
		{Title: "Durée", Type: model.ItemAudio, Duration: -1, Content: json.RawMessage(`{"url":"x"}`)},
	}
	for _, req := range bad {
		_, err := env.curriculum.CreateItem(teacher, module.ID, req)
		assert.ErrorIs(t, err, util.ErrValidation, req.Title)
	}

	modules, err := env.curriculum.GetCurriculum(teacher, course.ID)
	require.NoError(t, err)
	assert.Empty(t, modules[0].Items)
}

func TestSaveCurriculumDiff(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	course := env.draftCourse(t, teacher)

	first, err := env.curriculum.SaveCurriculum(teacher, course.ID, SaveCurriculumRequest{
		Modules: []ModuleInput{
			{ClientID: "m1", Title: "Module A", Items: []ItemInput{
				withClientID(videoItem("A1", true), "i1"),
				withClientID(videoItem("A2", false), "i2"),
			}},
			{ClientID: "m2", Title: "Module B", Items: []ItemInput{
				withClientID(videoItem("B1", true), "i3"),
			}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, SyncCounts{Created: 2}, first.ModuleStats)
	assert.Equal(t, SyncCounts{Created: 3}, first.ItemStats)
	assert.Len(t, first.IDMap, 5)
	assert.Equal(t, course.Version+1, first.Version)
	require.Len(t, first.Modules, 2)
	assert.Equal(t, first.IDMap["m1"], first.Modules[0].ID)
	assert.False(t, first.Modules[0].Items[1].IsRequired)

	moduleA := first.IDMap["m1"]
	moduleB := first.IDMap["m2"]
	a1 := first.IDMap["i1"]
	a2 := first.IDMap["i2"]

	// swap the modules, move A1 into B, drop A2 and add a new item to A
	moved := videoItem("A1 déplacé", true)
	moved.ID = a1
	keptB1 := videoItem("B1", true)
	keptB1.ID = first.IDMap["i3"]

	second, err := env.curriculum.SaveCurriculum(teacher, course.ID, SaveCurriculumRequest{
		Version: intPtr(first.Version),
		Modules: []ModuleInput{
			{ID: moduleB, Title: "Module B", Items: []ItemInput{keptB1, moved}},
			{ID: moduleA, Title: "Module A renommé", Items: []ItemInput{withClientID(videoItem("A3", true), "new")}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, SyncCounts{Updated: 2}, second.ModuleStats)
	assert.Equal(t, SyncCounts{Created: 1, Updated: 2, Deleted: 1}, second.ItemStats)
	assert.Equal(t, first.Version+1, second.Version)

	require.Len(t, second.Modules, 2)
	assert.Equal(t, moduleB, second.Modules[0].ID)
	assert.Equal(t, 1, second.Modules[0].Order)
	assert.Equal(t, "Module A renommé", second.Modules[1].Title)
	assert.Equal(t, 2, second.Modules[1].Order)

	require.Len(t, second.Modules[0].Items, 2)
	assert.Equal(t, a1, second.Modules[0].Items[1].ID, "moved item keeps its id")
	assert.Equal(t, "A1 déplacé", second.Modules[0].Items[1].Title)
	assert.Equal(t, 2, second.Modules[0].Items[1].Order)
	require.Len(t, second.Modules[1].Items, 1)
	assert.Equal(t, second.IDMap["new"], second.Modules[1].Items[0].ID)

	var count int64
	require.NoError(t, env.db.Model(&model.CurriculumItem{}).Where("id = ?", a2).Count(&count).Error)
	assert.Zero(t, count)

	third, err := env.curriculum.SaveCurriculum(teacher, course.ID, SaveCurriculumRequest{})
	require.NoError(t, err)
	assert.Equal(t, SyncCounts{Deleted: 2}, third.ModuleStats)
	assert.Equal(t, SyncCounts{Deleted: 3}, third.ItemStats)
	assert.Empty(t, third.Modules)
}

func TestSaveCurriculumRejectsForeignAndDuplicateIDs(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	course := env.draftCourse(t, teacher)
	other := env.draftCourse(t, teacher)

	saved, err := env.curriculum.SaveCurriculum(teacher, course.ID, SaveCurriculumRequest{
		Modules: []ModuleInput{{ClientID: "m", Title: "M", Items: []ItemInput{withClientID(videoItem("I", true), "i")}}},
	})
	require.NoError(t, err)
	foreign, err := env.curriculum.SaveCurriculum(teacher, other.ID, SaveCurriculumRequest{
		Modules: []ModuleInput{{ClientID: "m", Title: "Ailleurs", Items: []ItemInput{withClientID(videoItem("X", true), "i")}}},
	})
	require.NoError(t, err)

	item := videoItem("I", true)
	item.ID = saved.IDMap["i"]
	foreignItem := videoItem("X", true)
	foreignItem.ID = foreign.IDMap["i"]

	bad := []SaveCurriculumRequest{
		{Modules: []ModuleInput{{ID: foreign.IDMap["m"], Title: "M"}}},
		{Modules: []ModuleInput{{ID: saved.IDMap["m"], Title: "M", Items: []ItemInput{foreignItem}}}},
		{Modules: []ModuleInput{{ID: saved.IDMap["m"], Title: "M"}, {ID: saved.IDMap["m"], Title: "M"}}},
		{Modules: []ModuleInput{{ID: saved.IDMap["m"], Title: "M", Items: []ItemInput{item, item}}}},
		{Modules: []ModuleInput{{Title: "  "}}},
		{Modules: []ModuleInput{{Title: "M", Items: []ItemInput{{Title: "Sans url", Type: model.ItemVideo}}}}},
	}
	for i, req := range bad {
		_, err := env.curriculum.SaveCurriculum(teacher, course.ID, req)
		assert.ErrorIs(t, err, util.ErrValidation, "request %d", i)
	}

	modules, err := env.curriculum.GetCurriculum(teacher, course.ID)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	require.Len(t, modules[0].Items, 1)
	assert.Equal(t, item.ID, modules[0].Items[0].ID)

	stored, err := env.courses.Get(teacher, course.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Version, stored.Version)
}

func TestSaveCurriculumVersionConflict(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	course := env.draftCourse(t, teacher)

	_, err := env.curriculum.CreateModule(teacher, course.ID, ModuleRequest{Title: "M"})
	require.NoError(t, err)

	_, err = env.curriculum.SaveCurriculum(teacher, course.ID, SaveCurriculumRequest{Version: intPtr(course.Version)})
	assert.ErrorIs(t, err, util.ErrVersionConflict)
}

func TestUpdateItemMovesWithinCourse(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	course := env.draftCourse(t, teacher)
	other := env.draftCourse(t, teacher)

	saved, err := env.curriculum.SaveCurriculum(teacher, course.ID, SaveCurriculumRequest{
		Modules: []ModuleInput{
			{ClientID: "a", Title: "A", Items: []ItemInput{
				withClientID(videoItem("1", true), "1"),
				withClientID(videoItem("2", true), "2"),
				withClientID(videoItem("3", true), "3"),
			}},
			{ClientID: "b", Title: "B", Items: []ItemInput{withClientID(videoItem("4", true), "4")}},
		},
	})
	require.NoError(t, err)
	otherModule, err := env.curriculum.CreateModule(teacher, other.ID, ModuleRequest{Title: "Ailleurs"})
	require.NoError(t, err)

	// reorder within the module
	_, err = env.curriculum.UpdateItem(teacher, saved.IDMap["3"], ItemUpdateRequest{Order: intPtr(1)})
	require.NoError(t, err)
	modules, err := env.curriculum.GetCurriculum(teacher, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{saved.IDMap["3"], saved.IDMap["1"], saved.IDMap["2"]}, itemIDs(modules[0]))

	// move to the front of module B; module A closes the gap
	target := saved.IDMap["b"]
	moved, err := env.curriculum.UpdateItem(teacher, saved.IDMap["1"], ItemUpdateRequest{ModuleID: &target, Order: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, target, moved.ModuleID)

	modules, err = env.curriculum.GetCurriculum(teacher, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{saved.IDMap["3"], saved.IDMap["2"]}, itemIDs(modules[0]))
	assert.Equal(t, []int{1, 2}, itemOrders(modules[0]))
	assert.Equal(t, []uint{saved.IDMap["1"], saved.IDMap["4"]}, itemIDs(modules[1]))
	assert.Equal(t, []int{1, 2}, itemOrders(modules[1]))

	_, err = env.curriculum.UpdateItem(teacher, saved.IDMap["2"], ItemUpdateRequest{ModuleID: &otherModule.ID})
	assert.ErrorIs(t, err, util.ErrValidation)

	pdf := model.ItemPDF
	_, err = env.curriculum.UpdateItem(teacher, saved.IDMap["2"], ItemUpdateRequest{Type: &pdf, Content: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, util.ErrValidation)

	updated, err := env.curriculum.UpdateItem(teacher, saved.IDMap["2"], ItemUpdateRequest{Type: &pdf})
	require.NoError(t, err)
	assert.Equal(t, model.ItemPDF, updated.Type)
}

func TestUpdateModuleOrder(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	course := env.draftCourse(t, teacher)

	var ids []uint
	for _, title := range []string{"Un", "Deux", "Trois"} {
		m, err := env.curriculum.CreateModule(teacher, course.ID, ModuleRequest{Title: title})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	title := "Trois, en premier"
	updated, err := env.curriculum.UpdateModule(teacher, ids[2], ModuleUpdateRequest{Title: &title, Order: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, 1, updated.Order)

	modules, err := env.curriculum.GetCurriculum(teacher, course.ID)
	require.NoError(t, err)
	require.Len(t, modules, 3)
	assert.Equal(t, ids[2], modules[0].ID)
	assert.Equal(t, ids[0], modules[1].ID)
	assert.Equal(t, 3, modules[2].Order)

	_, err = env.curriculum.UpdateModule(teacher, ids[0], ModuleUpdateRequest{Order: intPtr(0)})
	assert.ErrorIs(t, err, util.ErrValidation)

	require.NoError(t, env.curriculum.DeleteModule(teacher, ids[1]))
	err = env.curriculum.DeleteModule(teacher, ids[1])
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}

func TestCurriculumLockedDuringReview(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.actor(t, model.Teacher)
	stranger := env.actor(t, model.Teacher)
	admin := env.actor(t, model.Admin)
	course := env.draftCourse(t, teacher)

	module, err := env.curriculum.CreateModule(teacher, course.ID, ModuleRequest{Title: "M"})
	require.NoError(t, err)

	_, err = env.curriculum.CreateModule(stranger, course.ID, ModuleRequest{Title: "Intrus"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = env.courses.Submit(teacher, course.ID, nil)
	require.NoError(t, err)

	_, err = env.curriculum.CreateModule(teacher, course.ID, ModuleRequest{Title: "Trop tard"})
	assert.ErrorIs(t, err, util.ErrCourseLocked)
	_, err = env.curriculum.SaveCurriculum(teacher, course.ID, SaveCurriculumRequest{})
	assert.ErrorIs(t, err, util.ErrCourseLocked)
	assert.ErrorIs(t, env.curriculum.DeleteModule(teacher, module.ID), util.ErrCourseLocked)

	_, err = env.curriculum.CreateModule(admin, course.ID, ModuleRequest{Title: "Correction"})
	assert.NoError(t, err)

	_, err = env.curriculum.GetCurriculum(env.actor(t, model.Client), course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func withClientID(in ItemInput, clientID string) ItemInput {
	in.ClientID = clientID
	return in
}

func itemIDs(m model.Module) []uint {
	ids := make([]uint, 0, len(m.Items))
	for _, it := range m.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

func itemOrders(m model.Module) []int {
	orders := make([]int, 0, len(m.Items))
	for _, it := range m.Items {
		orders = append(orders, it.Order)
	}
	return orders
}
