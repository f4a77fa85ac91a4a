package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"mdla_service/internal/model"
	"mdla_service/internal/repository"
	"mdla_service/internal/util"
	"mdla_service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CurriculumService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	CurriculumRepo *repository.CurriculumRepository
	Cache          *CourseCache
}

func NewCurriculumService(db *gorm.DB, courseRepo *repository.CourseRepository, curriculumRepo *repository.CurriculumRepository, cache *CourseCache) *CurriculumService {
	return &CurriculumService{
		DB:             db,
		CourseRepo:     courseRepo,
		CurriculumRepo: curriculumRepo,
		Cache:          cache,
	}
}

type ModuleRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

type ModuleUpdateRequest struct {
	Title *string `json:"title"`
	Order *int    `json:"order"`
}

type ItemRequest struct {
	Title       string          `json:"title" binding:"required,max=255"`
	Type        model.ItemType  `json:"type" binding:"required"`
	Description string          `json:"description"`
	Duration    int             `json:"duration"`
	IsRequired  *bool           `json:"isRequired"`
	Content     json.RawMessage `json:"content" swaggertype:"object"`
}

// ItemUpdateRequest changes only the fields that are present. Setting ModuleID
// moves the item to another module of the same course.
type ItemUpdateRequest struct {
	Title       *string         `json:"title"`
	Type        *model.ItemType `json:"type"`
	Description *string         `json:"description"`
	Duration    *int            `json:"duration"`
	Order       *int            `json:"order"`
	IsRequired  *bool           `json:"isRequired"`
	ModuleID    *uint           `json:"moduleId"`
	Content     json.RawMessage `json:"content" swaggertype:"object"`
}

// SaveCurriculumRequest is the full curriculum of a course as edited by the client.
// Entries without an id are created; clientId lets the caller map them to the new ids.
type SaveCurriculumRequest struct {
	Modules []ModuleInput `json:"modules"`
	Version *int          `json:"version,omitempty"`
}

type ModuleInput struct {
	ID       uint        `json:"id"`
	ClientID string      `json:"clientId"`
	Title    string      `json:"title"`
	Items    []ItemInput `json:"items"`
}

type ItemInput struct {
	ID          uint            `json:"id"`
	ClientID    string          `json:"clientId"`
	Title       string          `json:"title"`
	Type        model.ItemType  `json:"type"`
	Description string          `json:"description"`
	Duration    int             `json:"duration"`
	IsRequired  *bool           `json:"isRequired"`
	Content     json.RawMessage `json:"content" swaggertype:"object"`
}

type SyncCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

type CurriculumSyncResult struct {
	Modules     []model.Module  `json:"modules"`
	ModuleStats SyncCounts      `json:"moduleStats"`
	ItemStats   SyncCounts      `json:"itemStats"`
	IDMap       map[string]uint `json:"idMap"`
	Version     int             `json:"version"`
}

// GetCurriculum returns the ordered modules and items of a course visible to actor.
func (s *CurriculumService) GetCurriculum(actor Actor, courseID uint) ([]model.Module, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrCourseNotFound)
	}
	if course.Status != model.CoursePublished && !canManageCourse(actor, course) {
		return nil, util.ErrCourseNotFound
	}
	return s.CurriculumRepo.ListModules(courseID)
}

func (s *CurriculumService) CreateModule(actor Actor, courseID uint, req ModuleRequest) (*model.Module, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, util.Validationf("module title is required")
	}

	var module *model.Module
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		curriculum := s.CurriculumRepo.WithTx(tx)

		course, err := editableCourse(courses, actor, courseID)
		if err != nil {
			return err
		}
		order, err := curriculum.NextModuleOrder(courseID)
		if err != nil {
			return err
		}
		module = &model.Module{CourseID: courseID, Title: title, Order: order}
		if err := curriculum.CreateModule(module); err != nil {
			return err
		}
		return courses.Touch(course.ID, course.Version)
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(courseID)
	module.Items = []model.CurriculumItem{}
	return module, nil
}

func (s *CurriculumService) UpdateModule(actor Actor, moduleID uint, req ModuleUpdateRequest) (*model.Module, error) {
	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, util.Validationf("module title is required")
		}
		updates["title"] = title
	}
	if req.Order != nil && *req.Order < 1 {
		return nil, util.Validationf("order must be at least 1")
	}

	var courseID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		curriculum := s.CurriculumRepo.WithTx(tx)

		module, err := curriculum.FindModule(moduleID)
		if err != nil {
			return util.NotFoundOr(err, util.ErrModuleNotFound)
		}
		courseID = module.CourseID
		course, err := editableCourse(courses, actor, module.CourseID)
		if err != nil {
			return err
		}
		if len(updates) == 0 && req.Order == nil {
			return nil
		}
		if len(updates) > 0 {
			if err := curriculum.UpdateModule(moduleID, updates); err != nil {
				return err
			}
		}
		if req.Order != nil {
			ids, err := curriculum.ModuleIDs(module.CourseID)
			if err != nil {
				return err
			}
			if err := renumber(reposition(ids, moduleID, *req.Order), curriculum.UpdateModule); err != nil {
				return err
			}
		}
		return courses.Touch(course.ID, course.Version)
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(courseID)
	return s.CurriculumRepo.FindModule(moduleID)
}

// DeleteModule removes a module and its items.
func (s *CurriculumService) DeleteModule(actor Actor, moduleID uint) error {
	var courseID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		curriculum := s.CurriculumRepo.WithTx(tx)

		module, err := curriculum.FindModule(moduleID)
		if err != nil {
			return util.NotFoundOr(err, util.ErrModuleNotFound)
		}
		courseID = module.CourseID
		course, err := editableCourse(courses, actor, module.CourseID)
		if err != nil {
			return err
		}
		if err := curriculum.DeleteModules([]uint{moduleID}); err != nil {
			return err
		}
		return courses.Touch(course.ID, course.Version)
	})
	if err != nil {
		return err
	}
	s.Cache.Invalidate(courseID)
	return nil
}

func (s *CurriculumService) CreateItem(actor Actor, moduleID uint, req ItemRequest) (*model.CurriculumItem, error) {
	in := ItemInput{
		Title:       req.Title,
		Type:        req.Type,
		Description: req.Description,
		Duration:    req.Duration,
		IsRequired:  req.IsRequired,
		Content:     req.Content,
	}
	content, err := validateItemInput(&in)
	if err != nil {
		return nil, err
	}

	var item *model.CurriculumItem
	var courseID uint
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		curriculum := s.CurriculumRepo.WithTx(tx)

		module, err := curriculum.FindModule(moduleID)
		if err != nil {
			return util.NotFoundOr(err, util.ErrModuleNotFound)
		}
		courseID = module.CourseID
		course, err := editableCourse(courses, actor, module.CourseID)
		if err != nil {
			return err
		}
		order, err := curriculum.NextItemOrder(moduleID)
		if err != nil {
			return err
		}
		item = newItem(moduleID, order, &in, content)
		if err := curriculum.CreateItem(item); err != nil {
			return err
		}
		return courses.Touch(course.ID, course.Version)
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(courseID)
	return item, nil
}

func (s *CurriculumService) UpdateItem(actor Actor, itemID uint, req ItemUpdateRequest) (*model.CurriculumItem, error) {
	var courseID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		curriculum := s.CurriculumRepo.WithTx(tx)

		item, err := curriculum.FindItem(itemID)
		if err != nil {
			return util.NotFoundOr(err, util.ErrItemNotFound)
		}
		module, err := curriculum.FindModule(item.ModuleID)
		if err != nil {
			return util.NotFoundOr(err, util.ErrModuleNotFound)
		}
		courseID = module.CourseID
		course, err := editableCourse(courses, actor, module.CourseID)
		if err != nil {
			return err
		}

		updates, err := itemUpdates(item, &req)
		if err != nil {
			return err
		}
		targetModule := item.ModuleID
		if req.ModuleID != nil && *req.ModuleID != item.ModuleID {
			target, err := curriculum.FindModule(*req.ModuleID)
			if err != nil || target.CourseID != module.CourseID {
				return util.Validationf("module %d does not belong to this course", *req.ModuleID)
			}
			targetModule = target.ID
			updates["module_id"] = target.ID
		}
		if len(updates) == 0 && req.Order == nil {
			return nil
		}
		if len(updates) > 0 {
			if err := curriculum.UpdateItem(itemID, updates); err != nil {
				return err
			}
		}
		if req.Order != nil || targetModule != item.ModuleID {
			ids, err := curriculum.ItemIDs(targetModule)
			if err != nil {
				return err
			}
			order := len(ids)
			if req.Order != nil {
				order = *req.Order
			}
			if err := renumber(reposition(ids, itemID, order), curriculum.UpdateItem); err != nil {
				return err
			}
		}
		if targetModule != item.ModuleID {
			ids, err := curriculum.ItemIDs(item.ModuleID)
			if err != nil {
				return err
			}
			if err := renumber(ids, curriculum.UpdateItem); err != nil {
				return err
			}
		}
		return courses.Touch(course.ID, course.Version)
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(courseID)
	return s.CurriculumRepo.FindItem(itemID)
}

func (s *CurriculumService) DeleteItem(actor Actor, itemID uint) error {
	var courseID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		curriculum := s.CurriculumRepo.WithTx(tx)

		item, err := curriculum.FindItem(itemID)
		if err != nil {
			return util.NotFoundOr(err, util.ErrItemNotFound)
		}
		module, err := curriculum.FindModule(item.ModuleID)
		if err != nil {
			return util.NotFoundOr(err, util.ErrModuleNotFound)
		}
		courseID = module.CourseID
		course, err := editableCourse(courses, actor, module.CourseID)
		if err != nil {
			return err
		}
		if err := curriculum.DeleteItems([]uint{itemID}); err != nil {
			return err
		}
		return courses.Touch(course.ID, course.Version)
	})
	if err != nil {
		return err
	}
	s.Cache.Invalidate(courseID)
	return nil
}

// SaveCurriculum replaces the curriculum of a course with the submitted one in a
// single transaction. Orders are renumbered from list positions starting at 1,
// and persisted modules or items missing from the submission are deleted.
func (s *CurriculumService) SaveCurriculum(actor Actor, courseID uint, req SaveCurriculumRequest) (*CurriculumSyncResult, error) {
	contents, err := validateCurriculum(req.Modules)
	if err != nil {
		return nil, err
	}

	result := &CurriculumSyncResult{IDMap: map[string]uint{}}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		curriculum := s.CurriculumRepo.WithTx(tx)

		course, err := editableCourse(courses, actor, courseID)
		if err != nil {
			return err
		}
		if err := checkVersion(req.Version, course); err != nil {
			return err
		}

		existing, err := curriculum.ListModules(courseID)
		if err != nil {
			return err
		}
		persistedModules := make(map[uint]bool, len(existing))
		persistedItems := make(map[uint]bool)
		for _, m := range existing {
			persistedModules[m.ID] = true
			for _, it := range m.Items {
				persistedItems[it.ID] = true
			}
		}

		seenModules := make(map[uint]bool, len(req.Modules))
		seenItems := make(map[uint]bool)
		for i := range req.Modules {
			in := &req.Modules[i]
			if in.ID != 0 {
				if !persistedModules[in.ID] {
					return util.Validationf("modules[%d]: module %d does not belong to this course", i, in.ID)
				}
				if seenModules[in.ID] {
					return util.Validationf("modules[%d]: module %d is listed twice", i, in.ID)
				}
				seenModules[in.ID] = true
			}
			for j := range in.Items {
				id := in.Items[j].ID
				if id == 0 {
					continue
				}
				if !persistedItems[id] {
					return util.Validationf("modules[%d].items[%d]: item %d does not belong to this course", i, j, id)
				}
				if seenItems[id] {
					return util.Validationf("modules[%d].items[%d]: item %d is listed twice", i, j, id)
				}
				seenItems[id] = true
			}
		}

		for i := range req.Modules {
			in := &req.Modules[i]
			moduleID := in.ID
			if moduleID == 0 {
				module := &model.Module{CourseID: courseID, Title: in.Title, Order: i + 1}
				if err := curriculum.CreateModule(module); err != nil {
					return err
				}
				moduleID = module.ID
				result.ModuleStats.Created++
				if in.ClientID != "" {
					result.IDMap[in.ClientID] = moduleID
				}
			} else {
				if err := curriculum.UpdateModule(moduleID, map[string]interface{}{
					"title":    in.Title,
					"position": i + 1,
				}); err != nil {
					return err
				}
				result.ModuleStats.Updated++
			}

			for j := range in.Items {
				item := &in.Items[j]
				content := contents[item]
				if item.ID == 0 {
					created := newItem(moduleID, j+1, item, content)
					if err := curriculum.CreateItem(created); err != nil {
						return err
					}
					result.ItemStats.Created++
					if item.ClientID != "" {
						result.IDMap[item.ClientID] = created.ID
					}
					continue
				}
				if err := curriculum.UpdateItem(item.ID, map[string]interface{}{
					"module_id":   moduleID,
					"title":       item.Title,
					"type":        item.Type,
					"description": item.Description,
					"duration":    item.Duration,
					"position":    j + 1,
					"is_required": isRequired(item.IsRequired),
					"content":     content,
				}); err != nil {
					return err
				}
				result.ItemStats.Updated++
			}
		}

		var staleItems []uint
		for id := range persistedItems {
			if !seenItems[id] {
				staleItems = append(staleItems, id)
			}
		}
		if err := curriculum.DeleteItems(staleItems); err != nil {
			return err
		}
		result.ItemStats.Deleted = len(staleItems)

		var staleModules []uint
		for id := range persistedModules {
			if !seenModules[id] {
				staleModules = append(staleModules, id)
			}
		}
		if err := curriculum.DeleteModules(staleModules); err != nil {
			return err
		}
		result.ModuleStats.Deleted = len(staleModules)

		if err := courses.Touch(course.ID, course.Version); err != nil {
			return err
		}
		result.Version = course.Version + 1

		result.Modules, err = curriculum.ListModules(courseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(courseID)

	logger.Log.Info("Curriculum saved",
		zap.Uint("courseId", courseID),
		zap.Int("modulesCreated", result.ModuleStats.Created),
		zap.Int("modulesDeleted", result.ModuleStats.Deleted),
		zap.Int("itemsCreated", result.ItemStats.Created),
		zap.Int("itemsDeleted", result.ItemStats.Deleted),
	)
	return result, nil
}

func editableCourse(courses *repository.CourseRepository, actor Actor, courseID uint) (*model.Course, error) {
	course, err := courses.FindByID(courseID)
	if err != nil {
		return nil, util.NotFoundOr(err, util.ErrCourseNotFound)
	}
	if err := checkCourseEditable(actor, course); err != nil {
		return nil, err
	}
	return course, nil
}

// validateCurriculum checks every submitted module and item before anything is
// written and returns the normalized content of each item.
func validateCurriculum(modules []ModuleInput) (map[*ItemInput]datatypes.JSON, error) {
	contents := make(map[*ItemInput]datatypes.JSON)
	for i := range modules {
		m := &modules[i]
		m.Title = strings.TrimSpace(m.Title)
		if m.Title == "" {
			return nil, util.Validationf("modules[%d]: title is required", i)
		}
		for j := range m.Items {
			content, err := validateItemInput(&m.Items[j])
			if err != nil {
				return nil, fmt.Errorf("modules[%d].items[%d]: %w", i, j, err)
			}
			contents[&m.Items[j]] = content
		}
	}
	return contents, nil
}

func validateItemInput(in *ItemInput) (datatypes.JSON, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, util.Validationf("item title is required")
	}
	if !in.Type.Valid() {
		return nil, util.Validationf("unknown item type %q", in.Type)
	}
	if in.Duration < 0 {
		return nil, util.Validationf("duration must not be negative")
	}
	content, err := model.NormalizeItemContent(in.Type, in.Content)
	if err != nil {
		return nil, util.Validationf("%v", err)
	}
	return content, nil
}

func itemUpdates(item *model.CurriculumItem, req *ItemUpdateRequest) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, util.Validationf("item title is required")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Duration != nil {
		if *req.Duration < 0 {
			return nil, util.Validationf("duration must not be negative")
		}
		updates["duration"] = *req.Duration
	}
	if req.Order != nil && *req.Order < 1 {
		return nil, util.Validationf("order must be at least 1")
	}
	if req.IsRequired != nil {
		updates["is_required"] = *req.IsRequired
	}

	if req.Type != nil || len(req.Content) > 0 {
		itemType := item.Type
		if req.Type != nil {
			itemType = *req.Type
		}
		if !itemType.Valid() {
			return nil, util.Validationf("unknown item type %q", itemType)
		}
		raw := json.RawMessage(item.Content)
		if len(req.Content) > 0 {
			raw = req.Content
		}
		content, err := model.NormalizeItemContent(itemType, raw)
		if err != nil {
			return nil, util.Validationf("%v", err)
		}
		updates["type"] = itemType
		updates["content"] = content
	}
	return updates, nil
}

// reposition moves id to the 1-based position order within ids, clamping order to the list bounds.
func reposition(ids []uint, id uint, order int) []uint {
	out := make([]uint, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	idx := order - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(out) {
		idx = len(out)
	}
	out = append(out, 0)
	copy(out[idx+1:], out[idx:])
	out[idx] = id
	return out
}

// renumber stores positions 1..n following the order of ids.
func renumber(ids []uint, update func(id uint, updates map[string]interface{}) error) error {
	for i, id := range ids {
		if err := update(id, map[string]interface{}{"position": i + 1}); err != nil {
			return err
		}
	}
	return nil
}

func newItem(moduleID uint, order int, in *ItemInput, content datatypes.JSON) *model.CurriculumItem {
	return &model.CurriculumItem{
		ModuleID:    moduleID,
		Title:       in.Title,
		Type:        in.Type,
		Description: in.Description,
		Duration:    in.Duration,
		Order:       order,
		IsRequired:  isRequired(in.IsRequired),
		Content:     content,
	}
}

// isRequired defaults to true: an item counts towards progress unless marked optional.
func isRequired(v *bool) bool {
	return v == nil || *v
}
