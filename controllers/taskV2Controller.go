package controllers

import (
	"strconv"
	"time"

	"taskboard-backend/apperrors"
	"taskboard-backend/database"
	"taskboard-backend/middlewares"
	"taskboard-backend/models"
	"taskboard-backend/policy"
	"taskboard-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createTaskV2Request struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	IsPublic    bool    `json:"is_public"`
	AssignedTo  *string `json:"assigned_to"`
}

type updateTaskV2Request struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	IsPublic    *bool   `json:"is_public"`
	AssignedTo  *string `json:"assigned_to"`
}

// assigneeExists verifies an assigned_to value references a real user.
func assigneeExists(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Validation("assigned_to must be a user id")
	}
	var assignee models.User
	if err := database.DB.First(&assignee, "id = ?", id).Error; err != nil {
		return apperrors.Validation("assigned user not found")
	}
	return nil
}

// CreateTaskV2 handles POST /api/v2/tasks (full shape, key required).
func CreateTaskV2(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)

	var req createTaskV2Request
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	utils.NormalizeDTO(&req)
	if req.Title == "" {
		return apperrors.Validation("title is required")
	}
	status, err := parseStatus(req.Status, models.StatusPending)
	if err != nil {
		return err
	}
	priority, err := parsePriority(req.Priority, models.PriorityMedium)
	if err != nil {
		return err
	}
	if priority == models.PriorityHigh && !policy.CanSetHighPriority(*ident, time.Now()) {
		return apperrors.HighPriorityForbidden()
	}
	if req.AssignedTo != nil && *req.AssignedTo != "" {
		if err := assigneeExists(*req.AssignedTo); err != nil {
			return err
		}
	} else {
		req.AssignedTo = nil
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		IsPublic:    req.IsPublic,
		OwnerId:     ident.ID,
		AssignedTo:  req.AssignedTo,
	}
	tx := database.DB.Begin()
	if err := tx.Create(&task).Error; err != nil {
		tx.Rollback()
		return apperrors.Internal()
	}
	tx.Commit()
	return c.Status(fiber.StatusCreated).JSON(task)
}

// ListTasksV2 handles GET /api/v2/tasks. Visibility tiers: anonymous callers
// see public tasks only, authenticated callers additionally see their own and
// assigned tasks, admins see everything.
func ListTasksV2(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)

	q := database.DB.Model(&models.Task{})
	switch {
	case ident == nil:
		q = q.Where("is_public = ?", true)
	case ident.IsAdmin():
		// no visibility filter
	default:
		q = q.Where("is_public = ? OR owner_id = ? OR assigned_to = ?", true, ident.ID, ident.ID)
	}

	if s := c.Query("status"); s != "" {
		if !models.Status(s).Valid() {
			return apperrors.Validation("invalid status filter: " + s)
		}
		q = q.Where("status = ?", s)
	}
	if p := c.Query("priority"); p != "" {
		if !models.Priority(p).Valid() {
			return apperrors.Validation("invalid priority filter: " + p)
		}
		q = q.Where("priority = ?", p)
	}
	if a := c.Query("assignedTo"); a != "" {
		q = q.Where("assigned_to = ?", a)
	}
	if ip := c.Query("isPublic"); ip != "" {
		public, err := strconv.ParseBool(ip)
		if err != nil {
			return apperrors.Validation("invalid isPublic filter: " + ip)
		}
		q = q.Where("is_public = ?", public)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return apperrors.Internal()
	}

	page := utils.ParsePage(c.Query("page"))
	limit := utils.ParseLimit(c.Query("limit"))
	var tasks []models.Task
	if err := q.Order(utils.ParseSort(c.Query("sort"))).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return apperrors.Internal()
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return c.JSON(fiber.Map{
		"tasks": tasks,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

func GetTaskV2(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)
	task, err := findTask(c.Params("id"))
	if err != nil {
		return err
	}
	if !policy.CanRead(ident, task) {
		return apperrors.NotFound("task not found")
	}
	return c.JSON(task)
}

func UpdateTaskV2(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)

	var req updateTaskV2Request
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	utils.NormalizePtrDTO(&req)

	task, err := findTask(c.Params("id"))
	if err != nil {
		return err
	}

	if req.Title != nil && *req.Title == "" {
		return apperrors.Validation("title cannot be empty")
	}
	if req.Status != nil && !models.Status(*req.Status).Valid() {
		return apperrors.Validation("invalid status: " + *req.Status)
	}
	if req.Priority != nil {
		if !models.Priority(*req.Priority).Valid() {
			return apperrors.Validation("invalid priority: " + *req.Priority)
		}
		if models.Priority(*req.Priority) == models.PriorityHigh && !policy.CanSetHighPriority(*ident, time.Now()) {
			return apperrors.HighPriorityForbidden()
		}
	}
	if !policy.CanWrite(*ident, task) {
		return apperrors.Forbidden("only the owner or an admin can modify this task")
	}

	updates := utils.UpdatesFromPtrDTO(&req, nil)
	if v, ok := updates["assigned_to"]; ok {
		if s, _ := v.(string); s == "" {
			// empty string clears the assignee
			updates["assigned_to"] = nil
		} else if err := assigneeExists(s); err != nil {
			return err
		}
	}
	if len(updates) > 0 {
		if err := database.DB.Model(&task).Updates(updates).Error; err != nil {
			return apperrors.Internal()
		}
		if err := database.DB.First(&task, "id = ?", task.Id).Error; err != nil {
			return apperrors.Internal()
		}
	}
	return c.JSON(task)
}

func UpdateTaskStatusV2(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	status := models.Status(req.Status)
	if status == "" {
		return apperrors.Validation("status is required")
	}
	if !status.Valid() {
		return apperrors.Validation("invalid status: " + string(status))
	}

	task, err := findTask(c.Params("id"))
	if err != nil {
		return err
	}
	if !policy.CanWrite(*ident, task) {
		return apperrors.Forbidden("only the owner or an admin can modify this task")
	}
	if err := database.DB.Model(&task).Update("status", status).Error; err != nil {
		return apperrors.Internal()
	}
	task.Status = status
	return c.JSON(task)
}

func DeleteTaskV2(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)
	task, err := findTask(c.Params("id"))
	if err != nil {
		return err
	}
	if !policy.CanWrite(*ident, task) {
		return apperrors.Forbidden("only the owner or an admin can delete this task")
	}
	if err := database.DB.Delete(&task).Error; err != nil {
		return apperrors.Internal()
	}
	return c.SendStatus(fiber.StatusNoContent)
}
