package controllers

import (
	"errors"
	"strings"
	"time"

	"taskboard-backend/apperrors"
	"taskboard-backend/database"
	"taskboard-backend/middlewares"
	"taskboard-backend/models"
	"taskboard-backend/policy"
	"taskboard-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func findTask(id string) (models.Task, error) {
	var task models.Task
	if err := database.DB.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Absent and invisible look the same to the caller.
			return task, apperrors.NotFound("task not found")
		}
		return task, err
	}
	return task, nil
}

func parseStatus(s string, def models.Status) (models.Status, error) {
	if s == "" {
		return def, nil
	}
	status := models.Status(s)
	if !status.Valid() {
		return "", apperrors.Validation("invalid status: " + s)
	}
	return status, nil
}

func parsePriority(s string, def models.Priority) (models.Priority, error) {
	if s == "" {
		return def, nil
	}
	priority := models.Priority(s)
	if !priority.Valid() {
		return "", apperrors.Validation("invalid priority: " + s)
	}
	return priority, nil
}

// CreateTask handles POST /api/v1/tasks (basic shape). The Idempotency
// middleware has already claimed the key by the time this runs.
func CreateTask(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)

	var req createTaskRequest
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

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		OwnerId:     ident.ID,
	}
	tx := database.DB.Begin()
	if err := tx.Create(&task).Error; err != nil {
		tx.Rollback()
		return apperrors.Internal()
	}
	tx.Commit()
	return c.Status(fiber.StatusCreated).JSON(task.Basic())
}

func ListTasks(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)

	q := database.DB.Model(&models.Task{})
	if !ident.IsAdmin() {
		q = q.Where("is_public = ? OR owner_id = ? OR assigned_to = ?", true, ident.ID, ident.ID)
	}
	var tasks []models.Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return apperrors.Internal()
	}
	views := make([]models.TaskBasic, 0, len(tasks))
	for i := range tasks {
		views = append(views, tasks[i].Basic())
	}
	return c.JSON(fiber.Map{
		"tasks":   views,
		"message": "success",
	})
}

func GetTask(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)
	task, err := findTask(c.Params("id"))
	if err != nil {
		return err
	}
	if !policy.CanRead(ident, task) {
		return apperrors.NotFound("task not found")
	}
	return c.JSON(task.Basic())
}

func UpdateTask(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)

	var req updateTaskRequest
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
	if len(updates) > 0 {
		if err := database.DB.Model(&task).Updates(updates).Error; err != nil {
			return apperrors.Internal()
		}
		if err := database.DB.First(&task, "id = ?", task.Id).Error; err != nil {
			return apperrors.Internal()
		}
	}
	return c.JSON(task.Basic())
}

func UpdateTaskStatus(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	status := models.Status(strings.TrimSpace(req.Status))
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
	return c.JSON(task.Basic())
}

func DeleteTask(c *fiber.Ctx) error {
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
