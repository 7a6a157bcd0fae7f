package controllers

import (
	"taskboard-backend/apperrors"
	"taskboard-backend/database"
	"taskboard-backend/middlewares"
	"taskboard-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type registerRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Register creates a plain user account. Premium and admin accounts are
// provisioned out of band; registration never grants elevated attributes.
func Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Password != req.PasswordConfirm {
		return apperrors.Validation("passwords do not match")
	}

	var mailExist models.User
	database.DB.Where("email = ?", req.Email).First(&mailExist)
	if mailExist.Email != "" {
		return apperrors.Validation("email already exists")
	}

	user := models.User{
		Email: req.Email,
		Role:  models.RoleUser,
	}
	user.SetPassword(req.Password)
	if err := database.DB.Create(&user).Error; err != nil {
		return apperrors.Validation("could not create user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	var user models.User
	database.DB.Where("email = ?", req.Email).First(&user)
	if _, err := uuid.Parse(user.Id); err != nil {
		return apperrors.AuthInvalid()
	}
	if err := user.ComparePassword(req.Password); err != nil {
		return apperrors.AuthInvalid()
	}

	access, refresh, err := middlewares.GenerateTokenPair(user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          user,
	})
}

// Refresh exchanges a refresh token for a fresh pair. The user record is
// re-read so role/premium changes since login are picked up.
func Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	userID, err := middlewares.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return apperrors.AuthInvalid()
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return apperrors.AuthInvalid()
	}

	access, refresh, err := middlewares.GenerateTokenPair(user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Logout is stateless: tokens simply expire. Kept for client symmetry.
func Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "success"})
}

func Me(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)
	var user models.User
	if err := database.DB.First(&user, "id = ?", ident.ID).Error; err != nil {
		return apperrors.AuthInvalid()
	}
	return c.JSON(user)
}

// DeleteMe removes the account together with every task it owns.
func DeleteMe(c *fiber.Ctx) error {
	ident := middlewares.IdentityFromCtx(c)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", ident.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", ident.ID).Delete(&models.User{}).Error
	})
	if err != nil {
		return apperrors.Internal()
	}
	return c.SendStatus(fiber.StatusNoContent)
}
