package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sanjose/backend/internal/middleware"
	"github.com/sanjose/backend/internal/models"
	"github.com/sanjose/backend/internal/services"
	"github.com/sanjose/backend/pkg/logger"
	"github.com/sanjose/backend/pkg/utils"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewAuthHandler(db *gorm.DB, audit *services.AuditService) *AuthHandler {
	return &AuthHandler{DB: db, Audit: audit}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"contrasena"`
}

// Login verifies credentials and issues a one-hour token. Unknown email and
// wrong password answer identically so the endpoint cannot be used to probe
// which addresses have accounts.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	var user models.User
	if err := h.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusBadRequest, "correo o contraseña incorrectos")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error interno del servidor")
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return utils.Error(c, fiber.StatusBadRequest, "correo o contraseña incorrectos")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		logger.Error("token_generation_failed", err, map[string]interface{}{
			"user_id": user.ID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "error interno del servidor")
	}

	logger.InfoWithUser(user.ID.String(), "login_success", map[string]interface{}{
		"role": user.Role,
	})

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &user.ID,
		Action:       "auth.login",
		ResourceType: "user",
		ResourceID:   &user.ID,
		IPAddress:    c.IP(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token":       token,
		"nombre":      user.Name,
		"email":       user.Email,
		"tipoUsuario": user.Role,
	})
}

// UserDetails returns the display fields of the authenticated identity plus
// its profile photo, which lives on the administrator row or the teacher
// profile row depending on the role.
func (h *AuthHandler) UserDetails(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "acceso denegado")
	}

	var photo *string

	switch user.Role {
	case models.UserRoleAdministrator:
		var admin models.Administrator
		if err := h.DB.First(&admin, "user_id = ?", user.ID).Error; err == nil {
			photo = admin.ProfilePhoto
		}
	case models.UserRoleTeacher:
		var teacher models.Teacher
		if err := h.DB.First(&teacher, "user_id = ?", user.ID).Error; err == nil {
			var profile models.Profile
			if err := h.DB.First(&profile, "teacher_id = ?", teacher.ID).Error; err == nil {
				photo = profile.ProfilePhoto
			}
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"nombre":      user.Name,
		"email":       user.Email,
		"tipoUsuario": user.Role,
		"foto_perfil": photo,
	})
}

// GetUser exposes the public display fields of any user.
func (h *AuthHandler) GetUser(c *fiber.Ctx) error {
	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de usuario inválido")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "usuario no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener el usuario")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":     user.ID,
		"nombre": user.Name,
		"email":  user.Email,
		"rol":    user.Role,
	})
}
