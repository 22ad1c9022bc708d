package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sanjose/backend/internal/middleware"
	"github.com/sanjose/backend/internal/models"
	"github.com/sanjose/backend/internal/services"
	"github.com/sanjose/backend/pkg/logger"
	"github.com/sanjose/backend/pkg/utils"
	"gorm.io/gorm"
)

type TeachersHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewTeachersHandler(db *gorm.DB, audit *services.AuditService) *TeachersHandler {
	return &TeachersHandler{DB: db, Audit: audit}
}

func (h *TeachersHandler) List(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)

	query := h.DB.Model(&models.Teacher{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener los profesores")
	}

	var teachers []models.Teacher
	if err := utils.ApplyPagination(query.Order("created_at ASC"), p).Find(&teachers).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener los profesores")
	}

	return utils.Paginated(c, teachers, p.Page, p.Limit, total)
}

type createPersonRequest struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Phone    string `json:"telefono"`
	Password string `json:"contrasena"`
}

// Create registers a teacher: the login user and the personnel record are
// written in one transaction so a failure cannot leave a user nobody manages.
func (h *TeachersHandler) Create(c *fiber.Ctx) error {
	var req createPersonRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "faltan campos obligatorios: nombre, email y contrasena")
	}

	var existing int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el profesor")
	}
	if existing > 0 {
		return utils.Error(c, fiber.StatusBadRequest, "el email ya está registrado")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el profesor")
	}

	teacher := models.Teacher{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         models.UserRoleTeacher,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		teacher.UserID = user.ID
		return tx.Create(&teacher).Error
	})
	if err != nil {
		logger.Error("teacher_create_failed", err, map[string]interface{}{
			"email": req.Email,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el profesor")
	}

	if actor := middleware.GetCurrentUser(c); actor != nil {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:       &actor.ID,
			Action:       "teacher.create",
			ResourceType: "teacher",
			ResourceID:   &teacher.ID,
			Details:      map[string]interface{}{"email": req.Email},
			IPAddress:    c.IP(),
		})
	}

	return utils.Success(c, fiber.StatusCreated, teacher)
}

type updatePersonRequest struct {
	Name     string  `json:"nombre"`
	Email    string  `json:"email"`
	Phone    string  `json:"telefono"`
	Password *string `json:"contrasena"`
}

// Update rewrites both the teacher row and its owning user; a password in the
// payload is re-hashed, an absent one leaves the stored hash alone.
func (h *TeachersHandler) Update(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var req updatePersonRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		return utils.Error(c, fiber.StatusBadRequest, "faltan campos obligatorios: nombre y email")
	}

	var teacher models.Teacher
	if err := h.DB.First(&teacher, "id = ?", teacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "profesor no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar el profesor")
	}

	userUpdates := map[string]interface{}{
		"name":  req.Name,
		"email": req.Email,
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar el profesor")
		}
		userUpdates["password_hash"] = hash
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", teacher.UserID).Updates(userUpdates).Error; err != nil {
			return err
		}
		return tx.Model(&models.Teacher{}).Where("id = ?", teacherID).Updates(map[string]interface{}{
			"name":  req.Name,
			"email": req.Email,
			"phone": req.Phone,
		}).Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar el profesor")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":       teacherID,
		"nombre":   req.Name,
		"email":    req.Email,
		"telefono": req.Phone,
	})
}

// Delete removes the teacher and everything hanging off it, then the owning
// user, in one transaction. Stored objects are left behind for the orphan
// sweep; the metadata rows that reference them are gone.
func (h *TeachersHandler) Delete(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var teacher models.Teacher
	if err := h.DB.First(&teacher, "id = ?", teacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "profesor no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el profesor")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.Schedule{},
			&models.WorkPeriod{},
			&models.ExternalWorkPeriod{},
			&models.License{},
			&models.Document{},
			&models.Profile{},
		} {
			if err := tx.Where("teacher_id = ?", teacherID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Teacher{}, "id = ?", teacherID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", teacher.UserID).Error
	})
	if err != nil {
		logger.Error("teacher_delete_failed", err, map[string]interface{}{
			"teacher_id": teacherID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el profesor")
	}

	if actor := middleware.GetCurrentUser(c); actor != nil {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:       &actor.ID,
			Action:       "teacher.delete",
			ResourceType: "teacher",
			ResourceID:   &teacherID,
			IPAddress:    c.IP(),
		})
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "profesor eliminado")
}
