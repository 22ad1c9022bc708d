package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sanjose/backend/internal/middleware"
	"github.com/sanjose/backend/internal/models"
	"github.com/sanjose/backend/internal/services"
	"github.com/sanjose/backend/internal/storage"
	"github.com/sanjose/backend/pkg/logger"
	"github.com/sanjose/backend/pkg/utils"
	"gorm.io/gorm"
)

type AdministratorsHandler struct {
	DB      *gorm.DB
	Storage *storage.MinIOClient
	Audit   *services.AuditService
}

func NewAdministratorsHandler(db *gorm.DB, st *storage.MinIOClient, audit *services.AuditService) *AdministratorsHandler {
	return &AdministratorsHandler{DB: db, Storage: st, Audit: audit}
}

func (h *AdministratorsHandler) List(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)

	var total int64
	if err := h.DB.Model(&models.Administrator{}).Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener los administradores")
	}

	var admins []models.Administrator
	if err := utils.ApplyPagination(h.DB.Order("created_at ASC"), p).Find(&admins).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener los administradores")
	}

	return utils.Paginated(c, admins, p.Page, p.Limit, total)
}

func (h *AdministratorsHandler) Get(c *fiber.Ctx) error {
	adminID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de administrador inválido")
	}

	var admin models.Administrator
	if err := h.DB.First(&admin, "id = ?", adminID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "administrador no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener el administrador")
	}

	return utils.Success(c, fiber.StatusOK, admin)
}

func (h *AdministratorsHandler) Create(c *fiber.Ctx) error {
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
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el administrador")
	}
	if existing > 0 {
		return utils.Error(c, fiber.StatusBadRequest, "el email ya está registrado")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el administrador")
	}

	admin := models.Administrator{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         models.UserRoleAdministrator,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		admin.UserID = user.ID
		return tx.Create(&admin).Error
	})
	if err != nil {
		logger.Error("administrator_create_failed", err, map[string]interface{}{
			"email": req.Email,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el administrador")
	}

	if actor := middleware.GetCurrentUser(c); actor != nil {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:       &actor.ID,
			Action:       "administrator.create",
			ResourceType: "administrator",
			ResourceID:   &admin.ID,
			Details:      map[string]interface{}{"email": req.Email},
			IPAddress:    c.IP(),
		})
	}

	return utils.Success(c, fiber.StatusCreated, admin)
}

func (h *AdministratorsHandler) Update(c *fiber.Ctx) error {
	adminID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de administrador inválido")
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

	var admin models.Administrator
	if err := h.DB.First(&admin, "id = ?", adminID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "administrador no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar el administrador")
	}

	userUpdates := map[string]interface{}{
		"name":  req.Name,
		"email": req.Email,
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar el administrador")
		}
		userUpdates["password_hash"] = hash
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", admin.UserID).Updates(userUpdates).Error; err != nil {
			return err
		}
		return tx.Model(&models.Administrator{}).Where("id = ?", adminID).Updates(map[string]interface{}{
			"name":  req.Name,
			"email": req.Email,
			"phone": req.Phone,
		}).Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar el administrador")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":       adminID,
		"nombre":   req.Name,
		"email":    req.Email,
		"telefono": req.Phone,
	})
}

func (h *AdministratorsHandler) Delete(c *fiber.Ctx) error {
	adminID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de administrador inválido")
	}

	actor := middleware.GetCurrentUser(c)

	var admin models.Administrator
	if err := h.DB.First(&admin, "id = ?", adminID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "administrador no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el administrador")
	}

	if actor != nil && actor.ID == admin.UserID {
		return utils.Error(c, fiber.StatusBadRequest, "no puede eliminar su propia cuenta")
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Administrator{}, "id = ?", adminID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", admin.UserID).Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el administrador")
	}

	if actor != nil {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:       &actor.ID,
			Action:       "administrator.delete",
			ResourceType: "administrator",
			ResourceID:   &adminID,
			IPAddress:    c.IP(),
		})
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "administrador eliminado")
}

// UploadPhoto replaces the administrator's profile photo. The previous object,
// if any, is removed after the new one is stored and referenced.
func (h *AdministratorsHandler) UploadPhoto(c *fiber.Ctx) error {
	adminID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de administrador inválido")
	}

	var admin models.Administrator
	if err := h.DB.First(&admin, "id = ?", adminID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "administrador no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir la foto")
	}

	fileHeader, err := c.FormFile("foto_perfil")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "no se recibió ningún archivo")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir la foto")
	}
	defer file.Close()

	objectName := fmt.Sprintf("fotos/administradores/%s/%s%s", adminID, uuid.New(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")

	if err := h.Storage.Upload(c.Context(), objectName, file, fileHeader.Size, contentType); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir la foto")
	}

	previous := admin.ProfilePhoto
	if err := h.DB.Model(&models.Administrator{}).Where("id = ?", adminID).
		Update("profile_photo", objectName).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir la foto")
	}

	if previous != nil && *previous != "" {
		if err := h.Storage.Delete(c.Context(), *previous); err != nil {
			logger.Warn("admin_photo_orphaned", map[string]interface{}{
				"admin_id":    adminID.String(),
				"object_name": *previous,
			})
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"foto_perfil": objectName})
}
