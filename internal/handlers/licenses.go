package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sanjose/backend/internal/models"
	"github.com/sanjose/backend/pkg/utils"
	"gorm.io/gorm"
)

type LicensesHandler struct {
	DB *gorm.DB
}

func NewLicensesHandler(db *gorm.DB) *LicensesHandler {
	return &LicensesHandler{DB: db}
}

type licenseRequest struct {
	StartDate string `json:"fecha_inicio"`
	EndDate   string `json:"fecha_fin"`
	Reason    string `json:"motivo"`
}

func (h *LicensesHandler) List(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var licenses []models.License
	if err := h.DB.Where("teacher_id = ?", teacherID).Order("start_date ASC").Find(&licenses).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener las licencias")
	}

	return utils.Success(c, fiber.StatusOK, licenses)
}

// Create records a leave of absence. Overlapping licenses are accepted; the
// school files concurrent leaves (medical on top of study leave) as separate
// rows.
func (h *LicensesHandler) Create(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var req licenseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	if strings.TrimSpace(req.StartDate) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "fecha_inicio es obligatoria")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "fecha_inicio inválida, se espera AAAA-MM-DD")
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "fecha_fin inválida, se espera AAAA-MM-DD")
	}
	if end != nil && start.After(*end) {
		return utils.Error(c, fiber.StatusBadRequest, "la fecha de inicio no puede ser posterior a la fecha de fin")
	}

	var teacherCount int64
	if err := h.DB.Model(&models.Teacher{}).Where("id = ?", teacherID).Count(&teacherCount).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear la licencia")
	}
	if teacherCount == 0 {
		return utils.Error(c, fiber.StatusNotFound, "profesor no encontrado")
	}

	license := models.License{
		TeacherID: teacherID,
		StartDate: start,
		EndDate:   end,
	}
	if reason := strings.TrimSpace(req.Reason); reason != "" {
		license.Reason = &reason
	}
	if err := h.DB.Create(&license).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear la licencia")
	}

	return utils.Success(c, fiber.StatusCreated, license)
}

func (h *LicensesHandler) Update(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}
	licenseID, err := parseUUID(c.Params("licenciaId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de licencia inválido")
	}

	var req licenseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	if strings.TrimSpace(req.StartDate) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "fecha_inicio es obligatoria")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "fecha_inicio inválida, se espera AAAA-MM-DD")
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "fecha_fin inválida, se espera AAAA-MM-DD")
	}
	if end != nil && start.After(*end) {
		return utils.Error(c, fiber.StatusBadRequest, "la fecha de inicio no puede ser posterior a la fecha de fin")
	}

	var reason *string
	if r := strings.TrimSpace(req.Reason); r != "" {
		reason = &r
	}

	result := h.DB.Model(&models.License{}).Where("id = ? AND teacher_id = ?", licenseID, teacherID).Updates(map[string]interface{}{
		"start_date": start,
		"end_date":   end,
		"reason":     reason,
	})
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar la licencia")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "licencia no encontrada")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":           licenseID,
		"fecha_inicio": start,
		"fecha_fin":    end,
		"motivo":       reason,
	})
}

func (h *LicensesHandler) Delete(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}
	licenseID, err := parseUUID(c.Params("licenciaId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de licencia inválido")
	}

	result := h.DB.Delete(&models.License{}, "id = ? AND teacher_id = ?", licenseID, teacherID)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar la licencia")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "licencia no encontrada")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "licencia eliminada")
}
