package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sanjose/backend/internal/models"
	"github.com/sanjose/backend/pkg/utils"
	"gorm.io/gorm"
)

type PeriodsHandler struct {
	DB *gorm.DB
}

func NewPeriodsHandler(db *gorm.DB) *PeriodsHandler {
	return &PeriodsHandler{DB: db}
}

type periodRequest struct {
	StartDate string `json:"fecha_ingreso"`
	EndDate   string `json:"fecha_egreso"`
	Employer  string `json:"empresa"`
}

// parsePeriodDates validates the shared period rules: a start date is
// mandatory, an end date is optional (the period is still running), and an
// end before the start is rejected.
func parsePeriodDates(req periodRequest) (time.Time, *time.Time, string) {
	if strings.TrimSpace(req.StartDate) == "" {
		return time.Time{}, nil, "fecha_ingreso es obligatoria"
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return time.Time{}, nil, "fecha_ingreso inválida, se espera AAAA-MM-DD"
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return time.Time{}, nil, "fecha_egreso inválida, se espera AAAA-MM-DD"
	}
	if end != nil && start.After(*end) {
		return time.Time{}, nil, "La fecha de ingreso no puede ser posterior a la fecha de egreso"
	}
	return start, end, ""
}

func (h *PeriodsHandler) List(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var periods []models.WorkPeriod
	if err := h.DB.Where("teacher_id = ?", teacherID).Order("start_date ASC").Find(&periods).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener los períodos")
	}

	return utils.Success(c, fiber.StatusOK, periods)
}

func (h *PeriodsHandler) Create(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var req periodRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	start, end, msg := parsePeriodDates(req)
	if msg != "" {
		return utils.Error(c, fiber.StatusBadRequest, msg)
	}

	var teacherCount int64
	if err := h.DB.Model(&models.Teacher{}).Where("id = ?", teacherID).Count(&teacherCount).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el período")
	}
	if teacherCount == 0 {
		return utils.Error(c, fiber.StatusNotFound, "profesor no encontrado")
	}

	period := models.WorkPeriod{
		TeacherID: teacherID,
		StartDate: start,
		EndDate:   end,
	}
	if err := h.DB.Create(&period).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el período")
	}

	return utils.Success(c, fiber.StatusCreated, period)
}

func (h *PeriodsHandler) Update(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}
	periodID, err := parseUUID(c.Params("periodoId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de período inválido")
	}

	var req periodRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	start, end, msg := parsePeriodDates(req)
	if msg != "" {
		return utils.Error(c, fiber.StatusBadRequest, msg)
	}

	result := h.DB.Model(&models.WorkPeriod{}).Where("id = ? AND teacher_id = ?", periodID, teacherID).Updates(map[string]interface{}{
		"start_date": start,
		"end_date":   end,
	})
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar el período")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "período no encontrado")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":            periodID,
		"fecha_ingreso": start,
		"fecha_egreso":  end,
	})
}

func (h *PeriodsHandler) Delete(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}
	periodID, err := parseUUID(c.Params("periodoId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de período inválido")
	}

	result := h.DB.Delete(&models.WorkPeriod{}, "id = ? AND teacher_id = ?", periodID, teacherID)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el período")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "período no encontrado")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "período eliminado")
}

func (h *PeriodsHandler) ListExternal(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var periods []models.ExternalWorkPeriod
	if err := h.DB.Where("teacher_id = ?", teacherID).Order("start_date ASC").Find(&periods).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener los períodos externos")
	}

	return utils.Success(c, fiber.StatusOK, periods)
}

func (h *PeriodsHandler) CreateExternal(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var req periodRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	start, end, msg := parsePeriodDates(req)
	if msg != "" {
		return utils.Error(c, fiber.StatusBadRequest, msg)
	}

	var teacherCount int64
	if err := h.DB.Model(&models.Teacher{}).Where("id = ?", teacherID).Count(&teacherCount).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el período externo")
	}
	if teacherCount == 0 {
		return utils.Error(c, fiber.StatusNotFound, "profesor no encontrado")
	}

	period := models.ExternalWorkPeriod{
		TeacherID: teacherID,
		StartDate: start,
		EndDate:   end,
		Employer:  strings.TrimSpace(req.Employer),
	}
	if err := h.DB.Create(&period).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el período externo")
	}

	return utils.Success(c, fiber.StatusCreated, period)
}

func (h *PeriodsHandler) UpdateExternal(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}
	periodID, err := parseUUID(c.Params("periodoId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de período inválido")
	}

	var req periodRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	start, end, msg := parsePeriodDates(req)
	if msg != "" {
		return utils.Error(c, fiber.StatusBadRequest, msg)
	}

	result := h.DB.Model(&models.ExternalWorkPeriod{}).Where("id = ? AND teacher_id = ?", periodID, teacherID).Updates(map[string]interface{}{
		"start_date": start,
		"end_date":   end,
		"employer":   strings.TrimSpace(req.Employer),
	})
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar el período externo")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "período no encontrado")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":            periodID,
		"fecha_ingreso": start,
		"fecha_egreso":  end,
		"empresa":       req.Employer,
	})
}

func (h *PeriodsHandler) DeleteExternal(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}
	periodID, err := parseUUID(c.Params("periodoId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de período inválido")
	}

	result := h.DB.Delete(&models.ExternalWorkPeriod{}, "id = ? AND teacher_id = ?", periodID, teacherID)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el período externo")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "período no encontrado")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "período eliminado")
}
