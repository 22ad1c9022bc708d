package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sanjose/backend/internal/middleware"
	"github.com/sanjose/backend/internal/models"
	"github.com/sanjose/backend/internal/services"
	"github.com/sanjose/backend/pkg/logger"
	"github.com/sanjose/backend/pkg/utils"
	"gorm.io/gorm"
)

type SchedulesHandler struct {
	DB     *gorm.DB
	Access *services.AccessPolicy
}

func NewSchedulesHandler(db *gorm.DB, access *services.AccessPolicy) *SchedulesHandler {
	return &SchedulesHandler{DB: db, Access: access}
}

// authorize resolves whether the caller may touch the given teacher's
// timetable. Administrators reach every timetable; a teacher only their own.
func (h *SchedulesHandler) authorize(c *fiber.Ctx, teacherID uuid.UUID) error {
	user := middleware.GetCurrentUser(c)
	if !h.Access.CanAccessTeacherSchedule(c.Context(), user, teacherID) {
		if user != nil {
			logger.WarnWithUser(user.ID.String(), "schedule_access_denied", map[string]interface{}{
				"teacher_id": teacherID.String(),
			})
		}
		return utils.Error(c, fiber.StatusForbidden, "permisos insuficientes")
	}
	return nil
}

func (h *SchedulesHandler) ListByTeacher(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	if err := h.authorize(c, teacherID); err != nil {
		return err
	}

	var schedules []models.Schedule
	if err := h.DB.Where("teacher_id = ?", teacherID).
		Order("day ASC, start_time ASC").Find(&schedules).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener los horarios")
	}

	return utils.Success(c, fiber.StatusOK, schedules)
}

type scheduleRequest struct {
	TeacherID   string `json:"profesor_id"`
	Day         string `json:"dia"`
	StartTime   string `json:"hora_inicio"`
	EndTime     string `json:"hora_fin"`
	Annotations string `json:"anotaciones"`
	GroupLabel  string `json:"grupo"`
}

func (h *SchedulesHandler) Create(c *fiber.Ctx) error {
	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	teacherID, err := parseUUID(req.TeacherID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "profesor_id inválido")
	}
	if strings.TrimSpace(req.Day) == "" || strings.TrimSpace(req.StartTime) == "" || strings.TrimSpace(req.EndTime) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "faltan campos obligatorios: dia, hora_inicio y hora_fin")
	}

	if err := h.authorize(c, teacherID); err != nil {
		return err
	}

	var teacherCount int64
	if err := h.DB.Model(&models.Teacher{}).Where("id = ?", teacherID).Count(&teacherCount).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el horario")
	}
	if teacherCount == 0 {
		return utils.Error(c, fiber.StatusNotFound, "profesor no encontrado")
	}

	schedule := models.Schedule{
		TeacherID:   teacherID,
		Day:         req.Day,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Annotations: req.Annotations,
		GroupLabel:  req.GroupLabel,
	}
	if err := h.DB.Create(&schedule).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al crear el horario")
	}

	return utils.Success(c, fiber.StatusCreated, schedule)
}

func (h *SchedulesHandler) Update(c *fiber.Ctx) error {
	scheduleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de horario inválido")
	}

	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}
	if strings.TrimSpace(req.Day) == "" || strings.TrimSpace(req.StartTime) == "" || strings.TrimSpace(req.EndTime) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "faltan campos obligatorios: dia, hora_inicio y hora_fin")
	}

	var schedule models.Schedule
	if err := h.DB.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "horario no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar el horario")
	}

	if err := h.authorize(c, schedule.TeacherID); err != nil {
		return err
	}

	if err := h.DB.Model(&models.Schedule{}).Where("id = ?", scheduleID).Updates(map[string]interface{}{
		"day":         req.Day,
		"start_time":  req.StartTime,
		"end_time":    req.EndTime,
		"annotations": req.Annotations,
		"group_label": req.GroupLabel,
	}).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al actualizar el horario")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":          scheduleID,
		"dia":         req.Day,
		"hora_inicio": req.StartTime,
		"hora_fin":    req.EndTime,
		"anotaciones": req.Annotations,
		"grupo":       req.GroupLabel,
	})
}

func (h *SchedulesHandler) Delete(c *fiber.Ctx) error {
	scheduleID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de horario inválido")
	}

	var schedule models.Schedule
	if err := h.DB.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "horario no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el horario")
	}

	if err := h.authorize(c, schedule.TeacherID); err != nil {
		return err
	}

	result := h.DB.Delete(&models.Schedule{}, "id = ?", scheduleID)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el horario")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "horario no encontrado")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "horario eliminado")
}
