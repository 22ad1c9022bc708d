package handlers

import (
	"fmt"
	"path/filepath"

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

type ProfilesHandler struct {
	DB      *gorm.DB
	Storage *storage.MinIOClient
	Audit   *services.AuditService
}

func NewProfilesHandler(db *gorm.DB, st *storage.MinIOClient, audit *services.AuditService) *ProfilesHandler {
	return &ProfilesHandler{DB: db, Storage: st, Audit: audit}
}

// profileResponse is the personal file plus the figures derived from it on
// every read: current age, accumulated seniority, and the raw periods the
// seniority was computed from.
type profileResponse struct {
	models.Profile
	CurrentAge      *services.Duration          `json:"edad_actual"`
	TotalTenure     services.Duration           `json:"total_tiempo_trabajado"`
	WorkPeriods     []models.WorkPeriod         `json:"periodos_trabajo"`
	ExternalPeriods []models.ExternalWorkPeriod `json:"periodos_externos"`
}

// Get returns the teacher's personal file. Age and seniority are computed at
// read time so they are always current; seniority counts both school periods
// and periods worked elsewhere.
func (h *ProfilesHandler) Get(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var profile models.Profile
	if err := h.DB.First(&profile, "teacher_id = ?", teacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "perfil no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener el perfil")
	}

	var periods []models.WorkPeriod
	if err := h.DB.Where("teacher_id = ?", teacherID).Order("start_date ASC").Find(&periods).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener el perfil")
	}

	var external []models.ExternalWorkPeriod
	if err := h.DB.Where("teacher_id = ?", teacherID).Order("start_date ASC").Find(&external).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener el perfil")
	}

	intervals := make([]services.Interval, 0, len(periods)+len(external))
	for _, p := range periods {
		intervals = append(intervals, services.Interval{Start: p.StartDate, End: p.EndDate})
	}
	for _, p := range external {
		intervals = append(intervals, services.Interval{Start: p.StartDate, End: p.EndDate})
	}

	resp := profileResponse{
		Profile:         profile,
		TotalTenure:     services.TotalTenure(intervals),
		WorkPeriods:     periods,
		ExternalPeriods: external,
	}
	if profile.BirthDate != nil {
		age := services.CurrentAge(*profile.BirthDate)
		resp.CurrentAge = &age
	}

	return utils.Success(c, fiber.StatusOK, resp)
}

type profileRequest struct {
	FirstName        string `json:"nombre"`
	LastName         string `json:"apellido"`
	NationalID       string `json:"dni"`
	Address          string `json:"direccion"`
	MobilePhone      string `json:"telefono_celular"`
	BirthDate        string `json:"fecha_nacimiento"`
	Annotation       string `json:"anotacion"`
	Position         string `json:"cargo"`
	Sex              string `json:"sexo"`
	MaritalStatus    string `json:"estado_civil"`
	TaxID            string `json:"cuil"`
	EmergencyContact string `json:"tel_contacto_emergencias"`
	Observations     string `json:"observaciones"`
	Email            string `json:"email"`
}

// Upsert overwrites the teacher's personal file, creating the row on first
// write. Every field is replaced from the payload; an empty birth date clears
// the stored one. The read-then-branch runs in a transaction and the unique
// index on the teacher column catches the losing side of a concurrent first
// write.
func (h *ProfilesHandler) Upsert(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "fecha_nacimiento inválida, se espera AAAA-MM-DD")
	}

	var teacherCount int64
	if err := h.DB.Model(&models.Teacher{}).Where("id = ?", teacherID).Count(&teacherCount).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al guardar el perfil")
	}
	if teacherCount == 0 {
		return utils.Error(c, fiber.StatusNotFound, "profesor no encontrado")
	}

	fields := map[string]interface{}{
		"first_name":        req.FirstName,
		"last_name":         req.LastName,
		"national_id":       req.NationalID,
		"address":           req.Address,
		"mobile_phone":      req.MobilePhone,
		"birth_date":        birthDate,
		"annotation":        req.Annotation,
		"position":          req.Position,
		"sex":               req.Sex,
		"marital_status":    req.MaritalStatus,
		"tax_id":            req.TaxID,
		"emergency_contact": req.EmergencyContact,
		"observations":      req.Observations,
		"email":             req.Email,
	}

	var saved models.Profile
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Profile
		err := tx.First(&existing, "teacher_id = ?", teacherID).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			saved = models.Profile{
				TeacherID:        teacherID,
				FirstName:        req.FirstName,
				LastName:         req.LastName,
				NationalID:       req.NationalID,
				Address:          req.Address,
				MobilePhone:      req.MobilePhone,
				BirthDate:        birthDate,
				Annotation:       req.Annotation,
				Position:         req.Position,
				Sex:              req.Sex,
				MaritalStatus:    req.MaritalStatus,
				TaxID:            req.TaxID,
				EmergencyContact: req.EmergencyContact,
				Observations:     req.Observations,
				Email:            req.Email,
			}
			return tx.Create(&saved).Error
		case err != nil:
			return err
		default:
			if err := tx.Model(&existing).Updates(fields).Error; err != nil {
				return err
			}
			return tx.First(&saved, "teacher_id = ?", teacherID).Error
		}
	})
	if err != nil {
		logger.Error("profile_upsert_failed", err, map[string]interface{}{
			"teacher_id": teacherID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "error al guardar el perfil")
	}

	if actor := middleware.GetCurrentUser(c); actor != nil {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:       &actor.ID,
			Action:       "profile.upsert",
			ResourceType: "profile",
			ResourceID:   &saved.ID,
			IPAddress:    c.IP(),
		})
	}

	return utils.Success(c, fiber.StatusOK, saved)
}

// UploadPhoto stores a new profile photo and points the row at it. A previous
// photo object is deleted afterwards; if that removal fails the object is
// merely orphaned and logged, never a failure the caller sees.
func (h *ProfilesHandler) UploadPhoto(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var profile models.Profile
	if err := h.DB.First(&profile, "teacher_id = ?", teacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "perfil no encontrado")
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

	objectName := fmt.Sprintf("fotos/profesores/%s/%s%s", teacherID, uuid.New(), filepath.Ext(fileHeader.Filename))

	if err := h.Storage.Upload(c.Context(), objectName, file, fileHeader.Size, fileHeader.Header.Get("Content-Type")); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir la foto")
	}

	previous := profile.ProfilePhoto
	if err := h.DB.Model(&models.Profile{}).Where("teacher_id = ?", teacherID).
		Update("profile_photo", objectName).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir la foto")
	}

	if previous != nil && *previous != "" {
		if err := h.Storage.Delete(c.Context(), *previous); err != nil {
			logger.Warn("profile_photo_orphaned", map[string]interface{}{
				"teacher_id":  teacherID.String(),
				"object_name": *previous,
			})
		}
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"foto_perfil": objectName})
}

// DeletePhoto clears the photo reference first and removes the object second,
// so a storage failure can only leave an unreferenced object behind, never a
// reference to a missing one.
func (h *ProfilesHandler) DeletePhoto(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var profile models.Profile
	if err := h.DB.First(&profile, "teacher_id = ?", teacherID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "perfil no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar la foto")
	}
	if profile.ProfilePhoto == nil || *profile.ProfilePhoto == "" {
		return utils.Error(c, fiber.StatusNotFound, "el perfil no tiene foto")
	}

	objectName := *profile.ProfilePhoto
	if err := h.DB.Model(&models.Profile{}).Where("teacher_id = ?", teacherID).
		Update("profile_photo", nil).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar la foto")
	}

	if err := h.Storage.Delete(c.Context(), objectName); err != nil {
		logger.Warn("profile_photo_orphaned", map[string]interface{}{
			"teacher_id":  teacherID.String(),
			"object_name": objectName,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "la foto quedó fuera de servicio pero no pudo eliminarse del almacenamiento")
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "foto eliminada")
}
