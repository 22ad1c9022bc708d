package handlers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

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

type DocumentsHandler struct {
	DB      *gorm.DB
	Storage *storage.MinIOClient
	Audit   *services.AuditService
}

func NewDocumentsHandler(db *gorm.DB, st *storage.MinIOClient, audit *services.AuditService) *DocumentsHandler {
	return &DocumentsHandler{DB: db, Storage: st, Audit: audit}
}

func (h *DocumentsHandler) List(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	var docs []models.Document
	if err := h.DB.Where("teacher_id = ?", teacherID).Order("uploaded_at DESC").Find(&docs).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener los archivos")
	}

	return utils.Success(c, fiber.StatusOK, docs)
}

// Upload stores a file into one of the well-known slots named by the URL
// (titulo-secundario, apto-medico, ...). Each slot holds one file per teacher;
// uploading into an occupied slot replaces the previous file.
func (h *DocumentsHandler) Upload(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}
	docType := strings.TrimSpace(c.Params("tipoDocumento"))
	if docType == "" {
		return utils.Error(c, fiber.StatusBadRequest, "tipo de documento requerido")
	}

	var teacherCount int64
	if err := h.DB.Model(&models.Teacher{}).Where("id = ?", teacherID).Count(&teacherCount).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir el archivo")
	}
	if teacherCount == 0 {
		return utils.Error(c, fiber.StatusNotFound, "profesor no encontrado")
	}

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "no se recibió ningún archivo")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir el archivo")
	}
	defer file.Close()

	objectName := fmt.Sprintf("documentos/%s/%s/%s%s", teacherID, docType, uuid.New(), filepath.Ext(fileHeader.Filename))

	if err := h.Storage.Upload(c.Context(), objectName, file, fileHeader.Size, fileHeader.Header.Get("Content-Type")); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir el archivo")
	}

	doc := models.Document{
		TeacherID:    teacherID,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		StoragePath:  objectName,
		DocumentType: docType,
		UploadedAt:   time.Now(),
	}

	var previous models.Document
	previousFound := false
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("teacher_id = ? AND document_type = ?", teacherID, docType).First(&previous).Error
		switch {
		case err == gorm.ErrRecordNotFound:
		case err != nil:
			return err
		default:
			previousFound = true
			if err := tx.Delete(&models.Document{}, "id = ?", previous.ID).Error; err != nil {
				return err
			}
		}
		return tx.Create(&doc).Error
	})
	if err != nil {
		logger.Error("document_upload_failed", err, map[string]interface{}{
			"teacher_id":    teacherID.String(),
			"document_type": docType,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir el archivo")
	}

	if previousFound {
		if err := h.Storage.Delete(c.Context(), previous.StoragePath); err != nil {
			logger.Warn("document_orphaned", map[string]interface{}{
				"teacher_id":  teacherID.String(),
				"object_name": previous.StoragePath,
			})
		}
	}

	if actor := middleware.GetCurrentUser(c); actor != nil {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:       &actor.ID,
			Action:       "document.upload",
			ResourceType: "document",
			ResourceID:   &doc.ID,
			Details:      map[string]interface{}{"tipo_documento": docType},
			IPAddress:    c.IP(),
		})
	}

	return utils.Success(c, fiber.StatusCreated, doc)
}

// UploadAdditional stores a free-form file under a caller-chosen title. Unlike
// the named slots these accumulate; nothing is replaced.
func (h *DocumentsHandler) UploadAdditional(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}

	title := strings.TrimSpace(c.FormValue("titulo"))
	if title == "" {
		return utils.Error(c, fiber.StatusBadRequest, "titulo requerido")
	}

	var teacherCount int64
	if err := h.DB.Model(&models.Teacher{}).Where("id = ?", teacherID).Count(&teacherCount).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir el archivo")
	}
	if teacherCount == 0 {
		return utils.Error(c, fiber.StatusNotFound, "profesor no encontrado")
	}

	fileHeader, err := c.FormFile("archivo")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "no se recibió ningún archivo")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir el archivo")
	}
	defer file.Close()

	objectName := fmt.Sprintf("documentos/%s/adicionales/%s%s", teacherID, uuid.New(), filepath.Ext(fileHeader.Filename))

	if err := h.Storage.Upload(c.Context(), objectName, file, fileHeader.Size, fileHeader.Header.Get("Content-Type")); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir el archivo")
	}

	doc := models.Document{
		TeacherID:    teacherID,
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		StoragePath:  objectName,
		Title:        &title,
		UploadedAt:   time.Now(),
	}
	if err := h.DB.Create(&doc).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al subir el archivo")
	}

	return utils.Success(c, fiber.StatusCreated, doc)
}

// Download streams the stored file back with its original name and type.
func (h *DocumentsHandler) Download(c *fiber.Ctx) error {
	docID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de archivo inválido")
	}

	var doc models.Document
	if err := h.DB.First(&doc, "id = ?", docID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "archivo no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al descargar el archivo")
	}

	obj, err := h.Storage.Download(c.Context(), doc.StoragePath)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al descargar el archivo")
	}

	c.Set(fiber.HeaderContentType, doc.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.OriginalName))
	return c.SendStream(obj)
}

// DeleteByType removes the file in a named slot. The metadata row goes first;
// a storage failure after that leaves an orphaned object and reports the
// failure, never a row pointing at nothing.
func (h *DocumentsHandler) DeleteByType(c *fiber.Ctx) error {
	teacherID, err := parseUUID(c.Params("profesorId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de profesor inválido")
	}
	docType := strings.TrimSpace(c.Params("tipoDocumento"))

	var doc models.Document
	if err := h.DB.Where("teacher_id = ? AND document_type = ?", teacherID, docType).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "archivo no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el archivo")
	}

	return h.deleteDocument(c, doc)
}

// Delete removes a single file by id, the way free-form uploads are addressed.
func (h *DocumentsHandler) Delete(c *fiber.Ctx) error {
	docID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de archivo inválido")
	}

	var doc models.Document
	if err := h.DB.First(&doc, "id = ?", docID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "archivo no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el archivo")
	}

	return h.deleteDocument(c, doc)
}

func (h *DocumentsHandler) deleteDocument(c *fiber.Ctx, doc models.Document) error {
	if err := h.DB.Delete(&models.Document{}, "id = ?", doc.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el archivo")
	}

	if err := h.Storage.Delete(c.Context(), doc.StoragePath); err != nil {
		logger.Warn("document_orphaned", map[string]interface{}{
			"teacher_id":  doc.TeacherID.String(),
			"object_name": doc.StoragePath,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "el archivo quedó fuera de servicio pero no pudo eliminarse del almacenamiento")
	}

	if actor := middleware.GetCurrentUser(c); actor != nil {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:       &actor.ID,
			Action:       "document.delete",
			ResourceType: "document",
			ResourceID:   &doc.ID,
			IPAddress:    c.IP(),
		})
	}

	return utils.SuccessMessage(c, fiber.StatusOK, "archivo eliminado")
}
