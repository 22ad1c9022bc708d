package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sanjose/backend/internal/middleware"
	"github.com/sanjose/backend/internal/models"
	"github.com/sanjose/backend/internal/services"
	"github.com/sanjose/backend/pkg/logger"
	"github.com/sanjose/backend/pkg/utils"
	"gorm.io/gorm"
)

type MessagesHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewMessagesHandler(db *gorm.DB, audit *services.AuditService) *MessagesHandler {
	return &MessagesHandler{DB: db, Audit: audit}
}

const messageWithNamesSelect = "mensajes.*, remitente.name AS remitente_nombre, destinatario.name AS destinatario_nombre"

func (h *MessagesHandler) withNames() *gorm.DB {
	return h.DB.Table("mensajes").
		Select(messageWithNamesSelect).
		Joins("JOIN usuarios remitente ON remitente.id = mensajes.sender_id").
		Joins("JOIN usuarios destinatario ON destinatario.id = mensajes.recipient_id")
}

// Conversation returns every message between the caller and the other user,
// both directions, oldest first. Asking for the same pair from either side
// yields the same rows.
func (h *MessagesHandler) Conversation(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	otherID, err := parseUUID(c.Params("usuarioId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de usuario inválido")
	}

	var messages []models.MessageWithNames
	err = h.withNames().
		Where("(mensajes.sender_id = ? AND mensajes.recipient_id = ?) OR (mensajes.sender_id = ? AND mensajes.recipient_id = ?)",
			user.ID, otherID, otherID, user.ID).
		Order("mensajes.sent_at ASC").
		Scan(&messages).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener los mensajes")
	}

	return utils.Success(c, fiber.StatusOK, messages)
}

// BySender is the same conversation view reached from the grouped inbox.
func (h *MessagesHandler) BySender(c *fiber.Ctx) error {
	return h.Conversation(c)
}

// Groups is the caller's inbox folded by sender: one row per user who has
// written to them, with the message count, busiest senders first. Ties break
// on sender id so the order is stable across requests.
func (h *MessagesHandler) Groups(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)

	var groups []models.SenderGroup
	err := h.DB.Table("mensajes").
		Select("mensajes.sender_id AS remitente_id, remitente.name AS remitente_nombre, COUNT(*) AS total_mensajes").
		Joins("JOIN usuarios remitente ON remitente.id = mensajes.sender_id").
		Where("mensajes.recipient_id = ?", user.ID).
		Group("mensajes.sender_id, remitente.name").
		Order("total_mensajes DESC, remitente_id ASC").
		Scan(&groups).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al obtener los mensajes")
	}

	return utils.Success(c, fiber.StatusOK, groups)
}

type sendMessageRequest struct {
	RecipientID string `json:"destinatario_id"`
	Content     string `json:"contenido"`
}

// Send delivers a message to another user. Who may write to whom follows the
// school's rules: administrators reach everyone, teachers only reach
// administrators. The send timestamp is the server's, never the client's.
func (h *MessagesHandler) Send(c *fiber.Ctx) error {
	sender := middleware.GetCurrentUser(c)

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "cuerpo de la petición inválido")
	}

	if strings.TrimSpace(req.Content) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "el contenido del mensaje no puede estar vacío")
	}
	recipientID, err := parseUUID(req.RecipientID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "destinatario_id inválido")
	}

	var recipient models.User
	if err := h.DB.First(&recipient, "id = ?", recipientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "destinatario no encontrado")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "error al enviar el mensaje")
	}

	if !services.CanMessage(sender.Role, recipient.Role) {
		logger.WarnWithUser(sender.ID.String(), "message_denied", map[string]interface{}{
			"recipient_id": recipientID.String(),
		})
		return utils.Error(c, fiber.StatusForbidden, "permisos insuficientes")
	}

	message := models.Message{
		SenderID:    sender.ID,
		RecipientID: recipientID,
		Content:     req.Content,
		SentAt:      time.Now(),
	}
	if err := h.DB.Create(&message).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al enviar el mensaje")
	}

	return utils.Success(c, fiber.StatusCreated, message)
}

// Delete removes a message. Only administrators moderate the message store;
// authors cannot retract what they sent.
func (h *MessagesHandler) Delete(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if !services.CanDeleteMessage(user) {
		return utils.Error(c, fiber.StatusForbidden, "permisos insuficientes")
	}

	messageID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "id de mensaje inválido")
	}

	result := h.DB.Delete(&models.Message{}, "id = ?", messageID)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "error al eliminar el mensaje")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "mensaje no encontrado")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &user.ID,
		Action:       "message.delete",
		ResourceType: "message",
		ResourceID:   &messageID,
		IPAddress:    c.IP(),
	})

	return utils.SuccessMessage(c, fiber.StatusOK, "mensaje eliminado")
}
