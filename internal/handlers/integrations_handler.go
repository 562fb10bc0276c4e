package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/services"
)

// IntegrationsHandler lets doctors link a Telegram chat to receive
// review-queue notifications. Wired only when a bot is configured.
type IntegrationsHandler struct {
	users    services.UserService
	telegram *services.TelegramService
}

func NewIntegrationsHandler(users services.UserService, telegram *services.TelegramService) *IntegrationsHandler {
	return &IntegrationsHandler{users: users, telegram: telegram}
}

func (h *IntegrationsHandler) LinkTelegram(c *gin.Context) {
	var req struct {
		ChatID int64 `json:"chat_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := currentIdentity(c)
	if err := h.users.LinkTelegram(id.ID, req.ChatID); err != nil {
		log.Printf("[integrations][tg-link] userID=%d chat=%d: %v", id.ID, req.ChatID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}

	// confirmation ping; failure here is not fatal
	if err := h.telegram.SendMessage(req.ChatID, "Telegram notifications enabled for your reviewer account."); err != nil {
		log.Printf("[integrations][tg-link] confirm ping failed chat=%d: %v", req.ChatID, err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Telegram chat linked"})
}
