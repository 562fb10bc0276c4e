package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/services"
)

type FeedbackHandler struct {
	service *services.FeedbackService
}

func NewFeedbackHandler(service *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

func (h *FeedbackHandler) FeedbackPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flash": popFlash(c)})
}

// Submit is a page flow: redirect + flash either way.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	subject := c.PostForm("subject")
	message := c.PostForm("message")

	id := currentIdentity(c)
	if _, err := h.service.Submit(id.ID, subject, message); err != nil {
		if errors.Is(err, services.ErrFeedbackEmpty) {
			redirectWithFlash(c, "/feedback", "subject and message are required")
			return
		}
		log.Printf("[feedback][submit] userID=%d: %v", id.ID, err)
		redirectWithFlash(c, "/feedback", "failed, please try again")
		return
	}
	redirectWithFlash(c, "/feedback", "Thank you for your feedback!")
}
