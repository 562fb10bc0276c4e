package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/services"
)

type ReviewHandler struct {
	service services.QuestionService
}

func NewReviewHandler(service services.QuestionService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type reviewRequest struct {
	QuestionID    int    `json:"question_id" binding:"required"`
	Action        string `json:"action" binding:"required"`
	DoctorComment string `json:"doctor_comment"`
	DoctorAnswer  string `json:"doctor_answer"`
}

// @Summary      Review a question
// @Description  Approves the AI draft or replaces it with the doctor's own answer
// @Tags         Review
// @Accept       json
// @Produce      json
// @Param        review  body      handlers.reviewRequest  true  "Review verdict"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]interface{}
// @Router       /review [post]
func (h *ReviewHandler) Review(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.service.Review(currentIdentity(c), req.QuestionID, req.Action, req.DoctorComment, req.DoctorAnswer)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAction):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "action must be approve or disapprove"})
		case errors.Is(err, services.ErrAnswerRequired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "doctor_answer is required when disapproving"})
		case errors.Is(err, services.ErrQuestionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "question not found"})
		case errors.Is(err, services.ErrNotAllowedReview), errors.Is(err, services.ErrNotAuthenticated):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "not allowed"})
		default:
			log.Printf("[review] question=%d action=%q failed: %v", req.QuestionID, req.Action, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed, try again"})
		}
		return
	}

	resp := gin.H{
		"success":    true,
		"message":    result.Message,
		"email_sent": result.EmailSent,
	}
	if result.EmailSent {
		resp["email_message"] = "the asker was notified by email"
	} else if result.EmailError != "" {
		resp["email_error"] = result.EmailError
	}
	c.JSON(http.StatusOK, resp)
}

// AIApproval is the admin quick path: approve publishes the draft,
// anything else rejects it. Page flow, so redirect + flash.
func (h *ReviewHandler) AIApproval(c *gin.Context) {
	qid, err := strconv.Atoi(c.PostForm("question_id"))
	if err != nil || qid <= 0 {
		redirectWithFlash(c, "/review/pending", "invalid question id")
		return
	}

	var msg string
	if c.PostForm("action") == "approve" {
		err = h.service.ApproveAI(qid)
		msg = "AI answer approved and published."
	} else {
		err = h.service.RejectAI(qid)
		msg = "AI answer rejected; the question is back in the manual queue."
	}
	if err != nil {
		if errors.Is(err, services.ErrQuestionNotFound) {
			redirectWithFlash(c, "/review/pending", "question not found")
			return
		}
		log.Printf("[review][ai-approval] question=%d failed: %v", qid, err)
		redirectWithFlash(c, "/review/pending", "operation failed, please try again")
		return
	}
	redirectWithFlash(c, "/review/pending", msg)
}

// PendingReview lists the doctor work queue.
func (h *ReviewHandler) PendingReview(c *gin.Context) {
	limit, offset := pageParams(c)
	questions, err := h.service.PendingReview(limit, offset)
	if err != nil {
		log.Printf("[review][queue] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flash": popFlash(c), "questions": questions})
}
