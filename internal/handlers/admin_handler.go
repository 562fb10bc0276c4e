package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/pdf"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/services"
)

type AdminHandler struct {
	users    services.UserService
	feedback *services.FeedbackService
	reports  *services.ReportService
	pdfGen   pdf.Generator
}

func NewAdminHandler(users services.UserService, feedback *services.FeedbackService, reports *services.ReportService, pdfGen pdf.Generator) *AdminHandler {
	return &AdminHandler{users: users, feedback: feedback, reports: reports, pdfGen: pdfGen}
}

// Dashboard returns the analytics snapshot plus recent feedback.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	summary, err := h.reports.GetSummary()
	if err != nil {
		log.Printf("[admin][dashboard] summary failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	fb, err := h.feedback.List(10, 0)
	if err != nil {
		log.Printf("[admin][dashboard] feedback failed: %v", err)
		fb = nil
	}
	c.JSON(http.StatusOK, gin.H{
		"flash":    popFlash(c),
		"summary":  summary,
		"feedback": fb,
	})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pageParams(c)
	users, err := h.users.ListUsers(limit, offset)
	if err != nil {
		log.Printf("[admin][users] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	user, err := h.users.GetUserByID(id)
	if err != nil {
		log.Printf("[admin][users] get id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	// an admin cannot delete their own account mid-session
	if me := currentIdentity(c); me != nil && me.ID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}
	if err := h.users.DeleteUser(id); err != nil {
		log.Printf("[admin][users] delete id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (h *AdminHandler) ListFeedback(c *gin.Context) {
	limit, offset := pageParams(c)
	fb, err := h.feedback.List(limit, offset)
	if err != nil {
		log.Printf("[admin][feedback] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": fb})
}

func (h *AdminHandler) Summary(c *gin.Context) {
	summary, err := h.reports.GetSummary()
	if err != nil {
		log.Printf("[admin][reports] summary failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SummaryPDF exports the analytics snapshot as a PDF download.
func (h *AdminHandler) SummaryPDF(c *gin.Context) {
	summary, err := h.reports.GetSummary()
	if err != nil {
		log.Printf("[admin][reports] summary failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}

	data := pdf.SummaryData{
		GeneratedAt:         summary.GeneratedAt,
		TotalUsers:          summary.TotalUsers,
		UsersByRole:         map[string]int{},
		QuestionsByStatus:   map[string]int{},
		QuestionsByCategory: summary.QuestionsByCategory,
		FeedbackCount:       summary.FeedbackCount,
	}
	for role, n := range summary.UsersByRole {
		data.UsersByRole[string(role)] = n
	}
	for status, n := range summary.QuestionsByStatus {
		data.QuestionsByStatus[string(status)] = n
	}

	path, err := h.pdfGen.GenerateSummaryReport(data)
	if err != nil {
		log.Printf("[admin][reports] pdf failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	c.FileAttachment(path, "summary.pdf")
}
