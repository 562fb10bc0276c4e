package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/pdf"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/services"
)

type QuestionHandler struct {
	service services.QuestionService
	users   services.UserService
	pdfGen  pdf.Generator
}

func NewQuestionHandler(service services.QuestionService, users services.UserService, pdfGen pdf.Generator) *QuestionHandler {
	return &QuestionHandler{service: service, users: users, pdfGen: pdfGen}
}

// askForm mirrors the legacy submission form field names.
type askForm struct {
	Title     string `form:"questionTitle" json:"questionTitle"`
	Body      string `form:"questionDescription" json:"questionDescription"`
	Category  string `form:"questionCategory" json:"questionCategory"`
	Urgency   string `form:"urgency" json:"urgency"`
	Age       string `form:"age" json:"age"`
	Gender    string `form:"gender" json:"gender"`
	Anonymous string `form:"anonymous" json:"anonymous"`
	FollowUp  string `form:"followUp" json:"followUp"`
}

// AskQuestionPage backs the submission form: pending flash message
// plus any values preserved from a failed submit.
func (h *QuestionHandler) AskQuestionPage(c *gin.Context) {
	var form askForm
	if !popForm(c, &form) {
		form = askForm{}
	}
	c.JSON(http.StatusOK, gin.H{"flash": popFlash(c), "form": form})
}

// @Summary      Submit a question
// @Description  Validates and stores the question, then attempts an AI draft answer
// @Tags         Questions
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        questionTitle        formData  string  true   "Title (max 255 chars)"
// @Param        questionDescription  formData  string  true   "Description (min 10 chars)"
// @Param        questionCategory     formData  string  true   "Category"
// @Success      303
// @Router       /ask-question [post]
func (h *QuestionHandler) SubmitQuestion(c *gin.Context) {
	var form askForm
	if err := c.ShouldBind(&form); err != nil {
		// keep whatever did bind so the form can be re-rendered
		preserveForm(c, form)
		redirectWithFlash(c, "/ask-question", "please fill in all required fields")
		return
	}

	in := services.SubmitInput{
		Title:     form.Title,
		Body:      form.Body,
		Category:  form.Category,
		Urgency:   form.Urgency,
		Gender:    form.Gender,
		Anonymous: form.Anonymous == "1" || form.Anonymous == "on" || form.Anonymous == "true",
		FollowUp:  form.FollowUp,
	}
	if form.Age != "" {
		if age, err := strconv.Atoi(form.Age); err == nil {
			in.Age = &age
		}
	}

	result, err := h.service.Submit(c.Request.Context(), currentIdentity(c), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotAuthenticated):
			redirectWithFlash(c, "/login", "please log in to ask a question")
		case errors.Is(err, services.ErrMissingFields),
			errors.Is(err, services.ErrTitleTooLong),
			errors.Is(err, services.ErrBodyTooShort):
			// keep what the user typed
			preserveForm(c, form)
			redirectWithFlash(c, "/ask-question", err.Error())
		default:
			log.Printf("[questions][submit] persistence error: %v", err)
			redirectWithFlash(c, "/ask-question", "submission failed, please try again")
		}
		return
	}

	redirectWithFlash(c, "/forum", result.Message)
}

// Forum lists published questions for authenticated users.
func (h *QuestionHandler) Forum(c *gin.Context) {
	limit, offset := pageParams(c)
	questions, err := h.service.Forum(limit, offset)
	if err != nil {
		log.Printf("[questions][forum] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	for _, q := range questions {
		maskForViewer(q, currentIdentity(c))
	}
	c.JSON(http.StatusOK, gin.H{"flash": popFlash(c), "questions": questions})
}

func (h *QuestionHandler) MyQuestions(c *gin.Context) {
	id := currentIdentity(c)
	questions, err := h.service.MyQuestions(id.ID)
	if err != nil {
		log.Printf("[questions][mine] list failed for userID=%d: %v", id.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	qid, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	q, err := h.service.GetByID(qid)
	if err != nil {
		log.Printf("[questions][get] id=%d: %v", qid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	if q == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}
	maskForViewer(q, currentIdentity(c))
	c.JSON(http.StatusOK, q)
}

// AnswerPDF lets the asker download a printable answer sheet.
func (h *QuestionHandler) AnswerPDF(c *gin.Context) {
	qid, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	q, err := h.service.GetByID(qid)
	if err != nil || q == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}
	answer := q.PublishedAnswer()
	if answer == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "question has no published answer yet"})
		return
	}

	data := pdf.AnswerData{
		QuestionID: q.ID,
		Title:      q.Title,
		Category:   q.Category,
		AskedAt:    q.CreatedAt,
		Answer:     answer,
	}
	if q.DoctorID != nil {
		if doctor, err := h.users.GetUserByID(*q.DoctorID); err == nil && doctor != nil {
			data.ReviewedBy = doctor.Name
		}
		if q.DoctorReviewedAt != nil {
			data.ReviewedAt = *q.DoctorReviewedAt
		} else {
			data.ReviewedAt = time.Now()
		}
	}

	path, err := h.pdfGen.GenerateAnswerSheet(data)
	if err != nil {
		log.Printf("[questions][pdf] generate failed for id=%d: %v", q.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	c.FileAttachment(path, "answer.pdf")
}

func pageParams(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return size, (page - 1) * size
}

// maskForViewer hides unapproved drafts from everyone but reviewers
// and the owner, and strips the asker's id from anonymous questions.
func maskForViewer(q *models.Question, viewer *models.Identity) {
	canSee := false
	if viewer != nil {
		if authz.CanReview(viewer.Role) {
			canSee = true
		}
		if q.UserID != nil && *q.UserID == viewer.ID {
			canSee = true
		}
	}
	if !canSee && !q.AIApproved {
		q.AIAnswer = nil
	}
	if q.Anonymous && (viewer == nil || !authz.CanReview(viewer.Role)) {
		q.UserID = nil
	}
}
