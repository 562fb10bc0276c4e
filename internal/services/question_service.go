package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/repositories"
)

var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrMissingFields    = errors.New("please fill in all required fields")
	ErrTitleTooLong     = errors.New("title must be at most 255 characters")
	ErrBodyTooShort     = errors.New("description must be at least 10 characters")
	ErrInvalidAction    = errors.New("invalid action")
	ErrAnswerRequired   = errors.New("doctor answer is required when disapproving")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNotAllowedReview = errors.New("only doctors and admins can review")
)

const (
	maxTitleLen = 255
	minBodyLen  = 10

	// user-facing submission outcomes; submission succeeds either way
	MsgAIDraftPending    = "Your question was submitted. An AI-drafted answer is pending doctor approval."
	MsgExpertWillAnswer  = "Your question was submitted. A medical expert will answer it shortly."
	MsgReviewApproved    = "Answer approved and published."
	MsgReviewNotApproved = "AI answer rejected; your answer was published instead."
)

// AICompleter is the completion capability; the concrete client lives
// in utils.
type AICompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type SubmitInput struct {
	Title     string
	Body      string
	Category  string
	Urgency   string
	Age       *int
	Gender    string
	Anonymous bool
	FollowUp  string
}

type SubmitResult struct {
	Question  *models.Question
	Message   string
	AIDrafted bool
}

type ReviewResult struct {
	Message    string
	EmailSent  bool
	EmailError string
}

type QuestionService interface {
	Submit(ctx context.Context, identity *models.Identity, in SubmitInput) (*SubmitResult, error)
	GetByID(id int) (*models.Question, error)
	Forum(limit, offset int) ([]*models.Question, error)
	MyQuestions(userID int) ([]*models.Question, error)
	PendingReview(limit, offset int) ([]*models.Question, error)

	// admin quick paths
	ApproveAI(id int) error
	RejectAI(id int) error

	// doctor review endpoint; last write wins on re-review
	Review(identity *models.Identity, questionID int, action, comment, answer string) (*ReviewResult, error)
}

type questionService struct {
	repo     repositories.QuestionRepository
	userRepo repositories.UserRepository
	ai       AICompleter
	emails   EmailService
	telegram *TelegramService // may be nil
	now      func() time.Time
}

func NewQuestionService(
	repo repositories.QuestionRepository,
	userRepo repositories.UserRepository,
	ai AICompleter,
	emails EmailService,
	telegram *TelegramService,
) QuestionService {
	return &questionService{
		repo:     repo,
		userRepo: userRepo,
		ai:       ai,
		emails:   emails,
		telegram: telegram,
		now:      time.Now,
	}
}

// validate applies the field checks in their fixed priority order:
// missing required fields, then title length, then body length.
func validateSubmit(in *SubmitInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.Category = strings.TrimSpace(in.Category)
	if in.Title == "" || in.Body == "" || in.Category == "" {
		return ErrMissingFields
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(in.Body) < minBodyLen {
		return ErrBodyTooShort
	}
	return nil
}

func (s *questionService) Submit(ctx context.Context, identity *models.Identity, in SubmitInput) (*SubmitResult, error) {
	// no persistence for anonymous visitors or invalid input
	if identity == nil || identity.ID <= 0 {
		return nil, ErrNotAuthenticated
	}
	if err := validateSubmit(&in); err != nil {
		return nil, err
	}

	ownerID := identity.ID
	q := &models.Question{
		UserID:               &ownerID,
		Title:                in.Title,
		Body:                 in.Body,
		Category:             in.Category,
		Urgency:              in.Urgency,
		Age:                  in.Age,
		Gender:               in.Gender,
		Anonymous:            in.Anonymous,
		FollowUp:             in.FollowUp,
		Status:               models.QuestionPending,
		DoctorApprovalStatus: models.ApprovalPending,
	}
	if err := s.repo.Create(q); err != nil {
		return nil, err
	}

	result := &SubmitResult{Question: q}

	// AI draft attempt is inline and best-effort: a failed completion
	// never fails the submission
	draft, err := s.ai.Complete(ctx, buildPrompt(q))
	if err != nil || strings.TrimSpace(draft) == "" {
		log.Printf("[questions][submit] ai draft failed for id=%d: %v", q.ID, err)
		result.Message = MsgExpertWillAnswer
	} else if err := s.repo.SetAIDraft(q.ID, draft); err != nil {
		log.Printf("[questions][submit] store ai draft failed for id=%d: %v", q.ID, err)
		result.Message = MsgExpertWillAnswer
	} else {
		q.AIAnswer = &draft
		q.AIGenerated = true
		q.AIApproved = false
		result.AIDrafted = true
		result.Message = MsgAIDraftPending
	}

	s.notifyDoctors(q)
	return result, nil
}

func buildPrompt(q *models.Question) string {
	var b strings.Builder
	b.WriteString("You are a medical assistant drafting an answer for a doctor to review.\n")
	fmt.Fprintf(&b, "Question title: %s\n", q.Title)
	fmt.Fprintf(&b, "Question details: %s\n", q.Body)
	if q.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", q.Category)
	}
	if q.Age != nil {
		fmt.Fprintf(&b, "Patient age: %d\n", *q.Age)
	}
	if q.Gender != "" {
		fmt.Fprintf(&b, "Patient gender: %s\n", q.Gender)
	}
	b.WriteString("Provide a clear, cautious answer and always include a safety disclaimer advising the patient to consult a licensed physician.")
	return b.String()
}

// notifyDoctors pings linked doctor chats about a new pending
// question. Strictly best-effort.
func (s *questionService) notifyDoctors(q *models.Question) {
	if s.telegram == nil {
		return
	}
	chatIDs, err := s.userRepo.DoctorChatIDs()
	if err != nil {
		log.Printf("[questions][notify] doctor chat lookup failed: %v", err)
		return
	}
	text := fmt.Sprintf("New question awaiting review:\n<b>%s</b>\nCategory: %s", q.Title, q.Category)
	for _, chatID := range chatIDs {
		if err := s.telegram.SendMessage(chatID, text); err != nil {
			log.Printf("[questions][notify] telegram send failed chat=%d: %v", chatID, err)
		}
	}
}

func (s *questionService) GetByID(id int) (*models.Question, error) {
	return s.repo.GetByID(id)
}

func (s *questionService) Forum(limit, offset int) ([]*models.Question, error) {
	return s.repo.ListAnswered(limit, offset)
}

func (s *questionService) MyQuestions(userID int) ([]*models.Question, error) {
	return s.repo.ListByUser(userID)
}

func (s *questionService) PendingReview(limit, offset int) ([]*models.Question, error) {
	return s.repo.ListPendingReview(limit, offset)
}

func (s *questionService) ApproveAI(id int) error {
	q, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if q == nil {
		return ErrQuestionNotFound
	}
	return s.repo.ApproveAI(id)
}

func (s *questionService) RejectAI(id int) error {
	q, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if q == nil {
		return ErrQuestionNotFound
	}
	return s.repo.RejectAI(id)
}

// Review is the doctor-review transition. Approve publishes the AI
// draft untouched; disapprove replaces it with the doctor's own answer
// (required). Either way the verdict, reviewer and timestamp are
// recorded in a single UPDATE, so a later review silently supersedes
// an earlier one.
func (s *questionService) Review(identity *models.Identity, questionID int, action, comment, answer string) (*ReviewResult, error) {
	if identity == nil {
		return nil, ErrNotAuthenticated
	}
	if !authz.CanReview(identity.Role) {
		return nil, ErrNotAllowedReview
	}

	action = strings.ToLower(strings.TrimSpace(action))
	if action != "approve" && action != "disapprove" {
		return nil, ErrInvalidAction
	}

	q, err := s.repo.GetByID(questionID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}

	result := &ReviewResult{}
	doctorID := identity.ID
	reviewedAt := s.now()
	q.DoctorID = &doctorID
	q.DoctorReviewedAt = &reviewedAt
	q.Status = models.QuestionAnswered

	switch action {
	case "approve":
		// AI answer stays as the published answer
		q.AIApproved = true
		q.DoctorApprovalStatus = models.ApprovalApproved
		q.DoctorAnswer = nil
		q.DoctorComment = nil
		if c := strings.TrimSpace(comment); c != "" {
			q.DoctorComment = &c
		}
		result.Message = MsgReviewApproved
	case "disapprove":
		answer = strings.TrimSpace(answer)
		if answer == "" {
			// hard validation error, nothing is written
			return nil, ErrAnswerRequired
		}
		q.AIAnswer = nil
		q.AIGenerated = false
		q.AIApproved = false
		q.DoctorAnswer = &answer
		q.DoctorComment = nil
		q.DoctorApprovalStatus = models.ApprovalNotApproved
		result.Message = MsgReviewNotApproved
	}

	if err := s.repo.SaveReview(q); err != nil {
		return nil, err
	}

	s.emailAsker(q, result)
	return result, nil
}

// emailAsker notifies the original asker of the published answer.
// Email failure is a soft warning on the result, never an error.
func (s *questionService) emailAsker(q *models.Question, result *ReviewResult) {
	if s.emails == nil || q.UserID == nil {
		return
	}
	asker, err := s.userRepo.GetByID(*q.UserID)
	if err != nil || asker == nil {
		log.Printf("[questions][review] asker lookup failed for question=%d: %v", q.ID, err)
		result.EmailError = "could not notify the asker"
		return
	}
	if err := s.emails.SendAnswerEmail(asker.Email, asker.Name, q.Title, q.PublishedAnswer()); err != nil {
		log.Printf("[questions][review] answer email failed for question=%d: %v", q.ID, err)
		result.EmailError = "answer saved but the notification email failed"
		return
	}
	result.EmailSent = true
}
