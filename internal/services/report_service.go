package services

import (
	"time"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/repositories"
)

// Summary feeds the admin dashboard widgets and the PDF export.
type Summary struct {
	GeneratedAt         time.Time                     `json:"generated_at"`
	TotalUsers          int                           `json:"total_users"`
	UsersByRole         map[authz.Role]int            `json:"users_by_role"`
	QuestionsByStatus   map[models.QuestionStatus]int `json:"questions_by_status"`
	QuestionsByCategory map[string]int                `json:"questions_by_category"`
	FeedbackCount       int                           `json:"feedback_count"`
}

type ReportService struct {
	users     repositories.UserRepository
	questions repositories.QuestionRepository
	feedback  repositories.FeedbackRepository
}

func NewReportService(users repositories.UserRepository, questions repositories.QuestionRepository, feedback repositories.FeedbackRepository) *ReportService {
	return &ReportService{users: users, questions: questions, feedback: feedback}
}

func (s *ReportService) GetSummary() (*Summary, error) {
	total, err := s.users.GetCount()
	if err != nil {
		return nil, err
	}

	byRole := map[authz.Role]int{}
	for _, role := range []authz.Role{authz.RoleUser, authz.RoleDoctor, authz.RoleAdmin} {
		c, err := s.users.GetCountByRole(role)
		if err != nil {
			return nil, err
		}
		byRole[role] = c
	}

	byStatus, err := s.questions.CountsByStatus()
	if err != nil {
		return nil, err
	}
	byCategory, err := s.questions.CountsByCategory()
	if err != nil {
		return nil, err
	}
	fbCount, err := s.feedback.GetCount()
	if err != nil {
		return nil, err
	}

	return &Summary{
		GeneratedAt:         time.Now(),
		TotalUsers:          total,
		UsersByRole:         byRole,
		QuestionsByStatus:   byStatus,
		QuestionsByCategory: byCategory,
		FeedbackCount:       fbCount,
	}, nil
}
