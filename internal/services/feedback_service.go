package services

import (
	"errors"
	"strings"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/repositories"
)

var ErrFeedbackEmpty = errors.New("subject and message are required")

type FeedbackService struct {
	repo repositories.FeedbackRepository
}

func NewFeedbackService(repo repositories.FeedbackRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

func (s *FeedbackService) Submit(userID int, subject, message string) (*models.Feedback, error) {
	if userID <= 0 {
		return nil, ErrNotAuthenticated
	}
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	if subject == "" || message == "" {
		return nil, ErrFeedbackEmpty
	}
	f := &models.Feedback{UserID: userID, Subject: subject, Message: message}
	if err := s.repo.Create(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FeedbackService) List(limit, offset int) ([]*models.Feedback, error) {
	return s.repo.List(limit, offset)
}
