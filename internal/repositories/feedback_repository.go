package repositories

import (
	"database/sql"
	"fmt"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
)

type FeedbackRepository interface {
	Create(f *models.Feedback) error
	List(limit, offset int) ([]*models.Feedback, error)
	GetCount() (int, error)
}

type feedbackRepository struct {
	DB *sql.DB
}

func NewFeedbackRepository(db *sql.DB) FeedbackRepository {
	return &feedbackRepository{DB: db}
}

func (r *feedbackRepository) Create(f *models.Feedback) error {
	const q = `
		INSERT INTO feedback (user_id, subject, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRow(q, f.UserID, f.Subject, f.Message).Scan(&f.ID, &f.CreatedAt); err != nil {
		return fmt.Errorf("feedback create: %w", err)
	}
	return nil
}

func (r *feedbackRepository) List(limit, offset int) ([]*models.Feedback, error) {
	const q = `
		SELECT id, user_id, subject, message, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*models.Feedback
	for rows.Next() {
		f := &models.Feedback{}
		if err := rows.Scan(&f.ID, &f.UserID, &f.Subject, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

func (r *feedbackRepository) GetCount() (int, error) {
	var c int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM feedback`).Scan(&c)
	return c, err
}
