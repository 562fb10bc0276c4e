package repositories

import (
	"database/sql"
	"fmt"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
)

type QuestionRepository interface {
	Create(q *models.Question) error
	GetByID(id int) (*models.Question, error)
	ListAnswered(limit, offset int) ([]*models.Question, error)
	ListByUser(userID int) ([]*models.Question, error)
	ListPendingReview(limit, offset int) ([]*models.Question, error)
	Delete(id int) error

	// AI draft lifecycle
	SetAIDraft(id int, answer string) error
	ApproveAI(id int) error
	RejectAI(id int) error

	// doctor review: one UPDATE per review, last write wins
	SaveReview(q *models.Question) error

	CountsByStatus() (map[models.QuestionStatus]int, error)
	CountsByCategory() (map[string]int, error)
}

type questionRepository struct {
	DB *sql.DB
}

func NewQuestionRepository(db *sql.DB) QuestionRepository {
	return &questionRepository{DB: db}
}

const questionColumns = `
	id, user_id, title, body, category,
	urgency, age, gender, anonymous, follow_up,
	status, created_at,
	ai_answer, ai_generated, ai_approved,
	doctor_id, doctor_approval_status, doctor_comment, doctor_answer, doctor_reviewed_at
`

func (r *questionRepository) Create(q *models.Question) error {
	const stmt = `
		INSERT INTO questions (
			user_id, title, body, category,
			urgency, age, gender, anonymous, follow_up,
			status
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(stmt,
		q.UserID,
		q.Title,
		q.Body,
		q.Category,
		q.Urgency,
		q.Age,
		q.Gender,
		q.Anonymous,
		q.FollowUp,
		string(q.Status),
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return fmt.Errorf("question create: %w", err)
	}
	return nil
}

func scanQuestion(scan func(dest ...any) error) (*models.Question, error) {
	q := &models.Question{}
	var (
		userID     sql.NullInt64
		urgency    sql.NullString
		age        sql.NullInt64
		gender     sql.NullString
		followUp   sql.NullString
		status     string
		aiAnswer   sql.NullString
		doctorID   sql.NullInt64
		approval   sql.NullString
		comment    sql.NullString
		answer     sql.NullString
		reviewedAt sql.NullTime
	)
	err := scan(
		&q.ID, &userID, &q.Title, &q.Body, &q.Category,
		&urgency, &age, &gender, &q.Anonymous, &followUp,
		&status, &q.CreatedAt,
		&aiAnswer, &q.AIGenerated, &q.AIApproved,
		&doctorID, &approval, &comment, &answer, &reviewedAt,
	)
	if err != nil {
		return nil, err
	}
	q.Status = models.QuestionStatus(status)
	if userID.Valid {
		id := int(userID.Int64)
		q.UserID = &id
	}
	if urgency.Valid {
		q.Urgency = urgency.String
	}
	if age.Valid {
		a := int(age.Int64)
		q.Age = &a
	}
	if gender.Valid {
		q.Gender = gender.String
	}
	if followUp.Valid {
		q.FollowUp = followUp.String
	}
	if aiAnswer.Valid {
		s := aiAnswer.String
		q.AIAnswer = &s
	}
	if doctorID.Valid {
		id := int(doctorID.Int64)
		q.DoctorID = &id
	}
	q.DoctorApprovalStatus = models.ApprovalPending
	if approval.Valid && approval.String != "" {
		q.DoctorApprovalStatus = models.ApprovalStatus(approval.String)
	}
	if comment.Valid {
		s := comment.String
		q.DoctorComment = &s
	}
	if answer.Valid {
		s := answer.String
		q.DoctorAnswer = &s
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		q.DoctorReviewedAt = &t
	}
	return q, nil
}

func (r *questionRepository) GetByID(id int) (*models.Question, error) {
	stmt := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	row := r.DB.QueryRow(stmt, id)
	q, err := scanQuestion(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return q, err
}

func (r *questionRepository) list(stmt string, args ...any) ([]*models.Question, error) {
	rows, err := r.DB.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*models.Question
	for rows.Next() {
		q, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, q)
	}
	return res, rows.Err()
}

func (r *questionRepository) ListAnswered(limit, offset int) ([]*models.Question, error) {
	stmt := `SELECT ` + questionColumns + `
		FROM questions
		WHERE status = 'answered'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	return r.list(stmt, limit, offset)
}

func (r *questionRepository) ListByUser(userID int) ([]*models.Question, error) {
	stmt := `SELECT ` + questionColumns + `
		FROM questions
		WHERE user_id = $1
		ORDER BY created_at DESC`
	return r.list(stmt, userID)
}

// ListPendingReview — the doctor work queue: pending questions, AI
// drafts first so the cheap approvals surface on top.
func (r *questionRepository) ListPendingReview(limit, offset int) ([]*models.Question, error) {
	stmt := `SELECT ` + questionColumns + `
		FROM questions
		WHERE status = 'pending'
		ORDER BY ai_generated DESC, created_at ASC
		LIMIT $1 OFFSET $2`
	return r.list(stmt, limit, offset)
}

func (r *questionRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM questions WHERE id=$1`, id)
	return err
}

func (r *questionRepository) SetAIDraft(id int, answer string) error {
	const stmt = `
		UPDATE questions
		SET ai_answer=$1, ai_generated=TRUE, ai_approved=FALSE
		WHERE id=$2
	`
	_, err := r.DB.Exec(stmt, answer, id)
	return err
}

// ApproveAI — quick-approve path: publishes the AI draft untouched.
func (r *questionRepository) ApproveAI(id int) error {
	const stmt = `
		UPDATE questions
		SET ai_approved=TRUE, status='answered', doctor_answer=NULL
		WHERE id=$1
	`
	_, err := r.DB.Exec(stmt, id)
	return err
}

// RejectAI — quick-reject path: drops the draft, question falls back
// to the manual queue.
func (r *questionRepository) RejectAI(id int) error {
	const stmt = `
		UPDATE questions
		SET ai_answer=NULL, ai_generated=FALSE, ai_approved=FALSE
		WHERE id=$1
	`
	_, err := r.DB.Exec(stmt, id)
	return err
}

func (r *questionRepository) SaveReview(q *models.Question) error {
	const stmt = `
		UPDATE questions
		SET status=$1,
		    ai_answer=$2, ai_generated=$3, ai_approved=$4,
		    doctor_id=$5, doctor_approval_status=$6,
		    doctor_comment=$7, doctor_answer=$8, doctor_reviewed_at=$9
		WHERE id=$10
	`
	_, err := r.DB.Exec(stmt,
		string(q.Status),
		q.AIAnswer, q.AIGenerated, q.AIApproved,
		q.DoctorID, string(q.DoctorApprovalStatus),
		q.DoctorComment, q.DoctorAnswer, q.DoctorReviewedAt,
		q.ID,
	)
	return err
}

func (r *questionRepository) CountsByStatus() (map[models.QuestionStatus]int, error) {
	rows, err := r.DB.Query(`SELECT status, COUNT(*) FROM questions GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := map[models.QuestionStatus]int{}
	for rows.Next() {
		var s string
		var c int
		if err := rows.Scan(&s, &c); err != nil {
			return nil, err
		}
		res[models.QuestionStatus(s)] = c
	}
	return res, rows.Err()
}

func (r *questionRepository) CountsByCategory() (map[string]int, error) {
	rows, err := r.DB.Query(`SELECT category, COUNT(*) FROM questions GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := map[string]int{}
	for rows.Next() {
		var cat string
		var c int
		if err := rows.Scan(&cat, &c); err != nil {
			return nil, err
		}
		res[cat] = c
	}
	return res, rows.Err()
}
