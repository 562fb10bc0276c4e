package models

import "time"

type QuestionStatus string

const (
	QuestionPending  QuestionStatus = "pending"
	QuestionAnswered QuestionStatus = "answered"
	QuestionClosed   QuestionStatus = "closed"
)

// ApprovalStatus is the tri-state doctor verdict, separate from the
// AIApproved boolean used by the admin quick-approve path.
type ApprovalStatus string

const (
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalApproved    ApprovalStatus = "approved"
	ApprovalNotApproved ApprovalStatus = "not_approved"
)

type Question struct {
	ID       int    `json:"id"`
	UserID   *int   `json:"user_id,omitempty"` // nil once the asker is deleted or hidden
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`

	// optional intake fields from the submission form
	Urgency   string `json:"urgency,omitempty"`
	Age       *int   `json:"age,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Anonymous bool   `json:"anonymous"`
	FollowUp  string `json:"follow_up,omitempty"`

	Status    QuestionStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`

	AIAnswer    *string `json:"ai_answer,omitempty"`
	AIGenerated bool    `json:"ai_generated"`
	AIApproved  bool    `json:"ai_approved"`

	DoctorID             *int           `json:"doctor_id,omitempty"`
	DoctorApprovalStatus ApprovalStatus `json:"doctor_approval_status"`
	DoctorComment        *string        `json:"doctor_comment,omitempty"`
	DoctorAnswer         *string        `json:"doctor_answer,omitempty"`
	DoctorReviewedAt     *time.Time     `json:"doctor_reviewed_at,omitempty"`
}

// PublishedAnswer returns the answer a forum visitor is allowed to see:
// the AI draft once it is approved, or the doctor's own answer. Exactly
// one of the two paths is published at any time.
func (q *Question) PublishedAnswer() string {
	if q.DoctorAnswer != nil && *q.DoctorAnswer != "" {
		return *q.DoctorAnswer
	}
	if q.AIApproved && q.AIAnswer != nil {
		return *q.AIAnswer
	}
	return ""
}
