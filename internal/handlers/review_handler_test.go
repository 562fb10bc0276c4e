package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/middleware"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/security"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/services"
)

var testCookieKey = bytes.Repeat([]byte{0x42}, security.KeySize)

// fakeQuestionService lets each test script the outcome of the review
// endpoints.
type fakeQuestionService struct {
	reviewResult *services.ReviewResult
	reviewErr    error
	approveErr   error
	rejectErr    error
	submitResult *services.SubmitResult
	submitErr    error

	gotQuestionID int
	gotAction     string
	gotAnswer     string
	gotIdentity   *models.Identity
	approveCalls  int
	rejectCalls   int
}

func (f *fakeQuestionService) Submit(ctx context.Context, identity *models.Identity, in services.SubmitInput) (*services.SubmitResult, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResult, nil
}
func (f *fakeQuestionService) GetByID(id int) (*models.Question, error) { return nil, nil }
func (f *fakeQuestionService) Forum(limit, offset int) ([]*models.Question, error) { return nil, nil }
func (f *fakeQuestionService) MyQuestions(userID int) ([]*models.Question, error) {
	return nil, nil
}
func (f *fakeQuestionService) PendingReview(limit, offset int) ([]*models.Question, error) {
	return nil, nil
}

func (f *fakeQuestionService) ApproveAI(id int) error {
	f.approveCalls++
	f.gotQuestionID = id
	return f.approveErr
}

func (f *fakeQuestionService) RejectAI(id int) error {
	f.rejectCalls++
	f.gotQuestionID = id
	return f.rejectErr
}

func (f *fakeQuestionService) Review(identity *models.Identity, questionID int, action, comment, answer string) (*services.ReviewResult, error) {
	f.gotIdentity = identity
	f.gotQuestionID = questionID
	f.gotAction = action
	f.gotAnswer = answer
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	return f.reviewResult, nil
}

func newReviewRouter(svc *fakeQuestionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Identity(testCookieKey))
	h := NewReviewHandler(svc)
	r.POST("/review", h.Review)
	r.POST("/review/ai-approval", h.AIApproval)
	return r
}

func identityCookie(t *testing.T, id *models.Identity) *http.Cookie {
	t.Helper()
	raw, err := security.Encode(*id, testCookieKey)
	if err != nil {
		t.Fatalf("encode identity: %v", err)
	}
	return &http.Cookie{Name: middleware.CookieName, Value: raw}
}

func postReview(t *testing.T, r *gin.Engine, body map[string]any, identity *models.Identity) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/review", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if identity != nil {
		req.AddCookie(identityCookie(t, identity))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad json %q: %v", w.Body.String(), err)
	}
	return out
}

func TestReviewApproveSuccess(t *testing.T) {
	svc := &fakeQuestionService{reviewResult: &services.ReviewResult{
		Message:   services.MsgReviewApproved,
		EmailSent: true,
	}}
	r := newReviewRouter(svc)
	doc := &models.Identity{ID: 7, Role: authz.RoleDoctor, Name: "Dr. X"}

	w := postReview(t, r, map[string]any{"question_id": 12, "action": "approve"}, doc)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	out := decodeJSON(t, w)
	if out["success"] != true {
		t.Fatalf("success = %v", out["success"])
	}
	if out["message"] != services.MsgReviewApproved {
		t.Fatalf("message = %v", out["message"])
	}
	if out["email_sent"] != true || out["email_message"] == nil {
		t.Fatalf("email flags missing: %v", out)
	}
	if svc.gotQuestionID != 12 || svc.gotAction != "approve" {
		t.Fatalf("service got id=%d action=%q", svc.gotQuestionID, svc.gotAction)
	}
	if svc.gotIdentity == nil || svc.gotIdentity.ID != 7 {
		t.Fatalf("identity not forwarded: %+v", svc.gotIdentity)
	}
}

func TestReviewEmailFailureReported(t *testing.T) {
	svc := &fakeQuestionService{reviewResult: &services.ReviewResult{
		Message:    services.MsgReviewNotApproved,
		EmailError: "answer saved but the notification email failed",
	}}
	r := newReviewRouter(svc)
	doc := &models.Identity{ID: 7, Role: authz.RoleDoctor}

	w := postReview(t, r, map[string]any{
		"question_id":   3,
		"action":        "disapprove",
		"doctor_answer": "Rest and fluids.",
	}, doc)
	out := decodeJSON(t, w)
	if out["success"] != true {
		t.Fatalf("the review itself succeeded: %v", out)
	}
	if out["email_sent"] != false || out["email_error"] == nil {
		t.Fatalf("email failure should surface as a soft flag: %v", out)
	}
	if svc.gotAnswer != "Rest and fluids." {
		t.Fatalf("doctor answer not forwarded: %q", svc.gotAnswer)
	}
}

func TestReviewErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing answer", services.ErrAnswerRequired, http.StatusBadRequest},
		{"bad action", services.ErrInvalidAction, http.StatusBadRequest},
		{"unknown question", services.ErrQuestionNotFound, http.StatusNotFound},
		{"not a reviewer", services.ErrNotAllowedReview, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeQuestionService{reviewErr: tt.err}
			r := newReviewRouter(svc)
			doc := &models.Identity{ID: 7, Role: authz.RoleDoctor}

			w := postReview(t, r, map[string]any{"question_id": 1, "action": "disapprove"}, doc)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			out := decodeJSON(t, w)
			if out["success"] != false || out["error"] == nil {
				t.Fatalf("error body = %v", out)
			}
		})
	}
}

func TestReviewRejectsMalformedBody(t *testing.T) {
	svc := &fakeQuestionService{}
	r := newReviewRouter(svc)
	doc := &models.Identity{ID: 7, Role: authz.RoleDoctor}

	// missing the required action field
	w := postReview(t, r, map[string]any{"question_id": 1}, doc)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.gotQuestionID != 0 {
		t.Fatalf("service must not be called on a bind failure")
	}
}

func TestAIApprovalRedirects(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		approveCalls int
		rejectCalls  int
	}{
		{"approve", url.Values{"question_id": {"5"}, "action": {"approve"}}, 1, 0},
		{"anything else rejects", url.Values{"question_id": {"5"}, "action": {"reject"}}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeQuestionService{}
			r := newReviewRouter(svc)
			admin := &models.Identity{ID: 1, Role: authz.RoleAdmin}

			req := httptest.NewRequest(http.MethodPost, "/review/ai-approval", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.AddCookie(identityCookie(t, admin))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusSeeOther {
				t.Fatalf("status = %d", w.Code)
			}
			if loc := w.Header().Get("Location"); loc != "/review/pending" {
				t.Fatalf("location = %q", loc)
			}
			if svc.approveCalls != tt.approveCalls || svc.rejectCalls != tt.rejectCalls {
				t.Fatalf("calls approve=%d reject=%d", svc.approveCalls, svc.rejectCalls)
			}
		})
	}
}

func TestAIApprovalInvalidID(t *testing.T) {
	svc := &fakeQuestionService{}
	r := newReviewRouter(svc)
	admin := &models.Identity{ID: 1, Role: authz.RoleAdmin}

	form := url.Values{"question_id": {"zero"}, "action": {"approve"}}
	req := httptest.NewRequest(http.MethodPost, "/review/ai-approval", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(identityCookie(t, admin))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.approveCalls != 0 && svc.rejectCalls != 0 {
		t.Fatalf("service must not be called for a bad id")
	}
}
