package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
)

// ---- fakes

type fakeQuestionRepo struct {
	nextID    int
	questions map[int]*models.Question

	createErr   error
	draftErr    error
	reviewCalls int
	lastSaved   *models.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{nextID: 1, questions: map[int]*models.Question{}}
}

func (f *fakeQuestionRepo) Create(q *models.Question) error {
	if f.createErr != nil {
		return f.createErr
	}
	q.ID = f.nextID
	q.CreatedAt = time.Now()
	f.nextID++
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuestionRepo) GetByID(id int) (*models.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionRepo) ListAnswered(limit, offset int) ([]*models.Question, error) {
	return nil, nil
}
func (f *fakeQuestionRepo) ListByUser(userID int) ([]*models.Question, error) { return nil, nil }
func (f *fakeQuestionRepo) ListPendingReview(limit, offset int) ([]*models.Question, error) {
	return nil, nil
}
func (f *fakeQuestionRepo) Delete(id int) error { delete(f.questions, id); return nil }

func (f *fakeQuestionRepo) SetAIDraft(id int, answer string) error {
	if f.draftErr != nil {
		return f.draftErr
	}
	q := f.questions[id]
	q.AIAnswer = &answer
	q.AIGenerated = true
	q.AIApproved = false
	return nil
}

func (f *fakeQuestionRepo) ApproveAI(id int) error {
	q := f.questions[id]
	q.AIApproved = true
	q.Status = models.QuestionAnswered
	q.DoctorAnswer = nil
	return nil
}

func (f *fakeQuestionRepo) RejectAI(id int) error {
	q := f.questions[id]
	q.AIAnswer = nil
	q.AIGenerated = false
	q.AIApproved = false
	return nil
}

func (f *fakeQuestionRepo) SaveReview(q *models.Question) error {
	f.reviewCalls++
	cp := *q
	f.questions[q.ID] = &cp
	f.lastSaved = &cp
	return nil
}

func (f *fakeQuestionRepo) CountsByStatus() (map[models.QuestionStatus]int, error) {
	return nil, nil
}
func (f *fakeQuestionRepo) CountsByCategory() (map[string]int, error) { return nil, nil }

type fakeUserRepo struct {
	nextID  int
	users   map[int]*models.User
	chatIDs []int64

	getByEmailErr error
}

func (f *fakeUserRepo) Create(u *models.User) error {
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.users[u.ID] = u
	return nil
}
func (f *fakeUserRepo) GetByID(id int) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}
func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	if f.getByEmailErr != nil {
		return nil, f.getByEmailErr
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUserRepo) List(limit, offset int) ([]*models.User, error) { return nil, nil }
func (f *fakeUserRepo) Delete(id int) error { delete(f.users, id); return nil }
func (f *fakeUserRepo) SetVerification(userID int, code string, expiresAt time.Time) error {
	u := f.users[userID]
	u.VerificationCode = &code
	u.VerificationExpiresAt = &expiresAt
	return nil
}
func (f *fakeUserRepo) MarkVerified(userID int) error {
	u := f.users[userID]
	u.IsVerified = true
	u.VerificationCode = nil
	u.VerificationExpiresAt = nil
	return nil
}
func (f *fakeUserRepo) SetResetToken(userID int, token string, expiresAt time.Time) error {
	u := f.users[userID]
	u.ResetToken = &token
	u.ResetExpiresAt = &expiresAt
	return nil
}
func (f *fakeUserRepo) UpdatePassword(userID int, hash string) error {
	u := f.users[userID]
	u.PasswordHash = hash
	u.ResetToken = nil
	u.ResetExpiresAt = nil
	return nil
}
func (f *fakeUserRepo) GetCount() (int, error) { return len(f.users), nil }
func (f *fakeUserRepo) GetCountByRole(role authz.Role) (int, error) { return 0, nil }
func (f *fakeUserRepo) LinkTelegram(userID int, chatID int64) error { return nil }
func (f *fakeUserRepo) DoctorChatIDs() ([]int64, error) { return f.chatIDs, nil }

type fakeEmail struct {
	fail    bool
	answers []string
	resets  []string
}

func (f *fakeEmail) SendVerificationEmail(email, name, code string) error { return nil }

func (f *fakeEmail) SendPasswordResetEmail(email, code string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.resets = append(f.resets, code)
	return nil
}
func (f *fakeEmail) SendAnswerEmail(email, name, title, answer string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.answers = append(f.answers, answer)
	return nil
}

type fakeAI struct {
	draft string
	err   error
	calls int
}

func (f *fakeAI) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.draft, f.err
}

func newTestService() (*questionService, *fakeQuestionRepo, *fakeUserRepo, *fakeEmail, *fakeAI) {
	repo := newFakeQuestionRepo()
	users := &fakeUserRepo{users: map[int]*models.User{
		1: {ID: 1, Name: "Asker", Email: "asker@example.com", Role: authz.RoleUser, IsVerified: true},
	}}
	emails := &fakeEmail{}
	ai := &fakeAI{draft: "Drink fluids. Consult a licensed physician."}
	svc := NewQuestionService(repo, users, ai, emails, nil).(*questionService)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, users, emails, ai
}

func asker() *models.Identity {
	return &models.Identity{ID: 1, Role: authz.RoleUser, Name: "Asker"}
}

func doctor() *models.Identity {
	return &models.Identity{ID: 7, Role: authz.RoleDoctor, Name: "Dr. X"}
}

func validInput() SubmitInput {
	return SubmitInput{
		Title:    "Persistent headache",
		Body:     "I have had a headache for three days now.",
		Category: "neurology",
	}
}

// ---- submission validation

func TestSubmitRequiresAuthentication(t *testing.T) {
	svc, repo, _, _, ai := newTestService()

	for _, identity := range []*models.Identity{nil, {ID: 0, Role: authz.RoleUser}} {
		_, err := svc.Submit(context.Background(), identity, validInput())
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Fatalf("identity=%v: want ErrNotAuthenticated, got %v", identity, err)
		}
	}
	if len(repo.questions) != 0 {
		t.Fatalf("nothing should be persisted, got %d questions", len(repo.questions))
	}
	if ai.calls != 0 {
		t.Fatalf("ai should not be called for anonymous submits")
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitInput)
		want   error
	}{
		{"empty title", func(in *SubmitInput) { in.Title = "  " }, ErrMissingFields},
		{"empty body", func(in *SubmitInput) { in.Body = "" }, ErrMissingFields},
		{"empty category", func(in *SubmitInput) { in.Category = "" }, ErrMissingFields},
		{"title 256 runes", func(in *SubmitInput) { in.Title = strings.Repeat("ä", 256) }, ErrTitleTooLong},
		{"body 9 runes", func(in *SubmitInput) { in.Body = "123456789" }, ErrBodyTooShort},
		// missing fields outrank length checks
		{"empty category with long title", func(in *SubmitInput) {
			in.Category = ""
			in.Title = strings.Repeat("x", 300)
		}, ErrMissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, _, _ := newTestService()
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Submit(context.Background(), asker(), in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
			if len(repo.questions) != 0 {
				t.Fatalf("invalid input must not be persisted")
			}
		})
	}
}

func TestSubmitBoundaryLengthsAccepted(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	in := validInput()
	in.Title = strings.Repeat("ä", 255)
	in.Body = strings.Repeat("b", 10)
	res, err := svc.Submit(context.Background(), asker(), in)
	if err != nil {
		t.Fatalf("boundary lengths should pass: %v", err)
	}
	if res.Question.ID == 0 {
		t.Fatalf("question should be persisted")
	}
}

// ---- AI draft attempt

func TestSubmitWithAIDraft(t *testing.T) {
	svc, repo, _, _, _ := newTestService()

	res, err := svc.Submit(context.Background(), asker(), validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.AIDrafted {
		t.Fatalf("expected an AI draft")
	}
	if res.Message != MsgAIDraftPending {
		t.Fatalf("message = %q", res.Message)
	}

	stored := repo.questions[res.Question.ID]
	if stored.AIAnswer == nil || !stored.AIGenerated {
		t.Fatalf("draft not stored: %+v", stored)
	}
	if stored.AIApproved {
		t.Fatalf("fresh draft must not be pre-approved")
	}
	if stored.Status != models.QuestionPending {
		t.Fatalf("drafted question stays pending, got %s", stored.Status)
	}
}

func TestSubmitSucceedsWhenAIFails(t *testing.T) {
	svc, repo, _, _, ai := newTestService()
	ai.err = errors.New("upstream 500")

	res, err := svc.Submit(context.Background(), asker(), validInput())
	if err != nil {
		t.Fatalf("ai failure must not fail submission: %v", err)
	}
	if res.AIDrafted {
		t.Fatalf("no draft expected")
	}
	if res.Message != MsgExpertWillAnswer {
		t.Fatalf("message = %q", res.Message)
	}
	stored := repo.questions[res.Question.ID]
	if stored == nil || stored.AIAnswer != nil || stored.AIGenerated {
		t.Fatalf("question should be stored without a draft: %+v", stored)
	}
}

func TestSubmitSucceedsWhenAIReturnsBlank(t *testing.T) {
	svc, _, _, _, ai := newTestService()
	ai.draft = "   "

	res, err := svc.Submit(context.Background(), asker(), validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.AIDrafted || res.Message != MsgExpertWillAnswer {
		t.Fatalf("blank draft should count as no draft, got %+v", res)
	}
}

func TestBuildPromptIncludesIntakeDetails(t *testing.T) {
	age := 42
	q := &models.Question{
		Title:    "Chest pain",
		Body:     "Sharp pain when breathing in.",
		Category: "cardiology",
		Age:      &age,
		Gender:   "male",
	}
	p := buildPrompt(q)
	for _, want := range []string{"Chest pain", "Sharp pain", "cardiology", "42", "male", "disclaimer"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

// ---- doctor review

func submitOne(t *testing.T, svc *questionService) int {
	t.Helper()
	res, err := svc.Submit(context.Background(), asker(), validInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return res.Question.ID
}

func TestReviewApprovePublishesAIAnswer(t *testing.T) {
	svc, repo, _, emails, _ := newTestService()
	id := submitOne(t, svc)

	res, err := svc.Review(doctor(), id, "approve", "looks right", "")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if res.Message != MsgReviewApproved {
		t.Fatalf("message = %q", res.Message)
	}
	if !res.EmailSent || res.EmailError != "" {
		t.Fatalf("email flags = %+v", res)
	}

	q := repo.questions[id]
	if !q.AIApproved || q.Status != models.QuestionAnswered {
		t.Fatalf("approve should publish: %+v", q)
	}
	if q.DoctorApprovalStatus != models.ApprovalApproved {
		t.Fatalf("approval status = %s", q.DoctorApprovalStatus)
	}
	if q.DoctorAnswer != nil {
		t.Fatalf("approve must not set a doctor answer")
	}
	if q.DoctorID == nil || *q.DoctorID != 7 || q.DoctorReviewedAt == nil {
		t.Fatalf("reviewer not recorded: %+v", q)
	}
	if got := q.PublishedAnswer(); !strings.Contains(got, "physician") {
		t.Fatalf("published answer = %q", got)
	}
	if len(emails.answers) != 1 {
		t.Fatalf("asker should get one email, got %d", len(emails.answers))
	}
}

func TestReviewDisapproveReplacesAIAnswer(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	id := submitOne(t, svc)

	res, err := svc.Review(doctor(), id, "disapprove", "", "Please see a cardiologist in person.")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if res.Message != MsgReviewNotApproved {
		t.Fatalf("message = %q", res.Message)
	}

	q := repo.questions[id]
	if q.AIAnswer != nil || q.AIGenerated || q.AIApproved {
		t.Fatalf("disapprove must clear AI fields: %+v", q)
	}
	if q.DoctorAnswer == nil || *q.DoctorAnswer != "Please see a cardiologist in person." {
		t.Fatalf("doctor answer not stored: %+v", q)
	}
	if q.Status != models.QuestionAnswered {
		t.Fatalf("status = %s", q.Status)
	}
	if q.DoctorApprovalStatus != models.ApprovalNotApproved {
		t.Fatalf("approval status = %s", q.DoctorApprovalStatus)
	}
	if got := q.PublishedAnswer(); got != "Please see a cardiologist in person." {
		t.Fatalf("published answer = %q", got)
	}
}

func TestReviewDisapproveRequiresAnswer(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	id := submitOne(t, svc)
	before := *repo.questions[id]

	_, err := svc.Review(doctor(), id, "disapprove", "not good", "   ")
	if !errors.Is(err, ErrAnswerRequired) {
		t.Fatalf("want ErrAnswerRequired, got %v", err)
	}
	if repo.reviewCalls != 0 {
		t.Fatalf("nothing may be written on a failed validation")
	}
	after := *repo.questions[id]
	if before.Status != after.Status || before.AIAnswer == nil && after.AIAnswer != nil {
		t.Fatalf("question state changed: before=%+v after=%+v", before, after)
	}
}

func TestReviewInvalidAction(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	id := submitOne(t, svc)

	_, err := svc.Review(doctor(), id, "maybe", "", "")
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("want ErrInvalidAction, got %v", err)
	}
	if repo.reviewCalls != 0 {
		t.Fatalf("invalid action must not write")
	}
}

func TestReviewRejectsNonReviewers(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	id := submitOne(t, svc)

	_, err := svc.Review(asker(), id, "approve", "", "")
	if !errors.Is(err, ErrNotAllowedReview) {
		t.Fatalf("want ErrNotAllowedReview, got %v", err)
	}
	_, err = svc.Review(nil, id, "approve", "", "")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("want ErrNotAuthenticated, got %v", err)
	}
}

func TestReviewUnknownQuestion(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.Review(doctor(), 999, "approve", "", "")
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("want ErrQuestionNotFound, got %v", err)
	}
}

// A second review replaces the first verdict wholesale.
func TestReviewLastWriteWins(t *testing.T) {
	svc, repo, _, _, _ := newTestService()
	id := submitOne(t, svc)

	if _, err := svc.Review(doctor(), id, "approve", "", ""); err != nil {
		t.Fatalf("first review: %v", err)
	}
	second := &models.Identity{ID: 9, Role: authz.RoleAdmin, Name: "Admin"}
	if _, err := svc.Review(second, id, "disapprove", "", "Actually, rest and hydration."); err != nil {
		t.Fatalf("second review: %v", err)
	}

	q := repo.questions[id]
	if q.AIApproved || q.AIAnswer != nil {
		t.Fatalf("second verdict should supersede the first: %+v", q)
	}
	if q.DoctorID == nil || *q.DoctorID != 9 {
		t.Fatalf("reviewer should be the later one: %+v", q)
	}
	if got := q.PublishedAnswer(); got != "Actually, rest and hydration." {
		t.Fatalf("published answer = %q", got)
	}
	if repo.reviewCalls != 2 {
		t.Fatalf("each review is one write, got %d", repo.reviewCalls)
	}
}

func TestReviewEmailFailureIsSoft(t *testing.T) {
	svc, _, _, emails, _ := newTestService()
	emails.fail = true
	id := submitOne(t, svc)

	res, err := svc.Review(doctor(), id, "approve", "", "")
	if err != nil {
		t.Fatalf("email failure must not fail the review: %v", err)
	}
	if res.EmailSent {
		t.Fatalf("email was not sent")
	}
	if res.EmailError == "" {
		t.Fatalf("expected a soft email error on the result")
	}
}
