package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/repositories"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotVerified        = errors.New("email not verified")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type UserService interface {
	Register(name, email, password string, role authz.Role) (*models.User, error)
	VerifyEmail(email, code string) error
	ResendCode(email string) error
	Login(email, password string) (*models.User, error)
	ForgotPassword(email string) error
	ResetPassword(email, token, newPassword string) error

	GetUserByID(id int) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers(limit, offset int) ([]*models.User, error)
	DeleteUser(id int) error
	GetUserCount() (int, error)
	GetUserCountByRole(role authz.Role) (int, error)

	LinkTelegram(userID int, chatID int64) error
}

type userService struct {
	repo   repositories.UserRepository
	emails EmailService
	auth   AuthService
	tokens TokenService
	now    func() time.Time
}

func NewUserService(repo repositories.UserRepository, emails EmailService, auth AuthService, tokens TokenService) UserService {
	return &userService{
		repo:   repo,
		emails: emails,
		auth:   auth,
		tokens: tokens,
		now:    time.Now,
	}
}

// Register creates an unverified account. Role is fixed at signup and
// only user/doctor are self-assignable; admin accounts are provisioned
// out of band.
func (s *userService) Register(name, email, password string, role authz.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required")
	}
	if len(strings.TrimSpace(password)) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}
	if role != authz.RoleUser && role != authz.RoleDoctor {
		return nil, fmt.Errorf("role must be user or doctor")
	}

	if existing, err := s.repo.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	code, err := s.tokens.NumericCode()
	if err != nil {
		return nil, err
	}
	expires := s.tokens.CodeExpiry(s.now())

	user := &models.User{
		Name:                  name,
		Email:                 email,
		PasswordHash:          hash,
		Role:                  role,
		IsVerified:            false,
		VerificationCode:      &code,
		VerificationExpiresAt: &expires,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	if s.emails != nil {
		if err := s.emails.SendVerificationEmail(user.Email, user.Name, code); err != nil {
			// warn but do not fail registration; the code can be resent
			log.Printf("[users][register] warning: failed to send verification email to %s: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) VerifyEmail(email, code string) error {
	user, err := s.repo.GetByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrCodeInvalid // don't reveal whether the account exists
	}
	if user.IsVerified {
		return nil
	}
	if user.VerificationCode == nil || user.VerificationExpiresAt == nil {
		return ErrCodeInvalid
	}
	if CodeExpired(s.now(), *user.VerificationExpiresAt) {
		return ErrCodeExpired
	}
	if strings.TrimSpace(code) != *user.VerificationCode {
		return ErrCodeInvalid
	}
	return s.repo.MarkVerified(user.ID)
}

func (s *userService) ResendCode(email string) error {
	user, err := s.repo.GetByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return err
	}
	if user == nil || user.IsVerified {
		// silent for unknown/already-verified accounts
		return nil
	}
	code, err := s.tokens.NumericCode()
	if err != nil {
		return err
	}
	if err := s.repo.SetVerification(user.ID, code, s.tokens.CodeExpiry(s.now())); err != nil {
		return err
	}
	if s.emails != nil {
		if err := s.emails.SendVerificationEmail(user.Email, user.Name, code); err != nil {
			log.Printf("[users][resend] warning: failed to send verification email to %s: %v", user.Email, err)
		}
	}
	return nil
}

func (s *userService) Login(email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		// a storage failure is not a credential rejection
		return nil, fmt.Errorf("login lookup: %w", err)
	}
	if user == nil || strings.TrimSpace(user.PasswordHash) == "" {
		return nil, ErrInvalidCredentials
	}
	if !s.auth.CheckPassword(strings.TrimSpace(password), user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}
	return user, nil
}

func (s *userService) ForgotPassword(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}
	user, err := s.repo.GetByEmail(email)
	if err != nil || user == nil {
		// don't leak existence
		log.Printf("[password-reset] request for %q: user not found or error: %v", email, err)
		return nil
	}

	token, err := s.tokens.AlphanumericCode()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(user.ID, token, s.tokens.CodeExpiry(s.now())); err != nil {
		return err
	}
	if s.emails != nil {
		if err := s.emails.SendPasswordResetEmail(user.Email, token); err != nil {
			log.Printf("[password-reset] failed to send email to %s: %v", user.Email, err)
		}
	}
	return nil
}

func (s *userService) ResetPassword(email, token, newPassword string) error {
	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if token == "" || newPassword == "" {
		return fmt.Errorf("token and password are required")
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	user, err := s.repo.GetByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return err
	}
	if user == nil || user.ResetToken == nil || user.ResetExpiresAt == nil {
		return ErrCodeInvalid
	}
	if CodeExpired(s.now(), *user.ResetExpiresAt) {
		return ErrCodeExpired
	}
	if token != *user.ResetToken {
		return ErrCodeInvalid
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	// UpdatePassword clears the token: single use
	return s.repo.UpdatePassword(user.ID, hash)
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(email)
}

func (s *userService) ListUsers(limit, offset int) ([]*models.User, error) {
	return s.repo.List(limit, offset)
}

func (s *userService) DeleteUser(id int) error {
	return s.repo.Delete(id)
}

func (s *userService) GetUserCount() (int, error) {
	return s.repo.GetCount()
}

func (s *userService) GetUserCountByRole(role authz.Role) (int, error) {
	return s.repo.GetCountByRole(role)
}

func (s *userService) LinkTelegram(userID int, chatID int64) error {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.repo.LinkTelegram(userID, chatID)
}
