package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendVerificationEmail(email, name, code string) error
	SendPasswordResetEmail(email, code string) error
	SendAnswerEmail(email, name, questionTitle, answer string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendVerificationEmail(email, name, code string) error {
	body := fmt.Sprintf(`
		<h2>Welcome to Medical Q&amp;A, %s!</h2>
		<p>Use the following code to verify your email address:</p>
		<h1 style="letter-spacing:4px">%s</h1>
		<p>The code expires in one hour.</p>
		<p>Best regards,<br>The Medical Q&amp;A Team</p>
	`, name, code)

	if err := s.send(email, "Verify your email", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(email, code string) error {
	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>We received a request to reset the password for your account.</p>
		<p>Use the following code to reset your password: <strong>%s</strong></p>
		<p>The code expires in one hour. If you did not request this change, you can ignore this email.</p>
	`, code)

	if err := s.send(email, "Password reset request", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (s *emailService) SendAnswerEmail(email, name, questionTitle, answer string) error {
	body := fmt.Sprintf(`
		<h3>Your question has been answered</h3>
		<p>Hello %s,</p>
		<p>A doctor has reviewed your question <strong>%s</strong>:</p>
		<blockquote>%s</blockquote>
		<p>This information is not a substitute for an in-person consultation.</p>
	`, name, questionTitle, answer)

	if err := s.send(email, "Your question has been answered", body); err != nil {
		return fmt.Errorf("failed to send answer email: %w", err)
	}
	return nil
}
