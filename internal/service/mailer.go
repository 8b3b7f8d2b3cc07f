package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/gommon/log"

	"furnit-storefront/internal/assertion"
	"furnit-storefront/internal/client"
	"furnit-storefront/internal/email"
	"furnit-storefront/internal/model"
	"furnit-storefront/internal/repository"
	"furnit-storefront/internal/token"
)

const MinPasswordLength = 6

type MailerErrorKind string

const (
	KindMissingField          MailerErrorKind = "missing-field"
	KindUserNotFound          MailerErrorKind = "user-not-found"
	KindInvalidOrExpiredToken MailerErrorKind = "invalid-or-expired-token"
	KindTokenExpired          MailerErrorKind = "token-expired"
	KindPasswordTooShort      MailerErrorKind = "password-too-short"
	KindMailTransportFailure  MailerErrorKind = "mail-transport-failure"
	KindInvalidAssertion      MailerErrorKind = "invalid-assertion"
)

const (
	MsgResetMasked        = "If an account exists with this email, a password reset link has been sent."
	MsgResetSent          = "Password reset email sent successfully"
	MsgNoAccount          = "No account found with this email address. Please check your email or sign up."
	MsgInvalidToken       = "Invalid or expired reset token"
	MsgTokenExpired       = "Reset token has expired"
	MsgPasswordTooShort   = "Password must be at least 6 characters long"
	MsgPasswordCanUpdate  = "Token verified. Password can be updated."
	MsgSendFailed         = "Failed to send email"
	MsgInvalidAssertion   = "Invalid or expired password change authorization"
	MsgMissingOrderFields = "Missing required fields: customerEmail, orderId"
	MsgMissingEmail       = "Missing required field: email"
	MsgMissingToken       = "Missing required field: token"
	MsgMissingResetFields = "Missing required fields: token, newPassword"
	MsgMissingNameFields  = "Missing required fields: email, name"
	MsgMissingAssertion   = "Missing required field: assertion"
)

// MailerError is an expected failure the HTTP layer reports to the caller as-is.
type MailerError struct {
	Kind    MailerErrorKind
	Message string
	Err     error
}

func (e *MailerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *MailerError) Unwrap() error {
	return e.Err
}

func mailerErr(kind MailerErrorKind, msg string, err error) *MailerError {
	return &MailerError{Kind: kind, Message: msg, Err: err}
}

type ResetCompletion struct {
	Email     string
	Message   string
	Assertion string
}

type MailerService interface {
	SendOrderConfirmation(ctx context.Context, order *model.Order) error
	// RequestPasswordReset returns the message to show the requester.
	RequestPasswordReset(ctx context.Context, emailAddr string) (string, error)
	// VerifyResetToken is read-only: the token stays usable.
	VerifyResetToken(ctx context.Context, rawToken string) (string, error)
	CompleteReset(ctx context.Context, rawToken, newPassword string) (*ResetCompletion, error)
	ConsumeAssertion(ctx context.Context, raw string) (string, error)
	SendWelcome(ctx context.Context, emailAddr, name string) error
	SendPasswordChanged(ctx context.Context, emailAddr, name string) error
}

type MailerOptions struct {
	// DiscloseUnknownAccount answers an unknown email with user-not-found instead of the masked success.
	DiscloseUnknownAccount bool
	Now                    func() time.Time
}

type mailerServiceImpl struct {
	directory  client.AuthDirectory
	transport  client.MailTransport
	renderer   *email.Renderer
	tokens     repository.ResetTokenRepository
	assertions assertion.Issuer
	logger     *log.Logger
	disclose   bool
	now        func() time.Time
}

func NewMailerService(
	directory client.AuthDirectory,
	transport client.MailTransport,
	renderer *email.Renderer,
	tokens repository.ResetTokenRepository,
	assertions assertion.Issuer,
	logger *log.Logger,
	opts MailerOptions,
) MailerService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &mailerServiceImpl{
		directory:  directory,
		transport:  transport,
		renderer:   renderer,
		tokens:     tokens,
		assertions: assertions,
		logger:     logger,
		disclose:   opts.DiscloseUnknownAccount,
		now:        opts.Now,
	}
}

func (s *mailerServiceImpl) SendOrderConfirmation(ctx context.Context, order *model.Order) error {
	if order == nil || strings.TrimSpace(order.CustomerEmail) == "" || order.ID == "" {
		return mailerErr(KindMissingField, MsgMissingOrderFields, nil)
	}

	msg, err := s.renderer.OrderConfirmation(order)
	if err != nil {
		return fmt.Errorf("render order confirmation: %w", err)
	}
	if err := s.send(ctx, msg); err != nil {
		s.logger.Errorf("send order confirmation for order %s to %s: %v", order.ID, order.CustomerEmail, err)
		return err
	}

	s.logger.Infof("order confirmation sent for order %s to %s", order.ID, order.CustomerEmail)
	return nil
}

func (s *mailerServiceImpl) RequestPasswordReset(ctx context.Context, emailAddr string) (string, error) {
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" {
		return "", mailerErr(KindMissingField, MsgMissingEmail, nil)
	}

	user, err := s.directory.FindUserByEmail(ctx, emailAddr)
	if errors.Is(err, client.ErrUserNotFound) {
		s.logger.Infof("password reset requested for unknown account %s", emailAddr)
		if s.disclose {
			return "", mailerErr(KindUserNotFound, MsgNoAccount, nil)
		}
		return MsgResetMasked, nil
	}
	if err != nil {
		// lookup failures are never surfaced to the requester
		s.logger.Errorf("look up account %s for password reset: %v", emailAddr, err)
		return MsgResetMasked, nil
	}

	issued, err := token.Issue(s.now())
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}

	record := &model.ResetToken{
		Email:     strings.ToLower(user.Email),
		UserID:    user.ID,
		ExpiresAt: issued.ExpiresAt,
	}
	if err := s.tokens.Put(ctx, issued.Hash, record); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	msg, err := s.renderer.PasswordReset(user.Email, issued.Raw)
	if err != nil {
		return "", fmt.Errorf("render password reset: %w", err)
	}
	if err := s.send(ctx, msg); err != nil {
		s.logger.Errorf("send password reset to %s: %v", user.Email, err)
		// the link never left, so the token is useless
		if delErr := s.tokens.Delete(context.WithoutCancel(ctx), issued.Hash); delErr != nil {
			s.logger.Warnf("drop undelivered reset token for %s: %v", user.Email, delErr)
		}
		return "", err
	}

	s.logger.Infof("password reset email sent to %s", user.Email)
	return MsgResetSent, nil
}

func (s *mailerServiceImpl) VerifyResetToken(ctx context.Context, rawToken string) (string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return "", mailerErr(KindMissingField, MsgMissingToken, nil)
	}

	record, err := s.tokens.Get(ctx, token.Hash(rawToken))
	if err != nil {
		return "", tokenErr(err)
	}
	return record.Email, nil
}

func (s *mailerServiceImpl) CompleteReset(ctx context.Context, rawToken, newPassword string) (*ResetCompletion, error) {
	if strings.TrimSpace(rawToken) == "" || newPassword == "" {
		return nil, mailerErr(KindMissingField, MsgMissingResetFields, nil)
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return nil, mailerErr(KindPasswordTooShort, MsgPasswordTooShort, nil)
	}

	record, err := s.tokens.Take(ctx, token.Hash(rawToken))
	if err != nil {
		return nil, tokenErr(err)
	}

	grant, err := s.assertions.Issue(record.Email, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("issue password change assertion: %w", err)
	}

	s.logger.Infof("password reset token consumed for %s", record.Email)
	return &ResetCompletion{
		Email:     record.Email,
		Message:   MsgPasswordCanUpdate,
		Assertion: grant,
	}, nil
}

func (s *mailerServiceImpl) ConsumeAssertion(ctx context.Context, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", mailerErr(KindMissingField, MsgMissingAssertion, nil)
	}

	claims, err := s.assertions.Consume(ctx, raw)
	if errors.Is(err, assertion.ErrInvalidAssertion) || errors.Is(err, assertion.ErrAssertionUsed) {
		return "", mailerErr(KindInvalidAssertion, MsgInvalidAssertion, err)
	}
	if err != nil {
		return "", fmt.Errorf("consume assertion: %w", err)
	}
	return claims.Email(), nil
}

func (s *mailerServiceImpl) SendWelcome(ctx context.Context, emailAddr, name string) error {
	if strings.TrimSpace(emailAddr) == "" || strings.TrimSpace(name) == "" {
		return mailerErr(KindMissingField, MsgMissingNameFields, nil)
	}

	msg, err := s.renderer.Welcome(emailAddr, name)
	if err != nil {
		return fmt.Errorf("render welcome: %w", err)
	}
	if err := s.send(ctx, msg); err != nil {
		s.logger.Errorf("send welcome email to %s: %v", emailAddr, err)
		return err
	}
	return nil
}

func (s *mailerServiceImpl) SendPasswordChanged(ctx context.Context, emailAddr, name string) error {
	if strings.TrimSpace(emailAddr) == "" || strings.TrimSpace(name) == "" {
		return mailerErr(KindMissingField, MsgMissingNameFields, nil)
	}

	msg, err := s.renderer.PasswordChanged(emailAddr, name)
	if err != nil {
		return fmt.Errorf("render password changed: %w", err)
	}
	if err := s.send(ctx, msg); err != nil {
		s.logger.Errorf("send password changed email to %s: %v", emailAddr, err)
		return err
	}
	return nil
}

func (s *mailerServiceImpl) send(ctx context.Context, msg *client.MailMessage) error {
	if err := s.transport.Send(ctx, msg); err != nil {
		return mailerErr(KindMailTransportFailure, MsgSendFailed, err)
	}
	return nil
}

func tokenErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrTokenNotFound):
		return mailerErr(KindInvalidOrExpiredToken, MsgInvalidToken, nil)
	case errors.Is(err, repository.ErrTokenExpired):
		return mailerErr(KindTokenExpired, MsgTokenExpired, nil)
	}
	return fmt.Errorf("look up reset token: %w", err)
}
