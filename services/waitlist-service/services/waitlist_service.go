package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	apperrors "github.com/aureliajewelry/storefront-backend/services/common/errors"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/models"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/repository"
)

const (
	passcodeLength = 6
	maxAttempts    = 5
	lockDuration   = 15 * time.Minute
)

var (
	ErrInvalidPasscode = errors.New("invalid passcode")
	ErrNotOnWaitlist   = errors.New("email not on waitlist")
)

// EmailSender is the outbound mail surface; satisfied by mailer.Mailer and
// by fakes in tests.
type EmailSender interface {
	SendWaitlistEmail(ctx context.Context, to, passcode, magicLink string) error
	SendInvoiceEmail(ctx context.Context, to string, invoice models.Invoice, senderInfo models.SenderInfo) error
}

type WaitlistService struct {
	repo    *repository.WaitlistRepository
	mail    EmailSender
	metrics *awspkg.MetricsClient
	logger  *zap.Logger
}

func NewWaitlistService(repo *repository.WaitlistRepository, mail EmailSender, metrics *awspkg.MetricsClient, logger *zap.Logger) *WaitlistService {
	return &WaitlistService{repo: repo, mail: mail, metrics: metrics, logger: logger}
}

// Join registers an email on the waitlist, generates its passcode and sends
// the signup email. The plaintext passcode is never stored.
func (s *WaitlistService) Join(ctx context.Context, email, magicLink string) error {
	email = normalizeEmail(email)

	passcode := GenerateRandomCode(passcodeLength)
	hash, err := HashPasscode(passcode)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	entry := &models.WaitlistEntry{
		ID:           uuid.New(),
		Email:        email,
		PasscodeHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return err
	}
	s.recordCount(ctx, awspkg.MetricWaitlistSignups)

	if s.mail != nil {
		if err := s.mail.SendWaitlistEmail(ctx, email, passcode, magicLink); err != nil {
			s.logger.Error("failed to send waitlist email",
				zap.String("email", email), zap.Error(err))
			return err
		}
	}
	return nil
}

// Login verifies the passcode and issues an access token. Five consecutive
// failures lock the entry for fifteen minutes.
func (s *WaitlistService) Login(ctx context.Context, email, passcode string) (string, error) {
	email = normalizeEmail(email)

	entry, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotOnWaitlist
		}
		return "", err
	}

	if entry.LockedUntil != nil && entry.LockedUntil.After(time.Now().UTC()) {
		return "", apperrors.ErrPasscodeLocked
	}

	if !VerifyPasscode(entry.PasscodeHash, passcode) {
		s.recordCount(ctx, awspkg.MetricPasscodeFailures)

		var lockedUntil *time.Time
		if entry.LoginAttempts+1 >= maxAttempts {
			t := time.Now().UTC().Add(lockDuration)
			lockedUntil = &t
			s.logger.Warn("waitlist entry locked after repeated failures",
				zap.String("email", email))
		}
		if err := s.repo.RecordFailedLogin(ctx, email, lockedUntil); err != nil {
			s.logger.Error("failed to record login failure", zap.Error(err))
		}
		return "", ErrInvalidPasscode
	}

	if err := s.repo.RecordSuccessfulLogin(ctx, email); err != nil {
		s.logger.Error("failed to record login", zap.Error(err))
	}
	return GenerateAccessToken(entry.ID.String(), email)
}

// SubscribeNewsletter records a newsletter signup; duplicates are a no-op.
func (s *WaitlistService) SubscribeNewsletter(ctx context.Context, email string) error {
	signup := &models.NewsletterSignup{
		ID:        uuid.New(),
		Email:     normalizeEmail(email),
		CreatedAt: time.Now().UTC(),
	}
	err := s.repo.AddNewsletterSignup(ctx, signup)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil
	}
	return err
}

// SendInvoice forwards an invoice email to the customer.
func (s *WaitlistService) SendInvoice(ctx context.Context, to string, invoice models.Invoice, senderInfo models.SenderInfo) error {
	if s.mail == nil {
		return errors.New("email delivery not configured")
	}
	if err := s.mail.SendInvoiceEmail(ctx, normalizeEmail(to), invoice, senderInfo); err != nil {
		s.recordCount(ctx, awspkg.MetricEmailSendFailures)
		return err
	}
	s.recordCount(ctx, awspkg.MetricEmailsSent)
	return nil
}

func (s *WaitlistService) recordCount(ctx context.Context, metric string) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	_ = s.metrics.RecordCount(ctx, metric, map[string]string{"Service": "waitlist-service"})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
