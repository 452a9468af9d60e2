package services

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/taskboxhq/taskbox/internal/cache"
	"github.com/taskboxhq/taskbox/pkg/crypto"
	apperrors "github.com/taskboxhq/taskbox/pkg/errors"
	"github.com/taskboxhq/taskbox/pkg/metrics"
)

const (
	// DefaultOTPLength is the number of digits in a generated code.
	DefaultOTPLength = 4
	// DefaultOTPTTL is how long an issued code stays valid.
	DefaultOTPTTL = 5 * time.Minute

	otpKeyPrefix = "otp:"
)

// ErrOTPNotFound is returned when no live code exists for the email.
var ErrOTPNotFound = &apperrors.AppError{
	Code:       "OTP_NOT_FOUND",
	MessageKey: "otp.not_found",
	Message:    "No verification code found for this email",
	StatusCode: 400,
}

// ErrOTPMismatch is returned when the submitted code does not match.
var ErrOTPMismatch = &apperrors.AppError{
	Code:       "OTP_MISMATCH",
	MessageKey: "otp.mismatch",
	Message:    "Verification code does not match",
	StatusCode: 400,
}

// OTPService issues and verifies short-lived numeric codes keyed by email.
// Codes live in the cache store only; issuing a new code replaces any
// previous one, and a successful verification consumes the code.
type OTPService struct {
	store      cache.Store
	codeLength int
	ttl        time.Duration
}

// NewOTPService builds an OTPService. Zero-valued options fall back to the
// defaults (4 digits, 5 minutes).
func NewOTPService(store cache.Store, codeLength int, ttl time.Duration) *OTPService {
	if codeLength <= 0 {
		codeLength = DefaultOTPLength
	}
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}

	return &OTPService{store: store, codeLength: codeLength, ttl: ttl}
}

// TTL reports the configured code lifetime.
func (s *OTPService) TTL() time.Duration {
	return s.ttl
}

// Issue generates a fresh code for the email and stores it with the
// configured TTL, overwriting any earlier code for the same address.
func (s *OTPService) Issue(ctx context.Context, email string) (string, error) {
	ctx = ensureContext(ctx)

	key, err := otpKey(email)
	if err != nil {
		return "", err
	}

	code, err := crypto.NumericCode(s.codeLength)
	if err != nil {
		return "", apperrors.Wrap(err, "generate code")
	}

	if err := s.store.Set(ctx, key, []byte(code), s.ttl); err != nil {
		return "", apperrors.Wrap(err, "store code")
	}

	metrics.OTPIssued.Inc()
	return code, nil
}

// Verify checks the submitted code against the stored one. A match consumes
// the code so it cannot be used twice; a mismatch leaves the stored code
// untouched for further attempts within the TTL.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	ctx = ensureContext(ctx)

	key, err := otpKey(email)
	if err != nil {
		return err
	}

	stored, ok, err := s.store.Get(ctx, key)
	if err != nil {
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return apperrors.Wrap(err, "load code")
	}
	if !ok {
		metrics.OTPVerifications.WithLabelValues("not_found").Inc()
		return ErrOTPNotFound
	}

	if subtle.ConstantTimeCompare(stored, []byte(strings.TrimSpace(code))) != 1 {
		metrics.OTPVerifications.WithLabelValues("mismatch").Inc()
		return ErrOTPMismatch
	}

	if err := s.store.Delete(ctx, key); err != nil {
		metrics.OTPVerifications.WithLabelValues("error").Inc()
		return apperrors.Wrap(err, "consume code")
	}

	metrics.OTPVerifications.WithLabelValues("success").Inc()
	return nil
}

func otpKey(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", apperrors.NewValidation("Invalid input data",
			apperrors.FieldError{Field: "email", Message: "email is required"})
	}
	return otpKeyPrefix + normalized, nil
}
