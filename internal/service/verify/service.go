// Package verify delegates phone verification to an external OTP provider.
// The challenge lifecycle (expiry, retries) is owned entirely by the provider;
// this service only normalizes numbers and relays verdicts.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"
)

// StatusApproved is the provider status that counts as a verified phone.
const StatusApproved = "approved"

// ErrCodeRejected is returned when the provider reports any status other
// than approved for a submitted code.
var ErrCodeRejected = errors.New("verify: code not approved")

// Provider creates and checks verification challenges.
type Provider interface {
	StartVerification(ctx context.Context, phone string) (sid string, err error)
	CheckVerification(ctx context.Context, phone, code string) (status string, err error)
}

// Service is the OTP gateway in front of a Provider.
type Service struct {
	provider      Provider
	logger        *slog.Logger
	countryPrefix string
}

// New constructs a Service. countryPrefix is prepended to numbers lacking a
// leading +, e.g. "+91".
func New(provider Provider, logger *slog.Logger, countryPrefix string) Service {
	return Service{provider: provider, logger: logger, countryPrefix: countryPrefix}
}

// Normalize applies the single normalization rule used by both Send and
// Check: numbers without a leading + get the configured country prefix.
func (s Service) Normalize(phone string) string {
	phone = strings.TrimSpace(phone)
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return s.countryPrefix + phone
}

// Send asks the provider to create an SMS challenge for the phone and
// returns the provider's opaque reference identifier.
func (s Service) Send(ctx context.Context, phone string) (string, error) {
	normalized := s.Normalize(phone)
	sid, err := s.provider.StartVerification(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("start verification: %w", err)
	}
	s.logger.Info("otp challenge created", "sid", sid)
	return sid, nil
}

// Check submits a (phone, code) pair. A nil return means the provider
// approved the code; ErrCodeRejected means any non-approved status.
func (s Service) Check(ctx context.Context, phone, code string) error {
	normalized := s.Normalize(phone)
	status, err := s.provider.CheckVerification(ctx, normalized, code)
	if err != nil {
		return fmt.Errorf("check verification: %w", err)
	}
	if status != StatusApproved {
		s.logger.Info("otp rejected", "status", status)
		return ErrCodeRejected
	}
	return nil
}
