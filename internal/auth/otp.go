package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
	"github.com/fin100x/server/internal/sms"
)

const (
	otpLength      = 6
	otpExpiry      = 3 * time.Minute
	otpResendAfter = 30 * time.Second
)

// Indian mobile numbers: +91 followed by a 10-digit number starting 6-9.
var phonePattern = regexp.MustCompile(`^\+91[6-9]\d{9}$`)

var (
	ErrInvalidPhone   = errors.New("phone number is invalid")
	ErrConsentMissing = errors.New("consent missing")
	ErrSMSFailed      = errors.New("failed to send OTP SMS")
	// ErrOTPInvalid covers every verification failure (unknown request,
	// phone mismatch, expired, already used, wrong code) so the caller
	// cannot learn which check failed.
	ErrOTPInvalid = errors.New("OTP incorrect or expired")
)

// Consent carries the flags the user must accept before an OTP is sent.
type Consent struct {
	AcceptedTnC     bool `json:"acceptedTnC"`
	AcceptedPrivacy bool `json:"acceptedPrivacy"`
}

// OTPTicket is the outcome of a successful OTP request.
type OTPTicket struct {
	RequestID       string `json:"requestId"`
	ExpiresIn       int    `json:"expiresIn"`
	ResendAfter     int    `json:"resendAfter"`
	MaskedPhone     string `json:"maskedPhone"`
	DeliveryChannel string `json:"deliveryChannel"`
}

// OTPService manages OTP challenge issuance and verification. A challenge
// moves CREATED -> VERIFIED exactly once, or expires implicitly by clock.
type OTPService struct {
	otpRepo repo.OTPRepo
	sender  sms.Sender
}

// NewOTPService creates an OTPService.
func NewOTPService(otpRepo repo.OTPRepo, sender sms.Sender) *OTPService {
	return &OTPService{otpRepo: otpRepo, sender: sender}
}

// Request validates the phone and consent, generates a code, delivers it,
// and persists the hashed challenge only after delivery succeeded. A
// delivery failure leaves no state behind; the client must start over.
func (s *OTPService) Request(ctx context.Context, phone string, consent Consent, channel, locale string, deviceID *string) (OTPTicket, error) {
	if !phonePattern.MatchString(phone) {
		return OTPTicket{}, ErrInvalidPhone
	}
	if !consent.AcceptedTnC || !consent.AcceptedPrivacy {
		return OTPTicket{}, ErrConsentMissing
	}
	if channel == "" {
		channel = "sms"
	}
	if locale == "" {
		locale = "en-IN"
	}

	code, err := GenerateOTP(otpLength)
	if err != nil {
		return OTPTicket{}, fmt.Errorf("generate code: %w", err)
	}
	codeHash, err := HashSecret(code)
	if err != nil {
		return OTPTicket{}, fmt.Errorf("hash code: %w", err)
	}

	body := fmt.Sprintf("Your OTP for Fin100x.ai is %s. It is valid for 3 minutes. Do not share it with anyone.", code)
	if err := s.sender.Send(ctx, phone, body); err != nil {
		log.Printf("[otp] delivery failed for %s: %v", MaskPhone(phone), err)
		return OTPTicket{}, ErrSMSFailed
	}

	req := model.OTPRequest{
		ID:        NewRequestID(),
		Phone:     phone,
		OTPHash:   codeHash,
		Channel:   channel,
		Locale:    locale,
		DeviceID:  deviceID,
		ExpiresAt: time.Now().Add(otpExpiry),
	}
	if err := s.otpRepo.Create(ctx, req); err != nil {
		return OTPTicket{}, fmt.Errorf("persist challenge: %w", err)
	}

	return OTPTicket{
		RequestID:       req.ID,
		ExpiresIn:       int(otpExpiry.Seconds()),
		ResendAfter:     int(otpResendAfter.Seconds()),
		MaskedPhone:     MaskPhone(phone),
		DeliveryChannel: channel,
	}, nil
}

// Verify checks the code against the stored challenge and consumes it.
// Every failure collapses to ErrOTPInvalid.
func (s *OTPService) Verify(ctx context.Context, requestID, phone, code string) error {
	rec, err := s.otpRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOTPInvalid
		}
		return fmt.Errorf("load challenge: %w", err)
	}
	if rec.Phone != phone || rec.Verified || !time.Now().Before(rec.ExpiresAt) {
		return ErrOTPInvalid
	}
	if !CompareSecret(code, rec.OTPHash) {
		return ErrOTPInvalid
	}
	// Conditional flip: a concurrent redemption of the same challenge loses
	// here and reads as an invalid OTP.
	if err := s.otpRepo.MarkVerified(ctx, requestID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOTPInvalid
		}
		return fmt.Errorf("consume challenge: %w", err)
	}
	return nil
}
