package auth_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fin100x/server/internal/auth"
	"github.com/fin100x/server/internal/model"
	"github.com/fin100x/server/internal/repo"
)

var codePattern = regexp.MustCompile(`\d{6}`)

// captureSender records delivered messages and extracts the code, or fails
// every send when broken.
type captureSender struct {
	lastTo   string
	lastCode string
	broken   bool
	sends    int
}

func (s *captureSender) Send(_ context.Context, to, body string) error {
	if s.broken {
		return errors.New("provider unavailable")
	}
	s.sends++
	s.lastTo = to
	s.lastCode = codePattern.FindString(body)
	return nil
}

const testPhone = "+919876543210"

func newOTPService(sender *captureSender) (*auth.OTPService, *repo.MemoryOTPRepo) {
	otps := repo.NewMemoryOTPRepo()
	return auth.NewOTPService(otps, sender), otps
}

func fullConsent() auth.Consent {
	return auth.Consent{AcceptedTnC: true, AcceptedPrivacy: true}
}

func TestRequestRejectsBadPhone(t *testing.T) {
	svc, _ := newOTPService(&captureSender{})

	for _, phone := range []string{"12345", "+9198765432", "+915876543210", "9876543210", ""} {
		_, err := svc.Request(context.Background(), phone, fullConsent(), "", "", nil)
		assert.ErrorIs(t, err, auth.ErrInvalidPhone, "phone %q", phone)
	}
}

func TestRequestRequiresConsent(t *testing.T) {
	svc, _ := newOTPService(&captureSender{})

	_, err := svc.Request(context.Background(), testPhone, auth.Consent{AcceptedTnC: true}, "", "", nil)
	assert.ErrorIs(t, err, auth.ErrConsentMissing)

	_, err = svc.Request(context.Background(), testPhone, auth.Consent{AcceptedPrivacy: true}, "", "", nil)
	assert.ErrorIs(t, err, auth.ErrConsentMissing)
}

func TestRequestDeliversAndPersists(t *testing.T) {
	sender := &captureSender{}
	svc, otps := newOTPService(sender)

	ticket, err := svc.Request(context.Background(), testPhone, fullConsent(), "", "", nil)
	require.NoError(t, err)

	assert.Equal(t, testPhone, sender.lastTo)
	assert.Len(t, sender.lastCode, 6)
	assert.Equal(t, 180, ticket.ExpiresIn)
	assert.Equal(t, 30, ticket.ResendAfter)
	assert.Equal(t, "sms", ticket.DeliveryChannel)
	assert.Equal(t, auth.MaskPhone(testPhone), ticket.MaskedPhone)

	rec, err := otps.GetByID(context.Background(), ticket.RequestID)
	require.NoError(t, err)
	assert.False(t, rec.Verified)
	assert.NotEqual(t, sender.lastCode, rec.OTPHash, "code must be stored hashed")
}

func TestRequestDeliveryFailureLeavesNoState(t *testing.T) {
	sender := &captureSender{broken: true}
	svc, otps := newOTPService(sender)

	_, err := svc.Request(context.Background(), testPhone, fullConsent(), "", "", nil)
	assert.ErrorIs(t, err, auth.ErrSMSFailed)

	// No challenge row should exist.
	_, err = otps.GetByID(context.Background(), "req_anything")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestVerifyHappyPathAndSingleUse(t *testing.T) {
	sender := &captureSender{}
	svc, _ := newOTPService(sender)

	ticket, err := svc.Request(context.Background(), testPhone, fullConsent(), "", "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Verify(context.Background(), ticket.RequestID, testPhone, sender.lastCode))

	// Same correct code a second time fails.
	err = svc.Verify(context.Background(), ticket.RequestID, testPhone, sender.lastCode)
	assert.ErrorIs(t, err, auth.ErrOTPInvalid)
}

func TestVerifyFailuresCollapse(t *testing.T) {
	sender := &captureSender{}
	svc, _ := newOTPService(sender)

	ticket, err := svc.Request(context.Background(), testPhone, fullConsent(), "", "", nil)
	require.NoError(t, err)

	wrongCode := "000000"
	if sender.lastCode == wrongCode {
		wrongCode = "000001"
	}

	assert.ErrorIs(t, svc.Verify(context.Background(), "req_unknown", testPhone, sender.lastCode), auth.ErrOTPInvalid)
	assert.ErrorIs(t, svc.Verify(context.Background(), ticket.RequestID, "+919876543211", sender.lastCode), auth.ErrOTPInvalid)
	assert.ErrorIs(t, svc.Verify(context.Background(), ticket.RequestID, testPhone, wrongCode), auth.ErrOTPInvalid)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	svc, otps := newOTPService(&captureSender{})

	hash, err := auth.HashSecret("123456")
	require.NoError(t, err)

	fresh := model.OTPRequest{
		ID: "req_fresh", Phone: testPhone, OTPHash: hash,
		Channel: "sms", Locale: "en-IN",
		ExpiresAt: time.Now().Add(500 * time.Millisecond),
	}
	require.NoError(t, otps.Create(context.Background(), fresh))
	require.NoError(t, svc.Verify(context.Background(), "req_fresh", testPhone, "123456"))

	expired := fresh
	expired.ID = "req_expired"
	expired.ExpiresAt = time.Now().Add(-time.Millisecond)
	require.NoError(t, otps.Create(context.Background(), expired))
	assert.ErrorIs(t, svc.Verify(context.Background(), "req_expired", testPhone, "123456"), auth.ErrOTPInvalid)
}
