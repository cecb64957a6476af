package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	emails []string
	codes  []string
	err    error
}

func (r *recordingSender) SendCode(email, _, _, code string) error {
	r.emails = append(r.emails, email)
	r.codes = append(r.codes, code)
	return r.err
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestOTPService(sender CodeSender, clock *fakeClock) OTPService {
	return NewOTPService(sender, 5*time.Minute, clock.Now)
}

func TestOTPIssueAndVerify(t *testing.T) {
	sender := &recordingSender{}
	clock := &fakeClock{t: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)}
	svc := newTestOTPService(sender, clock)

	code, err := svc.IssueCode("student@example.com", "Navaneeth M", "certificate_access")
	require.NoError(t, err)
	require.Len(t, code, 6)
	require.Equal(t, []string{"student@example.com"}, sender.emails)
	require.Equal(t, []string{code}, sender.codes)

	require.NoError(t, svc.VerifyCode("student@example.com", code))

	// A code is single use.
	assert.ErrorIs(t, svc.VerifyCode("student@example.com", code), ErrOTPNotFound)
}

func TestOTPWrongCode(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestOTPService(&recordingSender{}, clock)

	code, err := svc.IssueCode("student@example.com", "Navaneeth M", "login")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, svc.VerifyCode("student@example.com", wrong), ErrOTPInvalid)

	// The real code still works after a failed attempt.
	assert.NoError(t, svc.VerifyCode("student@example.com", code))
}

func TestOTPUnknownEmail(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestOTPService(&recordingSender{}, clock)

	assert.ErrorIs(t, svc.VerifyCode("nobody@example.com", "123456"), ErrOTPNotFound)
}

func TestOTPExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)}
	svc := newTestOTPService(&recordingSender{}, clock)

	code, err := svc.IssueCode("student@example.com", "Navaneeth M", "login")
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Second)
	assert.ErrorIs(t, svc.VerifyCode("student@example.com", code), ErrOTPExpired)

	// The expired entry was dropped, not left behind as invalid.
	assert.ErrorIs(t, svc.VerifyCode("student@example.com", code), ErrOTPNotFound)
}

func TestOTPReissueOverwrites(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestOTPService(&recordingSender{}, clock)

	first, err := svc.IssueCode("student@example.com", "Navaneeth M", "login")
	require.NoError(t, err)
	second, err := svc.IssueCode("student@example.com", "Navaneeth M", "login")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, svc.VerifyCode("student@example.com", first), ErrOTPInvalid)
	}
	assert.NoError(t, svc.VerifyCode("student@example.com", second))
}

func TestOTPSenderFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	clock := &fakeClock{t: time.Now()}
	svc := newTestOTPService(sender, clock)

	_, err := svc.IssueCode("student@example.com", "Navaneeth M", "login")
	assert.Error(t, err)
}
