package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"
)

var (
	ErrOTPNotFound = errors.New("no OTP found for this email")
	ErrOTPExpired  = errors.New("OTP has expired")
	ErrOTPInvalid  = errors.New("invalid OTP")
)

// CodeSender delivers a one-time code to the recipient. Email delivery is an
// external collaborator; the production deployment plugs in a real mailer.
type CodeSender interface {
	SendCode(email, studentName, purpose, code string) error
}

// LogCodeSender writes codes to the process log. Development only.
type LogCodeSender struct{}

func (LogCodeSender) SendCode(email, studentName, purpose, code string) error {
	log.Printf("📧 [dev] OTP for %s (%s, purpose=%s): %s\n", email, studentName, purpose, code)
	return nil
}

type otpEntry struct {
	code      string
	purpose   string
	expiresAt time.Time
}

// OTPService issues and verifies one-time codes keyed by recipient email.
// At most one valid code per key: a new request overwrites any prior
// unconsumed code. The clock is injected so expiry is testable.
type OTPService interface {
	IssueCode(email, studentName, purpose string) (string, error)
	VerifyCode(email, code string) error
}

type otpService struct {
	mu     sync.Mutex
	codes  map[string]otpEntry
	sender CodeSender
	ttl    time.Duration
	now    func() time.Time
}

func NewOTPService(sender CodeSender, ttl time.Duration, now func() time.Time) OTPService {
	if now == nil {
		now = time.Now
	}
	return &otpService{
		codes:  make(map[string]otpEntry),
		sender: sender,
		ttl:    ttl,
		now:    now,
	}
}

// IssueCode implements OTPService. Returns the generated code so development
// callers can surface it; production handlers must not echo it.
func (o *otpService) IssueCode(email, studentName, purpose string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	o.mu.Lock()
	o.codes[email] = otpEntry{
		code:      code,
		purpose:   purpose,
		expiresAt: o.now().Add(o.ttl),
	}
	o.mu.Unlock()

	if err := o.sender.SendCode(email, studentName, purpose, code); err != nil {
		return "", fmt.Errorf("failed to send OTP: %w", err)
	}

	return code, nil
}

// VerifyCode implements OTPService. A successful verification consumes the
// code; an expired one is dropped.
func (o *otpService) VerifyCode(email, code string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.codes[email]
	if !ok {
		return ErrOTPNotFound
	}

	if o.now().After(entry.expiresAt) {
		delete(o.codes, email)
		return ErrOTPExpired
	}

	if entry.code != code {
		return ErrOTPInvalid
	}

	delete(o.codes, email)
	return nil
}

// generateCode returns a 6-digit code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
