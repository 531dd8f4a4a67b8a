// Package auth drives the mobile number + one-time passcode login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/playsafe/rgportal/pkg/domain"
)

// Step is a position in the login flow.
type Step int

const (
	AwaitingMobileNumber Step = iota
	AwaitingCode
	Authenticated
)

func (s Step) String() string {
	switch s {
	case AwaitingMobileNumber:
		return "awaiting_mobile_number"
	case AwaitingCode:
		return "awaiting_code"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// User-facing messages.
const (
	MsgInvalidMobile = "Please enter a valid mobile number (e.g., +254712345678)"
	MsgInvalidCode   = "Please enter a valid 6-digit OTP"
	MsgCodeSent      = "OTP has been sent to your mobile number"
	MsgSendFailed    = "Failed to send OTP. Please try again."
	MsgVerifyFailed  = "Invalid OTP. Please try again."
)

var (
	// ErrBusy is returned while a previous request is still in flight.
	ErrBusy = errors.New("auth: request already in progress")
	// ErrWrongStep is returned when an action does not apply to the current step.
	ErrWrongStep = errors.New("auth: action not valid in current step")
)

var (
	mobilePattern = regexp.MustCompile(`^\+\d{10,15}$`)
	codePattern   = regexp.MustCompile(`^\d{6}$`)
)

// ValidMobileNumber reports whether s is '+' followed by 10 to 15 digits.
func ValidMobileNumber(s string) bool { return mobilePattern.MatchString(s) }

// ValidCode reports whether s is exactly six digits.
func ValidCode(s string) bool { return codePattern.MatchString(s) }

// Gateway is the subset of the API client used by the flow.
type Gateway interface {
	SendOTP(ctx context.Context, mobile string) (*domain.OTPDispatch, error)
	VerifyOTP(ctx context.Context, mobile, otp string) (*domain.OTPVerification, error)
}

// SessionStarter persists a verified login.
type SessionStarter interface {
	Login(ctx context.Context, token string, customer *domain.Customer, configPatch domain.Config) error
}

// Flow is the login state machine. It is safe for concurrent use.
type Flow struct {
	gw          Gateway
	sessions    SessionStarter
	showDevCode bool

	mu     sync.Mutex
	step   Step
	mobile string
	busy   bool
}

// NewFlow creates a flow at AwaitingMobileNumber. When showDevCode is set, a
// passcode echoed by a development backend is included in the sent message.
func NewFlow(gw Gateway, sessions SessionStarter, showDevCode bool) *Flow {
	return &Flow{gw: gw, sessions: sessions, showDevCode: showDevCode}
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// MobileNumber returns the number a code was sent to, or "".
func (f *Flow) MobileNumber() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mobile
}

// Busy reports whether a request is in flight.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

func (f *Flow) begin(allowed ...Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrBusy
	}
	ok := false
	for _, s := range allowed {
		if f.step == s {
			ok = true
		}
	}
	if !ok {
		return ErrWrongStep
	}
	f.busy = true
	return nil
}

func (f *Flow) end() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// SendCode requests a passcode for mobile and moves to AwaitingCode. It may
// also be called from AwaitingCode to resend. On failure the step is unchanged.
func (f *Flow) SendCode(ctx context.Context, mobile string) (string, error) {
	mobile = strings.TrimSpace(mobile)
	if !ValidMobileNumber(mobile) {
		return "", domain.ErrValidation("mobile_number", MsgInvalidMobile)
	}
	if err := f.begin(AwaitingMobileNumber, AwaitingCode); err != nil {
		return "", err
	}
	defer f.end()

	res, err := f.gw.SendOTP(ctx, mobile)
	if err != nil {
		return "", fmt.Errorf("auth.SendCode: %w", err)
	}

	f.mu.Lock()
	f.step = AwaitingCode
	f.mobile = mobile
	f.mu.Unlock()

	if f.showDevCode && res.DevCode != "" {
		return fmt.Sprintf("OTP sent! (Dev: %s)", res.DevCode), nil
	}
	return MsgCodeSent, nil
}

// Verify checks code against the number it was sent to. On success the session
// is started and the flow reaches Authenticated.
func (f *Flow) Verify(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if !ValidCode(code) {
		return domain.ErrValidation("otp", MsgInvalidCode)
	}
	if err := f.begin(AwaitingCode); err != nil {
		return err
	}
	defer f.end()

	mobile := f.MobileNumber()
	res, err := f.gw.VerifyOTP(ctx, mobile, code)
	if err != nil {
		return fmt.Errorf("auth.Verify: %w", err)
	}
	customer := res.Customer
	if customer == nil {
		customer = &domain.Customer{MobileNumber: mobile}
	}
	if err := f.sessions.Login(ctx, res.Token, customer, res.Config); err != nil {
		return fmt.Errorf("auth.Verify: %w", err)
	}

	f.mu.Lock()
	f.step = Authenticated
	f.mu.Unlock()
	return nil
}

// ChangeNumber returns to AwaitingMobileNumber from AwaitingCode.
func (f *Flow) ChangeNumber() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrBusy
	}
	if f.step != AwaitingCode {
		return ErrWrongStep
	}
	f.step = AwaitingMobileNumber
	return nil
}

// Reset puts the flow back at the start, e.g. after the session was cleared.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = AwaitingMobileNumber
	f.mobile = ""
}
