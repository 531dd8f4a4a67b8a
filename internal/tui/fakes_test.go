package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/playsafe/rgportal/internal/auth"
	"github.com/playsafe/rgportal/internal/limits"
	"github.com/playsafe/rgportal/internal/session"
	"github.com/playsafe/rgportal/internal/storage"
	"github.com/playsafe/rgportal/pkg/domain"
)

type fakeLimitsAPI struct {
	snap     *domain.LimitsSnapshot
	fetchErr error
	result   *domain.SetLimitsResult
	setErr   error
	payloads []map[string]any
}

func (f *fakeLimitsAPI) GetMyLimits(context.Context) (*domain.LimitsSnapshot, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.snap, nil
}

func (f *fakeLimitsAPI) SetLimits(_ context.Context, p map[string]any) (*domain.SetLimitsResult, error) {
	f.payloads = append(f.payloads, p)
	if f.setErr != nil {
		return nil, f.setErr
	}
	if f.result == nil {
		return &domain.SetLimitsResult{}, nil
	}
	return f.result, nil
}

type fakeOTP struct {
	sendErr   error
	verifyErr error
}

func (f *fakeOTP) SendOTP(context.Context, string) (*domain.OTPDispatch, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &domain.OTPDispatch{Message: "sent", DevCode: "123456"}, nil
}

func (f *fakeOTP) VerifyOTP(_ context.Context, mobile, _ string) (*domain.OTPVerification, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &domain.OTPVerification{
		Token:    "tok-1",
		Customer: &domain.Customer{ID: "7", MobileNumber: mobile},
		Config:   domain.Config{"currency": "KES"},
	}, nil
}

type fakeHistory struct {
	records []domain.DeliveryRecord
	err     error
}

func (f *fakeHistory) GetHistory(context.Context) ([]domain.DeliveryRecord, error) {
	return f.records, f.err
}

func strptr(s string) *string { return &s }

func floatptr(v float64) *float64 { return &v }

func intptr(v int) *int { return &v }

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	ctrlSKey = tea.KeyMsg{Type: tea.KeyCtrlS}
)

// typeText feeds each rune of s as a key press.
func typeText[M interface {
	Update(tea.Msg) (M, tea.Cmd)
}](m M, s string) M {
	for _, r := range s {
		m, _ = m.Update(keyMsg(string(r)))
	}
	return m
}

type testEnv struct {
	api     *fakeLimitsAPI
	otp     *fakeOTP
	history *fakeHistory
	store   *session.Store
	flow    *auth.Flow
	service *limits.Service
	opened  []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		api:     &fakeLimitsAPI{snap: &domain.LimitsSnapshot{Currency: strptr("KES")}},
		otp:     &fakeOTP{},
		history: &fakeHistory{},
	}
	env.store = session.New(context.Background(), storage.NewMemory(), nil)
	env.flow = auth.NewFlow(env.otp, env.store, true)
	env.service = limits.NewService(env.api, env.store, nil)
	return env
}

func (e *testEnv) deps() Deps {
	return Deps{
		Session:      e.store,
		Flow:         e.flow,
		Limits:       e.service,
		History:      e.history,
		RemoteLogout: func(context.Context) error { return nil },
		SupportURL:   "https://support.example.com",
		Version:      "test",
		OpenURL: func(u string) error {
			e.opened = append(e.opened, u)
			return nil
		},
	}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	err := e.store.Login(context.Background(), "tok-1", &domain.Customer{MobileNumber: "+254712345678"}, domain.Config{"currency": "KES"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
}
