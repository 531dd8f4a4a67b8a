package tui

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/playsafe/rgportal/internal/limits"
	"github.com/playsafe/rgportal/pkg/client"
	"github.com/playsafe/rgportal/pkg/domain"
)

func loadedSetLimits(t *testing.T, env *testEnv, snap *domain.LimitsSnapshot) setLimitsModel {
	t.Helper()
	env.api.snap = snap
	m := newSetLimitsModel(env.service)
	m.lang = language.English
	m, _ = m.Update(limitsLoadedMsg{snap: snap})
	if m.form == nil {
		t.Fatal("expected form after load")
	}
	return m
}

// cursorTo moves the cursor onto the row for k and field.
func cursorTo(t *testing.T, m setLimitsModel, k domain.ControlKind, field limits.Field) setLimitsModel {
	t.Helper()
	for i, row := range m.rows() {
		if row.kind == k && row.field == field {
			m.cursor = i
			return m
		}
	}
	t.Fatalf("no row for %s/%s", k, field)
	return m
}

func TestSetLimitsToggleRevealsFields(t *testing.T) {
	env := newTestEnv(t)
	m := loadedSetLimits(t, env, &domain.LimitsSnapshot{})

	if got := len(m.rows()); got != len(domain.ControlKinds) {
		t.Fatalf("rows = %d, want %d", got, len(domain.ControlKinds))
	}
	m = cursorTo(t, m, domain.SessionBreak, "")
	m, _ = m.Update(spaceKey)

	if !m.form.Draft(domain.SessionBreak).Enabled {
		t.Fatal("expected session break enabled")
	}
	if got := len(m.rows()); got != len(domain.ControlKinds)+2 {
		t.Errorf("rows = %d, want two extra field rows", got)
	}
	if !strings.Contains(m.View(), "Break length (min)") {
		t.Errorf("view missing break fields:\n%s", m.View())
	}
}

func TestSetLimitsEditAndSubmit(t *testing.T) {
	env := newTestEnv(t)
	env.api.result = &domain.SetLimitsResult{Message: "Limits set", ControlsSet: []string{"deposit_limit"}}
	m := loadedSetLimits(t, env, &domain.LimitsSnapshot{Currency: strptr("KES")})

	m = cursorTo(t, m, domain.DepositLimit, "")
	m, _ = m.Update(spaceKey)
	m, _ = m.Update(keyMsg("j"))
	m, _ = m.Update(enterKey)
	if !m.editing {
		t.Fatal("expected editing on amount row")
	}
	m = typeText(m, "25a00")
	m, _ = m.Update(enterKey)
	if got := m.form.Draft(domain.DepositLimit).Value(limits.FieldAmount); got != "2500" {
		t.Fatalf("amount = %q, want 2500", got)
	}

	m, cmd := m.Update(ctrlSKey)
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	if !m.submitting {
		t.Error("expected submitting state")
	}
	m, _ = m.Update(cmd())

	if len(env.api.payloads) != 1 {
		t.Fatalf("payloads = %d, want 1", len(env.api.payloads))
	}
	p := env.api.payloads[0]
	if p["deposit_limit_enabled"] != true || p["deposit_limit_amount"] != 2500.0 {
		t.Errorf("payload = %v", p)
	}
	if m.status != "Limits set" {
		t.Errorf("status = %q", m.status)
	}
	view := m.View()
	if !strings.Contains(view, "Controls Set:") || !strings.Contains(view, "Deposit Limit") {
		t.Errorf("view missing lock notice:\n%s", view)
	}
	if !m.blocking() {
		t.Error("lock notice should block global keys")
	}

	m, _ = m.Update(enterKey)
	if m.lockNotice != "" {
		t.Error("expected lock notice dismissed")
	}
	if !env.service.Settled() {
		t.Error("expected service locks acknowledged")
	}
}

func TestSetLimitsValidationStaysLocal(t *testing.T) {
	env := newTestEnv(t)
	m := loadedSetLimits(t, env, &domain.LimitsSnapshot{})

	m = cursorTo(t, m, domain.DepositLimit, "")
	m, _ = m.Update(spaceKey)
	m, cmd := m.Update(ctrlSKey)

	if cmd != nil {
		t.Fatal("expected no submit command")
	}
	if len(env.api.payloads) != 0 {
		t.Error("validation failure reached the network")
	}
	if m.fieldErrs[limits.FieldKey(domain.DepositLimit, limits.FieldAmount)] != limits.MsgAmountRequired {
		t.Errorf("fieldErrs = %v", m.fieldErrs)
	}
	if !strings.Contains(m.View(), limits.MsgAmountRequired) {
		t.Errorf("view missing inline error:\n%s", m.View())
	}
}

func TestSetLimitsServerFieldErrors(t *testing.T) {
	env := newTestEnv(t)
	env.api.setErr = &client.HTTPError{
		StatusCode:  422,
		Message:     "The given data was invalid.",
		FieldErrors: map[string]string{"stake_per_bet_limit_amount": "Amount exceeds operator maximum"},
	}
	m := loadedSetLimits(t, env, &domain.LimitsSnapshot{})

	m = cursorTo(t, m, domain.StakePerBetLimit, "")
	m, _ = m.Update(spaceKey)
	m = cursorTo(t, m, domain.StakePerBetLimit, limits.FieldAmount)
	m, _ = m.Update(enterKey)
	m = typeText(m, "999999")
	m, _ = m.Update(enterKey)

	m, cmd := m.Update(ctrlSKey)
	m, _ = m.Update(cmd())

	if got := m.fieldErrs["stake_per_bet_limit_amount"]; got != "Amount exceeds operator maximum" {
		t.Errorf("field error = %q", got)
	}
	if !m.form.Draft(domain.StakePerBetLimit).Enabled {
		t.Error("rejected submit should keep drafts")
	}
}

func TestSetLimitsExclusiveWarning(t *testing.T) {
	env := newTestEnv(t)
	snap := &domain.LimitsSnapshot{Limits: domain.Limits{
		TimeOut: domain.LockLimit{Enabled: true, Option: domain.Option24Hours},
	}}
	m := loadedSetLimits(t, env, snap)

	m = cursorTo(t, m, domain.SelfExclusion, "")
	m, _ = m.Update(spaceKey)
	if m.form.Pending() == nil {
		t.Fatal("expected pending warning")
	}
	if !strings.Contains(m.View(), "disable any existing time-out") {
		t.Errorf("view missing warning:\n%s", m.View())
	}

	m, _ = m.Update(keyMsg("n"))
	if m.form.Pending() != nil || m.form.Draft(domain.SelfExclusion).Enabled {
		t.Fatal("dismiss should leave self-exclusion off")
	}

	m, _ = m.Update(spaceKey)
	m, _ = m.Update(keyMsg("y"))
	if !m.form.Draft(domain.SelfExclusion).Enabled {
		t.Error("acknowledge should enable self-exclusion")
	}
	if m.form.Draft(domain.TimeOut).Enabled {
		t.Error("time-out draft should be off")
	}
}

func TestSetLimitsCycleOption(t *testing.T) {
	env := newTestEnv(t)
	m := loadedSetLimits(t, env, &domain.LimitsSnapshot{})

	m = cursorTo(t, m, domain.TimeOut, "")
	m, _ = m.Update(spaceKey)
	m = cursorTo(t, m, domain.TimeOut, limits.FieldOption)

	m, _ = m.Update(keyMsg("l"))
	if got := m.form.Draft(domain.TimeOut).Value(limits.FieldOption); got != string(domain.Option24Hours) {
		t.Fatalf("option = %q, want first option", got)
	}
	m, _ = m.Update(keyMsg("h"))
	if got := m.form.Draft(domain.TimeOut).Value(limits.FieldOption); got != string(domain.Option7Days) {
		t.Errorf("option = %q, want wrap to last option", got)
	}
	if !strings.Contains(m.View(), "7 Days") {
		t.Errorf("view missing option label:\n%s", m.View())
	}
}

func TestSetLimitsLockedAndDisabledRows(t *testing.T) {
	end := time.Now().Add(30 * 24 * time.Hour)
	env := newTestEnv(t)
	snap := &domain.LimitsSnapshot{
		Limits: domain.Limits{
			Deposit:       domain.AmountLimit{Enabled: true, Amount: floatptr(1000)},
			SelfExclusion: domain.LockLimit{Enabled: true, Option: domain.Option3Months, Active: true, EndAt: &end},
		},
		Editable: domain.Editable{"deposit_limit": false, "self_exclusion_limit": false},
	}
	m := loadedSetLimits(t, env, snap)
	view := m.View()

	for _, want := range []string{limits.MsgLocked, "Deposit limit is already set", limits.MsgTimeOutCoveredBySelfExclusion} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m = cursorTo(t, m, domain.DepositLimit, "")
	m, _ = m.Update(spaceKey)
	if m.form.Draft(domain.DepositLimit).Enabled {
		t.Error("locked control toggled")
	}

	m = cursorTo(t, m, domain.TimeOut, "")
	m, _ = m.Update(spaceKey)
	if m.form.Draft(domain.TimeOut).Enabled {
		t.Error("disabled control toggled")
	}
}

func TestSetLimitsExternalLoadKeepsDrafts(t *testing.T) {
	env := newTestEnv(t)
	m := loadedSetLimits(t, env, &domain.LimitsSnapshot{})

	m = cursorTo(t, m, domain.DepositLimit, "")
	m, _ = m.Update(spaceKey)
	m, _ = m.Update(limitsLoadedMsg{snap: &domain.LimitsSnapshot{}})

	if !m.form.Draft(domain.DepositLimit).Enabled {
		t.Error("unsolicited load discarded drafts")
	}
}
