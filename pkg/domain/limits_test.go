package domain

import (
	"encoding/json"
	"testing"
)

func TestParseControlKind(t *testing.T) {
	tests := []struct {
		in   string
		want ControlKind
		ok   bool
	}{
		{"deposit_limit", DepositLimit, true},
		{"time_out", TimeOut, true},
		{"time_out_limit", TimeOut, true},
		{"self_exclusion_limit", SelfExclusion, true},
		{" night_curfew ", NightCurfew, true},
		{"unknown", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseControlKind(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseControlKind(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEditableLockedAcceptsBothSpellings(t *testing.T) {
	e := Editable{"time_out_limit": false, "self_exclusion": false, "deposit_limit": true}
	if !e.Locked(TimeOut) {
		t.Error("expected time_out locked via time_out_limit key")
	}
	if !e.Locked(SelfExclusion) {
		t.Error("expected self_exclusion locked via bare key")
	}
	if e.Locked(DepositLimit) {
		t.Error("expected deposit_limit editable")
	}
	if e.Locked(NightCurfew) {
		t.Error("missing entries should be editable")
	}
	var nilMap Editable
	if nilMap.Locked(StakePerBetLimit) {
		t.Error("nil editable map should lock nothing")
	}
}

func TestSnapshotInForce(t *testing.T) {
	raw := `{
		"limits": {
			"stake_per_bet_limit": {"enabled": false, "amount": null},
			"deposit_limit": {"enabled": true, "amount": 20000},
			"bet_count_limit": {"enabled": false, "amount": null},
			"time_out": {"enabled": false, "option": null, "end_at": null, "active": false},
			"self_exclusion": {"enabled": true, "option": "indefinitely", "end_at": null, "active": false},
			"session_break": {"enabled": false, "duration": null, "frequency": null},
			"night_curfew": {"enabled": false, "daily_start_time": null, "daily_end_time": null}
		},
		"status": {"is_in_time_out": false, "is_self_excluded": true, "is_in_night_curfew": false},
		"editable": {"deposit_limit": false, "time_out_limit": true},
		"currency": "KES"
	}`
	var s LimitsSnapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !s.SelfExclusionInForce() {
		t.Error("indefinite self-exclusion should be in force")
	}
	if s.TimeOutInForce() {
		t.Error("time-out should not be in force")
	}
	if !s.Locked(DepositLimit) {
		t.Error("deposit_limit should be locked")
	}
	if s.Limits.Deposit.Amount == nil || *s.Limits.Deposit.Amount != 20000 {
		t.Errorf("deposit amount = %v, want 20000", s.Limits.Deposit.Amount)
	}
	if !s.Limits.Any() {
		t.Error("expected Any() = true")
	}
	if s.Currency == nil || *s.Currency != "KES" {
		t.Errorf("currency = %v, want KES", s.Currency)
	}
}

func TestExpiredSelfExclusionNotInForce(t *testing.T) {
	s := &LimitsSnapshot{Limits: Limits{SelfExclusion: LockLimit{Enabled: true, Option: Option1Month, Active: false}}}
	if s.SelfExclusionInForce() {
		t.Error("expired self-exclusion should not be in force")
	}
	var nilSnap *LimitsSnapshot
	if nilSnap.SelfExclusionInForce() || nilSnap.TimeOutInForce() || nilSnap.Locked(TimeOut) {
		t.Error("nil snapshot should report nothing")
	}
}

func TestValidOption(t *testing.T) {
	if !TimeOut.ValidOption(Option48Hours) {
		t.Error("48_hours should be a valid time-out option")
	}
	if TimeOut.ValidOption(OptionIndefinitely) {
		t.Error("indefinitely is not a time-out option")
	}
	if !SelfExclusion.ValidOption(OptionIndefinitely) {
		t.Error("indefinitely should be a valid self-exclusion option")
	}
	if DepositLimit.ValidOption(Option24Hours) {
		t.Error("deposit_limit has no options")
	}
}
