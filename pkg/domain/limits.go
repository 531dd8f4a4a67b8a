package domain

import (
	"strings"
	"time"
)

// ControlKind identifies one of the seven responsible-gaming controls.
type ControlKind string

const (
	StakePerBetLimit ControlKind = "stake_per_bet_limit"
	DepositLimit     ControlKind = "deposit_limit"
	BetCountLimit    ControlKind = "bet_count_limit"
	TimeOut          ControlKind = "time_out"
	SelfExclusion    ControlKind = "self_exclusion"
	SessionBreak     ControlKind = "session_break"
	NightCurfew      ControlKind = "night_curfew"
)

// ControlKinds lists every control in display order.
var ControlKinds = []ControlKind{
	StakePerBetLimit,
	DepositLimit,
	BetCountLimit,
	TimeOut,
	SelfExclusion,
	SessionBreak,
	NightCurfew,
}

var controlLabels = map[ControlKind]string{
	StakePerBetLimit: "Stake Per Bet Limit",
	DepositLimit:     "Deposit Limit",
	BetCountLimit:    "Bet Count Limit",
	TimeOut:          "Time-Out",
	SelfExclusion:    "Self-Exclusion",
	SessionBreak:     "Session Breaks",
	NightCurfew:      "Night Curfew",
}

// Label returns the human-readable control name.
func (k ControlKind) Label() string {
	if l, ok := controlLabels[k]; ok {
		return l
	}
	return strings.ReplaceAll(string(k), "_", " ")
}

// PayloadPrefix is the key prefix used for this control in a set-limits payload.
// The temporal controls carry a "_limit" suffix on the wire.
func (k ControlKind) PayloadPrefix() string {
	switch k {
	case TimeOut, SelfExclusion:
		return string(k) + "_limit"
	}
	return string(k)
}

// EditableKey is the key used for this control in the editable map.
func (k ControlKind) EditableKey() string {
	return k.PayloadPrefix()
}

// Exclusive returns the control this one is mutually exclusive with, if any.
func (k ControlKind) Exclusive() (ControlKind, bool) {
	switch k {
	case TimeOut:
		return SelfExclusion, true
	case SelfExclusion:
		return TimeOut, true
	}
	return "", false
}

// ParseControlKind resolves a control from any of its wire spellings.
func ParseControlKind(s string) (ControlKind, bool) {
	s = strings.TrimSpace(s)
	for _, k := range ControlKinds {
		if s == string(k) || s == k.PayloadPrefix() {
			return k, true
		}
	}
	return "", false
}

// Option is an enumerated duration tag for time-out and self-exclusion.
type Option string

const (
	Option24Hours      Option = "24_hours"
	Option48Hours      Option = "48_hours"
	Option7Days        Option = "7_days"
	Option1Month       Option = "1_month"
	Option3Months      Option = "3_months"
	Option6Months      Option = "6_months"
	Option1Year        Option = "1_year"
	OptionIndefinitely Option = "indefinitely"
)

// TimeOutOptions are the allowed time-out durations.
var TimeOutOptions = []Option{Option24Hours, Option48Hours, Option7Days}

// SelfExclusionOptions are the allowed self-exclusion durations.
var SelfExclusionOptions = []Option{Option1Month, Option3Months, Option6Months, Option1Year, OptionIndefinitely}

var optionLabels = map[Option]string{
	Option24Hours:      "24 Hours",
	Option48Hours:      "48 Hours (2 days)",
	Option7Days:        "7 Days",
	Option1Month:       "1 Month",
	Option3Months:      "3 Months",
	Option6Months:      "6 Months",
	Option1Year:        "1 Year",
	OptionIndefinitely: "Indefinitely (Permanent)",
}

// Label returns the display text for an option.
func (o Option) Label() string {
	if l, ok := optionLabels[o]; ok {
		return l
	}
	return string(o)
}

// Options returns the allowed duration tags for a control, or nil.
func (k ControlKind) Options() []Option {
	switch k {
	case TimeOut:
		return TimeOutOptions
	case SelfExclusion:
		return SelfExclusionOptions
	}
	return nil
}

// ValidOption reports whether o is an allowed duration for the control.
func (k ControlKind) ValidOption(o Option) bool {
	for _, v := range k.Options() {
		if v == o {
			return true
		}
	}
	return false
}

// AmountLimit is a capped amount: stake per bet, deposit or bet count.
type AmountLimit struct {
	Enabled bool     `json:"enabled"`
	Amount  *float64 `json:"amount"`
}

// LockLimit is a temporal account lock: time-out or self-exclusion.
// Active is computed by the backend and is authoritative.
type LockLimit struct {
	Enabled bool       `json:"enabled"`
	Option  Option     `json:"option"`
	EndAt   *time.Time `json:"end_at"`
	Active  bool       `json:"active"`
}

// BreakLimit forces a break of Duration minutes every Frequency minutes.
type BreakLimit struct {
	Enabled   bool `json:"enabled"`
	Duration  *int `json:"duration"`
	Frequency *int `json:"frequency"`
}

// CurfewLimit blocks access daily between two HH:MM bounds.
type CurfewLimit struct {
	Enabled           bool   `json:"enabled"`
	DailyStartTime    string `json:"daily_start_time"`
	DailyEndTime      string `json:"daily_end_time"`
	CurrentlyInCurfew bool   `json:"currently_in_curfew"`
}

// Limits is the full set of seven controls.
type Limits struct {
	StakePerBet   AmountLimit `json:"stake_per_bet_limit"`
	Deposit       AmountLimit `json:"deposit_limit"`
	BetCount      AmountLimit `json:"bet_count_limit"`
	TimeOut       LockLimit   `json:"time_out"`
	SelfExclusion LockLimit   `json:"self_exclusion"`
	SessionBreak  BreakLimit  `json:"session_break"`
	NightCurfew   CurfewLimit `json:"night_curfew"`
}

// Enabled reports whether the given control is enabled.
func (l Limits) Enabled(k ControlKind) bool {
	switch k {
	case StakePerBetLimit:
		return l.StakePerBet.Enabled
	case DepositLimit:
		return l.Deposit.Enabled
	case BetCountLimit:
		return l.BetCount.Enabled
	case TimeOut:
		return l.TimeOut.Enabled
	case SelfExclusion:
		return l.SelfExclusion.Enabled
	case SessionBreak:
		return l.SessionBreak.Enabled
	case NightCurfew:
		return l.NightCurfew.Enabled
	}
	return false
}

// Any reports whether at least one control is enabled.
func (l Limits) Any() bool {
	for _, k := range ControlKinds {
		if l.Enabled(k) {
			return true
		}
	}
	return false
}

// Status is the server-computed summary of what is currently blocking play.
type Status struct {
	InTimeOut     bool `json:"is_in_time_out"`
	SelfExcluded  bool `json:"is_self_excluded"`
	InNightCurfew bool `json:"is_in_night_curfew"`
}

// Editable maps editable keys to whether the client may still change them.
type Editable map[string]bool

// Locked reports whether the backend has locked the control.
// Missing entries are treated as editable.
func (e Editable) Locked(k ControlKind) bool {
	if e == nil {
		return false
	}
	if v, ok := e[k.EditableKey()]; ok {
		return !v
	}
	if v, ok := e[string(k)]; ok {
		return !v
	}
	return false
}

// LimitsSnapshot is the backend's view of the customer's controls.
type LimitsSnapshot struct {
	Limits   Limits   `json:"limits"`
	Status   Status   `json:"status"`
	Editable Editable `json:"editable"`
	Currency *string  `json:"currency"`
}

// Locked reports whether the control is locked in this snapshot.
func (s *LimitsSnapshot) Locked(k ControlKind) bool {
	if s == nil {
		return false
	}
	return s.Editable.Locked(k)
}

// SelfExclusionInForce reports a server-confirmed self-exclusion that is
// permanent or has not yet expired.
func (s *LimitsSnapshot) SelfExclusionInForce() bool {
	if s == nil {
		return false
	}
	se := s.Limits.SelfExclusion
	return se.Enabled && (se.Option == OptionIndefinitely || se.Active)
}

// TimeOutInForce reports a server-confirmed time-out that is still running.
func (s *LimitsSnapshot) TimeOutInForce() bool {
	if s == nil {
		return false
	}
	to := s.Limits.TimeOut
	return to.Enabled && to.Active
}

// SetLimitsResult is the outcome of a successful set-limits call.
type SetLimitsResult struct {
	Message     string   `json:"message"`
	Currency    *string  `json:"currency"`
	ControlsSet []string `json:"controls_set"`
}
