// Package limits reconciles the customer's in-progress edits with the
// backend's limits snapshot and submits them.
package limits

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/playsafe/rgportal/pkg/domain"
)

// Field is one input of a control.
type Field string

const (
	FieldAmount    Field = "amount"
	FieldOption    Field = "option"
	FieldDuration  Field = "duration"
	FieldFrequency Field = "frequency"
	FieldStartTime Field = "daily_start_time"
	FieldEndTime   Field = "daily_end_time"
)

// Fields returns the inputs a control takes when enabled, in display order.
func Fields(k domain.ControlKind) []Field {
	switch k {
	case domain.StakePerBetLimit, domain.DepositLimit, domain.BetCountLimit:
		return []Field{FieldAmount}
	case domain.TimeOut, domain.SelfExclusion:
		return []Field{FieldOption}
	case domain.SessionBreak:
		return []Field{FieldDuration, FieldFrequency}
	case domain.NightCurfew:
		return []Field{FieldStartTime, FieldEndTime}
	}
	return nil
}

// EnabledKey is the payload key carrying a control's enabled flag.
func EnabledKey(k domain.ControlKind) string {
	return k.PayloadPrefix() + "_enabled"
}

// FieldKey is the payload key carrying one input of a control.
func FieldKey(k domain.ControlKind, f Field) string {
	return k.PayloadPrefix() + "_" + string(f)
}

var (
	// ErrLocked is returned when editing a control the backend has locked.
	ErrLocked = errors.New("limits: control is locked")
	// ErrToggleDisabled is returned when an exclusive control cannot be enabled
	// because the other one is in force server-side.
	ErrToggleDisabled = errors.New("limits: toggle disabled")
	// ErrAwaitingAcknowledgement is returned while a warning is unanswered.
	ErrAwaitingAcknowledgement = errors.New("limits: warning awaiting acknowledgement")
	// ErrNothingToSubmit is returned when every control is locked.
	ErrNothingToSubmit = errors.New("limits: no editable controls")
	// ErrUnknownField is returned for an input the control does not take.
	ErrUnknownField = errors.New("limits: unknown field")
)

// Draft is the in-progress edit of one control.
type Draft struct {
	Enabled bool
	Values  map[Field]string
}

// Value returns the raw input for f.
func (d Draft) Value(f Field) string {
	return d.Values[f]
}

// Warning must be acknowledged before a toggle takes effect.
type Warning struct {
	Control domain.ControlKind
	Text    string
}

// Form holds the drafts for all seven controls against one snapshot.
type Form struct {
	snap    *domain.LimitsSnapshot
	drafts  map[domain.ControlKind]*Draft
	pending *Warning
}

// NewForm starts a blank form over snap. A nil snap locks nothing.
func NewForm(snap *domain.LimitsSnapshot) *Form {
	f := &Form{snap: snap, drafts: make(map[domain.ControlKind]*Draft, len(domain.ControlKinds))}
	for _, k := range domain.ControlKinds {
		f.drafts[k] = &Draft{Values: make(map[Field]string)}
	}
	return f
}

// Snapshot returns the snapshot the form was built on.
func (f *Form) Snapshot() *domain.LimitsSnapshot { return f.snap }

// Draft returns a copy of the draft for k.
func (f *Form) Draft(k domain.ControlKind) Draft {
	d, ok := f.drafts[k]
	if !ok {
		return Draft{}
	}
	vals := make(map[Field]string, len(d.Values))
	for fk, v := range d.Values {
		vals[fk] = v
	}
	return Draft{Enabled: d.Enabled, Values: vals}
}

// Locked reports whether the backend has locked k.
func (f *Form) Locked(k domain.ControlKind) bool {
	return f.snap.Locked(k)
}

// ToggleDisabled reports whether k cannot be enabled at all because the
// exclusive control is in force server-side, and why.
func (f *Form) ToggleDisabled(k domain.ControlKind) (string, bool) {
	switch k {
	case domain.TimeOut:
		if f.snap.SelfExclusionInForce() {
			return MsgTimeOutCoveredBySelfExclusion, true
		}
	case domain.SelfExclusion:
		if f.snap.TimeOutInForce() {
			return MsgSelfExclusionBlockedByTimeOut, true
		}
	}
	return "", false
}

// Toggle switches k on or off. Enabling an exclusive control while the other
// is enabled (saved or drafted) returns a Warning and changes nothing until
// Acknowledge is called.
func (f *Form) Toggle(k domain.ControlKind, on bool) (*Warning, error) {
	d, ok := f.drafts[k]
	if !ok {
		return nil, fmt.Errorf("limits.Toggle: unknown control %q", k)
	}
	if f.Locked(k) {
		return nil, ErrLocked
	}
	if f.pending != nil {
		return nil, ErrAwaitingAcknowledgement
	}
	if !on {
		d.Enabled = false
		return nil, nil
	}
	if _, disabled := f.ToggleDisabled(k); disabled {
		return nil, ErrToggleDisabled
	}
	if other, ok := k.Exclusive(); ok {
		if f.drafts[other].Enabled || (f.snap != nil && f.snap.Limits.Enabled(other)) {
			f.pending = &Warning{Control: k, Text: replaceWarning(k)}
			w := *f.pending
			return &w, nil
		}
	}
	f.enable(k)
	return nil, nil
}

func (f *Form) enable(k domain.ControlKind) {
	f.drafts[k].Enabled = true
	if other, ok := k.Exclusive(); ok {
		od := f.drafts[other]
		od.Enabled = false
		delete(od.Values, FieldOption)
	}
}

// Pending returns the unanswered warning, if any.
func (f *Form) Pending() *Warning {
	if f.pending == nil {
		return nil
	}
	w := *f.pending
	return &w
}

// Acknowledge applies the toggle behind the pending warning.
func (f *Form) Acknowledge() {
	if f.pending == nil {
		return
	}
	k := f.pending.Control
	f.pending = nil
	f.enable(k)
}

// Dismiss drops the pending warning without applying it.
func (f *Form) Dismiss() {
	f.pending = nil
}

// Set records a raw input value for k.
func (f *Form) Set(k domain.ControlKind, field Field, value string) error {
	d, ok := f.drafts[k]
	if !ok {
		return fmt.Errorf("limits.Set: unknown control %q", k)
	}
	if f.Locked(k) {
		return ErrLocked
	}
	if !hasField(k, field) {
		return fmt.Errorf("limits.Set %s.%s: %w", k, field, ErrUnknownField)
	}
	d.Values[field] = strings.TrimSpace(value)
	return nil
}

func hasField(k domain.ControlKind, field Field) bool {
	for _, f := range Fields(k) {
		if f == field {
			return true
		}
	}
	return false
}

// Validate checks every editable, enabled draft. It returns nil when the form
// can be submitted.
func (f *Form) Validate() *domain.ValidationError {
	_, verr := f.build()
	return verr
}

// Payload builds the set-limits request body. Locked controls are omitted,
// disabled controls send only their enabled flag.
func (f *Form) Payload() (map[string]any, error) {
	if f.pending != nil {
		return nil, ErrAwaitingAcknowledgement
	}
	p, verr := f.build()
	if verr != nil {
		return nil, verr
	}
	if len(p) == 0 {
		return nil, ErrNothingToSubmit
	}
	return p, nil
}

func (f *Form) build() (map[string]any, *domain.ValidationError) {
	payload := make(map[string]any)
	errs := make(map[string]string)

	for _, k := range domain.ControlKinds {
		if f.Locked(k) {
			continue
		}
		d := f.drafts[k]
		payload[EnabledKey(k)] = d.Enabled
		if !d.Enabled {
			continue
		}
		for _, field := range Fields(k) {
			key := FieldKey(k, field)
			v, msg := coerce(k, field, d.Values[field])
			if msg != "" {
				errs[key] = msg
				continue
			}
			payload[key] = v
		}
		if k == domain.NightCurfew {
			start, end := payload[FieldKey(k, FieldStartTime)], payload[FieldKey(k, FieldEndTime)]
			if start != nil && start == end {
				errs[FieldKey(k, FieldEndTime)] = MsgCurfewSameBounds
			}
		}
	}

	to, se := f.drafts[domain.TimeOut], f.drafts[domain.SelfExclusion]
	switch {
	case to.Enabled && se.Enabled && !f.Locked(domain.TimeOut) && !f.Locked(domain.SelfExclusion):
		errs[EnabledKey(domain.TimeOut)] = MsgBothLocksSelected
	case to.Enabled && !f.Locked(domain.TimeOut) && f.snap.SelfExclusionInForce():
		errs[EnabledKey(domain.TimeOut)] = MsgTimeOutCoveredBySelfExclusion
	case se.Enabled && !f.Locked(domain.SelfExclusion) && f.snap.TimeOutInForce():
		errs[EnabledKey(domain.SelfExclusion)] = MsgSelfExclusionBlockedByTimeOut
	}

	if len(errs) > 0 {
		return nil, &domain.ValidationError{Fields: errs}
	}
	return payload, nil
}

// coerce converts one raw input into its wire value, or returns a message.
func coerce(k domain.ControlKind, field Field, raw string) (any, string) {
	raw = strings.TrimSpace(raw)
	switch field {
	case FieldAmount:
		if raw == "" {
			return nil, MsgAmountRequired
		}
		if k == domain.BetCountLimit {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, MsgWholeNumber
			}
			if n < 1 {
				return nil, MsgAtLeastOne
			}
			return n, ""
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, MsgNotANumber
		}
		if v < 1 {
			return nil, MsgAtLeastOne
		}
		return v, ""

	case FieldOption:
		if raw == "" {
			return nil, MsgDurationRequired
		}
		o := domain.Option(raw)
		if !k.ValidOption(o) {
			return nil, MsgInvalidOption
		}
		return string(o), ""

	case FieldDuration, FieldFrequency:
		if raw == "" {
			return nil, MsgRequired
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, MsgWholeNumber
		}
		if n < 1 {
			return nil, MsgMinOneMinute
		}
		if field == FieldDuration && n > MaxBreakDuration {
			return nil, MsgMaxBreakDuration
		}
		if field == FieldFrequency && n > MaxBreakFrequency {
			return nil, MsgMaxBreakFrequency
		}
		return n, ""

	case FieldStartTime, FieldEndTime:
		if raw == "" {
			return nil, MsgRequired
		}
		t, err := time.Parse("15:04", raw)
		if err != nil {
			return nil, MsgInvalidTime
		}
		return t.Format("15:04"), ""
	}
	return nil, MsgRequired
}
