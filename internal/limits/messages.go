package limits

import (
	"fmt"
	"strings"

	"github.com/playsafe/rgportal/pkg/domain"
)

// Session break bounds, in minutes.
const (
	MaxBreakDuration  = 60
	MaxBreakFrequency = 480
)

const (
	MsgAmountRequired    = "Amount is required"
	MsgDurationRequired  = "Duration is required"
	MsgRequired          = "Required"
	MsgAtLeastOne        = "Must be at least 1"
	MsgNotANumber        = "Must be a number"
	MsgWholeNumber       = "Must be a whole number"
	MsgMinOneMinute      = "Min 1 minute"
	MsgMaxBreakDuration  = "Max 60 minutes"
	MsgMaxBreakFrequency = "Max 480 minutes"
	MsgInvalidOption     = "Select a valid duration"
	MsgInvalidTime       = "Use HH:MM (24-hour)"
	MsgCurfewSameBounds  = "End time must differ from start time"
	MsgBothLocksSelected = "Choose either a time-out or a self-exclusion, not both"

	MsgTimeOutCoveredBySelfExclusion = "A self-exclusion is currently active, so a time-out is covered automatically. Contact support or wait until the self-exclusion ends to set a shorter lock-out."
	MsgSelfExclusionBlockedByTimeOut = "A time-out is currently active. Wait for it to end before setting a self-exclusion."

	MsgSubmitFailed = "Failed to set limits. Please try again."
	MsgSaved        = "Limits saved successfully."
	MsgLocked       = "Limit Already Set"
	MsgLockInNotice = "Once set, limits cannot be changed by you. Only support can remove them."
)

func replaceWarning(k domain.ControlKind) string {
	if k == domain.TimeOut {
		return "Activating a time-out will disable your self-exclusion. Continue only if you want to replace the longer lock."
	}
	return "Activating a self-exclusion will disable any existing time-out. Continue only if you want the longer lock instead."
}

var descriptions = map[domain.ControlKind]string{
	domain.StakePerBetLimit: "Set a maximum amount you can bet on any single bet",
	domain.DepositLimit:     "Set a maximum amount you can deposit (operator decides enforcement window)",
	domain.BetCountLimit:    "Limit the NUMBER of bets you can place (not the amount)",
	domain.TimeOut:          "Take a short break from gambling. Your account will be locked temporarily.",
	domain.SelfExclusion:    "Permanently or long-term block your account. This is for serious situations.",
	domain.SessionBreak:     "Take forced breaks during play to avoid gambling fatigue",
	domain.NightCurfew:      "Block access during specific hours every night (e.g., ensure proper sleep)",
}

// Description explains what a control does.
func Description(k domain.ControlKind) string {
	return descriptions[k]
}

const endAtLayout = "02 Jan 2006 15:04"

// LockMessage explains why a locked control cannot be edited.
func LockMessage(snap *domain.LimitsSnapshot, k domain.ControlKind) string {
	if snap == nil {
		return ""
	}
	switch k {
	case domain.TimeOut:
		to := snap.Limits.TimeOut
		if to.Active && to.EndAt != nil {
			return fmt.Sprintf("Time-out is active until %s. Wait for it to expire.", to.EndAt.Local().Format(endAtLayout))
		}
		return "Time-out has expired. You can set a new one."
	case domain.SelfExclusion:
		se := snap.Limits.SelfExclusion
		switch {
		case se.Option == domain.OptionIndefinitely:
			return "You are permanently self-excluded. Contact support to reactivate."
		case se.Active && se.EndAt != nil:
			return fmt.Sprintf("Self-exclusion active until %s. Contact support for early reactivation.", se.EndAt.Local().Format(endAtLayout))
		}
		return "Self-exclusion has expired. You can set a new one."
	}
	return fmt.Sprintf("%s is already set. Contact support to remove it.", lockNames[k])
}

var lockNames = map[domain.ControlKind]string{
	domain.StakePerBetLimit: "Stake per bet limit",
	domain.DepositLimit:     "Deposit limit",
	domain.BetCountLimit:    "Bet count limit",
	domain.SessionBreak:     "Session break",
	domain.NightCurfew:      "Night curfew",
}

// EndAtText renders a temporal control's end for display.
func EndAtText(l domain.LockLimit) string {
	if l.EndAt == nil {
		return ""
	}
	prefix := "Was active until"
	if l.Active {
		prefix = "Active until"
	}
	return prefix + ": " + l.EndAt.Local().Format(endAtLayout)
}

// LockNotice is the blocking acknowledgement shown after controls are locked in.
func LockNotice(controls []string) string {
	names := make([]string, 0, len(controls))
	for _, c := range controls {
		if k, ok := domain.ParseControlKind(c); ok {
			names = append(names, k.Label())
			continue
		}
		names = append(names, c)
	}
	return "Controls Set:\n\n" + strings.Join(names, "\n") +
		"\n\nThese limits are now locked and cannot be changed.\nContact support to remove them."
}
