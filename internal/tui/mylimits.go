package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/playsafe/rgportal/internal/limits"
	"github.com/playsafe/rgportal/internal/locale"
	"github.com/playsafe/rgportal/internal/notice"
	"github.com/playsafe/rgportal/pkg/domain"
)

const msgLoadFailed = "Failed to load limits. Please try again."

// -- messages --

type limitsLoadedMsg struct {
	snap *domain.LimitsSnapshot
	err  error
}

type copyResultMsg struct {
	err error
}

// -- model --

type myLimitsModel struct {
	service  *limits.Service
	snap     *domain.LimitsSnapshot
	currency string
	lang     language.Tag
	loading  bool
	notice   notice.Notice
	status   string
	width    int
	height   int
}

func newMyLimitsModel(s *limits.Service) myLimitsModel {
	return myLimitsModel{service: s, lang: locale.Supported[0]}
}

func (m myLimitsModel) Init() tea.Cmd {
	return loadLimits(m.service)
}

func loadLimits(s *limits.Service) tea.Cmd {
	return func() tea.Msg {
		snap, err := s.Fetch(context.Background())
		return limitsLoadedMsg{snap: snap, err: err}
	}
}

func (m myLimitsModel) Update(msg tea.Msg) (myLimitsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case limitsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.notice = notice.From(msg.err, msgLoadFailed)
		} else {
			m.snap = msg.snap
			m.notice = notice.Notice{}
			if msg.snap.Currency != nil {
				m.currency = *msg.snap.Currency
			}
		}

	case copyResultMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
		} else {
			m.status = "summary copied to clipboard"
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			m.status = ""
			return m, loadLimits(m.service)
		case "c":
			if m.snap != nil {
				text := summaryText(m.snap, m.currency, m.lang)
				return m, func() tea.Msg {
					return copyResultMsg{err: clipboard.WriteAll(text)}
				}
			}
		}
	}
	return m, nil
}

func (m myLimitsModel) View() string {
	var b strings.Builder

	if m.loading && m.snap == nil {
		b.WriteString(" " + dimStyle.Render("Loading your limits...") + "\n")
		return b.String()
	}
	if !m.notice.IsZero() {
		b.WriteString(renderNotice(m.notice))
		if m.snap == nil {
			return b.String()
		}
		b.WriteString("\n")
	}
	if m.snap == nil {
		return b.String()
	}

	st := m.snap.Status
	if st.InTimeOut {
		b.WriteString(" " + warnStyle.Render("● You are currently in time-out") + "\n")
	}
	if st.SelfExcluded {
		b.WriteString(" " + dangerStyle.Render("● You are self-excluded") + "\n")
	}
	if st.InNightCurfew {
		b.WriteString(" " + warnStyle.Render("● Night curfew is currently active") + "\n")
	}
	if st.InTimeOut || st.SelfExcluded || st.InNightCurfew {
		b.WriteString("\n")
	}

	if !m.snap.Limits.Any() {
		b.WriteString("\n " + selectedStyle.Render("No Limits Set Yet") + "\n")
		b.WriteString(" " + dimStyle.Render("You haven't set any responsible gaming controls yet.") + "\n")
		b.WriteString(" " + dimStyle.Render("Press 2 to set limits and stay in control.") + "\n")
		return b.String()
	}

	for _, k := range domain.ControlKinds {
		if !m.snap.Limits.Enabled(k) {
			continue
		}
		label := ControlStyle(k).Render(k.Label())
		if m.snap.Locked(k) {
			label += " " + lockStyle.Render("locked")
		}
		b.WriteString(cardBorder("top", label, controlColors[k], m.width) + "\n")
		for _, line := range m.cardLines(k) {
			b.WriteString("   " + line + "\n")
		}
		b.WriteString(cardBorder("bottom", "", controlColors[k], m.width) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n " + successStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m myLimitsModel) cardLines(k domain.ControlKind) []string {
	l := m.snap.Limits
	switch k {
	case domain.StakePerBetLimit, domain.DepositLimit:
		a := l.StakePerBet
		desc := "Maximum amount per single bet"
		if k == domain.DepositLimit {
			a = l.Deposit
			desc = "Maximum deposit amount"
		}
		return []string{valueStyle.Render(amountText(a.Amount, m.currency, m.lang)), dimStyle.Render(desc)}
	case domain.BetCountLimit:
		return []string{valueStyle.Render(amountText(l.BetCount.Amount, "bets", m.lang)), dimStyle.Render("Maximum number of bets")}
	case domain.TimeOut, domain.SelfExclusion:
		lock := l.TimeOut
		if k == domain.SelfExclusion {
			lock = l.SelfExclusion
		}
		return m.lockLines(k, lock)
	case domain.SessionBreak:
		return []string{valueStyle.Render(breakText(l.SessionBreak)), dimStyle.Render("Forced break during play")}
	case domain.NightCurfew:
		lines := []string{valueStyle.Render(l.NightCurfew.DailyStartTime + " - " + l.NightCurfew.DailyEndTime)}
		if l.NightCurfew.CurrentlyInCurfew {
			lines = append(lines, warnStyle.Render("ACTIVE"))
		}
		return lines
	}
	return nil
}

func (m myLimitsModel) lockLines(k domain.ControlKind, lock domain.LockLimit) []string {
	lines := []string{valueStyle.Render(lock.Option.Label())}
	switch {
	case lock.Active && lock.EndAt != nil:
		lines = append(lines,
			dimStyle.Render("Until: "+lock.EndAt.Local().Format("02 Jan 2006 15:04")+" ("+locale.Relative(m.lang, *lock.EndAt)+")"),
			dangerStyle.Render("ACTIVE"))
	case lock.Active || (k == domain.SelfExclusion && lock.Option == domain.OptionIndefinitely):
		lines = append(lines, dimStyle.Render("Permanent"), dangerStyle.Render("ACTIVE"))
	case lock.EndAt != nil && k == domain.SelfExclusion:
		lines = append(lines, metaStyle.Render("Expired - Contact support to reactivate"))
	case lock.EndAt != nil:
		lines = append(lines, metaStyle.Render("Expired"))
	}
	return lines
}

func amountText(amount *float64, unit string, lang language.Tag) string {
	if amount == nil {
		return "-"
	}
	return locale.FormatAmount(lang, *amount, unit)
}

func breakText(sb domain.BreakLimit) string {
	if sb.Duration == nil || sb.Frequency == nil {
		return "-"
	}
	return fmt.Sprintf("%dmin every %dmin", *sb.Duration, *sb.Frequency)
}

// summaryText is the plain-text snapshot copied to the clipboard.
func summaryText(snap *domain.LimitsSnapshot, currency string, lang language.Tag) string {
	var b strings.Builder
	b.WriteString("Responsible gaming limits\n")
	if !snap.Limits.Any() {
		b.WriteString("No limits set.\n")
		return b.String()
	}
	l := snap.Limits
	for _, k := range domain.ControlKinds {
		if !l.Enabled(k) {
			continue
		}
		var v string
		switch k {
		case domain.StakePerBetLimit:
			v = amountText(l.StakePerBet.Amount, currency, lang)
		case domain.DepositLimit:
			v = amountText(l.Deposit.Amount, currency, lang)
		case domain.BetCountLimit:
			v = amountText(l.BetCount.Amount, "bets", lang)
		case domain.TimeOut:
			v = l.TimeOut.Option.Label()
			if t := limits.EndAtText(l.TimeOut); t != "" {
				v += " (" + t + ")"
			}
		case domain.SelfExclusion:
			v = l.SelfExclusion.Option.Label()
			if t := limits.EndAtText(l.SelfExclusion); t != "" {
				v += " (" + t + ")"
			}
		case domain.SessionBreak:
			v = breakText(l.SessionBreak)
		case domain.NightCurfew:
			v = l.NightCurfew.DailyStartTime + " - " + l.NightCurfew.DailyEndTime
		}
		fmt.Fprintf(&b, "- %s: %s\n", k.Label(), v)
	}
	return b.String()
}

func (m myLimitsModel) helpKeys() string {
	return helpEntry("1-3", "tabs") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("c", "copy") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
}
