package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/playsafe/rgportal/internal/limits"
	"github.com/playsafe/rgportal/internal/locale"
	"github.com/playsafe/rgportal/internal/notice"
	"github.com/playsafe/rgportal/pkg/domain"
)

// -- messages --

type limitsSubmittedMsg struct {
	out *limits.Outcome
	err error
}

// -- model --

// formRow is one selectable line: a control's toggle (field == "") or one of its inputs.
type formRow struct {
	kind  domain.ControlKind
	field limits.Field
}

type setLimitsModel struct {
	service    *limits.Service
	form       *limits.Form
	currency   string
	lang       language.Tag
	cursor     int
	editing    bool
	buffer     string
	loading    bool
	submitting bool
	notice     notice.Notice
	fieldErrs  map[string]string
	status     string
	lockNotice string
	frame      int
	width      int
	height     int
}

func newSetLimitsModel(s *limits.Service) setLimitsModel {
	return setLimitsModel{service: s, lang: locale.Supported[0]}
}

func (m setLimitsModel) Init() tea.Cmd {
	return loadLimits(m.service)
}

func (m setLimitsModel) rows() []formRow {
	if m.form == nil {
		return nil
	}
	var rows []formRow
	for _, k := range domain.ControlKinds {
		rows = append(rows, formRow{kind: k})
		if m.form.Locked(k) || !m.form.Draft(k).Enabled {
			continue
		}
		for _, f := range limits.Fields(k) {
			rows = append(rows, formRow{kind: k, field: f})
		}
	}
	return rows
}

func (m setLimitsModel) current() (formRow, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return formRow{}, false
	}
	return rows[m.cursor], true
}

func (m setLimitsModel) Update(msg tea.Msg) (setLimitsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case shimmerTickMsg:
		m.frame++

	case limitsLoadedMsg:
		requested := m.loading || m.form == nil
		m.loading = false
		if msg.err != nil {
			if requested {
				m.notice = notice.From(msg.err, msgLoadFailed)
			}
			return m, nil
		}
		if msg.snap.Currency != nil {
			m.currency = *msg.snap.Currency
		}
		// Loads started elsewhere must not discard unsaved drafts.
		if requested && !m.submitting {
			m.notice = notice.Notice{}
			m.resetForm(msg.snap)
		}

	case limitsSubmittedMsg:
		m.submitting = false
		if msg.err != nil {
			m.notice = notice.From(msg.err, limits.MsgSubmitFailed)
			m.fieldErrs = fieldErrors(msg.err, m.notice)
			return m, nil
		}
		m.status = msg.out.Message
		m.notice = notice.Notice{}
		m.fieldErrs = nil
		if msg.out.Snapshot != nil {
			if msg.out.Snapshot.Currency != nil {
				m.currency = *msg.out.Snapshot.Currency
			}
			m.resetForm(msg.out.Snapshot)
		} else if msg.out.RefreshErr != nil {
			m.notice = notice.From(msg.out.RefreshErr, msgLoadFailed)
		}
		if len(msg.out.Locked) > 0 {
			m.lockNotice = limits.LockNotice(msg.out.Locked)
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *setLimitsModel) resetForm(snap *domain.LimitsSnapshot) {
	m.form = limits.NewForm(snap)
	m.editing = false
	m.buffer = ""
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = 0
	}
}

// fieldErrors extracts per-input messages from a local or server rejection.
func fieldErrors(err error, n notice.Notice) map[string]string {
	if v, ok := domain.AsValidation(err); ok {
		return v.Fields
	}
	if n.Kind == notice.FieldRejection {
		return n.Fields
	}
	return nil
}

func (m setLimitsModel) handleKey(msg tea.KeyMsg) (setLimitsModel, tea.Cmd) {
	key := msg.String()

	// Lock-in acknowledgement blocks everything else.
	if m.lockNotice != "" {
		if key == "enter" || key == "esc" {
			m.lockNotice = ""
			m.service.AcknowledgeLocks()
		}
		return m, nil
	}
	if m.form == nil {
		if key == "r" {
			m.loading = true
			return m, loadLimits(m.service)
		}
		return m, nil
	}
	if m.form.Pending() != nil {
		switch key {
		case "y", "enter":
			m.form.Acknowledge()
		case "n", "esc":
			m.form.Dismiss()
		}
		return m, nil
	}
	if m.editing {
		return m.handleEditKey(key)
	}
	if m.submitting {
		return m, nil
	}

	rows := m.rows()
	switch key {
	case "j", "down", "tab":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "k", "up", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
	case " ", "space", "x":
		row, ok := m.current()
		if !ok || row.field != "" {
			return m, nil
		}
		m.status = ""
		m.toggle(row.kind)
	case "h", "left", "l", "right":
		row, ok := m.current()
		if ok && row.field == limits.FieldOption {
			m.cycleOption(row.kind, key == "l" || key == "right")
		}
	case "enter":
		row, ok := m.current()
		if !ok {
			return m, nil
		}
		if row.field == "" {
			m.toggle(row.kind)
			return m, nil
		}
		if row.field == limits.FieldOption {
			m.cycleOption(row.kind, true)
			return m, nil
		}
		m.editing = true
		m.buffer = m.form.Draft(row.kind).Value(row.field)
	case "ctrl+s":
		return m.submit()
	case "r":
		m.loading = true
		m.status = ""
		return m, loadLimits(m.service)
	}
	return m, nil
}

func (m *setLimitsModel) toggle(k domain.ControlKind) {
	on := !m.form.Draft(k).Enabled
	_, err := m.form.Toggle(k, on)
	switch {
	case errors.Is(err, limits.ErrLocked):
		m.notice = notice.Notice{Kind: notice.Validation, Text: limits.LockMessage(m.form.Snapshot(), k)}
	case errors.Is(err, limits.ErrToggleDisabled):
		reason, _ := m.form.ToggleDisabled(k)
		m.notice = notice.Notice{Kind: notice.Validation, Text: reason}
	case err != nil:
		m.notice = notice.From(err, "")
	default:
		m.notice = notice.Notice{}
		delete(m.fieldErrs, limits.EnabledKey(k))
	}
}

func (m *setLimitsModel) cycleOption(k domain.ControlKind, forward bool) {
	opts := k.Options()
	if len(opts) == 0 {
		return
	}
	cur := domain.Option(m.form.Draft(k).Value(limits.FieldOption))
	idx := -1
	for i, o := range opts {
		if o == cur {
			idx = i
		}
	}
	switch {
	case idx < 0:
		idx = 0
	case forward:
		idx = (idx + 1) % len(opts)
	default:
		idx = (idx - 1 + len(opts)) % len(opts)
	}
	if err := m.form.Set(k, limits.FieldOption, string(opts[idx])); err == nil {
		delete(m.fieldErrs, limits.FieldKey(k, limits.FieldOption))
	}
}

func (m setLimitsModel) handleEditKey(key string) (setLimitsModel, tea.Cmd) {
	row, ok := m.current()
	if !ok {
		m.editing = false
		return m, nil
	}
	switch key {
	case "enter":
		if err := m.form.Set(row.kind, row.field, m.buffer); err != nil {
			m.notice = notice.From(err, "")
		} else {
			delete(m.fieldErrs, limits.FieldKey(row.kind, row.field))
		}
		m.editing = false
	case "esc":
		m.editing = false
	default:
		allowed := amountChars
		if row.field == limits.FieldStartTime || row.field == limits.FieldEndTime {
			allowed = clockChars
		}
		m.buffer = editFiltered(m.buffer, key, allowed, fieldLen)
	}
	return m, nil
}

func (m setLimitsModel) submit() (setLimitsModel, tea.Cmd) {
	m.status = ""
	if verr := m.form.Validate(); verr != nil {
		m.notice = notice.From(verr, "")
		m.fieldErrs = verr.Fields
		return m, nil
	}
	m.notice = notice.Notice{}
	m.fieldErrs = nil
	m.submitting = true
	s, form := m.service, m.form
	return m, func() tea.Msg {
		out, err := s.Submit(context.Background(), form)
		return limitsSubmittedMsg{out: out, err: err}
	}
}

func (m setLimitsModel) View() string {
	var b strings.Builder

	b.WriteString(" " + selectedStyle.Render("Set Your Responsible Gaming Limits") + "\n")
	b.WriteString(" " + lockStyle.Render("Important: ") + dimStyle.Render(limits.MsgLockInNotice) + "\n\n")

	if m.lockNotice != "" {
		b.WriteString(overlayStyle.Render(m.lockNotice+"\n\n"+helpEntry("enter", "I understand")) + "\n")
		return b.String()
	}
	if m.form != nil {
		if w := m.form.Pending(); w != nil {
			b.WriteString(overlayStyle.Render(warnStyle.Render(w.Control.Label())+"\n\n"+w.Text+"\n\n"+
				helpEntry("y", "continue")+"  "+helpEntry("n", "cancel")) + "\n")
			return b.String()
		}
	}

	if m.loading && m.form == nil {
		b.WriteString(" " + dimStyle.Render("Loading current limits...") + "\n")
		return b.String()
	}
	if m.status != "" {
		b.WriteString(" " + successStyle.Render(m.status) + "\n\n")
	}
	if !m.notice.IsZero() {
		b.WriteString(renderNotice(m.notice) + "\n")
	}
	if m.form == nil {
		return b.String()
	}

	rows := m.rows()
	for i, row := range rows {
		active := i == m.cursor
		if row.field == "" {
			b.WriteString(m.renderControlRow(row.kind, active))
		} else {
			b.WriteString(m.renderFieldRow(row, active))
		}
	}

	if m.submitting {
		b.WriteString("\n " + dimStyle.Render("saving limits...") + "\n")
	}
	return b.String()
}

func (m setLimitsModel) renderControlRow(k domain.ControlKind, active bool) string {
	cursor := "  "
	if active {
		cursor = accentStyle.Render("▸ ")
	}
	title := ControlStyle(k).Render(k.Label())
	var b strings.Builder

	if m.form.Locked(k) {
		fmt.Fprintf(&b, " %s%s %s  %s\n", cursor, lockStyle.Render("[■]"), title, lockStyle.Render(limits.MsgLocked))
		if v := m.lockedValue(k); v != "" {
			b.WriteString("       " + valueStyle.Render(v) + "\n")
		}
		b.WriteString("       " + dimStyle.Render(limits.LockMessage(m.form.Snapshot(), k)) + "\n")
		return b.String()
	}

	box := "[ ]"
	if m.form.Draft(k).Enabled {
		box = accentStyle.Render("[x]")
	}
	if reason, disabled := m.form.ToggleDisabled(k); disabled {
		fmt.Fprintf(&b, " %s%s %s\n", cursor, metaStyle.Render("[-]"), title)
		b.WriteString("       " + dimStyle.Render(reason) + "\n")
		return b.String()
	}
	fmt.Fprintf(&b, " %s%s %s\n", cursor, box, title)
	if active {
		b.WriteString("       " + metaStyle.Render(limits.Description(k)) + "\n")
	}
	if msg := m.fieldErrs[limits.EnabledKey(k)]; msg != "" {
		b.WriteString("       " + errorStyle.Render(msg) + "\n")
	}
	return b.String()
}

var fieldLabels = map[limits.Field]string{
	limits.FieldAmount:    "Amount",
	limits.FieldOption:    "Duration",
	limits.FieldDuration:  "Break length (min)",
	limits.FieldFrequency: "Every (min)",
	limits.FieldStartTime: "Start (HH:MM)",
	limits.FieldEndTime:   "End (HH:MM)",
}

func (m setLimitsModel) renderFieldRow(row formRow, active bool) string {
	cursor := "    "
	if active {
		cursor = "  " + accentStyle.Render("▸ ")
	}
	label := fieldLabels[row.field]
	if row.field == limits.FieldAmount {
		switch {
		case row.kind == domain.BetCountLimit:
			label = "Number of bets"
		case m.currency != "":
			label = "Amount (" + m.currency + ")"
		}
	}
	label = lipgloss.NewStyle().Width(20).Render(label)

	value := m.form.Draft(row.kind).Value(row.field)
	var rendered string
	switch {
	case active && m.editing:
		rendered = renderInput(m.buffer, "", true, m.frame)
	case row.field == limits.FieldOption:
		if value == "" {
			rendered = inputPlaceholderStyle.Render("Select duration") + "  " + metaStyle.Render("h/l")
		} else {
			rendered = normalStyle.Render("‹ "+domain.Option(value).Label()+" ›")
		}
	case value == "":
		rendered = inputPlaceholderStyle.Render("enter to edit")
	default:
		rendered = normalStyle.Render(value)
	}

	line := fmt.Sprintf("   %s%s %s\n", cursor, dimStyle.Render(label), rendered)
	if msg := m.fieldErrs[limits.FieldKey(row.kind, row.field)]; msg != "" {
		line += "         " + errorStyle.Render(msg) + "\n"
	}
	return line
}

func (m setLimitsModel) lockedValue(k domain.ControlKind) string {
	snap := m.form.Snapshot()
	if snap == nil || !snap.Limits.Enabled(k) {
		return ""
	}
	l := snap.Limits
	switch k {
	case domain.StakePerBetLimit:
		return amountText(l.StakePerBet.Amount, m.currency, m.lang)
	case domain.DepositLimit:
		return amountText(l.Deposit.Amount, m.currency, m.lang)
	case domain.BetCountLimit:
		return amountText(l.BetCount.Amount, "bets", m.lang)
	case domain.TimeOut:
		return strings.TrimSpace(l.TimeOut.Option.Label() + "  " + limits.EndAtText(l.TimeOut))
	case domain.SelfExclusion:
		return strings.TrimSpace(l.SelfExclusion.Option.Label() + "  " + limits.EndAtText(l.SelfExclusion))
	case domain.SessionBreak:
		return breakText(l.SessionBreak)
	case domain.NightCurfew:
		return l.NightCurfew.DailyStartTime + " - " + l.NightCurfew.DailyEndTime
	}
	return ""
}

func (m setLimitsModel) helpKeys() string {
	switch {
	case m.lockNotice != "":
		return helpEntry("enter", "acknowledge")
	case m.form != nil && m.form.Pending() != nil:
		return helpEntry("y", "continue") + "  " + helpEntry("n", "cancel")
	case m.editing:
		return helpEntry("enter", "save") + "  " + helpEntry("esc", "cancel")
	}
	return helpEntry("1-3", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("space", "toggle") + "  " +
		helpEntry("enter", "edit") + "  " + helpEntry("h/l", "duration") + "  " + helpEntry("ctrl+s", "submit") + "  " +
		helpEntry("?", "help") + "  " + helpEntry("q", "quit")
}

// blocking reports whether the view must keep global keys for itself.
func (m setLimitsModel) blocking() bool {
	return m.editing || m.lockNotice != "" || (m.form != nil && m.form.Pending() != nil)
}
