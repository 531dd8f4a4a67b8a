package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/playsafe/rgportal/internal/auth"
	"github.com/playsafe/rgportal/internal/notice"
	"github.com/playsafe/rgportal/pkg/domain"
)

// -- messages --

type codeSentMsg struct {
	text string
	err  error
}

type verifiedMsg struct {
	err error
}

// -- model --

type loginModel struct {
	flow    *auth.Flow
	input   string
	status  string
	notice  notice.Notice
	pending bool
	frame   int
	width   int
	height  int
}

func newLoginModel(flow *auth.Flow) loginModel {
	return loginModel{flow: flow}
}

func (m loginModel) step() auth.Step {
	if m.flow == nil {
		return auth.AwaitingMobileNumber
	}
	return m.flow.Step()
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case shimmerTickMsg:
		m.frame++

	case codeSentMsg:
		m.pending = false
		if msg.err != nil {
			m.notice = notice.From(msg.err, auth.MsgSendFailed)
			return m, nil
		}
		m.status = msg.text
		m.input = ""

	case verifiedMsg:
		m.pending = false
		if msg.err != nil {
			m.notice = notice.From(msg.err, auth.MsgVerifyFailed)
			return m, nil
		}
		m.input = ""
		m.status = ""

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m loginModel) handleKey(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	key := msg.String()
	switch key {
	case "enter":
		return m.submit()
	case "esc":
		if m.step() == auth.AwaitingCode && m.flow.ChangeNumber() == nil {
			m.input = m.flow.MobileNumber()
			m.status = ""
			m.notice = notice.Notice{}
		}
		return m, nil
	case "ctrl+r":
		if m.step() == auth.AwaitingCode {
			m.notice = notice.Notice{}
			m.pending = true
			return m, m.sendCode(m.flow.MobileNumber())
		}
		return m, nil
	}

	m.notice = notice.Notice{}
	if m.step() == auth.AwaitingCode {
		m.input = editFiltered(m.input, key, codeChars, codeLen)
	} else {
		m.input = editFiltered(m.input, key, mobileChars, mobileLen)
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	value := strings.TrimSpace(m.input)
	switch m.step() {
	case auth.AwaitingMobileNumber:
		if !auth.ValidMobileNumber(value) {
			m.notice = notice.From(domain.ErrValidation("mobile_number", auth.MsgInvalidMobile), "")
			return m, nil
		}
		m.pending = true
		m.notice = notice.Notice{}
		return m, m.sendCode(value)

	case auth.AwaitingCode:
		if !auth.ValidCode(value) {
			m.notice = notice.From(domain.ErrValidation("otp", auth.MsgInvalidCode), "")
			return m, nil
		}
		m.pending = true
		m.notice = notice.Notice{}
		flow := m.flow
		return m, func() tea.Msg {
			return verifiedMsg{err: flow.Verify(context.Background(), value)}
		}
	}
	return m, nil
}

func (m loginModel) sendCode(mobile string) tea.Cmd {
	flow := m.flow
	return func() tea.Msg {
		text, err := flow.SendCode(context.Background(), mobile)
		return codeSentMsg{text: text, err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder

	b.WriteString("\n " + selectedStyle.Render("Responsible Gaming Portal") + "\n")
	b.WriteString(" " + dimStyle.Render("Log in to view and set your gambling limits.") + "\n\n")

	switch m.step() {
	case auth.AwaitingCode:
		b.WriteString(" " + sectionHeaderStyle.Render("One-time passcode sent to ") + normalStyle.Render(m.flow.MobileNumber()) + "\n")
		b.WriteString(" " + renderInput(m.input, "6-digit code", !m.pending, m.frame) + "\n")
	default:
		b.WriteString(" " + sectionHeaderStyle.Render("Mobile number") + "\n")
		b.WriteString(" " + renderInput(m.input, "+254712345678", !m.pending, m.frame) + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.pending && m.step() == auth.AwaitingCode:
		b.WriteString(" " + dimStyle.Render("verifying...") + "\n")
	case m.pending:
		b.WriteString(" " + dimStyle.Render("sending code...") + "\n")
	case !m.notice.IsZero():
		b.WriteString(renderNotice(m.notice))
	case m.status != "":
		b.WriteString(" " + successStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m loginModel) helpKeys() string {
	if m.step() == auth.AwaitingCode {
		return helpEntry("enter", "verify") + "  " + helpEntry("ctrl+r", "resend") + "  " + helpEntry("esc", "change number") + "  " + helpEntry("ctrl+c", "quit")
	}
	return helpEntry("enter", "send code") + "  " + helpEntry("ctrl+c", "quit")
}
