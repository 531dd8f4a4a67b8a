package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"github.com/playsafe/rgportal/internal/auth"
	"github.com/playsafe/rgportal/internal/browser"
	"github.com/playsafe/rgportal/internal/limits"
	"github.com/playsafe/rgportal/internal/locale"
	"github.com/playsafe/rgportal/internal/session"
)

type view int

const (
	viewLogin view = iota
	viewMyLimits
	viewSetLimits
	viewHistory
)

const msgSessionEnded = "You have been logged out."

// sessionChangedMsg carries a session state published by the store.
type sessionChangedMsg struct {
	state session.State
}

// SessionChanged wraps a session state for delivery with tea.Program.Send.
func SessionChanged(st session.State) tea.Msg {
	return sessionChangedMsg{state: st}
}

type loggedOutMsg struct{}

type languageSavedMsg struct {
	tag language.Tag
	err error
}

type browserOpenedMsg struct {
	err error
}

// Deps are the collaborators the TUI drives.
type Deps struct {
	Session      *session.Store
	Flow         *auth.Flow
	Limits       *limits.Service
	History      HistorySource
	RemoteLogout session.RemoteLogout
	SupportURL   string
	Version      string
	// OpenURL defaults to browser.Open.
	OpenURL func(string) error
}

// App is the root Bubbletea model.
type App struct {
	deps       Deps
	view       view
	authed     bool
	lang       language.Tag
	currency   string
	login      loginModel
	myLimits   myLimitsModel
	setLimits  setLimitsModel
	history    historyModel
	helpOpen   bool
	helpCursor int
	status     string
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates the TUI. A restored session opens on My Limits, otherwise on login.
func NewApp(d Deps) App {
	if d.OpenURL == nil {
		d.OpenURL = browser.Open
	}
	a := App{
		deps:      d,
		lang:      locale.Supported[0],
		login:     newLoginModel(d.Flow),
		myLimits:  newMyLimitsModel(d.Limits),
		setLimits: newSetLimitsModel(d.Limits),
		history:   newHistoryModel(d.History),
	}
	if d.Session != nil {
		st := d.Session.Snapshot()
		a.authed = st.IsAuthenticated()
		a.applyState(st)
	}
	if a.authed {
		a.view = viewMyLimits
		a.myLimits.loading = true
	}
	return a
}

func (a *App) applyState(st session.State) {
	a.lang = locale.Resolve(st.Language)
	if c := st.Config.Currency(); c != "" {
		a.currency = c
	}
	a.myLimits.lang = a.lang
	a.setLimits.lang = a.lang
	a.history.lang = a.lang
	if a.currency != "" {
		if a.myLimits.currency == "" {
			a.myLimits.currency = a.currency
		}
		if a.setLimits.currency == "" {
			a.setLimits.currency = a.currency
		}
	}
}

func (a App) Init() tea.Cmd {
	if a.authed {
		return tea.Batch(shimmerTickCmd(), a.myLimits.Init())
	}
	return shimmerTickCmd()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.login, _ = a.login.Update(bodyMsg)
		a.myLimits, _ = a.myLimits.Update(bodyMsg)
		a.setLimits, _ = a.setLimits.Update(bodyMsg)
		a.history, _ = a.history.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		a.login, _ = a.login.Update(msg)
		a.setLimits, _ = a.setLimits.Update(msg)
		return a, shimmerTickCmd()

	case sessionChangedMsg:
		a.applyState(msg.state)
		if !msg.state.IsAuthenticated() && a.authed {
			return a.signedOut(msgSessionEnded), nil
		}
		return a, nil

	case loggedOutMsg:
		return a.signedOut(msgSessionEnded), nil

	case verifiedMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if msg.err != nil {
			return a, cmd
		}
		a.authed = true
		a.status = ""
		if a.deps.Session != nil {
			a.applyState(a.deps.Session.Snapshot())
		}
		a.view = viewSetLimits
		a.setLimits.loading = true
		return a, tea.Batch(cmd, a.setLimits.Init())

	case limitsLoadedMsg:
		var c1, c2 tea.Cmd
		a.myLimits, c1 = a.myLimits.Update(msg)
		a.setLimits, c2 = a.setLimits.Update(msg)
		return a, tea.Batch(c1, c2)

	case limitsSubmittedMsg:
		var cmd tea.Cmd
		a.setLimits, cmd = a.setLimits.Update(msg)
		if msg.err == nil && msg.out != nil && msg.out.Snapshot != nil {
			a.myLimits, _ = a.myLimits.Update(limitsLoadedMsg{snap: msg.out.Snapshot})
		}
		return a, cmd

	case historyLoadedMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.Update(msg)
		return a, cmd

	case languageSavedMsg:
		if msg.err != nil {
			a.status = "could not save language: " + msg.err.Error()
			return a, nil
		}
		a.lang = msg.tag
		a.myLimits.lang = msg.tag
		a.setLimits.lang = msg.tag
		a.history.lang = msg.tag
		a.status = "Language: " + locale.Name(msg.tag)
		return a, nil

	case browserOpenedMsg:
		if msg.err != nil {
			a.status = "could not open browser: " + msg.err.Error()
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a.route(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// Help overlay captures all keys when open
	if a.helpOpen {
		items := helpItems(a.deps.SupportURL)
		switch key {
		case "?", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		case "j", "down":
			if a.helpCursor < len(items)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			if url := items[a.helpCursor].url; url != "" {
				open := a.deps.OpenURL
				return a, func() tea.Msg { return browserOpenedMsg{err: open(url)} }
			}
		}
		return a, nil
	}

	if !a.authed {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	// Global keys (only when not editing)
	if !a.isEditing() {
		switch key {
		case "?":
			a.helpOpen = true
			a.helpCursor = 0
			return a, nil
		case "q":
			return a, tea.Quit
		case "1":
			return a.switchTo(viewMyLimits)
		case "2":
			return a.switchTo(viewSetLimits)
		case "3":
			return a.switchTo(viewHistory)
		case "L":
			return a, a.logout()
		case "g":
			return a, a.toggleLanguage()
		}
	}
	a.status = ""
	return a.route(msg)
}

func (a App) switchTo(v view) (tea.Model, tea.Cmd) {
	if a.view == v {
		return a, nil
	}
	a.view = v
	a.status = ""
	switch v {
	case viewMyLimits:
		a.myLimits.loading = true
		return a, a.myLimits.Init()
	case viewSetLimits:
		if a.setLimits.form == nil {
			a.setLimits.loading = true
			return a, a.setLimits.Init()
		}
	case viewHistory:
		a.history.loading = true
		return a, a.history.Init()
	}
	return a, nil
}

func (a App) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewMyLimits:
		a.myLimits, cmd = a.myLimits.Update(msg)
	case viewSetLimits:
		a.setLimits, cmd = a.setLimits.Update(msg)
	case viewHistory:
		a.history, cmd = a.history.Update(msg)
	}
	return a, cmd
}

func (a App) logout() tea.Cmd {
	store, remote := a.deps.Session, a.deps.RemoteLogout
	return func() tea.Msg {
		if store != nil {
			store.Logout(context.Background(), remote)
		}
		return loggedOutMsg{}
	}
}

func (a App) toggleLanguage() tea.Cmd {
	next := locale.Next(a.lang)
	store := a.deps.Session
	return func() tea.Msg {
		if store == nil {
			return languageSavedMsg{tag: next}
		}
		return languageSavedMsg{tag: next, err: store.SetLanguage(context.Background(), locale.Code(next))}
	}
}

// signedOut drops every per-customer view and returns to the login screen.
func (a App) signedOut(status string) App {
	if !a.authed {
		return a
	}
	a.authed = false
	a.helpOpen = false
	a.view = viewLogin
	a.status = status
	a.currency = ""
	if a.deps.Flow != nil {
		a.deps.Flow.Reset()
	}
	if a.deps.Limits != nil {
		a.deps.Limits.Reset()
	}
	a.login = newLoginModel(a.deps.Flow)
	a.myLimits = newMyLimitsModel(a.deps.Limits)
	a.setLimits = newSetLimitsModel(a.deps.Limits)
	a.history = newHistoryModel(a.deps.History)
	a.myLimits.lang, a.setLimits.lang, a.history.lang = a.lang, a.lang, a.lang
	a.login.width, a.login.height = a.width, a.height-5
	return a
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLogin:
		return true
	case viewSetLimits:
		return a.setLimits.blocking()
	}
	return false
}

func (a App) View() string {
	// Header: centered shimmer logo
	logo := renderShimmerLogo(a.frame)

	statsLine := ""
	if a.deps.Session != nil && a.authed {
		st := a.deps.Session.Snapshot()
		var parts []string
		if st.Customer != nil {
			parts = append(parts, st.Customer.MobileNumber)
		}
		if a.currency != "" {
			parts = append(parts, a.currency)
		}
		parts = append(parts, strings.ToUpper(locale.Code(a.lang)))
		statsLine = metaStyle.Render(strings.Join(parts, " . "))
	}

	logoPad := max((a.width-lipgloss.Width(logo))/2, 0)
	header := strings.Repeat(" ", logoPad) + logo
	if statsLine != "" {
		statsPad := max((a.width-lipgloss.Width(statsLine))/2, 0)
		header += "\n" + strings.Repeat(" ", statsPad) + statsLine
	} else {
		header += "\n"
	}

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "My Limits", viewMyLimits},
		{"2", "Set Limits", viewSetLimits},
		{"3", "History", viewHistory},
	}

	var tabBar strings.Builder
	if a.authed {
		colWidth := a.width / len(tabs)
		for _, t := range tabs {
			var label string
			if t.v == a.view {
				label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
			} else {
				label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
			}
			labelWidth := lipgloss.Width(label)
			leftPad := max((colWidth-labelWidth)/2, 0)
			rightPad := max(colWidth-labelWidth-leftPad, 0)
			tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
		}
	}

	var body, help string
	switch a.view {
	case viewLogin:
		body = a.login.View()
		help = " " + a.login.helpKeys()
	case viewMyLimits:
		body = a.myLimits.View()
		help = " " + a.myLimits.helpKeys()
	case viewSetLimits:
		body = a.setLimits.View()
		help = " " + a.setLimits.helpKeys()
	case viewHistory:
		body = a.history.View()
		help = " " + a.history.helpKeys()
	}
	if a.authed && !a.isEditing() {
		help += "  " + helpEntry("g", "language") + "  " + helpEntry("L", "logout")
	}

	if a.helpOpen {
		body = helpView(helpItems(a.deps.SupportURL), a.helpCursor, a.deps.Version)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	statusBar := ""
	if a.status != "" {
		statusBar = " " + warnStyle.Render(a.status)
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, statusBar, help)
}
