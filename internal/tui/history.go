package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/playsafe/rgportal/internal/locale"
	"github.com/playsafe/rgportal/internal/notice"
	"github.com/playsafe/rgportal/pkg/domain"
)

const msgHistoryFailed = "Failed to load history. Please try again."

// HistorySource fetches operator notification deliveries.
type HistorySource interface {
	GetHistory(ctx context.Context) ([]domain.DeliveryRecord, error)
}

// -- messages --

type historyLoadedMsg struct {
	records []domain.DeliveryRecord
	err     error
}

// -- model --

type historyModel struct {
	source   HistorySource
	records  []domain.DeliveryRecord
	loaded   bool
	loading  bool
	cursor   int
	expanded bool
	lang     language.Tag
	notice   notice.Notice
	width    int
	height   int
}

func newHistoryModel(src HistorySource) historyModel {
	return historyModel{source: src, lang: locale.Supported[0]}
}

func (m historyModel) Init() tea.Cmd {
	return m.load()
}

func (m historyModel) load() tea.Cmd {
	src := m.source
	return func() tea.Msg {
		if src == nil {
			return historyLoadedMsg{}
		}
		records, err := src.GetHistory(context.Background())
		return historyLoadedMsg{records: records, err: err}
	}
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case historyLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.notice = notice.From(msg.err, msgHistoryFailed)
			return m, nil
		}
		m.notice = notice.Notice{}
		m.records = msg.records
		m.loaded = true
		if m.cursor >= len(m.records) {
			m.cursor = 0
			m.expanded = false
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.records)-1 {
				m.cursor++
				m.expanded = false
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
				m.expanded = false
			}
		case "enter":
			if len(m.records) > 0 {
				m.expanded = !m.expanded
			}
		case "r":
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m historyModel) View() string {
	var b strings.Builder

	b.WriteString(" " + selectedStyle.Render("Notification History") + "\n")
	b.WriteString(" " + dimStyle.Render("Operators notified when your limits changed.") + "\n\n")

	if m.loading && !m.loaded {
		b.WriteString(" " + dimStyle.Render("Loading history...") + "\n")
		return b.String()
	}
	if !m.notice.IsZero() {
		b.WriteString(renderNotice(m.notice))
		if !m.loaded {
			return b.String()
		}
		b.WriteString("\n")
	}
	if !m.loaded {
		return b.String()
	}
	if len(m.records) == 0 {
		b.WriteString(" " + dimStyle.Render("No notifications yet.") + "\n")
		return b.String()
	}

	for i, r := range m.records {
		cursor := "  "
		title := normalStyle.Render(r.EventLabel())
		if i == m.cursor {
			cursor = accentStyle.Render("▸ ")
			title = selectedStyle.Render(r.EventLabel())
		}
		when := ""
		if r.CreatedAt != nil {
			when = locale.Relative(m.lang, *r.CreatedAt)
		}
		fmt.Fprintf(&b, " %s%s  %s  %s  %s\n", cursor, title, metaStyle.Render(r.Operator), statusBadge(r.Status), dimStyle.Render(when))
		if i == m.cursor && m.expanded {
			for _, line := range m.detailLines(r) {
				b.WriteString("      " + line + "\n")
			}
		}
	}
	return b.String()
}

func (m historyModel) detailLines(r domain.DeliveryRecord) []string {
	const layout = "02 Jan 2006 15:04"
	var lines []string
	if r.CreatedAt != nil {
		lines = append(lines, dimStyle.Render("Created:   ")+normalStyle.Render(r.CreatedAt.Local().Format(layout)))
	}
	if r.DeliveredAt != nil {
		lines = append(lines, dimStyle.Render("Delivered: ")+successStyle.Render(r.DeliveredAt.Local().Format(layout)))
	}
	if r.FailedAt != nil {
		lines = append(lines, dimStyle.Render("Failed:    ")+errorStyle.Render(r.FailedAt.Local().Format(layout)))
	}
	lines = append(lines, dimStyle.Render("Retries:   ")+normalStyle.Render(fmt.Sprintf("%d", r.RetryCount)))
	if r.ResponseCode != 0 {
		lines = append(lines, dimStyle.Render("Response:  ")+normalStyle.Render(fmt.Sprintf("HTTP %d", r.ResponseCode)))
	}
	if text := r.ResponseText(); text != "" {
		width := m.width - 10
		if width < 20 {
			width = 60
		}
		lines = append(lines, metaStyle.Render(truncStr(oneLine(text), width)))
	}
	return lines
}

func (m historyModel) helpKeys() string {
	return helpEntry("1-3", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "details") + "  " +
		helpEntry("r", "refresh") + "  " + helpEntry("?", "help") + "  " + helpEntry("q", "quit")
}
