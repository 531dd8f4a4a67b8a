package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/playsafe/rgportal/pkg/domain"
)

// Shimmer animation for the header logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "PLAYSAFE" as a slow wave of teal light.
// Deep teal (#12343a) -> bright aqua (#5eead4).
func renderShimmerLogo(frame int) string {
	const text = "PLAYSAFE"
	n := len(text)

	var out string
	t := float64(frame)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.08 - x*3.0
		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		// breathing
		b = b*0.75 + math.Sin(t*0.03)*0.1 + 0.2
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(18 + b*(94-18))
		g := clampByte(52 + b*(234-52))
		bl := clampByte(58 + b*(212-58))

		out += lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl))).
			Render(string(text[i]))
		if i < n-1 {
			out += "  "
		}
	}
	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2dd4bf"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5eead4")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0944a")).
			Bold(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d05050")).
			Bold(true)

	lockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#2dd4bf")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#d4a844")).
			Padding(1, 2)

	// Per-control accent colors, used for card borders.
	controlColors = map[domain.ControlKind]string{
		domain.StakePerBetLimit: "#60a0e0",
		domain.DepositLimit:     "#3ecce4",
		domain.BetCountLimit:    "#b080d0",
		domain.TimeOut:          "#f0944a",
		domain.SelfExclusion:    "#d05050",
		domain.SessionBreak:     "#34d474",
		domain.NightCurfew:      "#c084e0",
	}
)

// ControlStyle returns a bold style colored for the given control.
func ControlStyle(k domain.ControlKind) lipgloss.Style {
	if c, ok := controlColors[k]; ok {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// statusBadge renders a delivery status.
func statusBadge(status string) string {
	switch status {
	case domain.DeliveryDelivered:
		return successStyle.Render(status)
	case domain.DeliveryFailed:
		return errorStyle.Render(status)
	default:
		return warnStyle.Render(status)
	}
}

// cardBorder renders the top or bottom border of a control card.
// pos: "top" or "bottom". label: optional header text (top only).
func cardBorder(pos, label, baseColor string, width int) string {
	w := width - 4
	if w < 10 {
		w = 10
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(baseColor))
	if pos == "bottom" {
		return style.Render(" └" + strings.Repeat("─", w))
	}
	if label == "" {
		return style.Render(" ┌" + strings.Repeat("─", w))
	}
	header := " ┌ " + label + " "
	remaining := w - lipgloss.Width(header) + 2
	if remaining < 1 {
		remaining = 1
	}
	return style.Render(" ┌ ") + label + " " + style.Render(strings.Repeat("─", remaining))
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

func helpItems(supportURL string) []helpItem {
	items := []helpItem{}
	if supportURL != "" {
		items = append(items, helpItem{"Contact support", "remove a locked limit", supportURL})
	}
	items = append(items,
		helpItem{"Gambling help", "begambleaware.org", "https://www.begambleaware.org"},
		helpItem{"GamCare", "gamcare.org.uk", "https://www.gamcare.org.uk"},
	)
	return items
}

// helpView renders the interactive help overlay with a cursor.
func helpView(items []helpItem, cursor int, version string) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5eead4")).
		Bold(true).
		Render("P L A Y S A F E")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Limits you set here are locked in. Only support can remove them.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5eead4"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	keys := []struct{ key, desc string }{
		{"1 / 2 / 3", "My limits, Set limits, History"},
		{"space", "Toggle a control (set limits)"},
		{"enter", "Edit a value (set limits)"},
		{"ctrl+s", "Submit limits"},
		{"g", "Switch language (FR / EN)"},
		{"L", "Log out"},
		{"q", "Quit"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s  %s\n\n  %s\n\n", title, metaStyle.Render(version), quote)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-12s", k.key)), descStyle.Render(k.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range items {
		label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
		prefix := "    "
		if i == cursor {
			label = cursorStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
