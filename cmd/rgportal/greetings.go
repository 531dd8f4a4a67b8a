package main

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/lipgloss"
)

var reminders = [...]string{
	"Set your limits before you play, not after.",
	"Gambling should be entertainment, not a way to make money.",
	"Only bet what you can afford to lose.",
	"Take regular breaks. The game will still be there.",
	"Chasing losses rarely ends well. Walk away for today.",
	"If it stops being fun, stop.",
	"Never borrow money to gamble.",
	"Decide how long you will play before you start.",
	"Sleep beats one more bet. A night curfew can help.",
	"A time-out is a sign of control, not weakness.",
	"Talk to someone you trust if gambling is worrying you.",
	"Keep track of the time and money you spend.",
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5eead4")).
		Bold(true).
		Render("P L A Y S A F E")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"Limits you set here are locked in. Only support can remove them."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"rgportal", "Open the portal (interactive TUI)"},
		{"rgportal status", "Show the saved session"},
		{"rgportal logout", "Log out and clear the session"},
		{"rgportal support", "Contact support"},
		{"rgportal --version", "Show version"},
		{"rgportal help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	envStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	fmt.Printf("\n  Environment:\n")
	for _, e := range []string{"RG_API_BASE_URL", "RG_ENV", "RG_REQUEST_TIMEOUT", "RG_STATE_DIR", "RG_REDIS_URL", "RG_LANGUAGE", "RG_SUPPORT_URL", "RG_LOG_LEVEL"} {
		fmt.Printf("    %s\n", envStyle.Render(e))
	}
	fmt.Println()
}

func printReminder() {
	msg := reminders[rand.Intn(len(reminders))]

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	attrib := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#d4a844")).
		Render("Play safe.")

	fmt.Printf("\n  %s\n  %s\n\n", quote, attrib)
}
