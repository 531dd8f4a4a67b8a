package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/playsafe/rgportal/internal/locale"
	"github.com/playsafe/rgportal/internal/session"
)

// ANSI color constants for plain terminal output (no lipgloss outside the TUI).
const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiTeal  = "\033[38;2;94;234;212m"  // #5eead4
	ansiGreen = "\033[38;2;52;212;116m"  // #34d474
	ansiGold  = "\033[38;2;212;168;68m"  // #d4a844
	ansiSlate = "\033[38;2;136;144;160m" // #8890a0
)

// statusInfo is what `rgportal status` reports.
type statusInfo struct {
	Authenticated bool
	Mobile        string
	Currency      string
	Language      string
	Expiry        time.Time
	HasExpiry     bool
	Now           time.Time
}

func statusFrom(store *session.Store, now time.Time) statusInfo {
	st := store.Snapshot()
	info := statusInfo{
		Authenticated: st.IsAuthenticated(),
		Currency:      st.Config.Currency(),
		Language:      st.Language,
		Now:           now,
	}
	if st.Customer != nil {
		info.Mobile = st.Customer.MobileNumber
	}
	info.Expiry, info.HasExpiry = store.TokenExpiry()
	return info
}

func printLogo(w io.Writer) {
	fmt.Fprint(w, "\n  ")
	letters := "PLAYSAFE"
	for i, ch := range letters {
		fmt.Fprintf(w, "%s%s%c%s", ansiTeal, ansiBold, ch, ansiReset)
		if i < len(letters)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

func printStatus(w io.Writer, info statusInfo) {
	printLogo(w)
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s%-10s%s %s\n", ansiSlate, label, ansiReset, value)
	}
	fmt.Fprintln(w)
	if !info.Authenticated {
		row("session", ansiGold+"logged out"+ansiReset)
		row("language", strings.ToUpper(info.Language))
		fmt.Fprintf(w, "\n  %sRun rgportal to log in.%s\n\n", ansiSlate, ansiReset)
		return
	}
	row("session", ansiGreen+ansiBold+"active"+ansiReset)
	row("mobile", info.Mobile)
	currency := info.Currency
	if currency == "" {
		currency = "-"
	}
	row("currency", currency)
	row("language", strings.ToUpper(info.Language))
	if info.HasExpiry {
		tag := locale.Resolve(info.Language)
		when := info.Expiry.Local().Format("02 Jan 2006 15:04")
		if info.Expiry.Before(info.Now) {
			row("expires", ansiGold+"expired "+locale.Relative(tag, info.Expiry)+ansiReset)
		} else {
			row("expires", when+" ("+locale.Relative(tag, info.Expiry)+")")
		}
	}
	fmt.Fprintln(w)
}
