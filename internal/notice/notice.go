// Package notice turns errors from any layer into something the UI can show.
package notice

import (
	"errors"
	"sort"
	"strings"

	"github.com/playsafe/rgportal/internal/auth"
	"github.com/playsafe/rgportal/internal/limits"
	"github.com/playsafe/rgportal/pkg/client"
	"github.com/playsafe/rgportal/pkg/domain"
)

// Kind classifies a notice.
type Kind int

const (
	None Kind = iota
	Validation
	Unauthorized
	FieldRejection
	Rejection
	Transport
	Unknown
)

// Generic texts.
const (
	MsgSessionExpired = "Your session has expired. Please log in again."
	MsgNetwork        = "Could not reach the server. Check your connection and try again."
	MsgInProgress     = "Please wait, a request is already in progress."
	MsgAllLocked      = "All of your limits are locked. Contact support to change them."
)

// Notice is a displayable error state.
type Notice struct {
	Kind      Kind
	Text      string
	Fields    map[string]string
	Retryable bool
}

// IsZero reports whether there is nothing to show.
func (n Notice) IsZero() bool { return n.Kind == None }

// Lines returns Text followed by any field messages, sorted by field.
// A single-field validation notice yields just its text.
func (n Notice) Lines() []string {
	var out []string
	if n.Text != "" {
		out = append(out, n.Text)
		if n.Kind == Validation {
			return out
		}
	}
	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, n.Fields[k])
	}
	return out
}

// From classifies err. fallback is shown when the server gave no message.
func From(err error, fallback string) Notice {
	if err == nil {
		return Notice{}
	}

	if v, ok := domain.AsValidation(err); ok {
		n := Notice{Kind: Validation, Fields: v.Fields}
		if len(v.Fields) == 1 {
			for _, msg := range v.Fields {
				n.Text = msg
			}
		}
		return n
	}

	if errors.Is(err, auth.ErrBusy) || errors.Is(err, limits.ErrBusy) {
		return Notice{Kind: Validation, Text: MsgInProgress}
	}
	if errors.Is(err, limits.ErrNothingToSubmit) {
		return Notice{Kind: Validation, Text: MsgAllLocked}
	}

	if client.IsTransport(err) {
		return Notice{Kind: Transport, Text: MsgNetwork, Retryable: true}
	}

	if client.IsUnauthorized(err) {
		return Notice{Kind: Unauthorized, Text: MsgSessionExpired}
	}

	if fields := client.FieldErrorsOf(err); len(fields) > 0 {
		return Notice{Kind: FieldRejection, Fields: fields}
	}

	var herr *client.HTTPError
	if errors.As(err, &herr) {
		text := strings.TrimSpace(herr.Message)
		if text == "" || looksLikeMarkup(text) {
			text = fallback
		}
		return Notice{Kind: Rejection, Text: text, Retryable: herr.StatusCode >= 500}
	}

	return Notice{Kind: Unknown, Text: fallback}
}

func looksLikeMarkup(s string) bool {
	return strings.HasPrefix(s, "<")
}
