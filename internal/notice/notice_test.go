package notice

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/playsafe/rgportal/internal/limits"
	"github.com/playsafe/rgportal/pkg/client"
	"github.com/playsafe/rgportal/pkg/domain"
)

func TestFrom(t *testing.T) {
	const fallback = "Failed to set limits. Please try again."
	wrap := func(err error) error { return fmt.Errorf("limits.Submit: %w", err) }

	tests := []struct {
		name      string
		err       error
		kind      Kind
		text      string
		retryable bool
	}{
		{"nil", nil, None, "", false},
		{"validation", domain.ErrValidation("otp", "Please enter a valid 6-digit OTP"), Validation, "Please enter a valid 6-digit OTP", false},
		{"busy", wrap(limits.ErrBusy), Validation, MsgInProgress, false},
		{"all locked", limits.ErrNothingToSubmit, Validation, MsgAllLocked, false},
		{"transport", wrap(&client.TransportError{Err: errors.New("dial tcp: refused")}), Transport, MsgNetwork, true},
		{"unauthorized", wrap(&client.HTTPError{StatusCode: http.StatusUnauthorized, Message: "Unauthenticated."}), Unauthorized, MsgSessionExpired, false},
		{"server message", wrap(&client.HTTPError{StatusCode: http.StatusBadRequest, Message: "Self-exclusion already active"}), Rejection, "Self-exclusion already active", false},
		{"empty message", wrap(&client.HTTPError{StatusCode: http.StatusBadGateway}), Rejection, fallback, true},
		{"html body", wrap(&client.HTTPError{StatusCode: http.StatusInternalServerError, Message: "<html>oops</html>"}), Rejection, fallback, true},
		{"unknown", errors.New("weird"), Unknown, fallback, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := From(tt.err, fallback)
			assert.Equal(t, tt.kind, n.Kind)
			assert.Equal(t, tt.text, n.Text)
			assert.Equal(t, tt.retryable, n.Retryable)
		})
	}
}

func TestFromFieldRejection(t *testing.T) {
	err := fmt.Errorf("limits.Submit: %w", &client.HTTPError{
		StatusCode:  http.StatusUnprocessableEntity,
		Message:     "The given data was invalid.",
		FieldErrors: map[string]string{"deposit_limit_amount": "Too low", "bet_count_limit_amount": "Too high"},
	})
	n := From(err, "fallback")
	assert.Equal(t, FieldRejection, n.Kind)
	assert.Equal(t, "Too low", n.Fields["deposit_limit_amount"])
	assert.Equal(t, []string{"Too high", "Too low"}, n.Lines())
}

func TestFromMultiFieldValidation(t *testing.T) {
	n := From(&domain.ValidationError{Fields: map[string]string{"a": "x", "b": "y"}}, "")
	assert.Equal(t, Validation, n.Kind)
	assert.Empty(t, n.Text)
	assert.Len(t, n.Fields, 2)
}
