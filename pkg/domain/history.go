package domain

import (
	"encoding/json"
	"time"
)

// Delivery event types.
const (
	EventLimitCreated = "limit.created"
	EventLimitUpdated = "limit.updated"
	EventLimitCleared = "limit.cleared"
)

// Delivery statuses.
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// DeliveryRecord is one notification sent to an operator when limits changed.
type DeliveryRecord struct {
	ID           ID              `json:"id"`
	Operator     string          `json:"operator"`
	EventType    string          `json:"event_type"`
	Status       string          `json:"status"`
	RetryCount   int             `json:"retry_count"`
	ResponseCode int             `json:"response_code,omitempty"`
	ResponseBody json.RawMessage `json:"response_body,omitempty"`
	CreatedAt    *time.Time      `json:"created_at"`
	DeliveredAt  *time.Time      `json:"delivered_at,omitempty"`
	FailedAt     *time.Time      `json:"failed_at,omitempty"`
}

// EventLabel returns the display text for the record's event type.
func (r DeliveryRecord) EventLabel() string {
	switch r.EventType {
	case EventLimitCreated:
		return "Limits Created"
	case EventLimitUpdated:
		return "Limits Updated"
	case EventLimitCleared:
		return "Limits Cleared"
	}
	return r.EventType
}

// ResponseText renders the response body for display. JSON strings are unquoted.
func (r DeliveryRecord) ResponseText() string {
	if len(r.ResponseBody) == 0 || string(r.ResponseBody) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(r.ResponseBody, &s) == nil {
		return s
	}
	return string(r.ResponseBody)
}
