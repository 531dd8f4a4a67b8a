package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a backend identifier that may arrive as a JSON number or string.
type ID string

// UnmarshalJSON accepts both 42 and "42".
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("domain.ID: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("domain.ID: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Customer is the authenticated portal customer.
type Customer struct {
	ID           ID     `json:"id,omitempty"`
	MobileNumber string `json:"mobile_number"`
	Name         string `json:"name,omitempty"`
}

// ConfigCurrency is the config key holding the customer's currency code.
const ConfigCurrency = "currency"

// Config is the small settings bag mirrored from the backend.
// A nil value is a valid entry and means "explicitly unset".
type Config map[string]any

// Currency returns the configured currency code, or "" when unset.
func (c Config) Currency() string {
	v, _ := c[ConfigCurrency].(string)
	return strings.TrimSpace(v)
}

// Merge returns a copy of c with every key of patch applied on top.
// Keys missing from patch are retained; nil values in patch overwrite.
func (c Config) Merge(patch Config) Config {
	out := make(Config, len(c)+len(patch))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// CurrencyPatch builds the config patch that records a currency code.
func CurrencyPatch(currency string) Config {
	return Config{ConfigCurrency: currency}
}
