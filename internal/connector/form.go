// Package connector implements the database connection configurator: the
// connection form, the client for the type-list and save-connection APIs, and
// the panel state that drives the configuration view.
package connector

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/leapstack-labs/bankdash/pkg/core"
)

// Validation messages shown to the user.
const (
	MsgMissingFields = "Please fill in all required database connection fields."
	MsgInvalidPort   = "Port Number must be a valid number."
)

// ValidationError reports why a form cannot be submitted.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Form holds the raw text of the connection form.
type Form struct {
	DatabaseType   string `json:"databaseType"`
	ConnectionName string `json:"connectionName"`
	ServerName     string `json:"serverName"`
	DatabaseName   string `json:"databaseName"`
	Port           string `json:"portNumber"`
	Username       string `json:"userName"`
}

// Validate checks that every field is set and the port parses as an integer.
// It returns the parsed port.
func (f Form) Validate() (int, error) {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"databaseType", f.DatabaseType},
		{"connectionName", f.ConnectionName},
		{"serverName", f.ServerName},
		{"databaseName", f.DatabaseName},
		{"portNumber", f.Port},
		{"userName", f.Username},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return 0, &ValidationError{Message: MsgMissingFields, Fields: missing}
	}

	port, ok := ParsePort(f.Port)
	if !ok {
		return 0, &ValidationError{Message: MsgInvalidPort, Fields: []string{"portNumber"}}
	}
	return port, nil
}

// Request builds the save-connection body for a validated form.
func (f Form) Request(port int) core.ConnectionRequest {
	return core.ConnectionRequest{
		ConnectionName: f.ConnectionName,
		DatabaseType:   f.DatabaseType,
		ServerName:     f.ServerName,
		DatabaseName:   f.DatabaseName,
		Port:           port,
		Username:       f.Username,
		Description:    core.DescribeConnection(f.DatabaseName, f.ServerName),
	}
}

// ClearText empties every free-text field, keeping the selected database type.
func (f *Form) ClearText() {
	*f = Form{DatabaseType: f.DatabaseType}
}

// ParsePort parses the leading integer of s: surrounding whitespace and an
// optional sign are accepted, parsing stops at the first non-digit, and at
// least one digit is required ("5432abc" is 5432, "abc" is invalid).
func ParsePort(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
