package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ConnectionRequest is the body posted to the save-connection endpoint.
// The password is intentionally never part of it.
type ConnectionRequest struct {
	ConnectionName string `json:"connection_name"`
	DatabaseType   string `json:"database_type"`
	ServerName     string `json:"server_name"`
	DatabaseName   string `json:"database_name"`
	Port           int    `json:"port"`
	Username       string `json:"username"`
	Description    string `json:"description"`
}

// DescribeConnection builds the human readable description sent with a save request.
func DescribeConnection(databaseName, serverName string) string {
	return fmt.Sprintf("Connection to %s on %s", databaseName, serverName)
}

// SaveResult is the body returned by the save-connection endpoint.
type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DatabaseType is one entry of the database type list.
type DatabaseType struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// DatabaseTypesPayload is the body served by the type-list endpoint.
type DatabaseTypesPayload struct {
	Databases []DatabaseType `json:"databases"`
}

// DecodeDatabaseTypes reads a type-list payload. Every element of "databases"
// must be an object carrying an "id" key.
func DecodeDatabaseTypes(r io.Reader) ([]DatabaseType, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read database types: %w", err)
	}

	var envelope struct {
		Databases []json.RawMessage `json:"databases"`
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&envelope); err != nil {
		return nil, &DecodeError{Path: "$.databases", Reason: "must be an array of objects", Err: err}
	}
	if envelope.Databases == nil {
		return nil, &DecodeError{Path: "$.databases", Reason: "missing required key"}
	}

	types := make([]DatabaseType, 0, len(envelope.Databases))
	for i, raw := range envelope.Databases {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			return nil, &DecodeError{Path: fmt.Sprintf("$.databases[%d]", i), Reason: "must be an object", Err: err}
		}
		idRaw, ok := fields["id"]
		if !ok {
			return nil, &DecodeError{Path: fmt.Sprintf("$.databases[%d].id", i), Reason: "missing required key"}
		}

		dt := DatabaseType{ID: jsonScalarString(idRaw)}
		if nameRaw, ok := fields["name"]; ok {
			dt.Name = jsonScalarString(nameRaw)
		}
		types = append(types, dt)
	}

	return types, nil
}

// jsonScalarString renders a JSON scalar the way it would print as text:
// strings lose their quotes, everything else keeps its literal form.
func jsonScalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
