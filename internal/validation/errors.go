package validation

import (
	"fmt"
	"strings"
)

// FieldError is a single field failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is an ordered list of field failures. The zero value has no errors.
type Errors []FieldError

// Add records msg for field; empty messages are ignored.
func (e *Errors) Add(field, msg string) {
	if msg == "" {
		return
	}
	*e = append(*e, FieldError{Field: field, Message: msg})
}

// Get returns the first message recorded for field.
func (e Errors) Get(field string) (string, bool) {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	_, ok := e.Get(field)
	return ok
}

// Map returns field to message, keeping the first message per field.
func (e Errors) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := m[fe.Field]; !ok {
			m[fe.Field] = fe.Message
		}
	}
	return m
}

// Err returns e as an error, or nil when empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return strings.Join(parts, "; ")
}
