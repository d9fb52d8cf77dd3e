package config

import "fmt"

// Error is a configuration error. It is fatal: no structure is processed.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
