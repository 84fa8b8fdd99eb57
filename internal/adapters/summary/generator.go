// Package summary adapts text-generation backends to the trainee summary use case.
package summary

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no generation backend credential was supplied.
var ErrNotConfigured = errors.New("summary generator not configured")

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Unconfigured fails every request; it stands in when no API key is set.
type Unconfigured struct{}

// Generate always returns ErrNotConfigured.
func (Unconfigured) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
