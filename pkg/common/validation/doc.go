// Package validation provides common validation utilities for configuration
// parameters across the brakepedal packages.
//
// Every helper returns a *errors.ValidationError so constructors can surface
// consistent messages and callers can test with errors.IsValidationError.
package validation
