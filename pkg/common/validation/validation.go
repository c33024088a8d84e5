package validation

import (
	"reflect"
	"time"

	bperrors "github.com/vnykmshr/brakepedal/pkg/common/errors"
)

// ValidatePositive validates that an integer value is positive (> 0).
func ValidatePositive(module, field string, value int64) error {
	if value <= 0 {
		return bperrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNonNegative validates that an integer value is zero or positive.
func ValidateNonNegative(module, field string, value int64) error {
	if value < 0 {
		return bperrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("value must be 0 or greater")
	}
	return nil
}

// ValidateMinDuration validates that d is at least min.
func ValidateMinDuration(module, field string, d, min time.Duration) error {
	if d < min {
		return bperrors.NewValidationError(module, field, d, "must be at least "+min.String()).
			WithHint("durations are tracked with whole-second precision")
	}
	return nil
}

// ValidateNonNegativeDuration validates that d is zero or positive.
func ValidateNonNegativeDuration(module, field string, d time.Duration) error {
	if d < 0 {
		return bperrors.NewValidationError(module, field, d, "cannot be negative").
			WithHint("use 0 to keep the default")
	}
	return nil
}

// ValidateNotNil validates that value is neither a nil interface nor an
// interface holding a nil pointer, map, slice, channel or func.
func ValidateNotNil(module, field string, value interface{}) error {
	if isNil(value) {
		return bperrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
