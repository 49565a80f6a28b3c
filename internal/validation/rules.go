// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/pensionworks/pensync/internal/errors"
)

var (
	// branchCodeRegex matches warehouse branch codes such as BR001 or HQ-02.
	branchCodeRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-]{1,15}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "cannot be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// BranchCode validates warehouse branch code format
var BranchCode = validation.NewStringRuleWithError(
	func(s string) bool {
		return branchCodeRegex.MatchString(s)
	},
	validation.NewError("validation_branch_code", "must be a valid branch code"),
)
