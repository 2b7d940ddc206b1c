package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors leaving a Handler. Errors already carrying a
// go-errors category, such as the export handler codes, pass through as-is.
const (
	CodeValidationFailed = "COMMAND_VALIDATION_FAILED"
	CodeCanceled         = "COMMAND_CONTEXT_CANCELED"
	CodeTimeout          = "COMMAND_CONTEXT_TIMEOUT"
	CodeExecutionFailed  = "COMMAND_EXECUTION_FAILED"
)

func categorize(err error, category goerrors.Category, message, code string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

func wrapValidationError(err error) error {
	return categorize(err, goerrors.CategoryValidation, "command validation failed", CodeValidationFailed)
}

// wrapContextError is only reached for context.Canceled and
// context.DeadlineExceeded.
func wrapContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return categorize(err, goerrors.CategoryCommand, "command deadline exceeded", CodeTimeout)
	}
	return categorize(err, goerrors.CategoryCommand, "command cancelled", CodeCanceled)
}

func wrapExecuteError(err error) error {
	return categorize(err, goerrors.CategoryCommand, "command execution failed", CodeExecutionFailed)
}
