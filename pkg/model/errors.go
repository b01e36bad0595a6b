package model

import (
	"errors"
	"fmt"
)

// ErrorClass classifies a planning error for caller recovery logic.
type ErrorClass string

const (
	// ErrorClassInvalidAction indicates an action whose construction-time
	// preconditions (size, existence, resizability) were violated.
	ErrorClassInvalidAction ErrorClass = "invalid_action"

	// ErrorClassDeviceTree indicates a mismatch between an action and the
	// current device tree (registering against an absent device, creating
	// a device that is already present).
	ErrorClassDeviceTree ErrorClass = "device_tree"

	// ErrorClassInvalidOperation indicates a structurally forbidden graph
	// edit, such as destroying a device that still has dependents.
	ErrorClassInvalidOperation ErrorClass = "invalid_operation"

	// ErrorClassInternal indicates an internal invariant violation. These
	// are programmer errors, not correctable input, and must abort planning.
	ErrorClassInternal ErrorClass = "internal"
)

// PlanError is a classified error with optional device context.
type PlanError struct {
	// Class is the error classification.
	Class ErrorClass

	// Message is the human-readable error message.
	Message string

	// Device is the name of the device involved, if applicable.
	Device string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *PlanError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Class, e.Message)
	if e.Device != "" {
		msg = fmt.Sprintf("%s (device=%s)", msg, e.Device)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *PlanError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *PlanError) Is(target error) bool {
	t, ok := target.(*PlanError)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// WithDevice adds device context to the error.
func (e *PlanError) WithDevice(name string) *PlanError {
	e.Device = name
	return e
}

// NewInvalidActionError creates an invalid-action error.
func NewInvalidActionError(message string, err error) *PlanError {
	return &PlanError{Class: ErrorClassInvalidAction, Message: message, Err: err}
}

// NewDeviceTreeError creates a device-tree error.
func NewDeviceTreeError(message string, err error) *PlanError {
	return &PlanError{Class: ErrorClassDeviceTree, Message: message, Err: err}
}

// NewInvalidOperationError creates an invalid-operation error.
func NewInvalidOperationError(message string, err error) *PlanError {
	return &PlanError{Class: ErrorClassInvalidOperation, Message: message, Err: err}
}

// NewInternalError creates an internal invariant-violation error.
func NewInternalError(message string, err error) *PlanError {
	return &PlanError{Class: ErrorClassInternal, Message: message, Err: err}
}

// IsInvalidAction returns true if the error is classified invalid_action.
func IsInvalidAction(err error) bool {
	return classOf(err) == ErrorClassInvalidAction
}

// IsDeviceTreeError returns true if the error is classified device_tree.
func IsDeviceTreeError(err error) bool {
	return classOf(err) == ErrorClassDeviceTree
}

// IsInvalidOperation returns true if the error is classified invalid_operation.
func IsInvalidOperation(err error) bool {
	return classOf(err) == ErrorClassInvalidOperation
}

// IsInternal returns true if the error is classified internal.
func IsInternal(err error) bool {
	return classOf(err) == ErrorClassInternal
}

func classOf(err error) ErrorClass {
	var e *PlanError
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}
