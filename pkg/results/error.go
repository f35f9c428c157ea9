package results

import (
	"errors"
	"fmt"
	"strings"
)

// Error holds a message and a child, tagged with the Reason the aggregation
// failed. The common use-case here will be to wrap errors from callsites:
//
//	if err := decode(data); err != nil {
//	    return results.ForReason(results.ReasonMalformedInput).WithError(err).Errorf("could not decode runner file %s", name)
//	}
type Error struct {
	reason  Reason
	message string
	wrapped error
}

// Error makes an Error an error
func (e *Error) Error() string {
	return e.message
}

// Unwrap allows nesting of errors
func (e *Error) Unwrap() error {
	return e.wrapped
}

// Is allows us to say we are an Error
func (e *Error) Is(target error) bool {
	_, is := target.(*Error)
	return is
}

// Reason returns the reason this error was created for.
func (e *Error) Reason() Reason {
	return e.reason
}

// Reasons provides the chains of error reasons.
// Each item in the return value is a single chain divided by colons. Aggregate
// errors, whose type provides an `Errors` method returning a list of errors,
// are recursively expanded into a separate chain for each child.
func Reasons(errs ...error) (ret []string) {
	for _, err := range errs {
		switch err := err.(type) {
		case *Error:
			children := Reasons(err.Unwrap())
			if len(children) == 0 {
				ret = append(ret, string(err.reason))
				break
			}
			for _, r := range children {
				ret = append(ret, fmt.Sprintf("%s:%s", err.reason, r))
			}
		case interface{ Errors() []error }:
			ret = append(ret, Reasons(err.Errors()...)...)
		case interface{ Unwrap() error }:
			ret = append(ret, Reasons(err.Unwrap())...)
		}
	}
	return
}

// FullReason joins every reason chain of err. Errors without any reason are
// reported as ReasonUnknown.
func FullReason(err error) string {
	reasons := Reasons(err)
	if len(reasons) == 0 {
		return string(ReasonUnknown)
	}
	return strings.Join(reasons, ",")
}

// HasReason reports whether reason appears anywhere in the chains of err,
// including the children of aggregate errors.
func HasReason(err error, reason Reason) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) && e.Reason() == reason {
		return true
	}
	switch err := err.(type) {
	case interface{ Errors() []error }:
		for _, child := range err.Errors() {
			if HasReason(child, reason) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return HasReason(err.Unwrap(), reason)
	}
	return false
}

// BuilderWithReason starts the builder chain
type BuilderWithReason struct {
	Error
}

// ForReason is a constructor for an Error from a Reason. We expect
// users to then add a child and a error message to this Error.
func ForReason(reason Reason) *BuilderWithReason {
	if reason == "" {
		reason = ReasonUnknown
	}
	return &BuilderWithReason{
		Error: Error{
			reason: reason,
		},
	}
}

// Errorf finishes a builder without a child error.
func (e *BuilderWithReason) Errorf(format string, args ...interface{}) error {
	e.message = fmt.Sprintf(format, args...)
	return &e.Error
}

// BuilderWithReasonAndError adds a child error to the builder
type BuilderWithReasonAndError struct {
	Error
}

// WithError is a builder that adds a child to the Error. We
// expect users to continue to build the Error by adding a message.
func (e *BuilderWithReason) WithError(err error) *BuilderWithReasonAndError {
	b := &BuilderWithReasonAndError{
		Error: e.Error,
	}
	b.wrapped = err
	return b
}

// Errorf is a builder that adds in the main error to an Error.
// This is expected to be the final builder/producer in a chain,
// so we return an error and not an Error
func (e *BuilderWithReasonAndError) Errorf(format string, args ...interface{}) error {
	e.message = fmt.Sprintf(format, args...)
	if e.wrapped != nil {
		e.message = fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return &e.Error
}

// ForError is a constructor for when a caller does not want to add
// a child but instead wants a simple error. For instance, wrapping
// the outcome of a function that doesn't return an Error itself:
//
//	_, err := out.Write(data)
//	return results.ForReason(results.ReasonWritingOutput).ForError(err)
func (e *BuilderWithReason) ForError(err error) error {
	if err == nil {
		return nil
	}
	e.wrapped = err
	e.message = err.Error()
	return &e.Error
}
