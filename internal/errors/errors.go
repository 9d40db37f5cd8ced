package errors

import (
	"errors"
	"fmt"
)

// Basic error check functions from standard library
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// appError implements the Error interface
type appError struct {
	code    ErrorCode
	message string
	err     error
	data    any
}

func (e *appError) Error() string {
	if e.message == "" {
		e.message = GetErrorMessage(e.code)
	}

	if e.data != nil {
		return fmt.Sprintf("%s: %v", e.message, e.data)
	}

	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *appError) Code() ErrorCode {
	return e.code
}

func (e *appError) WithMessage(msg string) Error {
	return &appError{
		code:    e.code,
		message: msg,
		err:     e.err,
		data:    e.data,
	}
}

func (e *appError) WithData(data any) Error {
	return &appError{
		code:    e.code,
		message: e.message,
		err:     e.err,
		data:    data,
	}
}

func (e *appError) GetData() any {
	return e.data
}

func (e *appError) Unwrap() error {
	return e.err
}

// New creates an error from a code
func New(code ErrorCode) Error {
	return &appError{
		code: code,
	}
}

// Wrap attaches a code to an underlying error
func Wrap(code ErrorCode, err error) Error {
	return &appError{
		code: code,
		err:  err,
	}
}

// WithMessage creates a coded error with a custom message
func WithMessage(code ErrorCode, msg string) Error {
	return &appError{
		code:    code,
		message: msg,
	}
}

// WithData creates a coded error carrying extra context
func WithData(code ErrorCode, data any) Error {
	return &appError{
		code: code,
		data: data,
	}
}

// IsCode reports whether any error in the chain carries the given code
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var coded Error
		if As(err, &coded) {
			if coded.Code() == code {
				return true
			}
			err = coded.Unwrap()
			continue
		}
		err = Unwrap(err)
	}

	return false
}
