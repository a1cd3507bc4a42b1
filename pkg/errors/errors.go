package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeCatalogLoad                Code = "CATALOG_LOAD_ERROR"
	CodeInsufficientStock          Code = "INSUFFICIENT_STOCK"
	CodeInsufficientComponentStock Code = "INSUFFICIENT_COMPONENT_STOCK"
	CodeValidation                 Code = "VALIDATION_ERROR"
	CodeSubmission                 Code = "SUBMISSION_ERROR"
	CodeUnauthorized               Code = "UNAUTHORIZED"
	CodeDependency                 Code = "DEPENDENCY_ERROR"
	CodeInternal                   Code = "INTERNAL_ERROR"
)

// Metadata describes how a code should surface to the operator. UserMessage is
// the notification text; Recoverable means the session can continue (empty
// catalog, manual retry) rather than requiring a fresh sign-in or reload.
type Metadata struct {
	Recoverable    bool
	UserMessage    string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeCatalogLoad: {
		Recoverable:    true,
		UserMessage:    "the catalog could not be loaded",
		DetailsAllowed: false,
	},
	CodeInsufficientStock: {
		Recoverable:    true,
		UserMessage:    "not enough stock available",
		DetailsAllowed: true,
	},
	CodeInsufficientComponentStock: {
		Recoverable:    true,
		UserMessage:    "not enough component stock available",
		DetailsAllowed: true,
	},
	CodeValidation: {
		Recoverable:    true,
		UserMessage:    "validation failed",
		DetailsAllowed: true,
	},
	CodeSubmission: {
		Recoverable:    true,
		UserMessage:    "the transaction could not be recorded",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		Recoverable:    false,
		UserMessage:    "session expired, sign in again",
		DetailsAllowed: false,
	},
	CodeDependency: {
		Recoverable:    true,
		UserMessage:    "service unavailable",
		DetailsAllowed: true,
	},
	CodeInternal: {
		Recoverable:    false,
		UserMessage:    "internal error",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
