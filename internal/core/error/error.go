package errx

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by the collaborator or contract that produced it.
// Parse ambiguity and unsatisfiable filters are ordinary values elsewhere in
// the codebase and never appear here.
type Kind int

const (
	KindUnknown Kind = iota
	// KindProvider covers embedding and LLM call failures.
	KindProvider
	// KindStore covers vector store unavailability and malformed filters.
	KindStore
	// KindToolContract covers tool arguments outside a declared schema.
	KindToolContract
	// KindConfig covers invalid static configuration, e.g. a fallback
	// provider constructed without an explicit model identifier.
	KindConfig
	// KindRepo covers conversation history storage failures.
	KindRepo
)

func (k Kind) String() string {
	switch k {
	case KindProvider:
		return "provider"
	case KindStore:
		return "store"
	case KindToolContract:
		return "tool_contract"
	case KindConfig:
		return "config"
	case KindRepo:
		return "repo"
	default:
		return "unknown"
	}
}

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// ProviderErrorMessage describes embedding or LLM provider failures.
	ProviderErrorMessage = "model provider call failed"
	// StoreErrorMessage describes vector store failures.
	StoreErrorMessage = "photo store operation failed"
	// ToolContractMessage describes tool arguments violating a tool schema.
	ToolContractMessage = "tool arguments violate tool schema"
	// RedisErrorMessage describes conversation history storage failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing conversation key.
	RedisNotFoundMessage = "conversation not found"
)

// Error wraps an underlying error with a Kind and a safe user-facing message.
type Error struct {
	Err     error
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.Kind == e.Kind
	}
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}

// New creates a new Error with the provided information.
func New(err error, kind Kind, message string) *Error {
	return &Error{
		Err:     err,
		Kind:    kind,
		Message: message,
	}
}

// KindOf extracts the Kind from an error chain, KindUnknown when absent.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsProvider reports whether the error chain carries a provider failure.
func IsProvider(err error) bool {
	return KindOf(err) == KindProvider
}

// IsStore reports whether the error chain carries a store failure.
func IsStore(err error) bool {
	return KindOf(err) == KindStore
}

// IsToolContract reports whether the error chain carries a tool schema violation.
func IsToolContract(err error) bool {
	return KindOf(err) == KindToolContract
}
