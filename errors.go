package sqlmodel

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrPrimaryKey is returned when a singular-key operation is invoked against
	// a model type that does not declare exactly one primary-key field.
	ErrPrimaryKey = errors.New("sqlmodel: primary key cardinality")

	// ErrInvalidArgument is returned for out-of-range arguments and
	// malformed fragment composition.
	ErrInvalidArgument = errors.New("sqlmodel: invalid argument")

	// ErrMapping is returned when a field has no mapped column or accessor,
	// or when a model type was never registered.
	ErrMapping = errors.New("sqlmodel: mapping error")

	// ErrUnsupported is returned by entry points that are intentionally left unimplemented.
	ErrUnsupported = errors.New("sqlmodel: unsupported operation")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("sqlmodel: record not found")

	// ErrCollectorConsumed is returned when a collector is executed more than once.
	ErrCollectorConsumed = errors.New("sqlmodel: collector already consumed")
)

// PrimaryKeyError reports a primary-key cardinality violation.
type PrimaryKeyError struct {
	Model string // Model type name
	Count int    // Number of declared primary-key fields
}

// Error returns the error string.
func (e *PrimaryKeyError) Error() string {
	return fmt.Sprintf("sqlmodel: %s declares %d primary key fields, expected exactly 1", e.Model, e.Count)
}

// Is reports whether the target error matches PrimaryKeyError.
// This allows errors.Is(err, ErrPrimaryKey) to return true.
func (e *PrimaryKeyError) Is(err error) bool {
	return err == ErrPrimaryKey
}

// NewPrimaryKeyError returns a new PrimaryKeyError for the given model.
func NewPrimaryKeyError(model string, count int) *PrimaryKeyError {
	return &PrimaryKeyError{Model: model, Count: count}
}

// IsPrimaryKeyError returns true if the error is a PrimaryKeyError.
func IsPrimaryKeyError(err error) bool {
	if err == nil {
		return false
	}
	var e *PrimaryKeyError
	return errors.As(err, &e) || errors.Is(err, ErrPrimaryKey)
}

// InvalidArgumentError reports an argument outside of its accepted domain.
type InvalidArgumentError struct {
	Name   string // Argument name
	Value  any    // Offending value
	Reason string
}

// Error returns the error string.
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("sqlmodel: invalid argument %s=%v: %s", e.Name, e.Value, e.Reason)
}

// Is reports whether the target error matches InvalidArgumentError.
func (e *InvalidArgumentError) Is(err error) bool {
	return err == ErrInvalidArgument
}

// NewInvalidArgumentError returns a new InvalidArgumentError.
func NewInvalidArgumentError(name string, value any, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Name: name, Value: value, Reason: reason}
}

// IsInvalidArgument returns true if the error is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidArgumentError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidArgument)
}

// MappingError reports a field without a corresponding column or accessor.
type MappingError struct {
	Model  string // Model type name
	Field  string // Field name (if applicable)
	Reason string
}

// Error returns the error string.
func (e *MappingError) Error() string {
	var b strings.Builder
	b.WriteString("sqlmodel: mapping error")
	if e.Model != "" {
		b.WriteString(" on ")
		b.WriteString(e.Model)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is reports whether the target error matches MappingError.
func (e *MappingError) Is(err error) bool {
	return err == ErrMapping
}

// NewMappingError returns a new MappingError.
func NewMappingError(model, field, reason string) *MappingError {
	return &MappingError{Model: model, Field: field, Reason: reason}
}

// IsMappingError returns true if the error is a MappingError.
func IsMappingError(err error) bool {
	if err == nil {
		return false
	}
	var e *MappingError
	return errors.As(err, &e) || errors.Is(err, ErrMapping)
}

// UnsupportedOperationError is returned by deprecated entry points
// that fail explicitly instead of silently doing nothing.
type UnsupportedOperationError struct {
	Op string
}

// Error returns the error string.
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("sqlmodel: %s is not supported", e.Op)
}

// Is reports whether the target error matches UnsupportedOperationError.
func (e *UnsupportedOperationError) Is(err error) bool {
	return err == ErrUnsupported
}

// NewUnsupportedOperationError returns a new UnsupportedOperationError.
func NewUnsupportedOperationError(op string) *UnsupportedOperationError {
	return &UnsupportedOperationError{Op: op}
}

// IsUnsupported returns true if the error is an UnsupportedOperationError.
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedOperationError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupported)
}

// NotFoundError represents an error when a record is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the key that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("sqlmodel: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("sqlmodel: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// NewNotFoundErrorWithID returns a new NotFoundError with the key that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("sqlmodel: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "sqlmodel: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("sqlmodel: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors, so errors.Is and errors.As
// look into every one of them.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// QueryError wraps a query error with additional context.
type QueryError struct {
	Entity string // Table being queried
	Op     string // Operation (e.g., "find", "count")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("sqlmodel: querying %s (%s): %v", e.Entity, e.Op, e.Err)
	}
	return fmt.Sprintf("sqlmodel: querying %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(entity, op string, err error) *QueryError {
	return &QueryError{Entity: entity, Op: op, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// MutationError wraps a mutation error with additional context.
type MutationError struct {
	Entity string // Table being mutated
	Op     string // Operation (e.g., "modify", "remove")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("sqlmodel: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(entity, op string, err error) *MutationError {
	return &MutationError{Entity: entity, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}

// PrivacyError represents a privacy policy violation.
type PrivacyError struct {
	Entity string // Table
	Op     string // Operation
	Err    error  // Decision returned by the policy
}

// Error returns the error string.
func (e *PrivacyError) Error() string {
	return fmt.Sprintf("sqlmodel: privacy denied %s on %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the policy decision.
func (e *PrivacyError) Unwrap() error {
	return e.Err
}

// NewPrivacyError returns a new PrivacyError.
func NewPrivacyError(entity, op string, err error) *PrivacyError {
	return &PrivacyError{Entity: entity, Op: op, Err: err}
}

// IsPrivacyError returns true if the error is a PrivacyError.
func IsPrivacyError(err error) bool {
	if err == nil {
		return false
	}
	var e *PrivacyError
	return errors.As(err, &e)
}
