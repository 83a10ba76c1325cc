package inertiaframe

var (
	_ error = (*validationError)(nil)
	_ error = (ValidationErrors)(nil)
	_ error = (MapError)(nil)

	_ ValidationError   = (*validationError)(nil)
	_ ValidationErrorer = (*validationError)(nil)
	_ ValidationErrorer = (ValidationErrors)(nil)
	_ ValidationErrorer = (MapError)(nil)
)

// ValidationError represents a single field validation failure.
type ValidationError interface {
	// Field returns the name of the field that failed validation.
	Field() string

	// Error returns the human-readable error message describing the validation failure.
	Error() string
}

// ValidationErrorer is a collection of validation errors that can be sent to the client.
//
// An endpoint or a Validator returning a ValidationErrorer makes the
// default error handler flash the errors and redirect back.
type ValidationErrorer interface {
	error

	// ValidationErrors returns all validation errors in the collection.
	ValidationErrors() []ValidationError

	// Len returns the number of validation errors.
	Len() int
}

type validationError struct {
	field   string
	message string
}

// NewValidationError creates a validation error for a specific field with a message.
func NewValidationError(field string, message string) ValidationErrorer {
	return &validationError{field: field, message: message}
}

func (err *validationError) Error() string                       { return err.message }
func (err *validationError) Field() string                       { return err.field }
func (err *validationError) ValidationErrors() []ValidationError { return []ValidationError{err} }
func (err *validationError) Len() int                            { return 1 }

// ValidationErrors is a list of validation errors.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string                       { return "validation errors" }
func (errs ValidationErrors) ValidationErrors() []ValidationError { return errs }
func (errs ValidationErrors) Len() int                            { return len(errs) }

// MapError is a map of key-value pairs that can be used as validation errors.
// Key is the field name and value is the error message.
type MapError map[string]string

func (m MapError) ValidationErrors() []ValidationError {
	errors := make([]ValidationError, 0, len(m))
	for k, v := range m {
		errors = append(errors, &validationError{field: k, message: v})
	}

	return errors
}

func (m MapError) Error() string { return "validation errors" }
func (m MapError) Len() int      { return len(m) }

// errorMap flattens errorer into a field to message map. When a field
// failed more than once, its first message is kept.
func errorMap(errorer ValidationErrorer) map[string]string {
	errs := errorer.ValidationErrors()
	m := make(map[string]string, len(errs))

	for _, err := range errs {
		if _, ok := m[err.Field()]; ok {
			continue
		}

		m[err.Field()] = err.Error()
	}

	return m
}
