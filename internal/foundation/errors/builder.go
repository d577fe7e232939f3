package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
// This makes error creation consistent and discoverable throughout the exporter.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	scope    ErrorScope
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		scope:    ScopeRun,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		scope:    ScopeRun,
		message:  message,
		cause:    err,
		context:  make(ErrorContext),
	}
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithScope sets the error scope.
func (b *ErrorBuilder) WithScope(scope ErrorScope) *ErrorBuilder {
	b.scope = scope
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// Build constructs the ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		scope:    b.scope,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// Convenience constructors for the common export error shapes.

// PageError builds a page-scoped error: the offending page is skipped and the
// export continues.
func PageError(cause error, sourcePath string, message string) *ClassifiedError {
	return WrapError(cause, CategoryPage, message).
		WithScope(ScopePage).
		WithContext("source_path", sourcePath).
		Build()
}

// FeatureError builds a feature-scoped warning: the feature slot is omitted
// from the template and the export continues.
func FeatureError(cause error, feature string, message string) *ClassifiedError {
	return WrapError(cause, CategoryFeature, message).
		WithSeverity(SeverityWarning).
		WithScope(ScopeFeature).
		WithContext("feature", feature).
		Build()
}

// RunError builds a run-scoped fatal error that aborts the whole export.
func RunError(cause error, message string) *ClassifiedError {
	return WrapError(cause, CategoryExport, message).
		WithSeverity(SeverityFatal).
		WithScope(ScopeRun).
		Build()
}

// Advisory builds a non-blocking warning (unresolved link, missing site URL, ...).
func Advisory(category ErrorCategory, message string) *ClassifiedError {
	return NewError(category, message).
		WithSeverity(SeverityInfo).
		WithScope(ScopeAdvisory).
		Build()
}
