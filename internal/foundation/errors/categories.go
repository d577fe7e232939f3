package errors

import "maps"

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents user-facing configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryVault represents source-tree access errors.
	CategoryVault ErrorCategory = "vault"
	CategoryGit   ErrorCategory = "git"

	// CategoryExport represents export and page-processing errors.
	CategoryExport     ErrorCategory = "export"
	CategoryRender     ErrorCategory = "render"
	CategoryPage       ErrorCategory = "page"
	CategoryIndex      ErrorCategory = "index"
	CategoryFeature    ErrorCategory = "feature"
	CategoryFileSystem ErrorCategory = "filesystem"

	// CategoryRuntime represents runtime and infrastructure errors.
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// ErrorScope indicates how far an error's blast radius extends during an export.
// The scope decides the continuation policy: a page-scoped error skips that page,
// a feature-scoped error omits that feature's slot, a run-scoped error aborts.
type ErrorScope string

const (
	ScopeRun      ErrorScope = "run"      // Aborts the whole export and surfaces to the caller
	ScopePage     ErrorScope = "page"     // Skips the offending page, export continues
	ScopeFeature  ErrorScope = "feature"  // Omits the feature slot, export continues
	ScopeAdvisory ErrorScope = "advisory" // Logged as a warning, never blocks progress
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c[key]
	return v, ok
}

// Merge combines another context into this one, the other side winning on conflicts.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	maps.Copy(c, other)
	return c
}
