// Package errors provides the exporter's classified error taxonomy.
//
// Every error carries a category (what subsystem failed), a severity (how bad
// it is), and a scope (how far the failure extends). The scope drives the
// continuation policy at the orchestration layer:
//
//   - ScopeRun: abort the export, surface to the invoking caller
//   - ScopePage: log with the offending source path, skip that page
//   - ScopeFeature: log as a warning, omit the feature slot from the template
//   - ScopeAdvisory: log as a warning, never block progress
//
// Component-level errors are translated into ClassifiedError values at the
// point of use instead of being thrown further up, except run-scoped errors.
package errors
