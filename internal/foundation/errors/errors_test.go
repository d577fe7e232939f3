package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError_Defaults(t *testing.T) {
	err := NewError(CategoryConfig, "missing site name").Build()

	assert.Equal(t, CategoryConfig, err.Category())
	assert.Equal(t, SeverityError, err.Severity())
	assert.Equal(t, ScopeRun, err.Scope())
	assert.Contains(t, err.Error(), "[config:error]")
}

func TestWrapError_Unwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := WrapError(cause, CategoryFileSystem, "write page").Build()

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPageError_ScopeAndContext(t *testing.T) {
	err := PageError(stderrors.New("render blew up"), "notes/a.md", "build page")

	assert.Equal(t, ScopePage, err.Scope())
	v, ok := err.Context().Get("source_path")
	require.True(t, ok)
	assert.Equal(t, "notes/a.md", v)
	assert.False(t, err.IsFatal())
}

func TestFeatureError_IsWarning(t *testing.T) {
	err := FeatureError(stderrors.New("no graph data"), "graph-view", "init feature")

	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, ScopeFeature, err.Scope())
}

func TestRunError_IsFatal(t *testing.T) {
	err := RunError(stderrors.New("cannot create destination"), "open output")

	assert.True(t, err.IsFatal())
	assert.Equal(t, ScopeRun, GetScope(err))
}

func TestGetScope_UnclassifiedDefaultsToRun(t *testing.T) {
	assert.Equal(t, ScopeRun, GetScope(stderrors.New("plain")))
}

func TestAdvisory_NeverBlocks(t *testing.T) {
	err := Advisory(CategoryIndex, "no site URL configured, skipping RSS")

	assert.Equal(t, ScopeAdvisory, err.Scope())
	assert.Equal(t, SeverityInfo, err.Severity())
	assert.False(t, err.IsFatal())
}
