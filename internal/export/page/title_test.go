package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = TitleRules{SimilarityH1: 0.80, SimilarityH2: 0.92, HeadingWindow: 3}

func TestSimilarityRatio_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, SimilarityRatio("Introduction", "introduction"))
	assert.Less(t, SimilarityRatio("Completely Different", "introduction"), 0.5)
}

func TestResolveTitle_ExplicitFrontmatterWins(t *testing.T) {
	doc := mustParse(t, `<h1>Anything Else</h1>`)

	d := ResolveTitle("Authored Title", "filename", doc, testRules)
	assert.Equal(t, "Authored Title", d.Title)
	assert.Equal(t, TitleFromFrontmatter, d.Outcome)
	assert.Nil(t, d.Removed)
}

func TestResolveTitle_SimilarHeadingPromoted(t *testing.T) {
	doc := mustParse(t, `<h1>Introduction</h1><p>body</p>`)

	d := ResolveTitle("", "introduction", doc, testRules)
	assert.Equal(t, "Introduction", d.Title)
	assert.Equal(t, TitleFromHeading, d.Outcome)
	require.NotNil(t, d.Removed)
}

func TestResolveTitle_H2RequiresCloserMatch(t *testing.T) {
	// "Introductions" vs "introduction": close enough for H1 but the H2
	// threshold is tighter.
	doc := mustParse(t, `<h2>Intro and More</h2>`)

	d := ResolveTitle("", "introduction", doc, testRules)
	assert.Equal(t, TitleFromFilename, d.Outcome)
	assert.Equal(t, "introduction", d.Title)
	assert.Nil(t, d.Removed)
}

func TestResolveTitle_DissimilarH1StillSuppressed(t *testing.T) {
	doc := mustParse(t, `<h1>Totally Unrelated Heading</h1>`)

	d := ResolveTitle("", "my-note", doc, testRules)
	assert.Equal(t, "Totally Unrelated Heading", d.Title)
	assert.Equal(t, TitleFromPosition, d.Outcome)
	require.NotNil(t, d.Removed)
}

func TestResolveTitle_HeadingOutsideWindowIgnored(t *testing.T) {
	doc := mustParse(t, `<p>a</p><p>b</p><p>c</p><h1>Late Heading</h1>`)

	d := ResolveTitle("", "note", doc, testRules)
	assert.Equal(t, TitleFromFilename, d.Outcome)
	assert.Nil(t, d.Removed)
}
