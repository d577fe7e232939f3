package page

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
	"golang.org/x/net/html"
)

// TitleOutcome records how the page title was determined, for diagnostics.
type TitleOutcome string

const (
	TitleFromFrontmatter TitleOutcome = "frontmatter"
	TitleFromHeading     TitleOutcome = "promoted_heading" // similar heading used as title
	TitleFromPosition    TitleOutcome = "suppressed_heading"
	TitleFromFilename    TitleOutcome = "filename"
)

// TitleRules are the tuned heading-to-title promotion parameters. They are
// configuration defaults, not hard-coded invariants.
type TitleRules struct {
	// SimilarityH1/H2 are the minimum edit-distance ratios at which a leading
	// heading is considered "the same" as the derived title. An H2 must match
	// more closely than an H1 to be promoted.
	SimilarityH1 float64
	SimilarityH2 float64
	// HeadingWindow is how many leading sibling elements are scanned for an
	// H1 to adopt as title even when dissimilar.
	HeadingWindow int
}

// TitleDecision is the result of resolving a page's title.
type TitleDecision struct {
	Title    string
	Outcome  TitleOutcome
	Removed  *html.Node // heading element to remove from content, if any
	Heading  string     // text of the removed heading
	Level    int        // level of the removed heading
}

// ResolveTitle determines the page title with the documented precedence:
// an explicit frontmatter title always wins; otherwise a leading heading
// textually similar to the filename-derived title is promoted (and removed);
// otherwise an H1 within the leading window is still adopted and removed,
// even if dissimilar, to avoid duplicate titling.
func ResolveTitle(explicit, derived string, doc *ContentDoc, rules TitleRules) TitleDecision {
	if explicit != "" {
		return TitleDecision{Title: explicit, Outcome: TitleFromFrontmatter}
	}

	leading := doc.LeadingElements(rules.HeadingWindow)
	for _, node := range leading {
		level, ok := headingLevels[node.Data]
		if !ok {
			continue
		}
		text := strings.TrimSpace(textContent(node))
		if text == "" {
			continue
		}

		threshold := rules.SimilarityH1
		if level >= 2 {
			threshold = rules.SimilarityH2
		}
		if SimilarityRatio(text, derived) >= threshold {
			return TitleDecision{
				Title:   text,
				Outcome: TitleFromHeading,
				Removed: node,
				Heading: text,
				Level:   level,
			}
		}

		// A top-level heading early in the body still becomes the title even
		// when dissimilar; the inline title slot would otherwise show twice.
		if level == 1 {
			return TitleDecision{
				Title:   text,
				Outcome: TitleFromPosition,
				Removed: node,
				Heading: text,
				Level:   level,
			}
		}
		break
	}

	return TitleDecision{Title: derived, Outcome: TitleFromFilename}
}

// SimilarityRatio computes the character-level edit-distance ratio between
// two strings, case-folded. 1.0 means identical.
func SimilarityRatio(a, b string) float64 {
	as := strings.Split(strings.ToLower(strings.TrimSpace(a)), "")
	bs := strings.Split(strings.ToLower(strings.TrimSpace(b)), "")
	return difflib.NewMatcher(as, bs).Ratio()
}
