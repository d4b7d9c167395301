// Package diffmark renders character-level differences between an
// original and a corrected text as HTML-marked strings.
package diffmark

import (
	"html"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Marker spans matched by the stylesheet of the web pages.
const (
	delOpen   = `<span class="del">`
	insOpen   = `<span class="ins">`
	spanClose = `</span>`
)

// Marked aligns original and corrected character by character and returns
// both texts with deleted spans marked on the original side and inserted
// spans marked on the corrected side. Where one span replaces another,
// the old span is marked deleted and the new one inserted; the two are
// adjacent, not aligned within the span.
//
// Alignment operates on runes, not grapheme clusters, so multi-codepoint
// glyphs (combining marks, some emoji) can split across spans. Accepted
// trade-off for locale-agnostic diffing.
//
// Stripping the marker spans and unescaping HTML entities reproduces the
// inputs exactly. Pure function.
func Marked(original, corrected string) (markedOriginal, markedCorrected string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, corrected, false)

	var orig, corr strings.Builder
	for _, d := range diffs {
		text := html.EscapeString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			orig.WriteString(text)
			corr.WriteString(text)
		case diffmatchpatch.DiffDelete:
			orig.WriteString(delOpen)
			orig.WriteString(text)
			orig.WriteString(spanClose)
		case diffmatchpatch.DiffInsert:
			corr.WriteString(insOpen)
			corr.WriteString(text)
			corr.WriteString(spanClose)
		}
	}
	return orig.String(), corr.String()
}
