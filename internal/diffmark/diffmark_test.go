package diffmark

import (
	"html"
	"regexp"
	"strings"
	"testing"
)

var markerRe = regexp.MustCompile(`</?span[^>]*>`)

// stripMarkers drops the span tags and unescapes entities, recovering
// the plain text each side renders.
func stripMarkers(marked string) string {
	return html.UnescapeString(markerRe.ReplaceAllString(marked, ""))
}

func TestMarkedReconstructsBothSides(t *testing.T) {
	cases := []struct {
		name      string
		original  string
		corrected string
	}{
		{"replacement", "きょうは公園にいきました", "今日は公園に行きました"},
		{"insertion", "こんにちは", "こんにちは、みなさん"},
		{"deletion", "とてもとても楽しかった", "とても楽しかった"},
		{"ascii", "the quick brown fox", "the quick red fox"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orig, corr := Marked(tc.original, tc.corrected)
			if got := stripMarkers(orig); got != tc.original {
				t.Errorf("original side = %q, want %q", got, tc.original)
			}
			if got := stripMarkers(corr); got != tc.corrected {
				t.Errorf("corrected side = %q, want %q", got, tc.corrected)
			}
		})
	}
}

func TestMarkedEqualStrings(t *testing.T) {
	orig, corr := Marked("同じ文章です", "同じ文章です")
	if strings.Contains(orig, "<span") || strings.Contains(corr, "<span") {
		t.Errorf("equal strings must carry no markers: %q / %q", orig, corr)
	}
	if orig != "同じ文章です" || corr != "同じ文章です" {
		t.Errorf("unexpected output: %q / %q", orig, corr)
	}
}

func TestMarkedEmptyOriginal(t *testing.T) {
	orig, corr := Marked("", "新しい文章")
	if orig != "" {
		t.Errorf("original side = %q, want empty", orig)
	}
	if !strings.Contains(corr, `<span class="ins">`) {
		t.Errorf("corrected side missing insertion marker: %q", corr)
	}
	if got := stripMarkers(corr); got != "新しい文章" {
		t.Errorf("corrected side = %q", got)
	}
}

func TestMarkedEmptyCorrected(t *testing.T) {
	orig, corr := Marked("消える文章", "")
	if corr != "" {
		t.Errorf("corrected side = %q, want empty", corr)
	}
	if !strings.Contains(orig, `<span class="del">`) {
		t.Errorf("original side missing deletion marker: %q", orig)
	}
}

func TestMarkedMarkerPlacement(t *testing.T) {
	orig, corr := Marked("いきました", "行きました")
	if !strings.Contains(orig, `<span class="del">`) {
		t.Errorf("original side missing del marker: %q", orig)
	}
	if strings.Contains(orig, `class="ins"`) {
		t.Errorf("original side must not carry ins markers: %q", orig)
	}
	if !strings.Contains(corr, `<span class="ins">`) {
		t.Errorf("corrected side missing ins marker: %q", corr)
	}
	if strings.Contains(corr, `class="del"`) {
		t.Errorf("corrected side must not carry del markers: %q", corr)
	}
}

func TestMarkedEscapesHTML(t *testing.T) {
	orig, _ := Marked("<b>太字</b>", "<b>太字</b>です")
	if strings.Contains(orig, "<b>") {
		t.Errorf("input HTML must be escaped: %q", orig)
	}
	if !strings.Contains(orig, "&lt;b&gt;") {
		t.Errorf("expected escaped entities in %q", orig)
	}
}
