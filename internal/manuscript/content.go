package manuscript

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/verte-zerg/bookkit/internal/model"
)

// ContentFiles lists primary content names probed in order.
var ContentFiles = []string{"chapter.md", "chapter.markdown", "chapter.txt"}

const fenceMarker = "```"

// MeasureText fills the text-derived counters of ContentStats.
// Fence markers are counted, not paired.
func MeasureText(content string) model.ContentStats {
	chars := 0
	for _, r := range content {
		if !unicode.IsSpace(r) {
			chars++
		}
	}
	return model.ContentStats{
		WordCount:  utf8.RuneCountInString(content),
		CharCount:  chars,
		LineCount:  strings.Count(content, "\n"),
		CodeBlocks: strings.Count(content, fenceMarker),
	}
}
