package pagetext

import (
	"strings"
	"unicode/utf8"
)

const defaultCharsPerPage = 1800

// paginate joins flattened blocks into page-tagged text, estimating page
// breaks by integer division of the running character offset. Markers are
// only ever inserted between blocks, so an atomic block (a table) is never
// torn by an estimated page boundary.
func paginate(blocks []string, charsPerPage int) string {
	if charsPerPage <= 0 {
		charsPerPage = defaultCharsPerPage
	}

	var b strings.Builder
	page := 0
	offset := 0
	for _, blk := range blocks {
		if p := offset/charsPerPage + 1; p > page {
			page = p
			b.WriteString(Marker(page))
			b.WriteString("\n")
		}
		b.WriteString(blk)
		b.WriteString("\n\n")
		offset += utf8.RuneCountInString(blk) + 2
	}
	return strings.TrimRight(b.String(), "\n")
}
