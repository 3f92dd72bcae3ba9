package pagetext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// sanitize returns valid UTF-8 for arbitrary input bytes. Non-UTF-8 input is
// reinterpreted as Windows-1252, the usual culprit in legacy extracts; if
// even that fails, offending bytes become replacement runes. Malformed input
// is recovered, never reported as an error.
func sanitize(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err == nil && utf8.Valid(out) {
		return string(out)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
