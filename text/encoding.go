package text

import (
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// sanitize replaces ill-formed UTF-8 with U+FFFD, logging the input, and
// normalizes to NFC so precomposed glyphs are preferred.
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		logger.Load().Warn("text: invalid UTF-8 in request", "text", s)
		fixed, _, err := transform.String(runes.ReplaceIllFormed(), s)
		if err != nil {
			logger.Load().Warn("text: cannot repair text", "text", s, "err", err)
			return ""
		}
		s = fixed
	}
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
