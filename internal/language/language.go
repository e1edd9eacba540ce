// Package language normalizes user-supplied language hints into the ISO 639-1
// codes ASR backends expect.
package language

import (
	"strings"

	"golang.org/x/text/language"
)

// Normalize canonicalizes a BCP 47 hint such as "zh" or "zh-CN" to its base
// ISO 639-1 code. Unparseable or empty hints yield "" so callers fall back to
// backend auto-detection rather than sending garbage.
func Normalize(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return ""
	}
	tag, err := language.Parse(hint)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}
