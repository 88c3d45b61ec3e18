package utils

import (
	"html"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var filenamePolicy = bluemonday.StrictPolicy()

// SanitizeFilename reduces a client supplied file name to a safe display
// name. Path components are stripped, markup is removed and control
// characters are dropped. Names that sanitize away entirely fall back
// to "upload".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	// Strip before sanitizing: the HTML tokenizer turns NUL into U+FFFD.
	name = stripControl(name)

	// StrictPolicy strips all markup but entity-escapes plain text;
	// unescape so "a&b.zip" stays "a&b.zip". Entities may decode to
	// control characters, so strip again afterwards.
	name = filenamePolicy.Sanitize(name)
	name = html.UnescapeString(name)
	name = stripControl(name)

	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "upload"
	}
	if runes := []rune(name); len(runes) > 255 {
		name = string(runes[:255])
	}
	return name
}

func stripControl(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
