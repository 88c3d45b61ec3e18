package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.zip", "report.zip"},
		{"unix path stripped", "/etc/passwd", "passwd"},
		{"windows path stripped", `C:\Users\bob\report.zip`, "report.zip"},
		{"traversal stripped", "../../secret.tar.gz", "secret.tar.gz"},
		{"tags removed", "<b>notes</b>.zip", "notes.zip"},
		{"script content removed", "<script>alert(1)</script>notes.zip", "notes.zip"},
		{"ampersand survives", "a&b.zip", "a&b.zip"},
		{"control chars dropped", "re\x00port\x1f.zip", "report.zip"},
		{"spaces trimmed", "  report.zip  ", "report.zip"},
		{"empty falls back", "", "upload"},
		{"dot falls back", ".", "upload"},
		{"dotdot falls back", "..", "upload"},
		{"separators only fall back", "///", "upload"},
		{"unicode kept", "отчёт.zip", "отчёт.zip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeFilename(tc.in))
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("a", 300) + ".zip")
	assert.Len(t, []rune(got), 255)
	assert.True(t, strings.HasPrefix(got, "aaa"))
}
