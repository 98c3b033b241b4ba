package export

import (
	"mime"
	"strings"
	"unicode"
)

// Filename names the downloaded PDF after the person, or "Resume".
func Filename(fullName string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(fullName) {
		switch {
		case unicode.IsControl(r), strings.ContainsRune(`/\:*?"<>|`, r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	name := strings.Join(strings.Fields(b.String()), " ")
	if name == "" {
		name = "Resume"
	}
	return name + ".pdf"
}

// ContentDisposition is the header value that downloads filename.
func ContentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
