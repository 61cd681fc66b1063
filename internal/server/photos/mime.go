package photos

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// allowed maps accepted photo content types to their canonical extension.
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// DetectContentType sniffs the photo bytes and returns the accepted content
// type. The declared type from the multipart header is trusted only when it
// agrees with the sniffed one or sniffing is inconclusive.
func DetectContentType(declared string, data []byte) (string, bool) {
	sniffed := http.DetectContentType(data)
	if _, ok := allowed[sniffed]; ok {
		return sniffed, true
	}

	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		mt = strings.ToLower(mt)
		if _, ok := allowed[mt]; ok && sniffed == "application/octet-stream" {
			return mt, true
		}
	}
	return "", false
}

// Extension picks the key extension: the uploaded filename's when it is one
// of ours, otherwise the canonical one for contentType.
func Extension(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	}
	return allowed[contentType]
}
