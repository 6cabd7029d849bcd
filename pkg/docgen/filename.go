package docgen

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultStampedName is the file name of a stamped PDF when none is given.
const DefaultStampedName = "sealed.pdf"

var (
	unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	nonPrintable    = regexp.MustCompile(`[^\x20-\x7E]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	underscoreRun   = regexp.MustCompile(`_+`)
)

// DocumentFileName builds "<project>_<type>_<date>.docx". Missing parts
// become NO, DOC and DATE.
func DocumentFileName(projectNo, docType, issueDate string) string {
	return orDefault(projectNo, "NO") + "_" + orDefault(docType, "DOC") + "_" + orDefault(issueDate, "DATE") + ".docx"
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// EnsurePDFExtension appends ".pdf" unless name already ends with it.
// An empty name yields DefaultStampedName.
func EnsurePDFExtension(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultStampedName
	}
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return name
	}
	return name + ".pdf"
}

// SanitizeFileName replaces characters that are invalid in file names.
func SanitizeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}

// ASCIIFallback reduces a file name to printable ASCII for the plain
// filename parameter of a Content-Disposition header.
func ASCIIFallback(name string) string {
	s := nonPrintable.ReplaceAllString(name, "_")
	s = whitespaceRun.ReplaceAllString(s, "_")
	return underscoreRun.ReplaceAllString(s, "_")
}

// ContentDisposition returns an attachment header value carrying both the
// ASCII fallback and the UTF-8 name.
func ContentDisposition(name string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return `attachment; filename="` + ASCIIFallback(name) + `"; filename*=UTF-8''` + encoded
}
