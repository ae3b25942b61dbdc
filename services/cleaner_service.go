package services

import (
	"regexp"
	"strings"
)

var (
	reTOC          = regexp.MustCompile(`(?im)^.*(mục lục|table of contents).*$`)
	rePageNumber   = regexp.MustCompile(`(?im)^\s*(trang|page)\s*\d+\s*$`)
	reSpecialLines = regexp.MustCompile(`(?m)^[\s\p{P}\p{S}\d]*$`)
	reSpaces       = regexp.MustCompile(`[ \t]+`)
	reLineEdges    = regexp.MustCompile(`(?m)^ | $`)
	reMultiNewLine = regexp.MustCompile(`\n{2,}`)
)

// PreCleanText xử lý thô: loại mục lục, số trang, dòng rác, khoảng trắng thừa.
func PreCleanText(text string) string {
	cleaned := strings.ReplaceAll(text, "\r\n", "\n")
	cleaned = reTOC.ReplaceAllString(cleaned, "")
	cleaned = rePageNumber.ReplaceAllString(cleaned, "")
	cleaned = reSpecialLines.ReplaceAllString(cleaned, "")
	cleaned = reSpaces.ReplaceAllString(cleaned, " ")
	cleaned = reLineEdges.ReplaceAllString(cleaned, "")
	cleaned = reMultiNewLine.ReplaceAllString(cleaned, "\n")
	return strings.TrimSpace(cleaned)
}
