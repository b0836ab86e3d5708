package services

import (
	"regexp"
	"strings"
)

var (
	controlCharsRegex     = regexp.MustCompile(`[\x00-\x08\x0B-\x0C\x0E-\x1F\x7F]`)
	zeroWidthRegex        = regexp.MustCompile(`[\x{200B}-\x{200F}\x{FEFF}]`)
	noBreakSpaceRegex     = regexp.MustCompile(`\x{00A0}`)
	lineSeparatorRegex    = regexp.MustCompile(`\r\n|[\r\x{2028}\x{2029}\x{0085}]`)
	horizontalSpaceRegex  = regexp.MustCompile(`[ \t]{2,}`)
	excessiveNewlineRegex = regexp.MustCompile(`\n{4,}`)
)

// TextSanitizer cleans extracted document text before it is counted and sent to the model.
type TextSanitizer struct{}

func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{}
}

// SanitizeText strips control and invisible characters and collapses runs of
// blank space. Paragraph breaks are kept.
func (ts *TextSanitizer) SanitizeText(text string) string {
	if text == "" {
		return ""
	}

	sanitized := lineSeparatorRegex.ReplaceAllString(text, "\n")
	sanitized = controlCharsRegex.ReplaceAllString(sanitized, "")
	sanitized = zeroWidthRegex.ReplaceAllString(sanitized, "")
	sanitized = noBreakSpaceRegex.ReplaceAllString(sanitized, " ")
	sanitized = horizontalSpaceRegex.ReplaceAllString(sanitized, " ")
	sanitized = excessiveNewlineRegex.ReplaceAllString(sanitized, "\n\n\n")

	return strings.TrimSpace(sanitized)
}
