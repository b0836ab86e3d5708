package services

import (
	"fmt"
	"regexp"
	"strings"
)

var citationPattern = regexp.MustCompile(`【[^】]*?†(.*?)】`)

// RewriteCitations replaces assistant file citations such as 【4:0†handbok.pdf】
// with short numbered markers and appends the numbered source list.
func RewriteCitations(message string) string {
	index := make(map[string]int)
	var sources []string

	rewritten := citationPattern.ReplaceAllStringFunc(message, func(match string) string {
		file := citationPattern.FindStringSubmatch(match)[1]
		n, ok := index[file]
		if !ok {
			sources = append(sources, file)
			n = len(sources)
			index[file] = n
		}
		return fmt.Sprintf("【%d】", n)
	})

	if len(sources) == 0 {
		return rewritten
	}

	var b strings.Builder
	b.WriteString(rewritten)
	b.WriteString("\n\nSources:\n")
	for i, file := range sources {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d: %s", i+1, file)
	}
	return b.String()
}
