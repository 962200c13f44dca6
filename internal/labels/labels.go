// Package labels derives the plain-text field labels used in validation
// messages.
package labels

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formstate/internal/datapath"
	"github.com/goliatone/go-formstate/pkg/form"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy

	splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)
)

// For returns the label of the field at path: the definition's label with
// markup removed, or a humanised form of the last path segment.
func For(path string, def form.FieldDefinition) string {
	if def != nil {
		if label := Plain(def.Common().Label); label != "" {
			return label
		}
	}
	segments := datapath.Parse(path)
	if len(segments) == 0 {
		return path
	}
	return Humanize(segments[len(segments)-1].Name)
}

// Plain strips markup from a label authored as rich text.
func Plain(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := sanitizer().Sanitize(trimmed)
	return strings.Join(strings.Fields(html.UnescapeString(cleaned)), " ")
}

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Humanize converts a field name into a label. It splits on underscores,
// dashes and camelCase boundaries.
func Humanize(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	var segments []string
	for _, word := range words {
		if word == "" {
			continue
		}
		segments = append(segments, splitCamel(word))
	}
	return sentenceCase(strings.TrimSpace(strings.Join(segments, " ")))
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func sentenceCase(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
