package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict drops every tag and attribute. It is shared across goroutines, so it
// must not be mutated after init.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true) // "<p>a</p><p>b</p>" stays two words
	return p
}()

// Clean sanitizes HTML and normalizes whitespace for multi-line text such as
// note content and task descriptions. Newlines survive; runs of spaces inside
// a line collapse to one.
//
// Examples:
//   - "<p>hi</p>" -> "hi"
//   - "<b>a</b> <b>b</b>" -> "a b"
//   - "  # Heading\n**bold**  " -> "# Heading\n**bold**"
func Clean(s string) string {
	sanitized := strict.Sanitize(s)
	sanitized = strings.TrimSpace(sanitized)

	// Unescape entities first so &#13; and friends become single chars
	sanitized = html.UnescapeString(sanitized)
	sanitized = strings.ReplaceAll(sanitized, " ", " ")

	lines := strings.Split(sanitized, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// Line is Clean for single-line fields (names, titles, locations):
// every whitespace run, newlines included, becomes one space.
func Line(s string) string {
	return strings.Join(strings.Fields(Clean(s)), " ")
}

// Tags cleans each tag with Line, drops empties and removes case-insensitive
// duplicates, keeping the first spelling seen. A nil input stays nil.
func Tags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = Line(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
