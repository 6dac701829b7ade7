package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text untouched", "Buy milk", "Buy milk"},
		{"script body removed", `  <script>alert('xss')</script>Call the bank  `, "Call the bank"},
		{"event handler attribute", `<img src=x onerror=alert(1)>Ship it`, "Ship it"},
		{"adjacent blocks keep a separator", "<p>Hello</p><p>World</p>", "Hello World"},
		{"inline markup collapses", "<b>a</b> <b>b</b>", "a b"},
		{"nested markup", "<div><p>Plan <b>Q3</b></p><br><a href='#'>doc</a></div>", "Plan Q3 doc"},
		{"markdown survives", "  # Agenda\n- **budget**  ", "# Agenda\n- **budget**"},
		{"entities decoded", "Tom &amp; Jerry", "Tom & Jerry"},
		{"line breaks kept", "step one\n\nstep   two", "step one\n\nstep two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "<script")
			assert.NotContains(t, got, "onerror")
		})
	}
}

func TestLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"newlines collapse", "Alice\n  Anderson", "Alice Anderson"},
		{"markup stripped", "<b>Alice</b> <i>A</i>", "Alice A"},
		{"only markup", "<p></p>", ""},
		{"only whitespace", " \t\n ", ""},
		{"plain", "Staff Engineer", "Staff Engineer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Line(tt.input))
		})
	}
}

func TestTags(t *testing.T) {
	got := Tags([]string{" work ", "Work", "", "<b>urgent</b>", "home\nlife", "   "})
	assert.Equal(t, []string{"work", "urgent", "home life"}, got)

	assert.Nil(t, Tags(nil))

	empty := Tags([]string{})
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
