package formatter

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Style is the inline CSS of the container a fragment is wrapped in.
type Style string

const (
	AnswerStyle      Style = "font-size: 16px; font-weight: bold; color: #007BFF;"
	ExplanationStyle Style = "font-family: Arial, sans-serif; font-size: 14px; line-height: 1.8; color: #444;"
)

// Formatter turns generated plain text into an HTML fragment. Generated text
// is untrusted, so every line goes through a strict policy that strips markup
// and escapes what is left.
type Formatter struct {
	policy *bluemonday.Policy
}

func New() *Formatter {
	return &Formatter{policy: bluemonday.StrictPolicy()}
}

// Format renders each line starting with "-" as a list item and every other
// non-blank line as a paragraph. Blank and whitespace-only lines are dropped
// and never produce an empty <p>. The items are wrapped in <ul> when at least
// one list item exists, and the result in a <div> carrying style.
func (f *Formatter) Format(raw string, style Style) string {
	var body strings.Builder
	hasItems := false

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "-") {
			hasItems = true
			body.WriteString("<li>")
			body.WriteString(f.policy.Sanitize(strings.TrimSpace(strings.TrimPrefix(line, "-"))))
			body.WriteString("</li>")
			continue
		}
		body.WriteString("<p>")
		body.WriteString(f.policy.Sanitize(strings.TrimSpace(line)))
		body.WriteString("</p>")
	}

	content := body.String()
	if hasItems {
		content = "<ul>" + content + "</ul>"
	}
	return `<div style="` + string(style) + `">` + content + `</div>`
}

// Answer formats the primary reply.
func (f *Formatter) Answer(raw string) string {
	return f.Format(raw, AnswerStyle)
}

// Explanation formats the follow-up reply.
func (f *Formatter) Explanation(raw string) string {
	return f.Format(raw, ExplanationStyle)
}
