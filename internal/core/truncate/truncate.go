// Package truncate bounds document text to the prompt budget.
package truncate

// Marker is appended to text that was cut, so the model knows content is missing.
const Marker = "..."

// DefaultMaxChars approximates the prompt token budget of the default model.
const DefaultMaxChars = 6000

// Truncate returns text unchanged when it has at most maxChars characters
// (Unicode code points), otherwise its first maxChars characters plus Marker.
func Truncate(text string, maxChars int) string {
	if maxChars < 0 {
		maxChars = 0
	}
	if len(text) <= maxChars {
		return text
	}

	count := 0
	for i := range text {
		if count == maxChars {
			return text[:i] + Marker
		}
		count++
	}
	return text
}
