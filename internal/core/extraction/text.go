package extraction

import (
	"errors"
	"unicode/utf8"
)

// extractPlainText returns data verbatim once it is known to be valid UTF-8.
func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("file is not valid UTF-8")
	}
	return string(data), nil
}
