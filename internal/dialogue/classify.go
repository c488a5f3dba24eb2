package dialogue

import (
	"regexp"
	"strings"
)

// InputType is the classifier verdict for a piece of user text.
type InputType string

const (
	TypeJSON InputType = "json"
	TypeURL  InputType = "url"
	TypeCSV  InputType = "csv"
	TypeChat InputType = "chat"
)

var (
	urlPrefixRe   = regexp.MustCompile(`(?i)^https?://`)
	embeddedURLRe = regexp.MustCompile(`https?://\S+`)
)

// Classify checks, in order: JSON-looking prefix, URL prefix, CSV shape, chat.
// A multi-line chat message with a comma in it is reported as csv.
func Classify(text string) InputType {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		return TypeJSON
	}
	lt := strings.ToLower(t)
	if strings.HasPrefix(lt, "http://") || strings.HasPrefix(lt, "https://") {
		return TypeURL
	}
	if IsCSV(t) {
		return TypeCSV
	}
	return TypeChat
}

// IsURL reports whether the trimmed text starts with http:// or https://, any case.
func IsURL(text string) bool {
	return urlPrefixRe.MatchString(strings.TrimSpace(text))
}

// IsCSV reports whether text has both a comma and a newline.
func IsCSV(text string) bool {
	return strings.Contains(text, ",") && strings.Contains(text, "\n")
}

// ExtractURL returns the first http(s) URL embedded in text.
func ExtractURL(text string) (string, bool) {
	m := embeddedURLRe.FindString(text)
	return m, m != ""
}
