package util

import (
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractJsonFromText returns the JSON document embedded in text: the body of
// the first fenced code block, otherwise the span from the first opening
// brace or bracket to the last closing one. Text without either is returned
// trimmed.
func ExtractJsonFromText(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	start := firstIndex(text, "{", "[")
	end := lastIndex(text, "}", "]")
	if start == -1 || end <= start {
		return strings.TrimSpace(text)
	}
	return text[start : end+1]
}

func firstIndex(s string, subs ...string) int {
	best := -1
	for _, sub := range subs {
		if i := strings.Index(s, sub); i != -1 && (best == -1 || i < best) {
			best = i
		}
	}
	return best
}

func lastIndex(s string, subs ...string) int {
	best := -1
	for _, sub := range subs {
		if i := strings.LastIndex(s, sub); i > best {
			best = i
		}
	}
	return best
}
