package llm

import (
	"regexp"
	"strings"
)

var (
	codeFenceRe = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\\n?(.*?)```")
	arrayRe     = regexp.MustCompile(`(?s)\[[^\[\]]*\]`)
)

// StripCodeFence returns the body of the first fenced code block in s, or
// s itself when there is none. The result is trimmed.
func StripCodeFence(s string) string {
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// ExtractObject returns the substring from the first '{' to the last '}'.
func ExtractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// ExtractArray returns the first flat bracketed array in s.
func ExtractArray(s string) (string, bool) {
	m := arrayRe.FindString(s)
	return m, m != ""
}
