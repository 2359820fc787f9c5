package coach

import (
	"fmt"
	"regexp"
	"strings"
)

var jsonFence = regexp.MustCompile("(?s)```json(.*?)```")

// ExtractJSON pulls the JSON object out of a model answer. A ```json fenced
// block wins; otherwise the whole text is used. The result is trimmed to the
// outermost braces so stray prose or a bare ``` fence around it is dropped.
func ExtractJSON(text string) (string, error) {
	s := text
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		s = m[1]
	}
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object in %q", ErrMalformedResponse, truncate(text, 80))
	}
	return s[start : end+1], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
