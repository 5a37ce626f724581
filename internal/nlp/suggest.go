package nlp

import "strings"

const maxSuggestions = 5

// Suggest returns completion hints for partially typed input.
func Suggest(input string) []string {
	lower := strings.ToLower(input)
	out := make([]string, 0, maxSuggestions)

	for _, rule := range dueRules {
		if strings.HasPrefix(rule.keyword, lower) || strings.Contains(lower, rule.keyword) {
			out = append(out, rule.keyword)
		}
	}
	if strings.Contains(lower, "p") || strings.Contains(lower, "priority") {
		out = append(out, "p1 (critical)", "p2 (high)", "p3 (medium)", "p4 (low)")
	}
	if strings.Contains(lower, "every") || strings.Contains(lower, "repeat") {
		out = append(out, "every day", "every week", "every month")
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
