package trigger

import (
	"regexp"
	"strings"
)

// Matches reports whether text satisfies the trigger's pattern.
// Unknown match types and invalid regex patterns count as non-matches
// rather than surfacing an error.
func Matches(t Trigger, text string) bool {
	pattern := t.Pattern
	if !t.CaseSensitive {
		text = strings.ToLower(text)
		pattern = strings.ToLower(pattern)
	}
	switch t.MatchType {
	case MatchExact:
		return text == pattern
	case MatchPartial:
		return strings.Contains(text, pattern)
	case MatchRegex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	default:
		return false
	}
}
