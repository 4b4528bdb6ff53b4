package trigger

// Allowed decides whether a matched trigger may fire for this message
// context. All checks must pass; a failed check drops the candidate
// silently. An empty scope set means unrestricted.
func Allowed(t Trigger, msg Message) bool {
	if len(t.Channels) > 0 && !containsString(t.Channels, msg.ChannelID) {
		return false
	}
	if len(t.Roles) > 0 && !containsAny(t.Roles, msg.AuthorRoles) {
		return false
	}
	if containsString(t.Blacklist, msg.AuthorID) {
		return false
	}
	if len(t.Whitelist) > 0 && !containsString(t.Whitelist, msg.AuthorID) {
		return false
	}
	return true
}

func containsString(set []string, value string) bool {
	for _, item := range set {
		if item == value {
			return true
		}
	}
	return false
}

func containsAny(set []string, values []string) bool {
	for _, value := range values {
		if containsString(set, value) {
			return true
		}
	}
	return false
}
