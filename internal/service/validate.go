package service

import "strings"

// NormalizeTitle trims a task title and rejects an empty result.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", Errorf(KindValidation, "title is required")
	}
	return title, nil
}

// NormalizeCredentials trims username and password and rejects empty values.
func NormalizeCredentials(username, password string) (string, string, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return "", "", Errorf(KindValidation, "username and password required")
	}
	return username, password, nil
}

// ParseFilter parses "all", "true" or "false" (case-insensitive), along
// with the spellings "done" and "open". The empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "true", "done":
		return FilterCompleted, nil
	case "false", "open":
		return FilterOpen, nil
	}
	return "", Errorf(KindValidation, "invalid filter: %s (want all, done or open)", s)
}
