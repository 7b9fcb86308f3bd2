package logging

import (
	"log/slog"
	"net/url"
	"sort"
	"strings"
)

// RedactedValue replaces sensitive field values in logs.
const RedactedValue = "[REDACTED]"

// Keys whose values are never secret.
var redactionAllowlist = map[string]struct{}{
	"service":   {},
	"env":       {},
	"message":   {},
	"severity":  {},
	"timestamp": {},
	"error":     {},
	"reason":    {},
	"component": {},
	"contract":  {},
	"kind":      {},
	"label":     {},
	"action":    {},
	"code":      {},
	"denom":     {},
	"backend":   {},
}

// IsAllowlisted reports whether key is emitted without redaction.
func IsAllowlisted(key string) bool {
	_, ok := redactionAllowlist[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// RedactionAllowlist returns the allowlisted keys, sorted.
func RedactionAllowlist() []string {
	keys := make([]string, 0, len(redactionAllowlist))
	for key := range redactionAllowlist {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MaskField returns key=value, redacting a non-empty value unless key is
// allowlisted.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || IsAllowlisted(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}

// MaskURL keeps the scheme, host and path of an endpoint and drops any
// credentials or query string. Values that do not parse are fully redacted.
func MaskURL(key, raw string) slog.Attr {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return slog.String(key, raw)
	}
	target := raw
	if !strings.Contains(raw, "://") {
		target = "//" + raw
	}
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return slog.String(key, RedactedValue)
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return slog.String(key, strings.TrimPrefix(u.String(), "//"))
}
