package log

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// maskedKeys are attribute keys whose values are never logged. Most of them
// are request headers a fetcher may log at debug level.
var maskedKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
	"session":             true,
	"session_id":          true,
	"sessionid":           true,
	"sid":                 true,
	"jsessionid":          true,
}

// maskedKeywords mask any key containing them. The bare word "key" is not
// listed because it matches names like "primary_key" or "hotkey".
var maskedKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "credential", "private",
}

// maskedQueryParams are query parameters whose values are masked when a URL
// is logged. Property sites often carry tracking or session tokens in links.
var maskedQueryParams = map[string]bool{
	"token":        true,
	"access_token": true,
	"api_key":      true,
	"apikey":       true,
	"key":          true,
	"sig":          true,
	"signature":    true,
	"password":     true,
	"auth":         true,
	"session":      true,
	"sessionid":    true,
	"sid":          true,
}

// secretValuePatterns match values that look like secrets whatever their key.
var secretValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`), // JWT
	regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`),
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// redactAttr returns a with sensitive content masked. Groups are walked
// recursively.
func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		cleaned := make([]slog.Attr, len(members))
		for i, m := range members {
			cleaned[i] = redactAttr(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(cleaned...)}
	}

	key := strings.ToLower(a.Key)
	if maskedKeys[key] || containsSensitiveKeyword(key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	value := a.Value.String()
	if isSecretValue(value) {
		return slog.String(a.Key, MaskValue)
	}
	if cleaned, ok := sanitizeURL(value); ok {
		return slog.String(a.Key, cleaned)
	}
	return a
}

// containsSensitiveKeyword reports whether key contains a masked keyword.
func containsSensitiveKeyword(key string) bool {
	for _, keyword := range maskedKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

func isSecretValue(value string) bool {
	for _, p := range secretValuePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// sanitizeURL removes credentials and masks sensitive query parameters in
// an absolute http(s) URL. It reports false when value is not such a URL
// or needs no change.
func sanitizeURL(value string) (string, bool) {
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return "", false
	}
	u, err := url.Parse(value)
	if err != nil {
		return "", false
	}

	changed := u.User != nil
	u.User = nil

	if u.RawQuery != "" {
		query := u.Query()
		masked := false
		for name := range query {
			if maskedQueryParams[strings.ToLower(name)] {
				query.Set(name, MaskValue)
				masked = true
			}
		}
		if masked {
			u.RawQuery = query.Encode()
			changed = true
		}
	}

	if !changed {
		return "", false
	}
	return u.String(), true
}
