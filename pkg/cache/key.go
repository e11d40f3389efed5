package cache

import "strings"

// credentialParam is the query parameter carrying the API key.
const credentialParam = "api_key"

// KeyNormalizer turns full request URLs into cache keys by stripping the
// API base URL and the embedded credential, so two requests that differ
// only in their API key share an entry.
//
// Example, with base "https://api.mod.io/v1" and key "KEY":
//
//	https://api.mod.io/v1/games/5/mods?api_key=KEY&_limit=10 -> games/5/mods?_limit=10
type KeyNormalizer struct {
	baseURL    string
	credential string
}

// NewKeyNormalizer creates a normalizer. A trailing '/' on baseURL is ignored.
// An empty apiKey disables credential stripping.
func NewKeyNormalizer(baseURL, apiKey string) KeyNormalizer {
	n := KeyNormalizer{baseURL: strings.TrimRight(baseURL, "/")}
	if apiKey != "" {
		n.credential = credentialParam + "=" + apiKey
	}
	return n
}

// BaseURL returns the API base URL without trailing '/'.
func (n KeyNormalizer) BaseURL() string {
	return n.baseURL
}

// TryNormalize returns the endpoint part of fullURL. It reports false when
// fullURL is empty, lies outside the base URL, or names no endpoint. A
// false result means "do not cache", not an error.
func (n KeyNormalizer) TryNormalize(fullURL string) (string, bool) {
	if fullURL == "" || n.baseURL == "" {
		return "", false
	}
	if !strings.HasPrefix(fullURL, n.baseURL) || len(fullURL) == len(n.baseURL) {
		return "", false
	}

	rest := fullURL[len(n.baseURL):]
	if rest[0] != '/' {
		// "https://api/v10" is not under "https://api/v1"
		return "", false
	}

	key := rest[1:]
	if n.credential != "" {
		key = stripParam(key, n.credential)
	}
	if key == "" || key[0] == '?' {
		return "", false
	}
	return key, true
}

// stripParam removes every complete "name=value" occurrence of param from
// the query part of s, keeping the remaining parameters well formed.
func stripParam(s, param string) string {
	from := 0
	for {
		i := strings.Index(s[from:], param)
		if i < 0 {
			return s
		}
		i += from
		end := i + len(param)

		if i == 0 || (s[i-1] != '&' && s[i-1] != '?') || (end < len(s) && s[end] != '&') {
			// Partial match such as api_key=KEY2 or xapi_key=KEY.
			from = i + 1
			continue
		}

		switch {
		case s[i-1] == '&':
			s = s[:i-1] + s[end:]
			from = i - 1
		case end < len(s):
			// "?param&rest" -> "?rest"
			s = s[:i] + s[end+1:]
			from = i
		default:
			// "?param" -> ""
			s = s[:i-1]
			from = i - 1
		}
	}
}
