// internal/websearch/canonical.go
package websearch

import (
	"net/url"
	"strings"
)

// trackingParams are dropped from URLs before they are used as dedup keys,
// in addition to every key with a utm_ prefix.
var trackingParams = map[string]struct{}{
	"gclid":  {},
	"fbclid": {},
	"yclid":  {},
	"mc_cid": {},
	"mc_eid": {},
}

// Canonicalize strips tracking query parameters and the fragment from a URL,
// keeping the remaining query parameters in their original relative order.
// On any parse failure the trimmed input is returned unchanged, so dedup
// degrades to exact-string matching instead of failing.
func Canonicalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil {
		return trimmed
	}

	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		kept := make([]string, 0, 4)
		for _, pair := range strings.Split(u.RawQuery, "&") {
			if pair == "" {
				continue
			}
			key := pair
			if i := strings.Index(pair, "="); i >= 0 {
				key = pair[:i]
			}
			if decoded, err := url.QueryUnescape(key); err == nil {
				key = decoded
			}
			key = strings.ToLower(key)
			if strings.HasPrefix(key, "utm_") {
				continue
			}
			if _, tracking := trackingParams[key]; tracking {
				continue
			}
			kept = append(kept, pair)
		}
		u.RawQuery = strings.Join(kept, "&")
	}

	return u.String()
}
