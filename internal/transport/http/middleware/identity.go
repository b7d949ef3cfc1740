package middleware

import (
	"net/http"
	"strings"
)

// UnknownIdentity is the shared bucket for requests carrying none of the
// proxy headers. All such traffic rate-limits together; that trade-off is
// accepted rather than letting header-less clients bypass limits entirely.
const UnknownIdentity = "unknown"

// singleValueIdentityHeaders are consulted in order after X-Forwarded-For.
var singleValueIdentityHeaders = []string{
	"X-Real-IP",
	"CF-Connecting-IP",
	"True-Client-IP",
}

// ResolveClientIdentity extracts a best-effort client network identifier
// from proxy-forwarded headers. It never fails; absent headers resolve to
// UnknownIdentity.
func ResolveClientIdentity(h http.Header) string {
	if forwarded := h.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	for _, name := range singleValueIdentityHeaders {
		if value := strings.TrimSpace(h.Get(name)); value != "" {
			return value
		}
	}

	return UnknownIdentity
}
