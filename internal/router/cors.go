package router

import (
	"net/http"
	"strings"
)

// corsPolicy is the origin allowance computed once from config. The API is
// read-only, so preflight advertises GET only.
type corsPolicy struct {
	origins          []string
	wildcard         bool
	allowCredentials bool
}

func newCORSPolicy(allowOrigin string, allowCredentials bool) corsPolicy {
	p := corsPolicy{allowCredentials: allowCredentials}
	for _, o := range strings.Split(allowOrigin, ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			p.wildcard = true
		}
		p.origins = append(p.origins, o)
	}
	if len(p.origins) == 0 {
		p.wildcard = true
	}
	return p
}

// allowedOrigin picks the Access-Control-Allow-Origin value for a request.
// varyOrigin marks responses that differ per caller origin.
func (p corsPolicy) allowedOrigin(requestOrigin string) (value string, varyOrigin bool) {
	if p.wildcard {
		// credentialed responses must echo a concrete origin, never "*"
		if p.allowCredentials && requestOrigin != "" {
			return requestOrigin, true
		}
		return "*", false
	}
	for _, o := range p.origins {
		if o == requestOrigin {
			return requestOrigin, true
		}
	}
	return "", true
}

func withCORS(allowOrigin string, allowCredentials bool, h http.HandlerFunc) http.HandlerFunc {
	policy := newCORSPolicy(allowOrigin, allowCredentials)
	return func(w http.ResponseWriter, r *http.Request) {
		origin, vary := policy.allowedOrigin(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		if vary {
			w.Header().Set("Vary", "Origin")
		}
		if allowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h(w, r)
	}
}
