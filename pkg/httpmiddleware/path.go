package httpmiddleware

import (
	"net/http"
	"strings"
)

// StripPrefix removes a leading path prefix from request URLs before routing.
// The prefix must end at a segment boundary, so "/api/v1" matches "/api/v1"
// and "/api/v1/plan" but not "/api/v1beta".
func StripPrefix(prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if prefix == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rest, ok := strings.CutPrefix(r.URL.Path, prefix); ok {
				if rest == "" || rest[0] == '/' {
					r.URL.Path = rest
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
