package middleware

import (
	"net/http"

	"github.com/arcanalab/tarot-api/internal/api/shared"
	"github.com/arcanalab/tarot-api/internal/platform/logger"
)

// OpenIDHeader is the trusted header the hosting platform injects with the
// caller's WeChat openid. The value is taken as-is; verifying it is the
// platform gateway's job, not ours.
const OpenIDHeader = "X-WX-OPENID"

// OpenIDMiddleware copies the caller identity from the trusted header into
// the request context. Requests without the header pass through with no
// identity; endpoints that need one use RequireOwner.
func OpenIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if openID := r.Header.Get(OpenIDHeader); openID != "" {
			r = r.WithContext(shared.SetOwnerID(r.Context(), openID))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOwner rejects requests that carry no caller identity.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.GetOwnerID(r.Context()) == "" {
			logger.FromContext(r.Context()).Warn("request without caller identity",
				"path", r.URL.Path)
			shared.RespondWithError(w, r, http.StatusUnauthorized, "missing caller identity")
			return
		}
		next.ServeHTTP(w, r)
	})
}
