package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/storytimeapp/storytime-server/internal/domain"
	"github.com/storytimeapp/storytime-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// identityKey is the context key for the authenticated identity.
const identityKey ctxKey = "identity"

// setIdentity stores the identity in context.
func setIdentity(ctx context.Context, ident domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// identityFrom returns the authenticated identity from context,
// reporting whether one was set.
func identityFrom(ctx context.Context) (domain.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(domain.Identity)
	return ident, ok
}

// authMiddleware returns a middleware that validates Bearer tokens and stores
// the identity in context. Requests without a valid token continue as guests;
// the app is fully usable offline, so authentication is never a hard gate here.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			ident, err := auth.VerifyToken(authHeader[7:])
			if err != nil {
				// Invalid token - continue as guest rather than failing the
				// request. Writes will simply stay local.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setIdentity(r.Context(), ident)))
		})
	}
}

// session builds the per-request session from the authenticated identity (or
// a guest fallback) and the requested display language.
func (s *Server) session(ctx context.Context, guestName, language string) domain.Session {
	ident, ok := identityFrom(ctx)
	if !ok {
		ident = domain.Guest(guestName)
	}

	lang := domain.LanguageCode(language)
	if !lang.IsValid() {
		lang = s.services.Library.DisplayLanguage()
	}
	if !lang.IsValid() {
		lang = domain.LangEnglish
	}

	return domain.Session{Identity: ident, Language: lang}
}
