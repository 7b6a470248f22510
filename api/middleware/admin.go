package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/meatshare/orderbook-backend/api/responses"
	pkgauth "github.com/meatshare/orderbook-backend/pkg/auth"
	"github.com/meatshare/orderbook-backend/pkg/auth/session"
	"github.com/meatshare/orderbook-backend/pkg/config"
	pkgerrors "github.com/meatshare/orderbook-backend/pkg/errors"
	"github.com/meatshare/orderbook-backend/pkg/logger"
)

// Admin gates a route behind a live admin session. The cookie carries a JWT
// whose jti keys the server-side session; touching it slides the idle window.
// The admin phone rides the request context from here on, never a global.
func Admin(cfg config.SessionConfig, sessions session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
				return
			}

			claims, err := pkgauth.ParseAdminToken(cfg, cookie.Value)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "admin access required"))
				return
			}
			if claims.SessionID() == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
				return
			}

			phone, err := sessions.Touch(r.Context(), claims.SessionID())
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxAdminPhone, phone)
			if logg != nil {
				ctx = logg.WithAdminPhone(ctx, phone)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
