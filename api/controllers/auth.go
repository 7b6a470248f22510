package controllers

import (
	"context"
	"crypto/subtle"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/meatshare/orderbook-backend/api/responses"
	pkgauth "github.com/meatshare/orderbook-backend/pkg/auth"
	"github.com/meatshare/orderbook-backend/pkg/config"
	pkgerrors "github.com/meatshare/orderbook-backend/pkg/errors"
	"github.com/meatshare/orderbook-backend/pkg/logger"
)

// SessionOpener opens an admin session at login.
type SessionOpener interface {
	Create(ctx context.Context, phone string) (string, error)
}

// SessionRevoker tears an admin session down at logout.
type SessionRevoker interface {
	Revoke(ctx context.Context, sessionID string) error
}

type loginFormData struct {
	Next string
}

// AdminLoginForm renders the login page, carrying the sanitized return path.
func AdminLoginForm(tmpl *template.Template, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := loginFormData{Next: responses.SafeNext(r.URL.Query().Get("next"))}
		if err := tmpl.ExecuteTemplate(w, "login.html", data); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render login form"))
		}
	}
}

// AdminLogin checks the phone allow-list and shared password, then opens a
// server-side session and sets the cookie token.
func AdminLogin(sessionCfg config.SessionConfig, adminCfg config.AdminConfig, sessions SessionOpener, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := strings.TrimSpace(r.PostFormValue("phone"))
		password := r.PostFormValue("password")

		passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(adminCfg.Password)) == 1
		if !adminCfg.Allowed(phone) || !passwordOK {
			if logg != nil {
				ctx := logg.WithAdminPhone(r.Context(), phone)
				logg.Warn(ctx, "admin.login.rejected")
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invalid admin credentials"))
			return
		}

		sessionID, err := sessions.Create(r.Context(), phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session"))
			return
		}
		token, err := pkgauth.MintAdminToken(sessionCfg, time.Now(), phone, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCfg.CookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(sessionCfg.TokenTTL.Seconds()),
			HttpOnly: true,
			Secure:   sessionCfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		if logg != nil {
			ctx := logg.WithAdminPhone(r.Context(), phone)
			logg.Info(ctx, "admin.login.succeeded")
		}
		responses.Redirect(w, r, responses.SafeNext(r.PostFormValue("next")))
	}
}

// Logout revokes the server-side session and expires the cookie. Always lands
// on the dashboard, signed in or not.
func Logout(sessionCfg config.SessionConfig, sessions SessionRevoker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCfg.CookieName); err == nil && cookie.Value != "" {
			if claims, err := pkgauth.ParseAdminToken(sessionCfg, cookie.Value); err == nil {
				if err := sessions.Revoke(r.Context(), claims.SessionID()); err != nil && logg != nil {
					logg.Warn(logg.WithFields(r.Context(), map[string]any{"error": err.Error()}), "admin.logout.revoke_failed")
				}
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCfg.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sessionCfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
		responses.Redirect(w, r, "/dashboard")
	}
}
