package responses

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/meatshare/orderbook-backend/pkg/errors"
	"github.com/meatshare/orderbook-backend/pkg/logger"
)

// DefaultNext is where sanitized redirects land when the caller supplied no
// usable target.
const DefaultNext = "/dashboard"

// WriteError maps a coded error onto a plain-text response. Internal and
// dependency failures keep their generic public message; client errors show
// the specific one.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = fmt.Errorf("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error":         dump.TopMessage,
			"error_code":    dump.Code,
			"error_chain":   dump.Chain,
			"pg_code":       dump.PGCode,
			"pg_detail":     dump.PGDetail,
			"pg_message":    dump.PGMessage,
			"pg_table":      dump.PGTable,
			"pg_constraint": dump.PGConstraint,
		})
		logg.Error(ctx, "request.error", err)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(meta.HTTPStatus)
	fmt.Fprintln(w, msg)
}

// Redirect sends the browser on after a handled POST.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SafeNext sanitizes a caller-supplied redirect target. Only same-site
// absolute paths pass; protocol-relative ("//host") and external URLs fall
// back to the dashboard.
func SafeNext(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultNext
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return DefaultNext
	}
	return raw
}

// WritePDF streams a rendered PDF as a download.
func WritePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
