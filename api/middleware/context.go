package middleware

import "context"

type contextKey string

const ctxAdminPhone contextKey = "admin_phone"

// AdminPhone returns the authenticated admin's phone number, empty when the
// request did not pass the Admin middleware.
func AdminPhone(ctx context.Context) string {
	phone, _ := ctx.Value(ctxAdminPhone).(string)
	return phone
}

// WithAdminPhone seeds the context the way the Admin middleware does. Test
// helper for handlers that read the claim directly.
func WithAdminPhone(ctx context.Context, phone string) context.Context {
	return context.WithValue(ctx, ctxAdminPhone, phone)
}
