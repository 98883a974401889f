package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/martinortega/abarrote-pos/api/responses"
	pkgAuth "github.com/martinortega/abarrote-pos/pkg/auth"
	"github.com/martinortega/abarrote-pos/pkg/config"
	pkgerrors "github.com/martinortega/abarrote-pos/pkg/errors"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// Auth validates the operator's bearer token and seeds the request context
// with the claims. Tokens minted for another store are rejected; a till only
// serves its own store.
func Auth(jwtCfg config.JWTConfig, store config.StoreConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(jwtCfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.StoreID != "" && claims.StoreID != store.StoreID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "token issued for another store"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxCashierID, claims.CashierID.String())
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			ctx = context.WithValue(ctx, ctxStoreID, claims.StoreID)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"cashier_id": claims.CashierID.String(),
					"role":       string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireManager gates endpoints that change money-relevant state beyond a
// single sale.
func RequireManager(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != string(pkgAuth.RoleManager) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "manager role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
