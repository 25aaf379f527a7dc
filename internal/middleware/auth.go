package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"tetrabet_backend/internal/model"
	"tetrabet_backend/pkg/resp"
	"tetrabet_backend/pkg/token"
)

type ctxKey int

const userIDKey ctxKey = iota

// UserIDFromContext - ID игрока, положенный Auth
func UserIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok
}

// WithUserID - кладёт ID игрока в контекст
func WithUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// Auth - проверяет Bearer access token игрока
func Auth(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				resp.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := token.VerifyToken(tokenStr, secretKey)
			if err != nil {
				resp.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if claims.Role != model.RolePlayer {
				resp.WriteError(w, http.StatusForbidden, "player token required")
				return
			}

			userID, err := strconv.Atoi(claims.ID)
			if err != nil || userID <= 0 {
				resp.WriteError(w, http.StatusUnauthorized, "invalid token subject")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
