package middleware

import (
	"net/http"

	"tetrabet_backend/pkg/resp"

	"golang.org/x/crypto/bcrypt"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKey - пускает запросы операторской консоли с ключом, совпадающим с bcrypt-хэшем
func AdminKey(keyHash []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(AdminKeyHeader)
			if key == "" {
				resp.WriteError(w, http.StatusUnauthorized, "missing admin key")
				return
			}
			if err := bcrypt.CompareHashAndPassword(keyHash, []byte(key)); err != nil {
				resp.WriteError(w, http.StatusForbidden, "invalid admin key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
