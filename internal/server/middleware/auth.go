package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// SuperAdminHeader is the credential header required on every admin route.
const SuperAdminHeader = "X-SUPER-ADMIN-KEY"

// Verifier reports whether a presented super-admin key is valid.
type Verifier func(key string) bool

// StaticKey verifies against a raw configured key in constant time.
func StaticKey(key string) Verifier {
	expected := []byte(key)
	return func(got string) bool {
		return len(expected) > 0 &&
			subtle.ConstantTimeCompare([]byte(got), expected) == 1
	}
}

// HashedKey verifies against a stored SHA-256 hex hash, so the settings
// table never holds the raw key.
func HashedKey(hexHash string) Verifier {
	return func(got string) bool {
		sum := sha256.Sum256([]byte(got))
		return hexHash != "" &&
			subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(hexHash)) == 1
	}
}

// RequireSuperAdmin returns middleware enforcing the super-admin key. It
// runs before any handler logic, so a request without a valid credential is
// rejected with 401 even when its body or path id is defective — never with
// a structural or validation error.
func RequireSuperAdmin(verify Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(SuperAdminHeader)
			if key == "" || !verify(key) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
